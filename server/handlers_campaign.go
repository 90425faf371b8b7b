package server

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/onetoseven/marketplace/internal/auth"
	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/misc"
)

///////// Campaigns /////////
func putCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmp common.Campaign
		if err := misc.BindJSON(c, &cmp); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body"))
			return
		}

		if !cmp.Policy.IsValid() {
			c.JSON(400, misc.StatusErr("Invalid campaign policy"))
			return
		}

		if cmp.Policy.Fulfillment == common.FulfillmentInfluencer {
			cmp.Policy.OrderFormFields = misc.TrimStrings(cmp.Policy.OrderFormFields)
		} else {
			cmp.Policy.OrderFormFields = nil
		}

		u := auth.GetCtxUser(c)
		cmp.AdminId = u.Id
		cmp.Status = true
		cmp.Locked = false
		cmp.CreatedAt = time.Now().Unix()
		cmp.UpdatedAt = cmp.CreatedAt

		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			if cmp.Id, err = misc.GetNextIndex(tx, s.Cfg.Bucket.Campaign); err != nil {
				return
			}
			return saveCampaign(tx, &cmp, s)
		}); err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}

		c.JSON(200, misc.StatusOK(cmp.Id))
	}
}

func getCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		cmp := common.GetCampaign(c.Param("id"), s.db, s.Cfg)
		if cmp == nil {
			c.JSON(400, misc.StatusErr(ErrCampaignNotFound.Error()))
			return
		}
		c.JSON(200, cmp)
	}
}

func getAllCampaigns(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		cmps := make([]*common.Campaign, 0, 64)
		for _, cmp := range s.Campaigns.GetStore() {
			cmps = append(cmps, cmp)
		}
		c.JSON(200, cmps)
	}
}

// updateCampaign allows name/description/status edits at any time; the
// policy itself only until an application snapshots it.
func updateCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var upd common.Campaign
		if err := misc.BindJSON(c, &upd); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body"))
			return
		}

		cid := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			cmp := common.GetCampaignTx(tx, s.Cfg, cid)
			if cmp == nil {
				return ErrCampaignNotFound
			}

			policyProvided := upd.Policy.Budget != 0 || upd.Policy.Fulfillment != "" ||
				upd.Policy.PayoutRelease != "" || len(upd.Policy.OrderFormFields) > 0
			policyChanged := policyProvided && !policyEqual(&cmp.Policy, &upd.Policy)
			if policyChanged {
				if cmp.Locked {
					return ErrCampaignLocked
				}
				if !upd.Policy.IsValid() {
					return common.ErrInvalidPolicy
				}
				cmp.Policy = *upd.Policy.Clone()
			}

			cmp.Name = upd.Name
			cmp.Description = upd.Description
			cmp.Status = upd.Status
			cmp.UpdatedAt = time.Now().Unix()
			return saveCampaign(tx, cmp, s)
		}); err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		c.JSON(200, misc.StatusOK(cid))
	}
}

func policyEqual(a, b *common.Policy) bool {
	if a.Budget != b.Budget || a.Fulfillment != b.Fulfillment || a.PayoutRelease != b.PayoutRelease {
		return false
	}
	if len(a.OrderFormFields) != len(b.OrderFormFields) {
		return false
	}
	for i := range a.OrderFormFields {
		if a.OrderFormFields[i] != b.OrderFormFields[i] {
			return false
		}
	}
	return true
}
