package server

import (
	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/onetoseven/marketplace/internal/appeal"
	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/misc"
)

///////// Appeals /////////
func appealEligibility(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			app      *common.Application
			released bool
		)
		s.db.View(func(tx *bolt.Tx) error {
			if app = common.GetApplicationTx(tx, s.Cfg, c.Param("id")); app == nil {
				return nil
			}
			if p := common.GetPaymentTx(tx, s.Cfg, app.PaymentId); p != nil {
				released = p.Released()
			}
			return nil
		})
		if app == nil {
			c.JSON(400, misc.StatusErr(ErrApplicationNotFound.Error()))
			return
		}
		c.JSON(200, gin.H{"eligible": appeal.Eligible(app, released)})
	}
}

func submitAppeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var load struct {
			Comment string   `json:"comment"`
			Files   []string `json:"files"`
		}
		if err := misc.BindJSON(c, &load); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body"))
			return
		}

		id := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			app := common.GetApplicationTx(tx, s.Cfg, id)
			if app == nil {
				return ErrApplicationNotFound
			}

			var released bool
			if p := common.GetPaymentTx(tx, s.Cfg, app.PaymentId); p != nil {
				released = p.Released()
			}

			if err := appeal.Submit(app, released, load.Comment, misc.TrimStrings(load.Files)); err != nil {
				return err
			}
			return common.SaveApplicationTx(tx, s.Cfg, app)
		}); err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		c.JSON(200, misc.StatusOK(id))
	}
}
