package server

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/onetoseven/marketplace/internal/auth"
	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/internal/lifecycle"
	"github.com/onetoseven/marketplace/misc"
)

///////// Applications /////////
func applyToCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var load struct {
			Comment   string `json:"comment"`
			Followers int64  `json:"followers"`
		}
		if err := misc.BindJSON(c, &load); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body"))
			return
		}

		u := auth.GetCtxUser(c)
		cid := c.Param("campaignId")

		var app common.Application
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			cmp := common.GetCampaignTx(tx, s.Cfg, cid)
			if cmp == nil {
				return ErrCampaignNotFound
			}
			if !cmp.IsValid() {
				return ErrCampaignInactive
			}

			dupes := common.FilterApplicationsTx(tx, s.Cfg, func(a *common.Application) bool {
				return a.InfluencerId == u.Id && a.CampaignId == cid
			})
			if len(dupes) > 0 {
				return ErrDuplicateApply
			}

			if app.Id, err = misc.GetNextIndex(tx, s.Cfg.Bucket.Application); err != nil {
				return
			}
			now := time.Now().Unix()
			app.CampaignId = cid
			app.InfluencerId = u.Id
			app.Status = common.StatusApplied
			app.FollowersAtApply = load.Followers
			if app.FollowersAtApply == 0 {
				app.FollowersAtApply = u.Followers
			}
			app.ApplicantComment = load.Comment
			app.AddComment(common.StageApplication, u.Id, string(u.Type), load.Comment, now)
			app.CreatedAt = now
			app.UpdatedAt = now
			return common.SaveApplicationTx(tx, s.Cfg, &app)
		}); err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		c.JSON(200, misc.StatusOK(app.Id))
	}
}

func getApplication(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var app *common.Application
		s.db.View(func(tx *bolt.Tx) error {
			app = common.GetApplicationTx(tx, s.Cfg, c.Param("id"))
			return nil
		})
		if app == nil {
			c.JSON(400, misc.StatusErr(ErrApplicationNotFound.Error()))
			return
		}
		c.JSON(200, app)
	}
}

func getApplicationsByCampaign(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, common.GetApplicationsByCampaign(s.db, s.Cfg, c.Param("campaignId")))
	}
}

func getApplicationsByInfluencer(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		infId := c.Param("influencerId")
		// influencers only ever see their own list
		if u := auth.GetCtxUser(c); u.Type == auth.InfluencerScope {
			infId = u.Id
		}
		c.JSON(200, common.GetApplicationsByInfluencer(s.db, s.Cfg, infId))
	}
}

func startReview(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			app := common.GetApplicationTx(tx, s.Cfg, id)
			if app == nil {
				return ErrApplicationNotFound
			}
			if err := lifecycle.StartReview(app); err != nil {
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

type verdictLoad struct {
	Comment string `json:"comment"`
	Reason  string `json:"reason"`
}

func approveApplication(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var load verdictLoad
		misc.BindJSON(c, &load) // comment is optional; an empty body is fine

		var (
			id      = c.Param("id")
			u       = auth.GetCtxUser(c)
			already bool
		)
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			app := common.GetApplicationTx(tx, s.Cfg, id)
			if app == nil {
				return ErrApplicationNotFound
			}
			cmp := common.GetCampaignTx(tx, s.Cfg, app.CampaignId)
			if cmp == nil {
				return ErrCampaignNotFound
			}

			actor := lifecycle.Actor{Id: u.Id, Role: string(u.Type)}
			if already, err = lifecycle.ApproveApplication(app, &cmp.Policy, actor, load.Comment); err != nil {
				return
			}
			if already {
				return nil
			}
			if err = lockCampaignTx(tx, s, cmp.Id); err != nil {
				return
			}
			return common.SaveApplicationTx(tx, s.Cfg, app)
		}); err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		if already {
			c.JSON(200, misc.StatusMsg(id, "already reviewed"))
			return
		}
		c.JSON(200, misc.StatusOK(id))
	}
}

func rejectApplication(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var load verdictLoad
		misc.BindJSON(c, &load)

		var (
			id      = c.Param("id")
			u       = auth.GetCtxUser(c)
			already bool
		)
		if err := s.db.Update(func(tx *bolt.Tx) (err error) {
			app := common.GetApplicationTx(tx, s.Cfg, id)
			if app == nil {
				return ErrApplicationNotFound
			}

			actor := lifecycle.Actor{Id: u.Id, Role: string(u.Type)}
			if already, err = lifecycle.RejectApplication(app, actor, load.Comment, load.Reason); err != nil {
				return
			}
			if already {
				return nil
			}
			return common.SaveApplicationTx(tx, s.Cfg, app)
		}); err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		if already {
			c.JSON(200, misc.StatusMsg(id, "already reviewed"))
			return
		}
		c.JSON(200, misc.StatusOK(id))
	}
}
