package server

import (
	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/onetoseven/marketplace/internal/auth"
	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/internal/lifecycle"
	"github.com/onetoseven/marketplace/internal/payout"
	"github.com/onetoseven/marketplace/misc"
)

///////// Payouts /////////
func getPayment(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p *common.Payment
		s.db.View(func(tx *bolt.Tx) error {
			p = common.GetPaymentTx(tx, s.Cfg, c.Param("id"))
			return nil
		})
		if p == nil {
			c.JSON(400, misc.StatusErr(ErrPaymentNotFound.Error()))
			return
		}
		if u := auth.GetCtxUser(c); u.Type == auth.InfluencerScope && p.InfluencerId != u.Id {
			misc.AbortWithErr(c, 401, auth.ErrUnauthorized)
			return
		}
		c.JSON(200, p)
	}
}

func submitOrderProofs(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		submitProofs(s, c, payout.SubmitOrderProofs)
	}
}

func submitDeliverablesProof(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		submitProofs(s, c, payout.SubmitDeliverablesProof)
	}
}

func submitProofs(s *Server, c *gin.Context, attach func(*common.Payment, *common.ProofBundle) error) {
	var proof common.ProofBundle
	if err := misc.BindJSON(c, &proof); err != nil {
		c.JSON(400, misc.StatusErr("Error unmarshalling request body"))
		return
	}

	var (
		id = c.Param("id")
		u  = auth.GetCtxUser(c)
	)
	if err := s.db.Update(func(tx *bolt.Tx) error {
		p := common.GetPaymentTx(tx, s.Cfg, id)
		if p == nil {
			return ErrPaymentNotFound
		}
		if p.InfluencerId != u.Id {
			return auth.ErrUnauthorized
		}
		if err := attach(p, &proof); err != nil {
			return err
		}
		return common.SavePaymentTx(tx, s.Cfg, p)
	}); err != nil {
		c.JSON(400, misc.StatusErr(err.Error()))
		return
	}

	c.JSON(200, misc.StatusOK(id))
}

func approvePartial(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var load struct {
			Amount float64 `json:"amount"`
		}
		if err := misc.BindJSON(c, &load); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body"))
			return
		}

		id := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			p := common.GetPaymentTx(tx, s.Cfg, id)
			if p == nil {
				return ErrPaymentNotFound
			}
			if err := payout.ApprovePartial(p, load.Amount); err != nil {
				return err
			}
			return common.SavePaymentTx(tx, s.Cfg, p)
		}); err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		c.JSON(200, misc.StatusOK(id))
	}
}

func markPartialPaid(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			p := common.GetPaymentTx(tx, s.Cfg, id)
			if p == nil {
				return ErrPaymentNotFound
			}
			name, addr := s.payoutTargetTx(tx, p)
			if err := payout.MarkPartialPaid(p, s.gateway, name, addr); err != nil {
				return err
			}
			return common.SavePaymentTx(tx, s.Cfg, p)
		}); err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		c.JSON(200, misc.StatusOK(id))
	}
}

func approveRemaining(s *Server) gin.HandlerFunc {
	return releasePaymentFor(s, payout.ApproveRemaining)
}

func markPaid(s *Server) gin.HandlerFunc {
	return releasePaymentFor(s, payout.MarkPaid)
}

// releasePaymentFor runs a full-release action and, on success, marks the
// application completed in the same transaction.
func releasePaymentFor(s *Server, release func(*common.Payment, payout.Gateway, string, *common.ShippingAddress) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			p := common.GetPaymentTx(tx, s.Cfg, id)
			if p == nil {
				return ErrPaymentNotFound
			}
			name, addr := s.payoutTargetTx(tx, p)
			if err := release(p, s.gateway, name, addr); err != nil {
				return err
			}
			if err := common.SavePaymentTx(tx, s.Cfg, p); err != nil {
				return err
			}

			app := common.GetApplicationTx(tx, s.Cfg, p.ApplicationId)
			if app == nil {
				return ErrApplicationNotFound
			}
			if err := lifecycle.Complete(app); err != nil {
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

// payoutTargetTx resolves where a check would be mailed for this payment.
func (srv *Server) payoutTargetTx(tx *bolt.Tx, p *common.Payment) (string, *common.ShippingAddress) {
	u := srv.auth.GetUserTx(tx, p.InfluencerId)
	if u == nil || u.PayoutAddress == nil {
		return "", nil
	}
	return u.Name, &common.ShippingAddress{
		Line1:      u.PayoutAddress.Line1,
		Line2:      u.PayoutAddress.Line2,
		City:       u.PayoutAddress.City,
		State:      u.PayoutAddress.State,
		PostalCode: u.PayoutAddress.PostalCode,
		Country:    u.PayoutAddress.Country,
	}
}
