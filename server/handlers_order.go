package server

import (
	"log"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/onetoseven/marketplace/internal/auth"
	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/internal/lifecycle"
	"github.com/onetoseven/marketplace/internal/order"
	"github.com/onetoseven/marketplace/misc"
)

///////// Order fulfillment /////////
func submitOrder(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload order.Payload
		if err := misc.BindJSON(c, &payload); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body"))
			return
		}

		id := c.Param("id")
		if err := s.db.Update(func(tx *bolt.Tx) error {
			app := common.GetApplicationTx(tx, s.Cfg, id)
			if app == nil {
				return ErrApplicationNotFound
			}
			if err := order.Submit(app, &payload); err != nil {
				return err
			}
			return common.SaveApplicationTx(tx, s.Cfg, app)
		}); err != nil {
			if verrs, ok := err.(order.ValidationErrors); ok {
				c.JSON(400, gin.H{"code": 400, "error": verrs.Error(), "fields": verrs})
				return
			}
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		// best-effort address normalization for brand shipments; a lob
		// failure is logged and never blocks the submission
		if payload.Shipping != nil && s.gateway != nil {
			go s.verifyShipping(id)
		}

		c.JSON(200, misc.StatusOK(id))
	}
}

func (srv *Server) verifyShipping(appId string) {
	gw, ok := srv.gateway.(*lobGateway)
	if !ok {
		return
	}

	var app *common.Application
	srv.db.View(func(tx *bolt.Tx) error {
		app = common.GetApplicationTx(tx, srv.Cfg, appId)
		return nil
	})
	if app == nil || app.Order == nil || app.Order.Shipping == nil {
		return
	}

	if _, err := gw.client.VerifyAddress(toLobAddr(app.Order.Shipping)); err != nil {
		log.Println("address verification failed for application", appId, err)
	}
}

func approveOrder(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var load verdictLoad
		misc.BindJSON(c, &load)

		var (
			id = c.Param("id")
			u  = auth.GetCtxUser(c)
		)
		if err := s.db.Update(func(tx *bolt.Tx) error {
			app := common.GetApplicationTx(tx, s.Cfg, id)
			if app == nil {
				return ErrApplicationNotFound
			}

			wasApproved := app.Status == common.StatusOrderApproved
			actor := lifecycle.Actor{Id: u.Id, Role: string(u.Type)}
			if err := lifecycle.ApproveOrder(app, actor, load.Comment); err != nil {
				return err
			}
			if !wasApproved && app.PaymentId == "" {
				if _, err := createPaymentTx(tx, s, app); err != nil {
					return err
				}
			}
			return common.SaveApplicationTx(tx, s.Cfg, app)
		}); err != nil {
			c.JSON(400, misc.StatusErr(err.Error()))
			return
		}

		c.JSON(200, misc.StatusOK(id))
	}
}

func rejectOrder(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var load verdictLoad
		misc.BindJSON(c, &load)

		var (
			id = c.Param("id")
			u  = auth.GetCtxUser(c)
		)
		if err := s.db.Update(func(tx *bolt.Tx) error {
			app := common.GetApplicationTx(tx, s.Cfg, id)
			if app == nil {
				return ErrApplicationNotFound
			}

			actor := lifecycle.Actor{Id: u.Id, Role: string(u.Type)}
			if err := lifecycle.RejectOrder(app, actor, load.Comment, load.Reason); err != nil {
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
