package server

import (
	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/onetoseven/marketplace/config"
	"github.com/onetoseven/marketplace/internal/auth"
	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/internal/payout"
	"github.com/onetoseven/marketplace/misc"
	"github.com/onetoseven/marketplace/platforms/lob"
)

type Server struct {
	Cfg *config.Config

	r  *gin.Engine
	db *bolt.DB

	auth *auth.Auth

	Campaigns *common.Campaigns

	gateway payout.Gateway
}

func New(cfg *config.Config, r *gin.Engine) (*Server, error) {
	db := misc.OpenDB(cfg.DBPath, cfg.DBName)

	srv := &Server{
		Cfg:       cfg,
		r:         r,
		db:        db,
		auth:      auth.New(db, cfg),
		Campaigns: common.NewCampaigns(),
	}

	if cfg.Lob.Key != "" {
		srv.gateway = &lobGateway{
			client: lob.New(cfg.Lob.Key, cfg.Lob.Addr, cfg.Lob.BankAcct, cfg.Sandbox),
		}
	}

	if err := srv.initializeDBs(cfg); err != nil {
		return nil, err
	}

	srv.Campaigns.Set(db, cfg)

	go srv.auth.PurgeInvalidTokens()

	srv.initializeRoutes(r)

	return srv, nil
}

func (srv *Server) initializeDBs(cfg *config.Config) error {
	if err := misc.CreateBuckets(srv.db, cfg.AllBuckets()); err != nil {
		return err
	}

	return srv.db.Update(func(tx *bolt.Tx) error {
		// ids are 1-based; user 1 is the built-in superadmin
		for _, b := range []string{
			cfg.Bucket.User, cfg.Bucket.Campaign,
			cfg.Bucket.Application, cfg.Bucket.Payment,
		} {
			if err := misc.InitIndex(tx, b, 1); err != nil {
				return err
			}
		}
		if u := srv.auth.GetUserTx(tx, auth.AdminUserId); u != nil {
			return nil
		}
		admin := &auth.User{
			Name:  "Marketplace Admin",
			Email: "admin@onetoseven.media",
			Type:  auth.SuperAdminScope,
		}
		return srv.auth.CreateUserTx(tx, admin, "herebedragons")
	})
}

func (srv *Server) initializeRoutes(r *gin.Engine) {
	verify := srv.auth.VerifyUser

	adminRead := srv.auth.CheckScopes(auth.ScopeMap{
		auth.AdminScope: {Get: true},
	})
	influencerWrite := srv.auth.CheckScopes(auth.ScopeMap{
		auth.InfluencerScope: {Get: true, Put: true, Post: true},
	})
	anyRead := srv.auth.CheckScopes(auth.ScopeMap{
		auth.AdminScope:      {Get: true},
		auth.InfluencerScope: {Get: true},
	})

	r.POST("/api/v1/signIn", srv.auth.SignInHandler)
	r.POST("/api/v1/signUp", srv.auth.TrySetUser, srv.auth.SignupHandler)
	r.POST("/api/v1/signOut", srv.auth.SignOutHandler)

	v1 := r.Group("/api/v1", verify)

	// campaigns
	v1.POST("/campaign", adminWrite(srv), putCampaign(srv))
	v1.GET("/campaign/:id", anyRead, getCampaign(srv))
	v1.PUT("/campaign/:id", adminWrite(srv), updateCampaign(srv))
	v1.GET("/getCampaigns", anyRead, getAllCampaigns(srv))

	// application lifecycle
	v1.POST("/apply/:campaignId", influencerWrite, applyToCampaign(srv))
	v1.GET("/application/:id", anyRead, srv.ownApplication, getApplication(srv))
	v1.GET("/getApplicationsByCampaign/:campaignId", adminRead, getApplicationsByCampaign(srv))
	v1.GET("/getApplicationsByInfluencer/:influencerId", anyRead, getApplicationsByInfluencer(srv))
	v1.PUT("/application/:id/review", srv.auth.CheckPerm(auth.PermReviewApplications), startReview(srv))
	v1.PUT("/application/:id/approve", srv.auth.CheckPerm(auth.PermReviewApplications), approveApplication(srv))
	v1.PUT("/application/:id/reject", srv.auth.CheckPerm(auth.PermReviewApplications), rejectApplication(srv))

	// order fulfillment
	v1.POST("/application/:id/order", influencerWrite, srv.ownApplication, submitOrder(srv))
	v1.PUT("/application/:id/order/approve", srv.auth.CheckPerm(auth.PermReviewOrders), approveOrder(srv))
	v1.PUT("/application/:id/order/reject", srv.auth.CheckPerm(auth.PermReviewOrders), rejectOrder(srv))
	v1.POST("/application/:id/screenshot", influencerWrite, srv.ownApplication, uploadScreenshot(srv))

	// payouts
	v1.GET("/payment/:id", anyRead, getPayment(srv))
	v1.POST("/payment/:id/orderProofs", influencerWrite, submitOrderProofs(srv))
	v1.POST("/payment/:id/deliverablesProof", influencerWrite, submitDeliverablesProof(srv))
	v1.PUT("/payment/:id/approvePartial", srv.auth.CheckPerm(auth.PermApprovePayouts), approvePartial(srv))
	v1.PUT("/payment/:id/markPartialPaid", srv.auth.CheckPerm(auth.PermApprovePayouts), markPartialPaid(srv))
	v1.PUT("/payment/:id/approveRemaining", srv.auth.CheckPerm(auth.PermApprovePayouts), approveRemaining(srv))
	v1.PUT("/payment/:id/markPaid", srv.auth.CheckPerm(auth.PermApprovePayouts), markPaid(srv))

	// appeals
	v1.GET("/application/:id/appealEligibility", anyRead, srv.ownApplication, appealEligibility(srv))
	v1.POST("/application/:id/appeal", influencerWrite, srv.ownApplication, submitAppeal(srv))

	// export
	v1.GET("/exportApplications/:campaignId", adminRead, exportApplications(srv))
}

// adminWrite gates campaign mutations to admins and superadmins.
func adminWrite(srv *Server) gin.HandlerFunc {
	return srv.auth.CheckScopes(auth.ScopeMap{
		auth.AdminScope: {Get: true, Put: true, Post: true, Delete: true},
	})
}

// ownApplication lets admins through and holds influencers to their own
// applications.
func (srv *Server) ownApplication(c *gin.Context) {
	u := auth.GetCtxUser(c)
	if u == nil {
		misc.AbortWithErr(c, 401, auth.ErrUnauthorized)
		return
	}
	if u.Type.IsOneOf(auth.AdminScope, auth.SuperAdminScope) {
		return
	}

	var app *common.Application
	srv.db.View(func(tx *bolt.Tx) error {
		app = common.GetApplicationTx(tx, srv.Cfg, c.Param("id"))
		return nil
	})
	if app == nil || app.InfluencerId != u.Id {
		misc.AbortWithErr(c, 401, auth.ErrUnauthorized)
	}
}

func (srv *Server) Run() error {
	return srv.r.Run(srv.Cfg.Host + ":" + srv.Cfg.Port)
}

func (srv *Server) Close() error {
	return srv.db.Close()
}
