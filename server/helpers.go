package server

import (
	"errors"
	"time"

	"github.com/boltdb/bolt"

	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/misc"
	"github.com/onetoseven/marketplace/platforms/lob"
)

var (
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrCampaignInactive    = errors.New("campaign is not active")
	ErrCampaignLocked      = errors.New("campaign policy is locked by in-flight applications")
	ErrDuplicateApply      = errors.New("an application for this campaign already exists")
)

func saveCampaign(tx *bolt.Tx, cmp *common.Campaign, srv *Server) error {
	if err := misc.PutTxJson(tx, srv.Cfg.Bucket.Campaign, cmp.Id, cmp); err != nil {
		return err
	}
	// keep the in-memory mirror in step with the bucket
	srv.Campaigns.SetCampaign(cmp.Id, cmp)
	return nil
}

// lockCampaignTx marks the campaign's policy as frozen the first time an
// application snapshots it.
func lockCampaignTx(tx *bolt.Tx, srv *Server, cid string) error {
	cmp := common.GetCampaignTx(tx, srv.Cfg, cid)
	if cmp == nil {
		return ErrCampaignNotFound
	}
	if cmp.Locked {
		return nil
	}
	cmp.Locked = true
	return saveCampaign(tx, cmp, srv)
}

// createPaymentTx builds the payment record for an approved order. The
// amount comes from the order-declared amount for influencer-fulfilled
// campaigns and from the campaign budget otherwise.
func createPaymentTx(tx *bolt.Tx, srv *Server, app *common.Application) (*common.Payment, error) {
	amount := app.Policy.Budget
	if app.Policy.Fulfillment == common.FulfillmentInfluencer && app.Order != nil && app.Order.Amount > 0 {
		amount = app.Order.Amount
	}

	id, err := misc.GetNextIndex(tx, srv.Cfg.Bucket.Payment)
	if err != nil {
		return nil, err
	}

	p := &common.Payment{
		Id:            id,
		ApplicationId: app.Id,
		CampaignId:    app.CampaignId,
		InfluencerId:  app.InfluencerId,
		Amount:        amount,
		Status:        common.PaymentPending,
		PayoutRelease: app.Policy.PayoutRelease,
		CreatedAt:     time.Now().Unix(),
	}
	if err := common.SavePaymentTx(tx, srv.Cfg, p); err != nil {
		return nil, err
	}

	app.PaymentId = p.Id
	return p, nil
}

type lobGateway struct {
	client *lob.Client
}

func (g *lobGateway) Payout(name string, addr *common.ShippingAddress, amount float64) (string, error) {
	check, err := g.client.CreateCheck(name, toLobAddr(addr), amount)
	if err != nil {
		return "", err
	}
	return check.Id, nil
}

func toLobAddr(addr *common.ShippingAddress) *lob.AddressLoad {
	if addr == nil {
		return nil
	}
	return &lob.AddressLoad{
		AddressOne: addr.Line1,
		AddressTwo: addr.Line2,
		City:       addr.City,
		State:      addr.State,
		Country:    addr.Country,
		Zip:        addr.PostalCode,
	}
}
