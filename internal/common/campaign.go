package common

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/boltdb/bolt"

	"github.com/onetoseven/marketplace/config"
	"github.com/onetoseven/marketplace/misc"
)

// Fulfillment methods
const (
	FulfillmentInfluencer = "influencer" // influencer places and tracks the order
	FulfillmentBrand      = "brand"      // brand ships product directly
)

var ErrInvalidPolicy = errors.New("invalid campaign policy")

// Payout release policies
const (
	RefundOnDelivery     = "refund_on_delivery"
	PayAfterDeliverables = "pay_after_deliverables"
	AdvanceThenRemaining = "advance_then_remaining"
)

// Policy is the per-campaign configuration that governs how orders are
// fulfilled and how payouts are released. Applications copy it at approval
// time so later campaign edits never change in-flight work.
type Policy struct {
	Budget          float64  `json:"budget"`
	Fulfillment     string   `json:"fulfillment"`
	PayoutRelease   string   `json:"payoutRelease"`
	OrderFormFields []string `json:"orderFormFields,omitempty"`
}

func (p *Policy) Clone() *Policy {
	cp := *p
	cp.OrderFormFields = append([]string(nil), p.OrderFormFields...)
	return &cp
}

func (p *Policy) IsValid() bool {
	if p.Budget <= 0 {
		return false
	}
	switch p.Fulfillment {
	case FulfillmentInfluencer, FulfillmentBrand:
	default:
		return false
	}
	switch p.PayoutRelease {
	case RefundOnDelivery, PayAfterDeliverables, AdvanceThenRemaining:
	default:
		return false
	}
	return true
}

type Campaign struct {
	Id   string `json:"id"` // Should not be passed for putCampaign
	Name string `json:"name"`

	AdminId string `json:"adminId"`

	Status bool `json:"status"`

	Policy Policy `json:"policy"`

	// Set once any application snapshots this campaign's policy; a locked
	// campaign rejects further policy edits.
	Locked bool `json:"locked,omitempty"`

	Description string `json:"description,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

func (cmp *Campaign) IsValid() bool {
	return cmp.Status && cmp.Policy.IsValid()
}

// Campaigns is an in-memory mirror of the campaign bucket so deal listings
// don't hit bolt on every request.
type Campaigns struct {
	mux   sync.RWMutex
	store map[string]*Campaign
}

func NewCampaigns() *Campaigns {
	return &Campaigns{
		store: make(map[string]*Campaign),
	}
}

func (p *Campaigns) Set(db *bolt.DB, cfg *config.Config) {
	cmps := GetAllActiveCampaigns(db, cfg)
	p.mux.Lock()
	p.store = cmps
	p.mux.Unlock()
}

func (p *Campaigns) SetCampaign(id string, cmp *Campaign) {
	p.mux.Lock()
	p.store[id] = cmp
	p.mux.Unlock()
}

func (p *Campaigns) GetStore() map[string]*Campaign {
	store := make(map[string]*Campaign)
	p.mux.RLock()
	for cId, cmp := range p.store {
		store[cId] = cmp
	}
	p.mux.RUnlock()
	return store
}

func (p *Campaigns) Get(id string) (*Campaign, bool) {
	p.mux.RLock()
	val, ok := p.store[id]
	p.mux.RUnlock()
	return val, ok
}

func GetAllActiveCampaigns(db *bolt.DB, cfg *config.Config) map[string]*Campaign {
	campaignList := make(map[string]*Campaign)

	if err := db.View(func(tx *bolt.Tx) error {
		tx.Bucket([]byte(cfg.Bucket.Campaign)).ForEach(func(k, v []byte) (err error) {
			cmp := &Campaign{}
			if err := json.Unmarshal(v, cmp); err != nil {
				log.Println("error when unmarshalling campaign", string(v))
				return nil
			}
			if cmp.IsValid() {
				campaignList[cmp.Id] = cmp
			}

			return
		})
		return nil
	}); err != nil {
		log.Println("Err getting all active campaigns", err)
	}
	return campaignList
}

func GetCampaign(cid string, db *bolt.DB, cfg *config.Config) *Campaign {
	var (
		v   []byte
		cmp Campaign
	)

	if err := db.View(func(tx *bolt.Tx) error {
		v = tx.Bucket([]byte(cfg.Bucket.Campaign)).Get([]byte(cid))
		return nil
	}); err != nil {
		return nil
	}

	if err := json.Unmarshal(v, &cmp); err != nil {
		return nil
	}

	return &cmp
}

func GetCampaignTx(tx *bolt.Tx, cfg *config.Config, cid string) *Campaign {
	var cmp Campaign
	if misc.GetTxJson(tx, cfg.Bucket.Campaign, cid, &cmp) == nil && cmp.Id != "" {
		return &cmp
	}
	return nil
}
