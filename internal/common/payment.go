package common

import (
	"github.com/boltdb/bolt"

	"github.com/onetoseven/marketplace/config"
	"github.com/onetoseven/marketplace/misc"
)

// Payment statuses; the progression is strictly
// pending -> approved -> paid and never moves backwards.
const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentPaid     = "paid"
)

// ProofBundle is one evidence drop from the influencer: order proofs after
// placing the order, deliverables proof after the content is live.
type ProofBundle struct {
	Id          string `json:"id"`
	SubmittedAt int64  `json:"submittedAt"`

	EngagementRate float64  `json:"engagementRate,omitempty"`
	Impressions    int64    `json:"impressions,omitempty"`
	Links          []string `json:"links,omitempty"`
	Screenshots    []string `json:"screenshots,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// PartialApproval is the admin-chosen pre-delivery release under the
// refund_on_delivery policy. Approval and payment are decoupled on purpose.
type PartialApproval struct {
	Amount     float64 `json:"amount"`
	Paid       bool    `json:"paid"`
	ApprovedAt int64   `json:"approvedAt,omitempty"`
	PaidAt     int64   `json:"paidAt,omitempty"`
	GatewayRef string  `json:"gatewayRef,omitempty"`
}

type Payment struct {
	Id            string `json:"id"`
	ApplicationId string `json:"applicationId"`
	CampaignId    string `json:"campaignId"`
	InfluencerId  string `json:"influencerId"`

	// Resolved from the campaign budget, or the order-declared amount for
	// influencer-fulfilled campaigns once the order form is approved.
	Amount float64 `json:"amount"`

	Status string `json:"status"`

	// Frozen from the policy snapshot at approval
	PayoutRelease string `json:"payoutRelease"`

	Partial *PartialApproval `json:"partialApproval,omitempty"`

	OrderProofs       *ProofBundle `json:"orderProofs,omitempty"`
	DeliverablesProof *ProofBundle `json:"deliverablesProof,omitempty"`

	GatewayRef string `json:"gatewayRef,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty"`
	PaidAt    int64 `json:"paidAt,omitempty"`
}

// Released reports whether any money has actually gone out the door.
func (p *Payment) Released() bool {
	if p.Status == PaymentPaid {
		return true
	}
	return p.Partial != nil && p.Partial.Paid
}

// Remaining is the balance left after a partial approval.
func (p *Payment) Remaining() float64 {
	if p.Partial == nil {
		return p.Amount
	}
	return p.Amount - p.Partial.Amount
}

func GetPaymentTx(tx *bolt.Tx, cfg *config.Config, id string) *Payment {
	var p Payment
	if misc.GetTxJson(tx, cfg.Bucket.Payment, id, &p) == nil && p.Id != "" {
		return &p
	}
	return nil
}

func SavePaymentTx(tx *bolt.Tx, cfg *config.Config, p *Payment) error {
	return misc.PutTxJson(tx, cfg.Bucket.Payment, p.Id, p)
}
