// Package payout computes and authorizes releases against submitted
// evidence and the campaign's payout-release policy. A payment moves
// pending -> approved -> paid and never backwards; a paid payment is
// immutable.
package payout

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/onetoseven/marketplace/internal/common"
)

var (
	ErrAlreadyPaid          = errors.New("payment already paid")
	ErrAwaitingDeliverables = errors.New("awaiting deliverables")
	ErrNoOrderProofs        = errors.New("no order proofs submitted")
	ErrBadAmount            = errors.New("partial amount must be positive and within the payment amount")
	ErrWrongPolicy          = errors.New("release not allowed under this payout policy")
	ErrNoPartial            = errors.New("no partial approval to pay")
	ErrPartialPaid          = errors.New("partial approval already paid")
)

// Gateway is the external ledger/payment collaborator. Payout returns a
// stable reference for the transfer; the engine stores the reference and
// nothing else about the transfer.
type Gateway interface {
	Payout(name string, addr *common.ShippingAddress, amount float64) (ref string, err error)
}

// SubmitOrderProofs attaches the first evidence bundle. Proofs cannot be
// replaced once the payment has fully released.
func SubmitOrderProofs(p *common.Payment, proof *common.ProofBundle) error {
	if p.Status == common.PaymentPaid {
		return ErrAlreadyPaid
	}
	stamp(proof)
	p.OrderProofs = proof
	return nil
}

// SubmitDeliverablesProof attaches the post-content evidence bundle. Under
// refund_on_delivery the order proofs must land first; the partial release
// is keyed off them.
func SubmitDeliverablesProof(p *common.Payment, proof *common.ProofBundle) error {
	if p.Status == common.PaymentPaid {
		return ErrAlreadyPaid
	}
	if p.PayoutRelease == common.RefundOnDelivery && p.OrderProofs == nil {
		return ErrNoOrderProofs
	}
	stamp(proof)
	p.DeliverablesProof = proof
	return nil
}

// ApprovePartial authorizes an admin-chosen pre-delivery amount under
// refund_on_delivery. Approval is not payment; MarkPartialPaid moves the
// money.
func ApprovePartial(p *common.Payment, amount float64) error {
	if p.Status == common.PaymentPaid {
		return ErrAlreadyPaid
	}
	if p.PayoutRelease != common.RefundOnDelivery {
		return ErrWrongPolicy
	}
	// a paid partial is money out the door; replacing it would lose the
	// record and double-release against the same payment
	if p.Partial != nil && p.Partial.Paid {
		return ErrPartialPaid
	}
	if p.OrderProofs == nil {
		return ErrNoOrderProofs
	}
	if amount <= 0 || amount > p.Amount {
		return ErrBadAmount
	}

	p.Partial = &common.PartialApproval{
		Amount:     amount,
		ApprovedAt: time.Now().Unix(),
	}
	p.Status = common.PaymentApproved
	return nil
}

// MarkPartialPaid pays out the approved partial amount through the
// gateway. One-way; there is no built-in reversal.
func MarkPartialPaid(p *common.Payment, gw Gateway, name string, addr *common.ShippingAddress) error {
	if p.Status == common.PaymentPaid {
		return ErrAlreadyPaid
	}
	if p.Partial == nil {
		return ErrNoPartial
	}
	if p.Partial.Paid {
		return ErrPartialPaid
	}

	if gw != nil {
		ref, err := gw.Payout(name, addr, p.Partial.Amount)
		if err != nil {
			return err
		}
		p.Partial.GatewayRef = ref
	}
	p.Partial.Paid = true
	p.Partial.PaidAt = time.Now().Unix()
	return nil
}

// ApproveRemaining releases the balance left after the partial, only once
// the deliverables proof exists. The payment lands in paid.
func ApproveRemaining(p *common.Payment, gw Gateway, name string, addr *common.ShippingAddress) error {
	if p.Status == common.PaymentPaid {
		return ErrAlreadyPaid
	}
	if p.PayoutRelease != common.RefundOnDelivery {
		return ErrWrongPolicy
	}
	if p.DeliverablesProof == nil || p.DeliverablesProof.SubmittedAt == 0 {
		return ErrAwaitingDeliverables
	}

	if gw != nil {
		ref, err := gw.Payout(name, addr, p.Remaining())
		if err != nil {
			return err
		}
		p.GatewayRef = ref
	}
	p.Status = common.PaymentPaid
	p.PaidAt = time.Now().Unix()
	return nil
}

// MarkPaid releases the full amount under pay_after_deliverables and
// advance_then_remaining; rejected with "awaiting deliverables" until the
// deliverables proof lands.
func MarkPaid(p *common.Payment, gw Gateway, name string, addr *common.ShippingAddress) error {
	if p.Status == common.PaymentPaid {
		return ErrAlreadyPaid
	}
	if p.PayoutRelease == common.RefundOnDelivery {
		return ErrWrongPolicy
	}
	if p.DeliverablesProof == nil || p.DeliverablesProof.SubmittedAt == 0 {
		return ErrAwaitingDeliverables
	}

	if gw != nil {
		ref, err := gw.Payout(name, addr, p.Amount)
		if err != nil {
			return err
		}
		p.GatewayRef = ref
	}
	p.Status = common.PaymentPaid
	p.PaidAt = time.Now().Unix()
	return nil
}

func stamp(proof *common.ProofBundle) {
	if proof.Id == "" {
		proof.Id = uuid.NewString()
	}
	if proof.SubmittedAt == 0 {
		proof.SubmittedAt = time.Now().Unix()
	}
}
