// Package order validates and stores order-completion evidence, branching
// on the fulfillment method frozen into the application's policy snapshot.
package order

import (
	"sort"
	"strings"
	"time"

	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/internal/lifecycle"
)

// ValidationErrors maps field name to what is wrong with it. It is
// recoverable by the caller; nothing is stored when it is returned.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f + ": " + v[f])
	}
	return b.String()
}

// Payload is the influencer's order submission. Exactly one shape is used,
// matching the campaign's fulfillment method.
type Payload struct {
	OrderId       string            `json:"orderId,omitempty"`
	Amount        float64           `json:"amount,omitempty"`
	ScreenshotUrl string            `json:"screenshotUrl,omitempty"`
	OrderData     map[string]string `json:"orderData,omitempty"`

	Shipping *common.ShippingAddress `json:"shippingAddress,omitempty"`

	// Set by the upload layer when a screenshot upload was started but no
	// URL came back; surfaced as its own validation error, distinct from a
	// missing field.
	ScreenshotFailed bool `json:"screenshotFailed,omitempty"`
}

// Validate checks the payload against the governing policy and returns
// field-level errors. A nil map means the payload is acceptable.
func Validate(pol *common.Policy, p *Payload) ValidationErrors {
	errs := ValidationErrors{}

	switch pol.Fulfillment {
	case common.FulfillmentBrand:
		if p.Shipping == nil {
			errs["shippingAddress"] = "required"
			return errs
		}
		if strings.TrimSpace(p.Shipping.Line1) == "" {
			errs["shippingAddress.line1"] = "required"
		}
		if strings.TrimSpace(p.Shipping.PostalCode) == "" {
			errs["shippingAddress.postalCode"] = "required"
		}
	case common.FulfillmentInfluencer:
		if strings.TrimSpace(p.OrderId) == "" {
			errs["orderId"] = "required"
		}
		if p.Amount <= 0 {
			errs["amount"] = "must be a positive number"
		}
		for _, f := range pol.OrderFormFields {
			if strings.TrimSpace(p.OrderData[f]) == "" {
				errs[f] = "required"
			}
		}
		if p.ScreenshotFailed && p.ScreenshotUrl == "" {
			errs["screenshot"] = "upload did not complete"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates the payload and attaches it to the application, moving
// it into order_submitted. Allowed from approved (first submission) and
// order_form_rejected (resubmission); resubmissions are stamped with the
// form name issued by the rejection they answer.
func Submit(app *common.Application, p *Payload) error {
	if app.Policy == nil {
		return lifecycle.ErrNoPolicy
	}

	switch app.Status {
	case common.StatusApproved, common.StatusOrderRejected:
	default:
		return &lifecycle.PreconditionError{Action: "submit an order for", Status: app.Status}
	}

	if errs := Validate(app.Policy, p); errs != nil {
		return errs
	}

	rec := &common.OrderRecord{
		Fulfillment: app.Policy.Fulfillment,
		SubmittedAt: time.Now().Unix(),
	}
	switch app.Policy.Fulfillment {
	case common.FulfillmentInfluencer:
		rec.OrderId = strings.TrimSpace(p.OrderId)
		rec.Amount = p.Amount
		rec.ScreenshotUrl = p.ScreenshotUrl
		rec.OrderData = p.OrderData
	case common.FulfillmentBrand:
		sh := *p.Shipping
		rec.Shipping = &sh
	}

	if app.Status == common.StatusOrderRejected && app.Appeal.FormName != "" {
		rec.FormName = app.Appeal.FormName
	}

	app.Order = rec
	app.Status = common.StatusOrderSubmitted
	app.UpdatedAt = rec.SubmittedAt
	return nil
}
