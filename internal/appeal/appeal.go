// Package appeal governs the one-shot escalation path after a rejection.
// The order-form resubmission loop stays open after every order rejection;
// the appeal slot itself never resets once used.
package appeal

import (
	"errors"
	"strings"
	"time"

	"github.com/onetoseven/marketplace/internal/common"
)

var (
	ErrAlreadySubmitted = errors.New("an appeal was already submitted for this application")
	ErrEmptyAppeal      = errors.New("an appeal needs a comment or at least one file")
	ErrNotEligible      = errors.New("application is not eligible for an appeal")
)

// Eligible reports whether the appeal button should surface at all:
// either money has released and no appeal was used, or a rejection left a
// resubmission form name behind.
func Eligible(app *common.Application, paymentReleased bool) bool {
	if app.Appeal.Submitted {
		return false
	}
	if paymentReleased {
		return true
	}
	rejected := app.Status == common.StatusRejected || app.Status == common.StatusOrderRejected
	return rejected && app.Appeal.FormName != ""
}

// Submit files the appeal. Requires a non-blank comment or at least one
// file, and burns the single appeal slot permanently. An application-stage
// rejection re-enters review; an order-stage rejection keeps its status,
// since the order form itself is resubmitted separately.
func Submit(app *common.Application, paymentReleased bool, comment string, files []string) error {
	if app.Appeal.Submitted {
		return ErrAlreadySubmitted
	}
	comment = strings.TrimSpace(comment)
	if comment == "" && len(files) == 0 {
		return ErrEmptyAppeal
	}
	if !Eligible(app, paymentReleased) {
		return ErrNotEligible
	}

	now := time.Now().Unix()
	app.Appeal.Submitted = true
	app.Appeal.Comment = comment
	app.Appeal.Files = files
	app.Appeal.SubmittedAt = now
	app.AddComment(common.StageAppeal, app.InfluencerId, "influencer", comment, now)

	if app.Status == common.StatusRejected {
		app.Status = common.StatusReviewing
	}
	app.UpdatedAt = now
	return nil
}
