// Package lifecycle drives an application's status through review, order
// verification and completion. Application-stage and order-stage verdicts
// are separate actions on purpose; a verdict attempted from the wrong
// status is a precondition failure and leaves the record untouched.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/onetoseven/marketplace/internal/common"
)

var (
	ErrNoPolicy = errors.New("application has no policy snapshot")
)

// PreconditionError is returned when a transition is attempted from a
// status that doesn't allow it.
type PreconditionError struct {
	Action string
	Status string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot %s an application in status %q", e.Action, e.Status)
}

func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// Actor identifies who performed a transition, for the comment log.
type Actor struct {
	Id   string
	Role string
}

// IsReviewed reports whether the application-stage verdict is in; reviewed
// applications no longer accept application-stage approve/reject.
func IsReviewed(app *common.Application) bool {
	switch app.Status {
	case common.StatusApproved, common.StatusRejected,
		common.StatusOrderApproved, common.StatusOrderRejected,
		common.StatusCompleted:
		return true
	}
	return false
}

// applicationApproved reports whether the application-stage verdict was an
// approval, regardless of how far the order sub-flow has moved since.
func applicationApproved(app *common.Application) bool {
	switch app.Status {
	case common.StatusApproved, common.StatusOrderSubmitted,
		common.StatusOrderApproved, common.StatusOrderRejected,
		common.StatusCompleted:
		return true
	}
	return false
}

// StartReview moves a fresh application into the reviewing state so other
// admins can see it's being looked at. No-op if review already started.
func StartReview(app *common.Application) error {
	switch app.Status {
	case common.StatusApplied:
		app.Status = common.StatusReviewing
		app.UpdatedAt = time.Now().Unix()
		return nil
	case common.StatusReviewing:
		return nil
	}
	return &PreconditionError{Action: "start review on", Status: app.Status}
}

// ApproveApplication records the application-stage approval and snapshots
// the campaign policy onto the application. Re-approving an application
// whose verdict is already in is a no-op (already=true) with no second
// audit entry.
func ApproveApplication(app *common.Application, pol *common.Policy, by Actor, comment string) (already bool, err error) {
	if applicationApproved(app) {
		return true, nil
	}
	if IsReviewed(app) {
		return false, &PreconditionError{Action: "approve", Status: app.Status}
	}

	switch app.Status {
	case common.StatusApplied, common.StatusReviewing:
	default:
		return false, &PreconditionError{Action: "approve", Status: app.Status}
	}

	now := time.Now().Unix()
	app.Status = common.StatusApproved
	if app.ApprovedAt == 0 {
		app.ApprovedAt = now
	}
	app.Policy = pol.Clone()
	if comment != "" {
		app.AdminComment = comment
	}
	app.AddComment(common.StageApplication, by.Id, by.Role, comment, now)
	app.UpdatedAt = now
	return false, nil
}

// RejectApplication records the application-stage rejection and opens the
// resubmission/appeal path. Re-rejecting is a no-op, mirroring approve.
func RejectApplication(app *common.Application, by Actor, comment, reason string) (already bool, err error) {
	if app.Status == common.StatusRejected {
		return true, nil
	}
	if IsReviewed(app) {
		return false, &PreconditionError{Action: "reject", Status: app.Status}
	}

	switch app.Status {
	case common.StatusApplied, common.StatusReviewing:
	default:
		return false, &PreconditionError{Action: "reject", Status: app.Status}
	}

	now := time.Now().Unix()
	app.Status = common.StatusRejected
	app.RejectionReason = reason
	if comment != "" {
		app.AdminComment = comment
	}
	app.AddComment(common.StageApplication, by.Id, by.Role, comment, now)
	issueFormName(app)
	app.UpdatedAt = now
	return false, nil
}

// ApproveOrder records the order-stage approval of submitted evidence.
func ApproveOrder(app *common.Application, by Actor, comment string) error {
	if app.Status == common.StatusOrderApproved {
		return nil // already reviewed
	}
	if app.Status != common.StatusOrderSubmitted {
		return &PreconditionError{Action: "approve the order of", Status: app.Status}
	}

	now := time.Now().Unix()
	app.Status = common.StatusOrderApproved
	app.AddComment(common.StageOrder, by.Id, by.Role, comment, now)
	app.UpdatedAt = now
	return nil
}

// RejectOrder sends the order form back; a fresh resubmission form name is
// issued every time so the next submission is traceable to this round.
func RejectOrder(app *common.Application, by Actor, comment, reason string) error {
	if app.Status == common.StatusOrderRejected {
		return nil
	}
	if app.Status != common.StatusOrderSubmitted {
		return &PreconditionError{Action: "reject the order of", Status: app.Status}
	}

	now := time.Now().Unix()
	app.Status = common.StatusOrderRejected
	app.RejectionReason = reason
	app.AddComment(common.StageOrder, by.Id, by.Role, comment, now)
	issueFormName(app)
	app.UpdatedAt = now
	return nil
}

// Complete marks the application done once its payout has fully released.
func Complete(app *common.Application) error {
	if app.Status == common.StatusCompleted {
		return nil
	}
	if app.Status != common.StatusOrderApproved {
		return &PreconditionError{Action: "complete", Status: app.Status}
	}
	app.Status = common.StatusCompleted
	app.UpdatedAt = time.Now().Unix()
	return nil
}

func issueFormName(app *common.Application) {
	app.Appeal.Rounds++
	app.Appeal.FormName = fmt.Sprintf("resubmit-%s-r%d", app.Id, app.Appeal.Rounds)
}
