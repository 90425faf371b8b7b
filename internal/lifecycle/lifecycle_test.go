package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onetoseven/marketplace/internal/common"
)

var admin = Actor{Id: "1", Role: "admin"}

func testPolicy() *common.Policy {
	return &common.Policy{
		Budget:        1000,
		Fulfillment:   common.FulfillmentInfluencer,
		PayoutRelease: common.PayAfterDeliverables,
	}
}

func newApp() *common.Application {
	return &common.Application{
		Id:           "10",
		CampaignId:   "2",
		InfluencerId: "5",
		Status:       common.StatusApplied,
	}
}

func TestApproveApplication(t *testing.T) {
	app := newApp()

	already, err := ApproveApplication(app, testPolicy(), admin, "looks good")
	require.NoError(t, err)
	require.False(t, already)
	require.Equal(t, common.StatusApproved, app.Status)
	require.NotZero(t, app.ApprovedAt)
	require.NotNil(t, app.Policy)
	require.Len(t, app.Comments, 1)

	// second approve is a no-op with no second audit entry
	already, err = ApproveApplication(app, testPolicy(), admin, "again")
	require.NoError(t, err)
	require.True(t, already)
	require.Len(t, app.Comments, 1)
}

func TestApproveAfterRejectFails(t *testing.T) {
	app := newApp()

	_, err := RejectApplication(app, admin, "", "not a fit")
	require.NoError(t, err)
	require.Equal(t, common.StatusRejected, app.Status)
	require.Equal(t, "not a fit", app.RejectionReason)
	require.NotEmpty(t, app.Appeal.FormName)

	_, err = ApproveApplication(app, testPolicy(), admin, "")
	require.Error(t, err)
	require.True(t, IsPrecondition(err))
	require.Equal(t, common.StatusRejected, app.Status, "failed transition must not move status")
}

func TestRejectIdempotent(t *testing.T) {
	app := newApp()

	_, err := RejectApplication(app, admin, "nope", "budget")
	require.NoError(t, err)
	entries := len(app.Comments)

	already, err := RejectApplication(app, admin, "nope again", "budget")
	require.NoError(t, err)
	require.True(t, already)
	require.Len(t, app.Comments, entries)
}

func TestStartReview(t *testing.T) {
	app := newApp()
	require.NoError(t, StartReview(app))
	require.Equal(t, common.StatusReviewing, app.Status)

	// idempotent
	require.NoError(t, StartReview(app))

	_, err := ApproveApplication(app, testPolicy(), admin, "")
	require.NoError(t, err)
	require.Error(t, StartReview(app))
}

func TestOrderReviewGating(t *testing.T) {
	app := newApp()

	// no order exists yet; order-stage verdicts must fail
	err := ApproveOrder(app, admin, "")
	require.True(t, IsPrecondition(err))
	err = RejectOrder(app, admin, "", "")
	require.True(t, IsPrecondition(err))

	_, err = ApproveApplication(app, testPolicy(), admin, "")
	require.NoError(t, err)
	app.Status = common.StatusOrderSubmitted // tracker moves it here

	require.NoError(t, ApproveOrder(app, admin, "verified"))
	require.Equal(t, common.StatusOrderApproved, app.Status)

	// re-approving the order is a no-op
	require.NoError(t, ApproveOrder(app, admin, "verified"))
}

func TestRejectOrderIssuesFreshFormName(t *testing.T) {
	app := newApp()
	_, err := ApproveApplication(app, testPolicy(), admin, "")
	require.NoError(t, err)
	app.Status = common.StatusOrderSubmitted

	require.NoError(t, RejectOrder(app, admin, "", "wrong tracking id"))
	require.Equal(t, common.StatusOrderRejected, app.Status)
	first := app.Appeal.FormName
	require.NotEmpty(t, first)

	app.Status = common.StatusOrderSubmitted
	require.NoError(t, RejectOrder(app, admin, "", "still wrong"))
	require.NotEqual(t, first, app.Appeal.FormName)
	require.Equal(t, 2, app.Appeal.Rounds)
}

func TestComplete(t *testing.T) {
	app := newApp()
	require.True(t, IsPrecondition(Complete(app)))

	app.Status = common.StatusOrderApproved
	require.NoError(t, Complete(app))
	require.Equal(t, common.StatusCompleted, app.Status)

	// idempotent
	require.NoError(t, Complete(app))
}

func TestIsReviewed(t *testing.T) {
	app := newApp()
	require.False(t, IsReviewed(app))

	for _, st := range []string{
		common.StatusApproved, common.StatusRejected,
		common.StatusOrderApproved, common.StatusOrderRejected,
		common.StatusCompleted,
	} {
		app.Status = st
		require.True(t, IsReviewed(app), st)
	}

	app.Status = common.StatusOrderSubmitted
	require.False(t, IsReviewed(app))
}
