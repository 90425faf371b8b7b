package server

import (
	"testing"

	"github.com/swayops/resty"

	"github.com/onetoseven/marketplace/internal/common"
	"github.com/onetoseven/marketplace/misc"
)

func TestAdminLogin(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	inf := getSignupInfluencer()
	adm := getSignupAdmin()

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signIn", Data: M{"email": AdminEmail, "pass": "wrong"}, ExpectedStatus: 400, ExpectedData: nil},

		// influencers self-serve; admins don't
		{Method: "POST", Path: "/signUp", Data: inf, ExpectedStatus: 200, ExpectedData: misc.StatusOK(inf.ExpID)},
		{Method: "POST", Path: "/signUp", Data: adm, ExpectedStatus: 401, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: misc.StatusOK("1")},
		{Method: "POST", Path: "/signUp", Data: adm, ExpectedStatus: 200, ExpectedData: misc.StatusOK(adm.ExpID)},

		{Method: "POST", Path: "/signOut", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/getCampaigns", Data: nil, ExpectedStatus: 401, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}
}

func TestCampaignCreation(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	inf := getSignupInfluencer()

	badPolicy := &common.Campaign{
		Name:   "no budget",
		Policy: common.Policy{Fulfillment: common.FulfillmentBrand, PayoutRelease: common.RefundOnDelivery},
	}
	cmp := &common.Campaign{
		Name:        "summer lipstick push",
		Description: "shade 04, reels only",
		Policy: common.Policy{
			Budget:        500,
			Fulfillment:   common.FulfillmentInfluencer,
			PayoutRelease: common.PayAfterDeliverables,
		},
	}

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signUp", Data: inf, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/campaign", Data: badPolicy, ExpectedStatus: 400, ExpectedData: nil},
		{Method: "POST", Path: "/campaign", Data: cmp, ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	var st misc.Status
	r := rst.DoTesting(t, "POST", "/campaign", cmp, &st)
	if r.Status != 200 {
		t.Fatal("Bad status code!")
	}
	cid := st.ID

	for _, tr := range [...]*resty.TestRequest{
		{Method: "GET", Path: "/campaign/" + cid, Data: nil, ExpectedStatus: 200, ExpectedData: M{"name": "summer lipstick push", "adminId": "1", "status": true}},
		{Method: "PUT", Path: "/campaign/" + cid, Data: M{"name": "fall lipstick push", "status": true}, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/campaign/" + cid, Data: nil, ExpectedStatus: 200, ExpectedData: M{"name": "fall lipstick push"}},

		// influencers can browse but never mutate
		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/campaign/" + cid, Data: nil, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/getCampaigns", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/campaign", Data: cmp, ExpectedStatus: 401, ExpectedData: nil},
		{Method: "PUT", Path: "/campaign/" + cid, Data: M{"name": "hijacked"}, ExpectedStatus: 401, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}
}

// createCampaign signs in as the superadmin, creates the campaign and
// leaves the client signed in as the superadmin.
func createCampaign(t *testing.T, rst *resty.Client, cmp *common.Campaign) string {
	t.Helper()

	var st misc.Status
	r := rst.DoTesting(t, "POST", "/signIn", adminReq, &st)
	if r.Status != 200 {
		t.Fatal("Bad status code!")
	}

	if r = rst.DoTesting(t, "POST", "/campaign", cmp, &st); r.Status != 200 {
		t.Fatal("Bad status code!")
	}
	return st.ID
}

func applyTo(t *testing.T, rst *resty.Client, cid, comment string) string {
	t.Helper()

	var st misc.Status
	r := rst.DoTesting(t, "POST", "/apply/"+cid, M{"comment": comment}, &st)
	if r.Status != 200 {
		t.Fatal("Bad status code!")
	}
	return st.ID
}

func fetchApp(t *testing.T, rst *resty.Client, id string) *common.Application {
	t.Helper()

	var app common.Application
	r := rst.DoTesting(t, "GET", "/application/"+id, nil, &app)
	if r.Status != 200 {
		t.Fatal("Bad status code!")
	}
	return &app
}

func fetchPayment(t *testing.T, rst *resty.Client, id string) *common.Payment {
	t.Helper()

	var p common.Payment
	r := rst.DoTesting(t, "GET", "/payment/"+id, nil, &p)
	if r.Status != 200 {
		t.Fatal("Bad status code!")
	}
	return &p
}

func TestApplicationReview(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	inf := getSignupInfluencer()
	reviewer := getSignupAdmin("applications:review")

	cid := createCampaign(t, rst, &common.Campaign{
		Name: "sneaker unboxing",
		Policy: common.Policy{
			Budget:        300,
			Fulfillment:   common.FulfillmentInfluencer,
			PayoutRelease: common.PayAfterDeliverables,
		},
	})

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signUp", Data: inf, ExpectedStatus: 200, ExpectedData: misc.StatusOK(inf.ExpID)},
		{Method: "POST", Path: "/signUp", Data: reviewer, ExpectedStatus: 200, ExpectedData: misc.StatusOK(reviewer.ExpID)},
		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	appId := applyTo(t, rst, cid, "been wearing these for years")

	for _, tr := range [...]*resty.TestRequest{
		// one application per influencer per campaign
		{Method: "POST", Path: "/apply/" + cid, Data: M{"comment": "again"}, ExpectedStatus: 400, ExpectedData: nil},

		// influencers can't review
		{Method: "PUT", Path: "/application/" + appId + "/approve", Data: nil, ExpectedStatus: 401, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: signInReq(reviewer), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/review", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "reviewing"}},

		{Method: "PUT", Path: "/application/" + appId + "/approve", Data: M{"comment": "solid fit"}, ExpectedStatus: 200, ExpectedData: misc.StatusOK(appId)},

		// second verdict is acknowledged, not re-applied
		{Method: "PUT", Path: "/application/" + appId + "/approve", Data: nil, ExpectedStatus: 200, ExpectedData: misc.StatusMsg(appId, "already reviewed")},
		{Method: "PUT", Path: "/application/" + appId + "/reject", Data: M{"reason": "changed my mind"}, ExpectedStatus: 400, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	app := fetchApp(t, rst, appId)
	if app.Status != common.StatusApproved {
		t.Fatal("expected an approved application, got", app.Status)
	}
	if app.Policy == nil || app.Policy.Budget != 300 {
		t.Fatal("expected a policy snapshot on approval")
	}
	if len(app.Comments) != 2 { // apply comment + approval comment
		t.Fatal("expected exactly 2 comment entries, got", len(app.Comments))
	}

	// the snapshot locks the campaign's policy; cosmetic edits still work
	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/campaign/" + cid, Data: nil, ExpectedStatus: 200, ExpectedData: M{"locked": true}},
		{Method: "PUT", Path: "/campaign/" + cid, Data: M{"name": "sneaker unboxing", "status": true, "policy": M{"budget": 9000.0, "fulfillment": "brand", "payoutRelease": "refund_on_delivery"}}, ExpectedStatus: 400, ExpectedData: nil},
		{Method: "PUT", Path: "/campaign/" + cid, Data: M{"name": "sneaker unboxing v2", "status": true}, ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}
}

func TestOrderResubmission(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	inf := getSignupInfluencer()

	cid := createCampaign(t, rst, &common.Campaign{
		Name: "serum coupon run",
		Policy: common.Policy{
			Budget:          400,
			Fulfillment:     common.FulfillmentInfluencer,
			PayoutRelease:   common.PayAfterDeliverables,
			OrderFormFields: []string{"couponCode"},
		},
	})

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signUp", Data: inf, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	appId := applyTo(t, rst, cid, "")

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/approve", Data: nil, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},

		// missing couponCode and amount
		{Method: "POST", Path: "/application/" + appId + "/order", Data: M{"orderId": "AMZ-1"}, ExpectedStatus: 400, ExpectedData: nil},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "approved"}},

		{Method: "POST", Path: "/application/" + appId + "/order", Data: M{"orderId": "AMZ-1", "amount": 150.0, "orderData": M{"couponCode": "GLOW10"}}, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "order_submitted"}},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/order/reject", Data: M{"reason": "order id doesn't resolve"}, ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	app := fetchApp(t, rst, appId)
	if app.Status != common.StatusOrderRejected {
		t.Fatal("expected a rejected order, got", app.Status)
	}
	formName := app.Appeal.FormName
	if formName == "" || app.Appeal.Rounds != 1 {
		t.Fatal("expected a round-1 resubmission form, got", formName, app.Appeal.Rounds)
	}

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/application/" + appId + "/order", Data: M{"orderId": "AMZ-2", "amount": 150.0, "orderData": M{"couponCode": "GLOW10"}}, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/order/approve", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	app = fetchApp(t, rst, appId)
	if app.Order == nil || app.Order.FormName != formName {
		t.Fatal("resubmission should carry the rejection-round form name")
	}
	if app.Status != common.StatusOrderApproved || app.PaymentId == "" {
		t.Fatal("order approval should create the payment", app.Status, app.PaymentId)
	}

	// influencer-fulfilled payouts cover what the influencer actually spent
	p := fetchPayment(t, rst, app.PaymentId)
	if p.Amount != 150 || p.Status != common.PaymentPending {
		t.Fatal("unexpected payment", p.Amount, p.Status)
	}

	for _, tr := range [...]*resty.TestRequest{
		// nothing paid until the deliverables land
		{Method: "PUT", Path: "/payment/" + p.Id + "/markPaid", Data: nil, ExpectedStatus: 400, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/payment/" + p.Id + "/deliverablesProof", Data: M{"impressions": 84000, "links": []string{"https://x.y/reel"}}, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/payment/" + p.Id + "/markPaid", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/payment/" + p.Id, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "paid"}},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "completed"}},

		// paid is terminal
		{Method: "PUT", Path: "/payment/" + p.Id + "/markPaid", Data: nil, ExpectedStatus: 400, ExpectedData: nil},
		{Method: "PUT", Path: "/payment/" + p.Id + "/approvePartial", Data: M{"amount": 10.0}, ExpectedStatus: 400, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}
}

func TestBrandRefundFlow(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	inf := getSignupInfluencer()

	cid := createCampaign(t, rst, &common.Campaign{
		Name: "espresso machine placement",
		Policy: common.Policy{
			Budget:        1000,
			Fulfillment:   common.FulfillmentBrand,
			PayoutRelease: common.RefundOnDelivery,
		},
	})

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signUp", Data: inf, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	appId := applyTo(t, rst, cid, "kitchen content is my whole feed")

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/approve", Data: nil, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},

		// brand shipments need a mailable address
		{Method: "POST", Path: "/application/" + appId + "/order", Data: M{"shippingAddress": M{"postalCode": "92679"}}, ExpectedStatus: 400, ExpectedData: nil},
		{Method: "POST", Path: "/application/" + appId + "/order", Data: M{"shippingAddress": M{"line1": "8 Saint Elias", "city": "Trabuco Canyon", "state": "CA", "postalCode": "92679"}}, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/order/approve", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	app := fetchApp(t, rst, appId)
	if app.PaymentId == "" {
		t.Fatal("expected a payment after order approval")
	}

	// brand-fulfilled payouts release against the campaign budget
	p := fetchPayment(t, rst, app.PaymentId)
	if p.Amount != 1000 || p.PayoutRelease != common.RefundOnDelivery {
		t.Fatal("unexpected payment", p.Amount, p.PayoutRelease)
	}

	for _, tr := range [...]*resty.TestRequest{
		// no partial before any evidence
		{Method: "PUT", Path: "/payment/" + p.Id + "/approvePartial", Data: M{"amount": 600.0}, ExpectedStatus: 400, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/payment/" + p.Id + "/orderProofs", Data: M{"notes": "unboxing posted", "screenshots": []string{"https://x.y/s1.png"}}, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/payment/" + p.Id + "/approvePartial", Data: M{"amount": 1200.0}, ExpectedStatus: 400, ExpectedData: nil},
		{Method: "PUT", Path: "/payment/" + p.Id + "/approvePartial", Data: M{"amount": 600.0}, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/payment/" + p.Id, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "approved"}},

		// the balance stays locked until deliverables land
		{Method: "PUT", Path: "/payment/" + p.Id + "/approveRemaining", Data: nil, ExpectedStatus: 400, ExpectedData: nil},

		{Method: "PUT", Path: "/payment/" + p.Id + "/markPartialPaid", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/payment/" + p.Id, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "approved"}},

		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/payment/" + p.Id + "/deliverablesProof", Data: M{"engagementRate": 4.2, "impressions": 120000}, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/payment/" + p.Id + "/approveRemaining", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/payment/" + p.Id, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "paid"}},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "completed"}},
	} {
		tr.Run(t, rst)
	}

	p = fetchPayment(t, rst, p.Id)
	if p.Partial == nil || !p.Partial.Paid || p.Partial.Amount != 600 {
		t.Fatal("expected a paid 600 partial", p.Partial)
	}
	if p.Remaining() != 400 {
		t.Fatal("expected a 400 balance, got", p.Remaining())
	}
}

func TestAppealFlow(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	inf := getSignupInfluencer()

	cid := createCampaign(t, rst, &common.Campaign{
		Name: "protein bar teardown",
		Policy: common.Policy{
			Budget:        250,
			Fulfillment:   common.FulfillmentInfluencer,
			PayoutRelease: common.AdvanceThenRemaining,
		},
	})

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signUp", Data: inf, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	appId := applyTo(t, rst, cid, "")

	for _, tr := range [...]*resty.TestRequest{
		// nothing to appeal yet
		{Method: "GET", Path: "/application/" + appId + "/appealEligibility", Data: nil, ExpectedStatus: 200, ExpectedData: M{"eligible": false}},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/reject", Data: M{"reason": "audience mismatch"}, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/reject", Data: nil, ExpectedStatus: 200, ExpectedData: misc.StatusMsg(appId, "already reviewed")},

		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "rejected", "rejectionReason": "audience mismatch"}},
		{Method: "GET", Path: "/application/" + appId + "/appealEligibility", Data: nil, ExpectedStatus: 200, ExpectedData: M{"eligible": true}},

		// an appeal needs a comment or a file
		{Method: "POST", Path: "/application/" + appId + "/appeal", Data: M{"comment": "  "}, ExpectedStatus: 400, ExpectedData: nil},
		{Method: "POST", Path: "/application/" + appId + "/appeal", Data: M{"comment": "70% of my audience fits the brief, happy to share analytics"}, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 200, ExpectedData: M{"status": "reviewing"}},

		// the slot is spent
		{Method: "POST", Path: "/application/" + appId + "/appeal", Data: M{"comment": "one more thing"}, ExpectedStatus: 400, ExpectedData: nil},
		{Method: "GET", Path: "/application/" + appId + "/appealEligibility", Data: nil, ExpectedStatus: 200, ExpectedData: M{"eligible": false}},

		// the escalation can still end in an approval
		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/approve", Data: M{"comment": "analytics checked out"}, ExpectedStatus: 200, ExpectedData: misc.StatusOK(appId)},
	} {
		tr.Run(t, rst)
	}
}

func TestInfluencerIsolation(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	infA := getSignupInfluencer()
	infB := getSignupInfluencer()

	cid := createCampaign(t, rst, &common.Campaign{
		Name: "hand cream winter push",
		Policy: common.Policy{
			Budget:        100,
			Fulfillment:   common.FulfillmentInfluencer,
			PayoutRelease: common.PayAfterDeliverables,
		},
	})

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signUp", Data: infA, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/signUp", Data: infB, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/signIn", Data: signInReq(infA), ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	appId := applyTo(t, rst, cid, "")

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signIn", Data: signInReq(infB), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 401, ExpectedData: nil},
		{Method: "POST", Path: "/application/" + appId + "/order", Data: M{"orderId": "X", "amount": 5.0}, ExpectedStatus: 401, ExpectedData: nil},
		{Method: "POST", Path: "/application/" + appId + "/appeal", Data: M{"comment": "not mine"}, ExpectedStatus: 401, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	bAppId := applyTo(t, rst, cid, "mine")

	// asking for someone else's listing quietly returns your own
	var apps []*common.Application
	r := rst.DoTesting(t, "GET", "/getApplicationsByInfluencer/"+infA.ExpID, nil, &apps)
	if r.Status != 200 {
		t.Fatal("Bad status code!")
	}
	if len(apps) != 1 || apps[0].Id != bAppId || apps[0].InfluencerId != infB.ExpID {
		t.Fatal("expected only the caller's own listing, got", apps)
	}
}

func TestScreenshotAttach(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	inf := getSignupInfluencer()

	cid := createCampaign(t, rst, &common.Campaign{
		Name: "desk mat restock",
		Policy: common.Policy{
			Budget:        80,
			Fulfillment:   common.FulfillmentInfluencer,
			PayoutRelease: common.PayAfterDeliverables,
		},
	})

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signUp", Data: inf, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	appId := applyTo(t, rst, cid, "")

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "PUT", Path: "/application/" + appId + "/approve", Data: nil, ExpectedStatus: 200, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/application/" + appId + "/order", Data: M{"orderId": "AMZ-9", "amount": 79.0}, ExpectedStatus: 200, ExpectedData: nil},

		// pre-hosted screenshots attach straight to the order
		{Method: "POST", Path: "/application/" + appId + "/screenshot?imageUrl=https://cdn.x.y/shot.png", Data: nil, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/application/" + appId, Data: nil, ExpectedStatus: 200, ExpectedData: nil},

		// an empty upload is rejected
		{Method: "POST", Path: "/application/" + appId + "/screenshot", Data: nil, ExpectedStatus: 400, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	app := fetchApp(t, rst, appId)
	if app.Order == nil || app.Order.ScreenshotUrl != "https://cdn.x.y/shot.png" {
		t.Fatal("expected the screenshot url on the order record")
	}
}

func TestExportApplications(t *testing.T) {
	rst := getClient()
	defer putClient(rst)

	inf := getSignupInfluencer()

	cid := createCampaign(t, rst, &common.Campaign{
		Name: "export check",
		Policy: common.Policy{
			Budget:        50,
			Fulfillment:   common.FulfillmentInfluencer,
			PayoutRelease: common.PayAfterDeliverables,
		},
	})

	for _, tr := range [...]*resty.TestRequest{
		{Method: "POST", Path: "/signUp", Data: inf, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "POST", Path: "/signIn", Data: signInReq(inf), ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}

	applyTo(t, rst, cid, "csv me")

	for _, tr := range [...]*resty.TestRequest{
		// export is admin-only
		{Method: "GET", Path: "/exportApplications/" + cid, Data: nil, ExpectedStatus: 401, ExpectedData: nil},

		{Method: "POST", Path: "/signIn", Data: adminReq, ExpectedStatus: 200, ExpectedData: nil},
		{Method: "GET", Path: "/exportApplications/" + cid, Data: nil, ExpectedStatus: 200, ExpectedData: nil},
	} {
		tr.Run(t, rst)
	}
}
