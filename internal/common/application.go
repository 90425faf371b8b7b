package common

import (
	"encoding/json"
	"log"

	"github.com/boltdb/bolt"

	"github.com/onetoseven/marketplace/config"
	"github.com/onetoseven/marketplace/misc"
)

// Application statuses. Review moves applied/reviewing into approved or
// rejected; once approved, the order sub-flow moves the application through
// order_submitted and its admin verdicts, and a fully released payout marks
// it completed.
const (
	StatusApplied        = "applied"
	StatusReviewing      = "reviewing"
	StatusApproved       = "approved"
	StatusRejected       = "rejected"
	StatusOrderSubmitted = "order_submitted"
	StatusOrderApproved  = "order_form_approved"
	StatusOrderRejected  = "order_form_rejected"
	StatusCompleted      = "completed"
)

// Comment stages
const (
	StageApplication = "application"
	StageOrder       = "order"
	StageAppeal      = "appeal"
)

// CommentEntry is one line of the append-only comment log. Entries are
// never overwritten; admin and influencer streams share the log and are
// told apart by Role.
type CommentEntry struct {
	Stage     string `json:"stage"`
	By        string `json:"by"`
	Role      string `json:"role"`
	Comment   string `json:"comment"`
	CreatedAt int64  `json:"createdAt"`
}

// Appeal tracks the one-shot post-rejection escalation. FormName is
// reissued on every rejection so resubmitted order forms stay traceable to
// the rejection round they answer; Submitted never resets.
type Appeal struct {
	Submitted   bool     `json:"submitted,omitempty"`
	FormName    string   `json:"formName,omitempty"`
	Rounds      int      `json:"rounds,omitempty"` // rejections seen so far
	Comment     string   `json:"comment,omitempty"`
	Files       []string `json:"files,omitempty"`
	SubmittedAt int64    `json:"submittedAt,omitempty"`
}

type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// OrderRecord holds the influencer's order-completion evidence. Exactly one
// payload shape is populated, matching Fulfillment (frozen from the policy
// snapshot at approval).
type OrderRecord struct {
	Fulfillment string `json:"fulfillment"`

	// influencer-method payload
	OrderId       string            `json:"orderId,omitempty"`
	Amount        float64           `json:"amount,omitempty"`
	ScreenshotUrl string            `json:"screenshotUrl,omitempty"`
	OrderData     map[string]string `json:"orderData,omitempty"`

	// brand-method payload
	Shipping *ShippingAddress `json:"shipping,omitempty"`

	// Appeal round this submission answers, copied from Appeal.FormName
	FormName string `json:"formName,omitempty"`

	SubmittedAt int64 `json:"submittedAt,omitempty"`
}

type Application struct {
	Id           string `json:"id"`
	CampaignId   string `json:"campaignId"`
	InfluencerId string `json:"influencerId"`

	Status string `json:"status"`

	FollowersAtApply int64 `json:"followersAtApply,omitempty"`

	ApplicantComment string `json:"applicantComment,omitempty"`
	AdminComment     string `json:"adminComment,omitempty"`
	RejectionReason  string `json:"rejectionReason,omitempty"`

	Appeal Appeal `json:"appeal"`

	Comments []*CommentEntry `json:"comments,omitempty"`

	// Policy snapshot, copied from the campaign when the application is
	// approved. Nil until then; authoritative for order validation after.
	Policy *Policy `json:"policy,omitempty"`

	Order *OrderRecord `json:"order,omitempty"`

	PaymentId string `json:"paymentId,omitempty"`

	CreatedAt  int64 `json:"createdAt,omitempty"`
	ApprovedAt int64 `json:"approvedAt,omitempty"`
	UpdatedAt  int64 `json:"updatedAt,omitempty"`
}

// AddComment appends to the log; it never touches prior entries.
func (app *Application) AddComment(stage, by, role, comment string, ts int64) {
	if comment == "" {
		return
	}
	app.Comments = append(app.Comments, &CommentEntry{
		Stage:     stage,
		By:        by,
		Role:      role,
		Comment:   comment,
		CreatedAt: ts,
	})
}

func GetApplicationTx(tx *bolt.Tx, cfg *config.Config, id string) *Application {
	var app Application
	if misc.GetTxJson(tx, cfg.Bucket.Application, id, &app) == nil && app.Id != "" {
		return &app
	}
	return nil
}

func SaveApplicationTx(tx *bolt.Tx, cfg *config.Config, app *Application) error {
	return misc.PutTxJson(tx, cfg.Bucket.Application, app.Id, app)
}

func GetApplicationsByCampaign(db *bolt.DB, cfg *config.Config, cid string) []*Application {
	return filterApplications(db, cfg, func(app *Application) bool { return app.CampaignId == cid })
}

func GetApplicationsByInfluencer(db *bolt.DB, cfg *config.Config, infId string) []*Application {
	return filterApplications(db, cfg, func(app *Application) bool { return app.InfluencerId == infId })
}

func filterApplications(db *bolt.DB, cfg *config.Config, keep func(*Application) bool) (apps []*Application) {
	db.View(func(tx *bolt.Tx) error {
		apps = FilterApplicationsTx(tx, cfg, keep)
		return nil
	})
	return
}

func FilterApplicationsTx(tx *bolt.Tx, cfg *config.Config, keep func(*Application) bool) []*Application {
	apps := make([]*Application, 0, 64)
	tx.Bucket([]byte(cfg.Bucket.Application)).ForEach(func(k, v []byte) (err error) {
		app := &Application{}
		if err := json.Unmarshal(v, app); err != nil {
			log.Println("error when unmarshalling application", string(v))
			return nil
		}
		if keep(app) {
			apps = append(apps, app)
		}
		return
	})
	return apps
}
