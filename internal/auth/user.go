package auth

import (
	"strings"
	"time"

	"github.com/boltdb/bolt"

	"github.com/onetoseven/marketplace/misc"
)

const (
	AdminUserId = "1"
)

type Login struct {
	UserId   string `json:"userId"`
	Password string `json:"password"`
}

type User struct {
	Id        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Type      Scope    `json:"type,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Active    bool     `json:"active,omitempty"`
	Followers int64    `json:"followers,omitempty"` // influencers only
	Perms     []string `json:"perms,omitempty"`     // admins only

	// Mailing address used for check payouts
	PayoutAddress *PayoutAddress `json:"payoutAddress,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

type PayoutAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
}

// HasPerm reports whether the user holds the given permission string.
// Superadmins hold everything.
func (u *User) HasPerm(perm string) bool {
	if u.Type == SuperAdminScope {
		return true
	}
	return misc.IsInList(u.Perms, perm)
}

// Update fills the updatable fields; Id and CreatedAt are never blindly set.
func (u *User) Update(o *User) *User {
	u.Name, u.Phone, u.Followers, u.PayoutAddress = o.Name, o.Phone, o.Followers, o.PayoutAddress
	u.Active = o.Active
	u.UpdatedAt = time.Now().Unix()
	return u
}

func (u *User) Check(newUser bool) error {
	if newUser && len(u.Id) != 0 {
		return ErrInvalidUserId
	}
	if len(u.Name) < 2 {
		return ErrInvalidName
	}
	if len(u.Email) < 6 /* a@a.ab */ || strings.Index(u.Email, "@") == -1 {
		return ErrInvalidEmail
	}
	if !u.Type.Valid() {
		return ErrInvalidUserType
	}
	return nil
}

func (u *User) Store(a *Auth, tx *bolt.Tx) error {
	return misc.PutTxJson(tx, a.cfg.Bucket.User, u.Id, u)
}

func (a *Auth) CreateUserTx(tx *bolt.Tx, u *User, password string) (err error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)

	if err = u.Check(true); err != nil {
		return
	}

	u.CreatedAt = time.Now().Unix()
	u.UpdatedAt = u.CreatedAt
	u.Active = true

	if password, err = HashPassword(password); err != nil {
		return
	}

	if u.Id, err = misc.GetNextIndex(tx, a.cfg.Bucket.User); err != nil {
		return
	}

	if err = misc.PutTxJson(tx, a.cfg.Bucket.User, u.Id, u); err != nil {
		return
	}

	// logins are always in lowercase
	login := &Login{
		UserId:   u.Id,
		Password: password,
	}

	return misc.PutTxJson(tx, a.cfg.Bucket.Login, misc.TrimEmail(u.Email), login)
}

func (a *Auth) GetUserTx(tx *bolt.Tx, userId string) *User {
	var u User
	if misc.GetTxJson(tx, a.cfg.Bucket.User, userId, &u) == nil && u.Id != "" {
		return &u
	}
	return nil
}
