package auth

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/boltdb/bolt"

	"github.com/onetoseven/marketplace/config"
	"github.com/onetoseven/marketplace/misc"
)

const (
	TokenAge     = time.Hour * 6
	TokenLen     = 16
	ApiKeyHeader = `x-apikey`

	purgeFrequency = time.Hour * 24
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidUserId    = errors.New("invalid user id")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidUserType  = errors.New("invalid user type")
	ErrInvalidPass      = errors.New("invalid password")
	ErrShortPass        = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type Auth struct {
	db  *bolt.DB
	cfg *config.Config
}

func New(db *bolt.DB, cfg *config.Config) *Auth {
	return &Auth{
		db:  db,
		cfg: cfg,
	}
}

// PurgeInvalidTokens loops forever cleaning expired session tokens; run it
// in its own goroutine.
func (a *Auth) PurgeInvalidTokens() {
	for {
		a.db.Update(func(tx *bolt.Tx) error {
			b := misc.GetBucket(tx, a.cfg.Bucket.Token)
			ts := time.Now()
			return b.ForEach(func(k, v []byte) error {
				var tok Token
				if json.Unmarshal(v, &tok) != nil || !tok.IsValid(ts) {
					b.Delete(k)
				}
				return nil
			})
		})

		time.Sleep(purgeFrequency)
	}
}

type Token struct {
	UserId  string `json:"userId"`
	Expires int64  `json:"expires"`
}

func (t *Token) IsValid(ts time.Time) bool {
	return t.UserId != "" && (t.Expires == -1 || t.Expires > ts.UnixNano())
}

func (t *Token) Refresh(dur time.Duration) *Token {
	if t.Expires != -1 {
		t.Expires = time.Now().Add(dur).UnixNano()
	}
	return t
}

func (a *Auth) GetLoginTx(tx *bolt.Tx, email string) *Login {
	email = misc.TrimEmail(email)

	var l Login
	if misc.GetTxJson(tx, a.cfg.Bucket.Login, email, &l) == nil && l.UserId != "" {
		return &l
	}
	return nil
}

func (a *Auth) SignInTx(tx *bolt.Tx, email, pass string) (l *Login, stok string, err error) {
	if l = a.GetLoginTx(tx, email); l == nil {
		return nil, "", ErrInvalidEmail
	}
	if !CheckPassword(l.Password, pass) {
		return nil, "", ErrInvalidPass
	}
	stok = hex.EncodeToString(misc.CreateToken(TokenLen))
	ntok := &Token{UserId: l.UserId, Expires: time.Now().Add(TokenAge).UnixNano()}
	err = misc.PutTxJson(tx, a.cfg.Bucket.Token, stok, ntok)
	return
}

func (a *Auth) SignOutTx(tx *bolt.Tx, stok string) error {
	return misc.GetBucket(tx, a.cfg.Bucket.Token).Delete([]byte(stok))
}

func (a *Auth) refreshToken(stok string, dur time.Duration) {
	a.db.Update(func(tx *bolt.Tx) (_ error) {
		var token Token
		if misc.GetTxJson(tx, a.cfg.Bucket.Token, stok, &token) != nil || !token.IsValid(time.Now()) {
			return
		}
		return misc.PutTxJson(tx, a.cfg.Bucket.Token, stok, token.Refresh(dur))
	})
}

// getCreds pulls the session token from the cookie or the api-key header.
func getCreds(req *http.Request) (stok string, isApiKey bool) {
	if key := req.Header.Get(ApiKeyHeader); key != "" {
		return key, true
	}
	if ck, err := req.Cookie("token"); err == nil {
		return ck.Value, false
	}
	return "", false
}

func (a *Auth) userFromRequestTx(tx *bolt.Tx, req *http.Request) (*User, string, bool) {
	stok, isApiKey := getCreds(req)
	if stok == "" {
		return nil, "", false
	}

	var token Token
	if misc.GetTxJson(tx, a.cfg.Bucket.Token, stok, &token) != nil || !token.IsValid(time.Now()) {
		return nil, "", false
	}
	return a.GetUserTx(tx, token.UserId), stok, isApiKey
}
