package auth

import (
	"net/http"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/onetoseven/marketplace/misc"
)

func GetCtxUser(c *gin.Context) *User {
	if u, ok := c.Get(gin.AuthUserKey); ok {
		return u.(*User)
	}
	return nil
}

// VerifyUser resolves the session token into a user and refreshes the
// session. Aborts with 401 when the credentials don't check out.
func (a *Auth) VerifyUser(c *gin.Context) {
	var (
		user     *User
		stok     string
		isApiKey bool
	)
	a.db.View(func(tx *bolt.Tx) error {
		user, stok, isApiKey = a.userFromRequestTx(tx, c.Request)
		return nil
	})
	if user == nil {
		misc.AbortWithErr(c, 401, ErrUnauthorized)
		return
	}
	c.Set(gin.AuthUserKey, user)
	if !isApiKey {
		setCookie(c.Writer, "token", stok, TokenAge)
		a.refreshToken(stok, TokenAge)
	}
}

// TrySetUser resolves the session like VerifyUser but lets anonymous
// requests through; used by signUp, which is open to the public but
// behaves differently for a signed-in superadmin.
func (a *Auth) TrySetUser(c *gin.Context) {
	var user *User
	a.db.View(func(tx *bolt.Tx) error {
		user, _, _ = a.userFromRequestTx(tx, c.Request)
		return nil
	})
	if user != nil {
		c.Set(gin.AuthUserKey, user)
	}
}

// CheckScopes returns a gin handler that checks user access against the provided ScopeMap
func (a *Auth) CheckScopes(sm ScopeMap) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := GetCtxUser(c); u != nil && sm.HasAccess(u.Type, c.Request.Method) {
			return
		}
		misc.AbortWithErr(c, 401, ErrUnauthorized)
	}
}

// CheckPerm gates admin actions on a permission string; superadmins pass.
func (a *Auth) CheckPerm(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := GetCtxUser(c); u != nil && u.HasPerm(perm) {
			return
		}
		misc.AbortWithErr(c, 401, ErrUnauthorized)
	}
}

func (a *Auth) SignInHandler(c *gin.Context) {
	var li struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"pass" form:"pass"`
	}
	if err := c.Bind(&li); err != nil {
		misc.AbortWithErr(c, http.StatusBadRequest, err)
		return
	}
	var (
		login *Login
		tok   string
		err   error
	)
	a.db.Update(func(tx *bolt.Tx) (_ error) {
		login, tok, err = a.SignInTx(tx, li.Email, li.Password)
		return
	})

	if err != nil {
		misc.AbortWithErr(c, 400, err)
		return
	}

	setCookie(c.Writer, "token", tok, TokenAge)
	c.JSON(200, misc.StatusOK(login.UserId))
}

func (a *Auth) SignOutHandler(c *gin.Context) {
	if ck, err := c.Request.Cookie("token"); err == nil {
		a.db.Update(func(tx *bolt.Tx) error {
			return a.SignOutTx(tx, ck.Value)
		})
		setCookie(c.Writer, "token", "", -1)
	}
	c.JSON(200, misc.StatusOK(""))
}

func (a *Auth) SignupHandler(c *gin.Context) {
	var uwp struct { // UserWithPassword
		User
		Password  string `json:"pass"`
		Password2 string `json:"pass2"`
	}
	if err := misc.BindJSON(c, &uwp); err != nil {
		misc.AbortWithErr(c, 400, err)
		return
	}
	if uwp.Type == "" {
		uwp.Type = InfluencerScope
	}
	currentUser := GetCtxUser(c)
	if currentUser != nil {
		if !currentUser.Type.CanCreate(uwp.Type) {
			misc.AbortWithErr(c, 401, ErrUnauthorized)
			return
		}
	} else if uwp.Type != InfluencerScope {
		// only influencers self-serve; admins are created by superadmins
		misc.AbortWithErr(c, 401, ErrUnauthorized)
		return
	}
	if uwp.Password != uwp.Password2 {
		misc.AbortWithErr(c, 400, ErrPasswordMismatch)
		return
	}
	if len(uwp.Password) < 8 {
		misc.AbortWithErr(c, 400, ErrShortPass)
		return
	}
	if err := a.db.Update(func(tx *bolt.Tx) error {
		return a.CreateUserTx(tx, &uwp.User, uwp.Password)
	}); err != nil {
		misc.AbortWithErr(c, 400, err)
		return
	}
	c.JSON(200, misc.StatusOK(uwp.Id))
}
