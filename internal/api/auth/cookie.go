package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	log "github.com/sirupsen/logrus"
)

const (
	CookieName = "user"
	// DefaultMaxAge bounds how long an issued identity cookie is accepted.
	DefaultMaxAge = 7 * 24 * 3600
)

// Cookies issues and checks the identity cookie. Values are signed and
// timestamped by securecookie and stop verifying after maxAge seconds.
type Cookies struct {
	codec  *securecookie.SecureCookie
	maxAge int
}

func NewCookies(secret string) *Cookies {
	return newCookies(secret, DefaultMaxAge)
}

func newCookies(secret string, maxAge int) *Cookies {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		log.Warn("SESSION_SECRET not set, cookies won't survive a restart")
	}
	codec := securecookie.New(key, nil)
	codec.MaxAge(maxAge)
	return &Cookies{codec: codec, maxAge: maxAge}
}

// Value is the encoded cookie value identifying login.
func (c *Cookies) Value(login string) (string, error) {
	return c.codec.Encode(CookieName, login)
}

func (c *Cookies) Set(ctx *gin.Context, login string) error {
	v, err := c.Value(login)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(CookieName, v, c.maxAge, "/", "", false, true)
	return nil
}

func (c *Cookies) Clear(ctx *gin.Context) {
	ctx.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// Login returns the verified identity carried by r.
func (c *Cookies) Login(r *http.Request) (string, bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	var login string
	if err := c.codec.Decode(CookieName, ck.Value, &login); err != nil || login == "" {
		return "", false
	}
	return login, true
}
