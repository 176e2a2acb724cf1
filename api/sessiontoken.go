package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/voicemap/auth/jwt"
)

const (
	// CookieName holds the signed session token in browsers.
	CookieName = "sid"
	// TokenHeader carries the session token for non-browser clients.
	TokenHeader = "X-Session-Token"
)

// SessionClaims binds a token to one explorer session. The session id is
// the registered subject.
type SessionClaims struct {
	gojwt.RegisteredClaims
}

// Tokens issues and resolves session tokens.
type Tokens struct {
	svc    *jwt.Service[*SessionClaims]
	secure bool
}

// NewTokens creates a token issuer. secure marks the cookie Secure, which
// browsers require outside localhost when the server sits behind TLS.
func NewTokens(cfg jwt.Config, secure bool) (*Tokens, error) {
	svc, err := jwt.NewService(cfg, func() *SessionClaims { return &SessionClaims{} })
	if err != nil {
		return nil, err
	}
	return &Tokens{svc: svc, secure: secure}, nil
}

// Issue signs a token for sessionID and sets it as the sid cookie.
func (t *Tokens) Issue(c *gin.Context, sessionID string) (string, error) {
	token, err := t.svc.Generate(&SessionClaims{RegisteredClaims: t.svc.Registered(sessionID)})
	if err != nil {
		return "", err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.svc.TTL().Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Resolve returns the session id carried by the request, or "" when the
// request has no token or the token does not verify.
func (t *Tokens) Resolve(c *gin.Context) string {
	raw := strings.TrimSpace(c.GetHeader(TokenHeader))
	if raw == "" {
		if cookie, err := c.Cookie(CookieName); err == nil {
			raw = cookie
		}
	}
	if raw == "" {
		return ""
	}
	claims, err := t.svc.Parse(raw)
	if err != nil {
		return ""
	}
	return claims.Subject
}
