package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/logging"
)

const (
	ContextUserID  = "userID"
	ContextEmail   = "userEmail"
	ContextIsAdmin = "isAdmin"
	ContextClaims  = "claims"

	TokenCookie = "token"
)

// Authenticator is the one place where a request is turned into a caller.
type Authenticator struct {
	tokens  *auth.TokenIssuer
	revoked auth.RevocationStore
}

func NewAuthenticator(tokens *auth.TokenIssuer, revoked auth.RevocationStore) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked}
}

// TokenFromRequest reads the bearer header, then the token cookie, then
// the token query parameter.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

func (a *Authenticator) authenticate(c *gin.Context) (*auth.Claims, error) {
	raw := TokenFromRequest(c)
	if raw == "" {
		return nil, auth.ErrInvalidToken
	}

	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}

	revoked, err := a.revoked.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Warn("revocation lookup failed")
		return nil, err
	}
	if revoked {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

func setCaller(c *gin.Context, claims *auth.Claims) {
	userID, _ := claims.UserID()
	c.Set(ContextUserID, userID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextIsAdmin, claims.IsAdmin)
	c.Set(ContextClaims, claims)
}

func (a *Authenticator) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.authenticate(c)
		if err != nil {
			httperr.Unauthorized(c, "unauthorized", "Authentication required.")
			return
		}
		setCaller(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// lets the request through anonymously otherwise.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := a.authenticate(c); err == nil {
			setCaller(c, claims)
		}
		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			httperr.Forbidden(c, "forbidden", "Admin access required.")
			return
		}
		c.Next()
	}
}

// ---------- Accessors ----------

func UserID(c *gin.Context) (uint, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	uid, ok := id.(uint)
	return uid, ok && uid != 0
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextIsAdmin)
}

func Email(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
