package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(a *Authenticator) *gin.Engine {
	r := gin.New()
	r.GET("/me", a.AuthRequired(), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "admin": IsAdmin(c)})
	})
	r.GET("/admin", a.AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/maybe", a.OptionalAuth(), func(c *gin.Context) {
		_, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_TokenSources(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	r := newEngine(NewAuthenticator(issuer, auth.NewMemoryRevocationStore()))

	token, _, err := issuer.Issue(&models.User{ID: 7, Email: "u@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"admin":false}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	w = do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error_code":"unauthorized"`)
}

func TestAuth_RevokedAndAdmin(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	store := auth.NewMemoryRevocationStore()
	r := newEngine(NewAuthenticator(issuer, store))

	userToken, claims, err := issuer.Issue(&models.User{ID: 7, Email: "u@example.com"})
	require.NoError(t, err)
	adminToken, _, err := issuer.Issue(&models.User{ID: 1, Email: "a@example.com", IsAdmin: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)

	require.NoError(t, store.Revoke(req.Context(), claims.ID, claims.ExpiresAt.Time))

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	assert.JSONEq(t, `{"authenticated":false}`, do(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	assert.JSONEq(t, `{"authenticated":true}`, do(r, req).Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Now()
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, do(r, req).Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	now = now.Add(time.Hour)
	rl.Cleanup()
	assert.Empty(t, rl.limiters)
}

func TestCORS_AllowList(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://salon.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://salon.example.com")
	assert.Equal(t, "https://salon.example.com", do(r, req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Empty(t, do(r, req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)
}
