package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGoogle struct {
	profile *auth.GoogleProfile
}

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (f *fakeGoogle) Exchange(_ context.Context, code string) (*auth.GoogleProfile, error) {
	if code != "good-code" {
		return nil, assert.AnError
	}
	return f.profile, nil
}

func newGoogleEngine(t *testing.T, provider GoogleProvider) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()

	db := testutil.NewDB(t)
	dispatcher := audit.NewDispatcher(audit.New(db), testutil.Logger())
	t.Cleanup(dispatcher.Close)

	cfg := &config.Config{
		BaseURL:     "http://frontend.test",
		AdminEmails: []string{"owner@salon.com"},
	}
	tokens := auth.NewTokenIssuer("secret", time.Hour)

	h := NewGoogleHandler(db, cfg, provider, NewSessionStore("session-secret-for-tests-32bytes", false), tokens, dispatcher)

	r := gin.New()
	r.GET("/google", h.Start)
	r.GET("/google/callback", h.Callback)
	return r, tokens
}

// startFlow runs the redirect leg and returns the state and session cookie.
func startFlow(t *testing.T, r http.Handler) (string, *http.Cookie) {
	t.Helper()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/google", nil))
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return state, cookies[0]
}

func callback(r http.Handler, query string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/google/callback?"+query, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGoogleCallback_CreatesUserAndRedirectsWithToken(t *testing.T) {
	provider := &fakeGoogle{profile: &auth.GoogleProfile{
		ID:         "g-1",
		Email:      "Owner@Salon.com",
		GivenName:  "Iryna",
		FamilyName: "K",
	}}
	r, tokens := newGoogleEngine(t, provider)

	state, cookie := startFlow(t, r)

	w := callback(r, "state="+url.QueryEscape(state)+"&code=good-code", cookie)
	require.Equal(t, http.StatusFound, w.Code)

	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "http://frontend.test/auth/callback?token="), loc)

	u, err := url.Parse(loc)
	require.NoError(t, err)
	claims, err := tokens.Parse(u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "owner@salon.com", claims.Email)
	assert.True(t, claims.IsAdmin)
}

func TestGoogleCallback_RejectsBadState(t *testing.T) {
	r, _ := newGoogleEngine(t, &fakeGoogle{})

	_, cookie := startFlow(t, r)

	assert.Equal(t, http.StatusBadRequest, callback(r, "state=forged&code=good-code", cookie).Code)
	assert.Equal(t, http.StatusBadRequest, callback(r, "state=anything&code=good-code", nil).Code)
}

func TestGoogleCallback_ExchangeFailureRedirectsWithError(t *testing.T) {
	r, _ := newGoogleEngine(t, &fakeGoogle{})

	state, cookie := startFlow(t, r)

	w := callback(r, "state="+url.QueryEscape(state)+"&code=bad-code", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://frontend.test/auth/callback?error=google_exchange_failed", w.Header().Get("Location"))
}

func TestLinkGoogleUser(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{}
	ctx := context.Background()

	existing := testutil.SeedUser(t, db, "client@example.com", false)

	user, created, err := linkGoogleUser(ctx, db, cfg, &auth.GoogleProfile{ID: "g-42", Email: "Client@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, user.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, existing.ID).Error)
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "g-42", *stored.GoogleID)

	// Found by Google id even when the e-mail changed on Google's side.
	again, created, err := linkGoogleUser(ctx, db, cfg, &auth.GoogleProfile{ID: "g-42", Email: "renamed@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, again.ID)

	fresh, created, err := linkGoogleUser(ctx, db, cfg, &auth.GoogleProfile{ID: "g-7", Email: "new@example.com", GivenName: "Nadia"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, existing.ID, fresh.ID)
	require.NotNil(t, fresh.FirstName)
	assert.Equal(t, "Nadia", *fresh.FirstName)
	assert.Nil(t, fresh.PasswordHash)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
