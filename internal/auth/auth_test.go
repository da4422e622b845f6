package auth

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/oauth2"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: 42, Email: "anna@example.com", IsAdmin: true}

	raw, issued, err := issuer.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "anna@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenIssuer_RejectsExpiredAndForeign(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	raw, _, err := issuer.Issue(&models.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenIssuer("other-secret", time.Hour)
	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	ok, rehash := VerifyPassword(hash, "s3cret!")
	assert.True(t, ok)
	assert.False(t, rehash)

	ok, _ = VerifyPassword(hash, "wrong")
	assert.False(t, ok)
}

func TestVerifyPassword_LegacyScrypt(t *testing.T) {
	salt := "0a1b2c3d4e5f60718293a4b5c6d7e8f9"
	key, err := scrypt.Key([]byte("legacy-pass"), []byte(salt), 16384, 8, 1, 64)
	require.NoError(t, err)
	stored := hex.EncodeToString(key) + "." + salt

	ok, rehash := VerifyPassword(stored, "legacy-pass")
	assert.True(t, ok)
	assert.True(t, rehash)

	ok, _ = VerifyPassword(stored, "nope")
	assert.False(t, ok)

	ok, _ = VerifyPassword("garbage", "legacy-pass")
	assert.False(t, ok)
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Revoke(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "dead", now.Add(-time.Hour)))

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = store.IsRevoked(ctx, "dead")
	assert.False(t, revoked)

	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	revoked, _ = store.IsRevoked(ctx, "live")
	assert.False(t, revoked)
}

func TestGoogleOAuth_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "at-123",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case r.URL.Path == "/userinfo":
			if !strings.HasSuffix(r.Header.Get("Authorization"), "at-123") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(GoogleProfile{
				ID:            "g-1",
				Email:         "anna@gmail.com",
				VerifiedEmail: true,
				GivenName:     "Anna",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	g := NewGoogleOAuth("id", "secret", "http://localhost/callback")
	g.config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	}
	g.userInfoURL = srv.URL + "/userinfo"

	assert.Contains(t, g.AuthCodeURL("xyz"), "state=xyz")

	profile, err := g.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "g-1", profile.ID)
	assert.Equal(t, "anna@gmail.com", profile.Email)
	assert.Equal(t, "Anna", profile.GivenName)
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}
