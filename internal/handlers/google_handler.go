package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/logging"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const (
	oauthSessionName = "oauth_state"
	oauthStateKey    = "state"
)

// GoogleProvider is the part of auth.GoogleOAuth the handler needs.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

type GoogleHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	provider GoogleProvider
	store    sessions.Store
	tokens   *auth.TokenIssuer
	audit    *audit.Dispatcher
}

func NewGoogleHandler(
	db *gorm.DB,
	cfg *config.Config,
	provider GoogleProvider,
	store sessions.Store,
	tokens *auth.TokenIssuer,
	auditDispatcher *audit.Dispatcher,
) *GoogleHandler {
	return &GoogleHandler{
		db:       db,
		cfg:      cfg,
		provider: provider,
		store:    store,
		tokens:   tokens,
		audit:    auditDispatcher,
	}
}

// NewSessionStore builds the cookie store that carries the OAuth state
// between the redirect and the callback.
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (h *GoogleHandler) Start(c *gin.Context) {
	state, err := auth.NewState()
	if err != nil {
		httperr.Internal(c, "failed_to_start_oauth", "Could not start Google sign-in.", err)
		return
	}

	session, _ := h.store.Get(c.Request, oauthSessionName)
	session.Values[oauthStateKey] = state
	if err := session.Save(c.Request, c.Writer); err != nil {
		httperr.Internal(c, "failed_to_start_oauth", "Could not start Google sign-in.", err)
		return
	}

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

func (h *GoogleHandler) Callback(c *gin.Context) {
	log := logging.FromContext(c.Request.Context())

	session, err := h.store.Get(c.Request, oauthSessionName)
	if err != nil {
		httperr.BadRequest(c, "invalid_oauth_state", "Sign-in session expired.")
		return
	}

	expected, _ := session.Values[oauthStateKey].(string)
	if expected == "" || c.Query("state") != expected {
		httperr.BadRequest(c, "invalid_oauth_state", "Sign-in session expired.")
		return
	}

	// The state is single use.
	delete(session.Values, oauthStateKey)
	session.Options.MaxAge = -1
	_ = session.Save(c.Request, c.Writer)

	code := c.Query("code")
	if code == "" {
		h.redirectFailure(c, "missing_code")
		return
	}

	profile, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		log.WithError(err).Warn("google exchange failed")
		h.redirectFailure(c, "google_exchange_failed")
		return
	}

	user, created, err := linkGoogleUser(c.Request.Context(), h.db, h.cfg, profile)
	if err != nil {
		log.WithError(err).Error("google user link failed")
		h.redirectFailure(c, "google_link_failed")
		return
	}

	if created {
		h.audit.Dispatch(audit.Event{
			UserID:   &user.ID,
			Action:   "user_registered",
			Entity:   "user",
			EntityID: &user.ID,
			Metadata: map[string]any{"provider": "google"},
		})
	}

	token, _, err := h.tokens.Issue(user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue token.", err)
		return
	}

	c.Redirect(http.StatusFound, h.cfg.BaseURL+"/auth/callback?token="+url.QueryEscape(token))
}

func (h *GoogleHandler) redirectFailure(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.cfg.BaseURL+"/auth/callback?error="+url.QueryEscape(reason))
}

// linkGoogleUser finds the user by Google id, then by e-mail (attaching the
// Google id), and creates one otherwise.
func linkGoogleUser(
	ctx context.Context,
	db *gorm.DB,
	cfg *config.Config,
	profile *auth.GoogleProfile,
) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	googleID := profile.ID

	var user models.User
	err := db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	err = db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		if err := db.WithContext(ctx).Model(&user).Update("google_id", googleID).Error; err != nil {
			return nil, false, err
		}
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.User{
		Email:     email,
		GoogleID:  &googleID,
		FirstName: trimmed(&profile.GivenName),
		LastName:  trimmed(&profile.FamilyName),
		IsAdmin:   cfg.IsAdminEmail(email),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}
