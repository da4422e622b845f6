package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/logging"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/validators"
)

type AuthHandler struct {
	db      *gorm.DB
	cfg     *config.Config
	tokens  *auth.TokenIssuer
	revoked auth.RevocationStore
	audit   *audit.Dispatcher
}

func NewAuthHandler(
	db *gorm.DB,
	cfg *config.Config,
	tokens *auth.TokenIssuer,
	revoked auth.RevocationStore,
	auditDispatcher *audit.Dispatcher,
) *AuthHandler {
	return &AuthHandler{
		db:      db,
		cfg:     cfg,
		tokens:  tokens,
		revoked: revoked,
		audit:   auditDispatcher,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required"`
	Password  string  `json:"password" binding:"required,min=6"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     string  `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	email, ok := validators.NormalizeEmail(req.Email)
	if !ok {
		httperr.BadRequest(c, "invalid_email", "Invalid e-mail address.")
		return
	}

	if h.cfg.ValidateEmailDomain && !validators.IsEmailDomainValid(c.Request.Context(), email) {
		httperr.BadRequest(c, "invalid_email_domain", "The e-mail domain does not look valid.")
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		httperr.Internal(c, "failed_to_check_email", "Could not register.", err)
		return
	}
	if count > 0 {
		httperr.Conflict(c, "email_already_exists", "A user with this e-mail already exists.")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not register.", err)
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: &hash,
		FirstName:    trimmed(req.FirstName),
		LastName:     trimmed(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		IsAdmin:      h.cfg.IsAdminEmail(email),
	}

	if err := h.db.Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration.
		if httperr.IsUniqueViolation(err) {
			httperr.Conflict(c, "email_already_exists", "A user with this e-mail already exists.")
			return
		}
		httperr.Internal(c, "failed_to_create_user", "Could not register.", err)
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "user_registered",
		Entity:   "user",
		EntityID: &user.ID,
	})

	h.respondWithToken(c, http.StatusCreated, &user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid e-mail or password.")
			return
		}
		httperr.Internal(c, "failed_to_load_user", "Could not log in.", err)
		return
	}

	if user.PasswordHash == nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid e-mail or password.")
		return
	}

	ok, rehash := auth.VerifyPassword(*user.PasswordHash, req.Password)
	if !ok {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid e-mail or password.")
		return
	}

	if rehash {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.db.Model(&user).Update("password_hash", hash).Error; err != nil {
				logging.FromContext(c.Request.Context()).WithError(err).Warn("password rehash failed")
			}
		}
	}

	h.respondWithToken(c, http.StatusOK, &user)
}

// Logout revokes the presented token until it would have expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		httperr.Unauthorized(c, "unauthorized", "Authentication required.")
		return
	}

	until := time.Now().Add(h.cfg.JWTTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}

	if err := h.revoked.Revoke(c.Request.Context(), claims.ID, until); err != nil {
		httperr.Internal(c, "failed_to_logout", "Could not log out.", err)
		return
	}

	h.clearTokenCookie(c)
	httpresp.OK(c, gin.H{"success": true})
}

func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user, ok := h.loadCaller(c)
	if !ok {
		return
	}
	httpresp.OK(c, user)
}

func (h *AuthHandler) UpdateCurrentUser(c *gin.Context) {
	user, ok := h.loadCaller(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	if req.FirstName != nil {
		user.FirstName = trimmed(req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = trimmed(req.LastName)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := h.db.Model(user).Select("first_name", "last_name", "phone").Updates(user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_user", "Could not update profile.", err)
		return
	}

	httpresp.OK(c, user)
}

// --------- Helpers ---------

func (h *AuthHandler) loadCaller(c *gin.Context) (*models.User, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		httperr.Unauthorized(c, "unauthorized", "Authentication required.")
		return nil, false
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "unauthorized", "Authentication required.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_load_user", "Could not load user.", err)
		return nil, false
	}
	return &user, true
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, _, err := h.tokens.Issue(user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not issue token.", err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(status, AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.cfg.JWTTTL.Seconds()), "/", "", h.cfg.IsProduction(), true)
}

func (h *AuthHandler) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cfg.IsProduction(), true)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
