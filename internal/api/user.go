package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"outreach-gateway/internal/config"
	"outreach-gateway/internal/mailer"
	"outreach-gateway/internal/models"
	"outreach-gateway/internal/secrets"
	"outreach-gateway/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 7 * 24 * time.Hour

type UserHandler struct {
	Users  *store.UserStore
	Box    *secrets.Box
	Config *config.Config
	Log    zerolog.Logger
}

func NewUserHandler(users *store.UserStore, box *secrets.Box, cfg *config.Config, log zerolog.Logger) *UserHandler {
	return &UserHandler{Users: users, Box: box, Config: cfg, Log: log}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account.
func (h *UserHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email and password are required"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Password must be at least 8 characters"})
		return
	}

	if _, err := h.Users.GetByEmail(req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "An account with this email already exists"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create account"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create account"})
		return
	}

	user := &models.User{Email: req.Email, PasswordHash: string(hash)}
	if err := h.Users.Create(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create account"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": user})
}

// Login verifies credentials and returns a bearer token.
func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.Users.GetByEmail(req.Email)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Login failed"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to issue token"})
		return
	}

	resp := gin.H{"success": true, "token": token, "user": user}
	if settings, err := h.SMTPSettings(user); err == nil {
		resp["config"] = settings
	}
	c.JSON(http.StatusOK, resp)
}

// GetConfig returns the caller's stored SMTP configuration without the
// password.
func (h *UserHandler) GetConfig(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if user.SMTPConfig == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "config": nil})
		return
	}

	var settings mailer.Settings
	if err := json.Unmarshal([]byte(user.SMTPConfig), &settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Stored configuration is corrupt"})
		return
	}
	settings.Pass = ""
	c.JSON(http.StatusOK, gin.H{"success": true, "config": settings})
}

// SaveConfig stores the caller's SMTP configuration with a sealed password.
func (h *UserHandler) SaveConfig(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var settings mailer.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if settings.Host == "" || settings.Port == 0 || settings.User == "" || settings.Pass == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Host, port, user, and password are required"})
		return
	}

	sealed, err := h.Box.Seal(settings.Pass)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save configuration"})
		return
	}
	settings.Pass = sealed

	encoded, err := json.Marshal(settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save configuration"})
		return
	}

	user.SMTPConfig = string(encoded)
	if err := h.Users.Update(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "SMTP configuration saved"})
}

// SMTPSettings decrypts and returns the user's transport settings, for use
// by other handlers.
func (h *UserHandler) SMTPSettings(user *models.User) (*mailer.Settings, error) {
	if user.SMTPConfig == "" {
		return nil, errors.New("no SMTP configuration saved")
	}
	var settings mailer.Settings
	if err := json.Unmarshal([]byte(user.SMTPConfig), &settings); err != nil {
		return nil, err
	}
	pass, err := h.Box.Open(settings.Pass)
	if err != nil {
		return nil, err
	}
	settings.Pass = pass
	return &settings, nil
}

func (h *UserHandler) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Config.JWTSecret))
}

func (h *UserHandler) currentUser(c *gin.Context) (*models.User, bool) {
	email := c.GetString(ContextUserEmail)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return nil, false
	}
	user, err := h.Users.GetByEmail(email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return nil, false
	}
	return user, true
}
