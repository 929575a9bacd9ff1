package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"outreach-gateway/internal/config"
	"outreach-gateway/internal/models"
	"outreach-gateway/internal/secrets"
	"outreach-gateway/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testUserRouter(t *testing.T) (*gin.Engine, *UserHandler) {
	t.Helper()

	dsn := fmt.Sprintf("file:user_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	box, err := secrets.New("test-secret")
	require.NoError(t, err)

	cfg := &config.Config{JWTSecret: "test-jwt-secret"}
	h := NewUserHandler(store.NewUserStore(db), box, cfg, zerolog.Nop())

	router := gin.New()
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)

	authed := router.Group("", RequireAuth(cfg.JWTSecret))
	authed.GET("/config", h.GetConfig)
	authed.POST("/config", h.SaveConfig)
	return router, h
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/register", "", map[string]string{
		"email":    "jane@acme.com",
		"password": "longenough",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	router, _ := testUserRouter(t)

	w := doJSON(router, http.MethodPost, "/register", "", map[string]string{
		"email":    "jane@acme.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	router, _ := testUserRouter(t)
	registerAndToken(t, router)

	w := doJSON(router, http.MethodPost, "/register", "", map[string]string{
		"email":    "Jane@Acme.com", // addresses are lower-cased before lookup
		"password": "longenough",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginVerifiesPassword(t *testing.T) {
	router, _ := testUserRouter(t)
	registerAndToken(t, router)

	w := doJSON(router, http.MethodPost, "/login", "", map[string]string{
		"email":    "jane@acme.com",
		"password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/login", "", map[string]string{
		"email":    "jane@acme.com",
		"password": "longenough",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")
}

func TestAuthMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	router, _ := testUserRouter(t)

	w := doJSON(router, http.MethodGet, "/config", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/config", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserConfigRoundTripSealsPassword(t *testing.T) {
	router, h := testUserRouter(t)
	token := registerAndToken(t, router)

	w := doJSON(router, http.MethodPost, "/config", token, map[string]interface{}{
		"host": "smtp.acme.com",
		"port": 587,
		"user": "mailer",
		"pass": "hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// The stored password is sealed, not plaintext.
	user, err := h.Users.GetByEmail("jane@acme.com")
	require.NoError(t, err)
	assert.NotContains(t, user.SMTPConfig, "hunter2")

	settings, err := h.SMTPSettings(user)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", settings.Pass)

	// GET never returns the password in any form.
	w = doJSON(router, http.MethodGet, "/config", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "smtp.acme.com")
	assert.NotContains(t, w.Body.String(), "hunter2")
}
