package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/logger"
)

type testLogger struct{}

func (testLogger) Debug(args ...interface{})                 {}
func (testLogger) Debugf(format string, args ...interface{}) {}
func (testLogger) Info(args ...interface{})                  {}
func (testLogger) Infof(format string, args ...interface{})  {}
func (testLogger) Warn(args ...interface{})                  {}
func (testLogger) Warnf(format string, args ...interface{})  {}
func (testLogger) Error(args ...interface{})                 {}
func (testLogger) Errorf(format string, args ...interface{}) {}
func (testLogger) Fatal(args ...interface{})                 {}
func (testLogger) Fatalf(format string, args ...interface{}) {}
func (l testLogger) WithField(key string, value interface{}) logger.Logger {
	return l
}
func (l testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return l
}

type stubProfileLoader struct {
	profile *entities.Profile
	err     error
}

func (s *stubProfileLoader) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject, issuer string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthTestRouter(cfg *config.AuthConfig, loader ProfileLoader, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(cfg, loader, testLogger{})

	engine := gin.New()
	group := engine.Group("/", m.Authenticate())
	if admin {
		group.Use(m.RequireAdmin())
	}
	group.GET("/probe", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	return engine
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	cfg := &config.AuthConfig{JWTSecret: testSecret}

	t.Run("accepts a valid token and exposes the user ID", func(t *testing.T) {
		engine := newAuthTestRouter(cfg, &stubProfileLoader{}, false)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-42", ""))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", rec.Body.String())
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		engine := newAuthTestRouter(cfg, &stubProfileLoader{}, false)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		engine := newAuthTestRouter(cfg, &stubProfileLoader{}, false)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "user-42", ""))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("enforces the configured issuer", func(t *testing.T) {
		strictCfg := &config.AuthConfig{JWTSecret: testSecret, Issuer: "expected-issuer"}
		engine := newAuthTestRouter(strictCfg, &stubProfileLoader{}, false)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-42", "wrong-issuer"))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	cfg := &config.AuthConfig{JWTSecret: testSecret}

	t.Run("allows admin-tier profiles", func(t *testing.T) {
		loader := &stubProfileLoader{profile: &entities.Profile{ID: "admin-1", Tier: entities.TierAdmin}}
		engine := newAuthTestRouter(cfg, loader, true)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "admin-1", ""))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects free-tier profiles", func(t *testing.T) {
		loader := &stubProfileLoader{profile: &entities.Profile{ID: "user-1", Tier: entities.TierFree}}
		engine := newAuthTestRouter(cfg, loader, true)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-1", ""))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
