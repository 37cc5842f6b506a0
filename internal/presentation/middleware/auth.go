package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/logger"
)

// Context keys set by Authenticate.
const (
	UserIDKey = "user_id"
)

// ProfileLoader resolves the caller's profile for admin checks.
type ProfileLoader interface {
	GetProfile(ctx context.Context, userID string) (*entities.Profile, error)
}

// AuthMiddleware verifies bearer tokens issued by the hosted auth provider.
// Tokens are HS256-signed; the subject claim is the user ID.
type AuthMiddleware struct {
	config  *config.AuthConfig
	loader  ProfileLoader
	logger  logger.Logger
}

// NewAuthMiddleware creates the auth middleware.
func NewAuthMiddleware(cfg *config.AuthConfig, loader ProfileLoader, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{config: cfg, loader: loader, logger: log}
}

// Authenticate rejects requests without a valid bearer token and stores the
// user ID on the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.ErrorResponse("UNAUTHORIZED", "Missing bearer token", nil))
			return
		}

		userID, err := m.verifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.logger.WithField("error", err.Error()).Warn("token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.ErrorResponse("UNAUTHORIZED", "Invalid token", nil))
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// RequireAdmin rejects callers whose profile is not on the admin tier. It
// must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.ErrorResponse("UNAUTHORIZED", "Missing bearer token", nil))
			return
		}

		profile, err := m.loader.GetProfile(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.ErrorResponse("FORBIDDEN", "Admin access required", nil))
			return
		}
		if !profile.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.ErrorResponse("FORBIDDEN", "Admin access required", nil))
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) verifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}

	if m.config.Issuer != "" {
		issuer, err := claims.GetIssuer()
		if err != nil || issuer != m.config.Issuer {
			return "", fmt.Errorf("unexpected issuer")
		}
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("missing subject claim")
	}
	return subject, nil
}
