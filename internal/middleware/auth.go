package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bcdservices/dashboard-api/pkg/auth"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	"github.com/bcdservices/dashboard-api/pkg/httputil"
)

const (
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

type AuthMiddleware struct {
	tokens auth.JWTService
}

func NewAuthMiddleware(tokens auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token issued by the backend and puts
// the operator's email and role in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, unauthorized("missing authorization header"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			httputil.RespondWithError(c, unauthorized("invalid authorization format"))
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			httputil.RespondWithError(c, &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: "invalid token", Err: err})
			return
		}

		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

func unauthorized(message string) *apperrors.AppError {
	return &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: message}
}
