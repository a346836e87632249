package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/admin-auth/internal/model"
	"github.com/stemsi/admin-auth/internal/response"
	"github.com/stemsi/admin-auth/internal/service"
)

const (
	// ContextKeyAdmin is the Gin context key for the authenticated admin.
	ContextKeyAdmin = "admin"
)

// TokenResolver turns a bearer token into the admin identity it carries.
type TokenResolver interface {
	CurrentAdmin(token string) (*model.PublicAdmin, error)
}

// RequireAdmin validates the bearer token from the Authorization header.
// 401 with a Bearer challenge for missing or invalid tokens, 403 for a valid
// token without the admin role.
func RequireAdmin(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		admin, err := resolver.CurrentAdmin(token)
		if err != nil {
			if errors.Is(err, service.ErrAdminAccessRequired) {
				response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
				return
			}
			c.Header("WWW-Authenticate", "Bearer")
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyAdmin, admin)
		c.Next()
	}
}

// GetAdmin retrieves the authenticated admin from the Gin context.
func GetAdmin(c *gin.Context) *model.PublicAdmin {
	val, exists := c.Get(ContextKeyAdmin)
	if !exists {
		return nil
	}
	admin, ok := val.(*model.PublicAdmin)
	if !ok {
		return nil
	}
	return admin
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
