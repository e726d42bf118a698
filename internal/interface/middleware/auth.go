package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	repo "github.com/promanhq/proman/internal/domain/repository"
	"github.com/promanhq/proman/pkg/helpers"
	"github.com/promanhq/proman/pkg/response"
)

const (
	CtxUserIDKey  = "userID"
	CtxUserEmail  = "userEmail"
	CtxIsAdminKey = "isAdmin"
)

// Auth validates the Authorization bearer token and confirms the user
// still exists. On success it stashes the user id, email, and admin flag
// in the Gin context.
func Auth(jwt *helpers.JWTManager, users repo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "not authorized, try login again", nil)
			c.Abort()
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "not authorized, try login again", nil)
			c.Abort()
			return
		}

		u, err := users.GetByID(claims.UserID)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "user not found, try login again", nil)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserEmail, u.Email)
		c.Set(CtxIsAdminKey, u.IsAdmin)
		c.Next()
	}
}

// AdminOnly must run after Auth; it rejects non-admin callers.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsAdminKey) {
			response.Error[any](c, http.StatusForbidden, "admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
