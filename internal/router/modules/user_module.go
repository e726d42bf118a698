package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/promanhq/proman/internal/container"
	handlers "github.com/promanhq/proman/internal/interface/http"
	"github.com/promanhq/proman/internal/interface/middleware"
)

// UserModule wires team, profile, and notification routes under /api/user.
// Register/activation/deletion are admin only.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/user")
	g.Use(middleware.Auth(container.GetJWT(), container.GetUserRepo()))

	g.GET("/get-team", m.Handler.GetTeam)
	g.GET("/notifications", m.Handler.Notifications)
	g.PUT("/read-noti", m.Handler.MarkNotificationRead)
	g.PUT("/profile", m.Handler.UpdateProfile)
	g.PUT("/change-password", m.Handler.ChangePassword)

	admin := g.Group("/")
	admin.Use(middleware.AdminOnly())
	admin.PUT("/:id", m.Handler.SetActive)
	admin.DELETE("/:id", m.Handler.Delete)
}
