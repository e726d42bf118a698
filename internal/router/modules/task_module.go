package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promanhq/proman/internal/container"
	handlers "github.com/promanhq/proman/internal/interface/http"
	"github.com/promanhq/proman/internal/interface/middleware"
)

// TaskModule wires task CRUD, sub-tasks, activities, trash handling, and
// the dashboard under /api/task. Create/duplicate/update/trash are admin
// only; the rest is available to every signed-in member.
type TaskModule struct {
	Handler *handlers.TaskHandler
}

func NewTaskModule(h *handlers.TaskHandler) *TaskModule {
	return &TaskModule{Handler: h}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/task")
	g.Use(middleware.Auth(container.GetJWT(), container.GetUserRepo()))
	// Softer per-user cap on the whole task surface.
	g.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()))

	g.GET("/dashboard", m.Handler.Dashboard)
	g.GET("", m.Handler.List)
	g.GET("/:id", m.Handler.Get)
	g.POST("/activity/:id", m.Handler.PostActivity)
	g.PUT("/change-status/:id/:subId", m.Handler.SetSubTaskCompleted)

	admin := g.Group("/")
	admin.Use(middleware.AdminOnly())
	admin.POST("/create", m.Handler.Create)
	admin.POST("/duplicate/:id", m.Handler.Duplicate)
	admin.POST("/create-subtask/:id", m.Handler.AddSubTask)
	admin.POST("/asset/:id", m.Handler.UploadAsset)
	admin.PUT("/update/:id", m.Handler.Update)
	admin.PUT("/change-stage/:id", m.Handler.ChangeStage)
	admin.PUT("/:id", m.Handler.Trash)
	admin.DELETE("/delete-restore/:id", m.Handler.DeleteRestore)
}
