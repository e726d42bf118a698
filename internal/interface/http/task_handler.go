package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/promanhq/proman/internal/application"
	"github.com/promanhq/proman/internal/interface/middleware"
	"github.com/promanhq/proman/pkg/response"
	"github.com/promanhq/proman/pkg/validation"
)

type TaskHandler struct {
	Svc    *app.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *app.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type taskRequest struct {
	Title       string   `json:"title" binding:"required"`
	Team        []string `json:"team"`
	Stage       string   `json:"stage" binding:"omitempty,oneof=todo 'in progress' completed"`
	Date        string   `json:"date"`
	Priority    string   `json:"priority" binding:"omitempty,oneof=high medium normal low"`
	Assets      []string `json:"assets"`
	Links       string   `json:"links"`
	Description string   `json:"description"`
}

type subTaskRequest struct {
	Title string `json:"title" binding:"required"`
	Tag   string `json:"tag"`
	Date  string `json:"date"`
}

type activityRequest struct {
	Type     string `json:"type" binding:"required,oneof=assigned started 'in progress' bug completed commented"`
	Activity string `json:"activity" binding:"required"`
}

type changeStageRequest struct {
	Stage string `json:"stage" binding:"required,oneof=todo 'in progress' completed"`
}

type subTaskDoneRequest struct {
	Completed bool `json:"completed"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	t, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), app.CreateTaskInput{
		Title:       req.Title,
		Team:        req.Team,
		Stage:       req.Stage,
		Date:        req.Date,
		Priority:    req.Priority,
		Assets:      req.Assets,
		Links:       req.Links,
		Description: req.Description,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t, "task created", nil)
}

func (h *TaskHandler) Duplicate(c *gin.Context) {
	t, err := h.Svc.Duplicate(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t, "task duplicated", nil)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.Update(c.Request.Context(), c.Param("id"), app.UpdateTaskInput{
		Title:       req.Title,
		Team:        req.Team,
		Stage:       req.Stage,
		Date:        req.Date,
		Priority:    req.Priority,
		Assets:      req.Assets,
		Links:       req.Links,
		Description: req.Description,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "task updated", nil)
}

func (h *TaskHandler) ChangeStage(c *gin.Context) {
	var req changeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangeStage(c.Request.Context(), c.Param("id"), req.Stage); err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "stage changed", nil)
}

func (h *TaskHandler) List(c *gin.Context) {
	trashed := c.Query("isTrashed") == "true"
	tasks, err := h.Svc.List(c.Request.Context(), c.Query("stage"), trashed, c.Query("search"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, tasks, "task list", nil)
}

func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, t, "task detail", nil)
}

func (h *TaskHandler) Dashboard(c *gin.Context) {
	stats, err := h.Svc.Dashboard(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats, "dashboard statistics", nil)
}

func (h *TaskHandler) AddSubTask(c *gin.Context) {
	var req subTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.AddSubTask(c.Request.Context(), c.Param("id"), req.Title, req.Tag, req.Date); err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusCreated, nil, "sub-task added", nil)
}

func (h *TaskHandler) SetSubTaskCompleted(c *gin.Context) {
	var req subTaskDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.SetSubTaskCompleted(c.Request.Context(), c.Param("id"), c.Param("subId"), req.Completed)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "sub-task updated", nil)
}

func (h *TaskHandler) PostActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.PostActivity(c.Request.Context(), c.Param("id"),
		c.GetString(middleware.CtxUserIDKey), req.Type, req.Activity)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusCreated, nil, "activity posted", nil)
}

func (h *TaskHandler) Trash(c *gin.Context) {
	if err := h.Svc.Trash(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "task moved to trash", nil)
}

func (h *TaskHandler) DeleteRestore(c *gin.Context) {
	actionType := c.Query("actionType")
	if err := h.Svc.DeleteRestore(c.Request.Context(), c.Param("id"), actionType); err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "operation performed successfully", nil)
}

// UploadAsset streams a multipart file into object storage and attaches
// the resulting URL to the task.
func (h *TaskHandler) UploadAsset(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer f.Close()

	url, err := h.Svc.UploadAsset(c.Request.Context(), c.Param("id"),
		fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"url": url}, "asset uploaded", nil)
}
