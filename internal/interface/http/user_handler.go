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

type UserHandler struct {
	Svc    *app.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *app.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Role  string `json:"role"`
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

type setActiveRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *UserHandler) GetTeam(c *gin.Context) {
	users, err := h.Svc.GetTeam(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondErr(c, err)
		return
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	response.Success(c, http.StatusOK, out, "team list", nil)
}

func (h *UserHandler) Notifications(c *gin.Context) {
	notis, err := h.Svc.Notifications(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, notis, "unread notifications", nil)
}

func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	readType := c.Query("isReadType")
	id := c.Query("id")
	err := h.Svc.MarkNotificationRead(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), id, readType == "all")
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "notifications marked read", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(),
		c.GetString(middleware.CtxUserIDKey), c.GetBool(middleware.CtxIsAdminKey),
		app.UpdateProfileInput{TargetID: req.ID, Name: req.Name, Title: req.Title, Role: req.Role})
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, u.Sanitized(), "profile updated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.Password); err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed", nil)
}

func (h *UserHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.SetActive(c.Request.Context(), c.Param("id"), req.IsActive)
	if err != nil {
		respondErr(c, err)
		return
	}
	msg := "account deactivated"
	if u.IsActive {
		msg = "account activated"
	}
	response.Success(c, http.StatusOK, u.Sanitized(), msg, nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "user deleted", nil)
}
