package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/promanhq/proman/internal/application"
	"github.com/promanhq/proman/pkg/response"
	"github.com/promanhq/proman/pkg/validation"
)

type AuthHandler struct {
	Svc    *app.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *app.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Title    string `json:"title"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"isAdmin"`
}

type verifyOTPRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
	OTP    string `json:"otp" binding:"required,len=6,numeric"`
}

type resendOTPRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	userID, err := h.Svc.Register(c.Request.Context(), app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Title:    req.Title,
		Role:     req.Role,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"userId": userID},
		"account created, verification code sent to your email", nil)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.VerifyOTP(c.Request.Context(), req.UserID, req.OTP)
	if err != nil {
		respondErr(c, err)
		return
	}
	data := u.Sanitized()
	data["token"] = token
	response.Success(c, http.StatusOK, data, "email verified successfully", nil)
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ResendOTP(c.Request.Context(), req.UserID); err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "new verification code sent", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	data := u.Sanitized()
	data["token"] = token
	response.Success(c, http.StatusOK, data, "login successful", nil)
}

// Logout is a no-op server side; tokens are stateless and simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}
