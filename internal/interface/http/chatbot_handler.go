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

type ChatbotHandler struct {
	Svc    *app.ChatbotService
	Logger *logrus.Logger
}

func NewChatbotHandler(svc *app.ChatbotService, logger *logrus.Logger) *ChatbotHandler {
	return &ChatbotHandler{Svc: svc, Logger: logger}
}

type chatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversationId" binding:"omitempty,uuid"`
}

func (h *ChatbotHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	reply, err := h.Svc.Chat(c.Request.Context(), c.GetString(middleware.CtxUserIDKey),
		req.ConversationID, req.Message)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"reply":          reply.Reply,
		"conversationId": reply.ConversationID,
		"messages":       reply.Messages,
	}, "chat reply", nil)
}

func (h *ChatbotHandler) Conversations(c *gin.Context) {
	convs, err := h.Svc.Conversations(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, convs, "conversation list", nil)
}

func (h *ChatbotHandler) Conversation(c *gin.Context) {
	conv, err := h.Svc.Conversation(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, conv, "conversation detail", nil)
}

func (h *ChatbotHandler) DeleteConversation(c *gin.Context) {
	err := h.Svc.DeleteConversation(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "conversation deleted", nil)
}
