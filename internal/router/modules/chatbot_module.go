package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/promanhq/proman/internal/container"
	handlers "github.com/promanhq/proman/internal/interface/http"
	"github.com/promanhq/proman/internal/interface/middleware"
)

// ChatbotModule wires the assistant endpoints under /api/chatbot. The
// per-user request limiter lives in the chatbot service, not here.
type ChatbotModule struct {
	Handler *handlers.ChatbotHandler
}

func NewChatbotModule(h *handlers.ChatbotHandler) *ChatbotModule {
	return &ChatbotModule{Handler: h}
}

func (m *ChatbotModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/chatbot")
	g.Use(middleware.Auth(container.GetJWT(), container.GetUserRepo()))

	g.POST("", m.Handler.Chat)
	g.GET("/conversations", m.Handler.Conversations)
	g.GET("/conversations/:id", m.Handler.Conversation)
	g.DELETE("/conversations/:id", m.Handler.DeleteConversation)
}
