package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/promanhq/proman/internal/application"
	"github.com/promanhq/proman/internal/domain/entity"
	repo "github.com/promanhq/proman/internal/domain/repository"
	"github.com/promanhq/proman/internal/interface/middleware"
	"github.com/promanhq/proman/pkg/llm"
	"github.com/promanhq/proman/pkg/ratelimit"
)

type stubConvRepo struct {
	byID map[string]*entity.Conversation
}

func newStubConvRepo() *stubConvRepo {
	return &stubConvRepo{byID: make(map[string]*entity.Conversation)}
}

func (s *stubConvRepo) Create(c *entity.Conversation) error {
	c.ID = uuid.NewString()
	cp := *c
	s.byID[c.ID] = &cp
	return nil
}

func (s *stubConvRepo) GetByID(id, userID string) (*entity.Conversation, error) {
	c, ok := s.byID[id]
	if !ok || c.UserID != userID {
		return nil, repo.ErrNotFound
	}
	cp := *c
	cp.Messages = append([]entity.Message(nil), c.Messages...)
	return &cp, nil
}

func (s *stubConvRepo) ListByUser(userID string) ([]*entity.Conversation, error) {
	var out []*entity.Conversation
	for _, c := range s.byID {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubConvRepo) AppendMessages(conversationID string, msgs []entity.Message) error {
	c, ok := s.byID[conversationID]
	if !ok {
		return repo.ErrNotFound
	}
	c.Messages = append(c.Messages, msgs...)
	return nil
}

func (s *stubConvRepo) Delete(id, userID string) error {
	c, ok := s.byID[id]
	if !ok || c.UserID != userID {
		return repo.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type stubCompletion struct {
	reply string
	err   error
}

func (s *stubCompletion) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newChatbotRouter(t *testing.T, limit int, comp *stubCompletion) *gin.Engine {
	t.Helper()
	svc := app.NewChatbotService(newStubConvRepo(), comp,
		ratelimit.New(limit, time.Minute), quietLogger())
	h := NewChatbotHandler(svc, quietLogger())

	r := gin.New()
	g := r.Group("/api/chatbot")
	g.Use(func(c *gin.Context) { c.Set(middleware.CtxUserIDKey, "user-1") })
	g.POST("", h.Chat)
	g.GET("/conversations", h.Conversations)
	g.GET("/conversations/:id", h.Conversation)
	g.DELETE("/conversations/:id", h.DeleteConversation)
	return r
}

func TestChatReplyAndContinuation(t *testing.T) {
	r := newChatbotRouter(t, 15, &stubCompletion{reply: "Break it into sub-tasks."})

	rec, env := doJSON(t, r, http.MethodPost, "/api/chatbot", gin.H{
		"message": "How do I tackle a big task?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Break it into sub-tasks.", env.Data["reply"])
	convID, _ := env.Data["conversationId"].(string)
	require.NotEmpty(t, convID)

	rec, env = doJSON(t, r, http.MethodPost, "/api/chatbot", gin.H{
		"message":        "And then?",
		"conversationId": convID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, convID, env.Data["conversationId"])
}

func TestChatUnknownConversationNotFound(t *testing.T) {
	r := newChatbotRouter(t, 15, &stubCompletion{reply: "ok"})

	rec, env := doJSON(t, r, http.MethodPost, "/api/chatbot", gin.H{
		"message":        "hello",
		"conversationId": uuid.NewString(),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestChatRateLimitedWithRetryAfter(t *testing.T) {
	r := newChatbotRouter(t, 1, &stubCompletion{reply: "ok"})

	rec, _ := doJSON(t, r, http.MethodPost, "/api/chatbot", gin.H{"message": "first"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doJSON(t, r, http.MethodPost, "/api/chatbot", gin.H{"message": "second"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)

	retry := rec.Header().Get("Retry-After")
	require.NotEmpty(t, retry)
	assert.NotEqual(t, "0", retry)
	assert.Contains(t, env.Error, "retryAfterSeconds")
}

func TestChatUpstreamFailureMapsToBadGateway(t *testing.T) {
	r := newChatbotRouter(t, 15, &stubCompletion{err: llm.ErrUpstream})

	rec, env := doJSON(t, r, http.MethodPost, "/api/chatbot", gin.H{"message": "hello"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, env.Success)
}
