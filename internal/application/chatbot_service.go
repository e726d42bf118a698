package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/promanhq/proman/internal/domain/entity"
	repo "github.com/promanhq/proman/internal/domain/repository"
	"github.com/promanhq/proman/pkg/llm"
	"github.com/promanhq/proman/pkg/ratelimit"
)

const systemPrompt = "You are a helpful task management assistant. Help users with their tasks, projects, and productivity questions."

// CompletionClient produces one assistant message for a history.
type CompletionClient interface {
	Complete(ctx context.Context, msgs []llm.Message) (string, error)
}

// ErrChatRateLimited carries the wait hint for a denied chatbot call.
type ErrChatRateLimited struct {
	RetryAfterSeconds int
}

func (e *ErrChatRateLimited) Error() string { return "too many chatbot requests" }

// ChatbotService guards the completion API behind a per-user sliding
// window and persists each exchange as a conversation.
type ChatbotService struct {
	Convs   repo.ConversationRepository
	LLM     CompletionClient
	Limiter *ratelimit.Limiter
	Logger  *logrus.Logger
}

func NewChatbotService(convs repo.ConversationRepository, client CompletionClient, limiter *ratelimit.Limiter, logger *logrus.Logger) *ChatbotService {
	return &ChatbotService{Convs: convs, LLM: client, Limiter: limiter, Logger: logger}
}

type ChatReply struct {
	Reply          string
	ConversationID string
	Messages       []entity.Message
}

// Chat admits the request, loads or creates the conversation, calls the
// completion API with the full history, and persists both new messages.
func (s *ChatbotService) Chat(ctx context.Context, userID, conversationID, message string) (*ChatReply, error) {
	if ok, wait := s.Limiter.Allow(userID); !ok {
		return nil, &ErrChatRateLimited{RetryAfterSeconds: ratelimit.RetryAfterSeconds(wait)}
	}

	var conv *entity.Conversation
	if conversationID != "" {
		c, err := s.Convs.GetByID(conversationID, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrConversationNotFound
			}
			return nil, err
		}
		conv = c
	} else {
		// Not persisted yet: a failed completion must not leave an
		// empty conversation behind.
		conv = &entity.Conversation{
			UserID: userID,
			Title:  "New Conversation",
			Messages: []entity.Message{
				{Role: entity.RoleSystem, Content: systemPrompt},
			},
		}
	}

	userMsg := entity.Message{Role: entity.RoleUser, Content: message}
	history := make([]llm.Message, 0, len(conv.Messages)+1)
	for _, m := range conv.Messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	history = append(history, llm.Message{Role: userMsg.Role, Content: userMsg.Content})

	reply, err := s.LLM.Complete(ctx, history)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("completion call failed")
		return nil, err
	}
	assistantMsg := entity.Message{Role: entity.RoleAssistant, Content: reply}

	if conv.ID == "" {
		conv.Messages = append(conv.Messages, userMsg, assistantMsg)
		if err := s.Convs.Create(conv); err != nil {
			return nil, err
		}
	} else {
		if err := s.Convs.AppendMessages(conv.ID, []entity.Message{userMsg, assistantMsg}); err != nil {
			return nil, err
		}
		conv.Messages = append(conv.Messages, userMsg, assistantMsg)
	}

	return &ChatReply{Reply: reply, ConversationID: conv.ID, Messages: conv.Messages}, nil
}

// Conversations lists the user's history previews, newest first.
func (s *ChatbotService) Conversations(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	return s.Convs.ListByUser(userID)
}

func (s *ChatbotService) Conversation(ctx context.Context, userID, id string) (*entity.Conversation, error) {
	c, err := s.Convs.GetByID(id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *ChatbotService) DeleteConversation(ctx context.Context, userID, id string) error {
	if err := s.Convs.Delete(id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}
