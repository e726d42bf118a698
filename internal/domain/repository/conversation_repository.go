package repository

import "github.com/promanhq/proman/internal/domain/entity"

type ConversationRepository interface {
	Create(c *entity.Conversation) error
	// GetByID scopes the lookup to the owning user.
	GetByID(id, userID string) (*entity.Conversation, error)
	// ListByUser returns conversations newest first with only the first
	// message loaded, for history previews.
	ListByUser(userID string) ([]*entity.Conversation, error)
	AppendMessages(conversationID string, msgs []entity.Message) error
	Delete(id, userID string) error
}
