package repository

import "github.com/promanhq/proman/internal/domain/entity"

type NotificationRepository interface {
	Create(n *entity.Notification) error
	// ListUnread returns notifications addressed to the user that they have
	// not marked read, newest first.
	ListUnread(userID string) ([]*entity.Notification, error)
	MarkRead(userID, id string) error
	MarkAllRead(userID string) error
}
