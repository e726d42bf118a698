package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promanhq/proman/internal/domain/entity"
	"github.com/promanhq/proman/internal/domain/repository"
)

type ConversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

func (r *ConversationRepository) Create(c *entity.Conversation) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if c.Title == "" {
		c.Title = "New Conversation"
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO conversations (user_id, title)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, c.UserID, c.Title)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}

	for i := range c.Messages {
		m := &c.Messages[i]
		row := tx.QueryRow(ctx, `
			INSERT INTO messages (conversation_id, role, content)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, c.ID, m.Role, m.Content)
		if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
			return err
		}
		m.ConversationID = c.ID
	}
	return tx.Commit(ctx)
}

func (r *ConversationRepository) GetByID(id, userID string) (*entity.Conversation, error) {
	ctx := context.Background()
	c := &entity.Conversation{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY seq
	`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		c.Messages = append(c.Messages, m)
	}
	return c, rows.Err()
}

// ListByUser returns previews: each conversation carries only its first
// message, newest conversations first.
func (r *ConversationRepository) ListByUser(userID string) ([]*entity.Conversation, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT c.id, c.user_id, c.title, c.created_at, c.updated_at,
		       m.id, m.role, m.content, m.created_at
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT id, role, content, created_at
			FROM messages WHERE conversation_id = c.id
			ORDER BY seq LIMIT 1
		) m ON true
		WHERE c.user_id = $1
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Conversation
	for rows.Next() {
		c := &entity.Conversation{}
		var mID, mRole, mContent *string
		var mCreatedAt *time.Time
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt,
			&mID, &mRole, &mContent, &mCreatedAt); err != nil {
			return nil, err
		}
		if mID != nil {
			m := entity.Message{ID: *mID, ConversationID: c.ID, Role: *mRole, Content: *mContent}
			if mCreatedAt != nil {
				m.CreatedAt = *mCreatedAt
			}
			c.Messages = append(c.Messages, m)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConversationRepository) AppendMessages(conversationID string, msgs []entity.Message) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range msgs {
		m := &msgs[i]
		row := tx.QueryRow(ctx, `
			INSERT INTO messages (conversation_id, role, content)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, conversationID, m.Role, m.Content)
		if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrNotFound
			}
			return err
		}
		m.ConversationID = conversationID
	}
	if _, err := tx.Exec(ctx, `
		UPDATE conversations SET updated_at = now() WHERE id = $1
	`, conversationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ConversationRepository) Delete(id, userID string) error {
	res, err := r.pool.Exec(context.Background(), `
		DELETE FROM conversations WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ConversationRepository = (*ConversationRepository)(nil)
