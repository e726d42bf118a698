package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promanhq/proman/internal/domain/entity"
	"github.com/promanhq/proman/internal/domain/repository"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(n *entity.Notification) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if n.NotiType == "" {
		n.NotiType = "alert"
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO notifications (task_id, text, noti_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, n.TaskID, n.Text, n.NotiType)
	if err := row.Scan(&n.ID, &n.CreatedAt); err != nil {
		return err
	}

	for _, uid := range n.Team {
		if _, err := tx.Exec(ctx, `
			INSERT INTO notification_team (notification_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, n.ID, uid); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *NotificationRepository) ListUnread(userID string) ([]*entity.Notification, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT n.id, COALESCE(n.task_id::text, ''), COALESCE(t.title, ''), n.text, n.noti_type, n.created_at
		FROM notifications n
		JOIN notification_team nt ON nt.notification_id = n.id AND nt.user_id = $1
		LEFT JOIN tasks t ON t.id = n.task_id
		WHERE NOT EXISTS (
			SELECT 1 FROM notification_reads nr
			WHERE nr.notification_id = n.id AND nr.user_id = $1
		)
		ORDER BY n.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		n := &entity.Notification{}
		if err := rows.Scan(&n.ID, &n.TaskID, &n.TaskTitle, &n.Text, &n.NotiType, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(userID, id string) error {
	_, err := r.pool.Exec(context.Background(), `
		INSERT INTO notification_reads (notification_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, id, userID)
	return err
}

func (r *NotificationRepository) MarkAllRead(userID string) error {
	_, err := r.pool.Exec(context.Background(), `
		INSERT INTO notification_reads (notification_id, user_id)
		SELECT nt.notification_id, nt.user_id
		FROM notification_team nt
		WHERE nt.user_id = $1
		ON CONFLICT DO NOTHING
	`, userID)
	return err
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
