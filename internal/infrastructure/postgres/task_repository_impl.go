package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promanhq/proman/internal/domain/entity"
	"github.com/promanhq/proman/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(t *entity.Task, team []string) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if t.Assets == nil {
		t.Assets = []string{}
	}
	if t.Links == nil {
		t.Links = []string{}
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO tasks (title, date, priority, stage, description, assets, links, is_trashed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)
		RETURNING id, created_at, updated_at
	`, t.Title, t.Date, t.Priority, t.Stage, t.Description, t.Assets, t.Links)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return err
	}

	for _, uid := range team {
		if _, err := tx.Exec(ctx, `
			INSERT INTO task_team (task_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, t.ID, uid); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *TaskRepository) GetByID(id string) (*entity.Task, error) {
	ctx := context.Background()
	t := &entity.Task{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, date, priority, stage, description, assets, links, is_trashed, created_at, updated_at
		FROM tasks WHERE id = $1
	`, id)
	if err := row.Scan(&t.ID, &t.Title, &t.Date, &t.Priority, &t.Stage, &t.Description,
		&t.Assets, &t.Links, &t.IsTrashed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadTeam(ctx, t); err != nil {
		return nil, err
	}
	if err := r.loadSubTasks(ctx, t); err != nil {
		return nil, err
	}
	if err := r.loadActivities(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) List(f repository.TaskFilter) ([]*entity.Task, error) {
	ctx := context.Background()
	q := `
		SELECT id, title, date, priority, stage, description, assets, links, is_trashed, created_at, updated_at
		FROM tasks WHERE is_trashed = $1`
	args := []any{f.IsTrashed}
	if f.Stage != "" {
		args = append(args, f.Stage)
		q += ` AND stage = $2`
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		switch len(args) {
		case 2:
			q += ` AND (title ILIKE $2 OR stage ILIKE $2 OR priority ILIKE $2)`
		case 3:
			q += ` AND (title ILIKE $3 OR stage ILIKE $3 OR priority ILIKE $3)`
		}
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Task
	for rows.Next() {
		t := &entity.Task{}
		if err := rows.Scan(&t.ID, &t.Title, &t.Date, &t.Priority, &t.Stage, &t.Description,
			&t.Assets, &t.Links, &t.IsTrashed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range out {
		if err := r.loadTeam(ctx, t); err != nil {
			return nil, err
		}
		if err := r.loadSubTasks(ctx, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *TaskRepository) Update(t *entity.Task, team []string) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if t.Assets == nil {
		t.Assets = []string{}
	}
	if t.Links == nil {
		t.Links = []string{}
	}
	res, err := tx.Exec(ctx, `
		UPDATE tasks
		SET title = $1, date = $2, priority = $3, stage = $4, description = $5,
		    assets = $6, links = $7, updated_at = now()
		WHERE id = $8
	`, t.Title, t.Date, t.Priority, t.Stage, t.Description, t.Assets, t.Links, t.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM task_team WHERE task_id = $1`, t.ID); err != nil {
		return err
	}
	for _, uid := range team {
		if _, err := tx.Exec(ctx, `
			INSERT INTO task_team (task_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, t.ID, uid); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *TaskRepository) UpdateStage(id, stage string) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE tasks SET stage = $1, updated_at = now() WHERE id = $2
	`, stage, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) SetTrashed(id string, trashed bool) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE tasks SET is_trashed = $1, updated_at = now() WHERE id = $2
	`, trashed, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(id string) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *TaskRepository) DeleteTrashed() error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM tasks WHERE is_trashed = true`)
	return err
}

func (r *TaskRepository) RestoreTrashed() error {
	_, err := r.pool.Exec(context.Background(), `
		UPDATE tasks SET is_trashed = false, updated_at = now() WHERE is_trashed = true
	`)
	return err
}

func (r *TaskRepository) AddSubTask(taskID string, st *entity.SubTask) error {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO subtasks (task_id, title, tag, date, is_completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, taskID, st.Title, st.Tag, st.Date, st.IsCompleted)
	if err := row.Scan(&st.ID); err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return err
	}
	st.TaskID = taskID
	return nil
}

func (r *TaskRepository) SetSubTaskCompleted(taskID, subTaskID string, done bool) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE subtasks SET is_completed = $1 WHERE id = $2 AND task_id = $3
	`, done, subTaskID, taskID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) AddActivity(taskID string, a *entity.Activity) error {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO activities (task_id, type, activity, by_user, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, taskID, a.Type, a.Activity, a.ByUserID, a.Date)
	if err := row.Scan(&a.ID); err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return err
	}
	a.TaskID = taskID
	return nil
}

func (r *TaskRepository) AppendAsset(taskID, url string) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE tasks SET assets = array_append(assets, $1), updated_at = now() WHERE id = $2
	`, url, taskID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) loadTeam(ctx context.Context, t *entity.Task) error {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.title, u.role, u.email
		FROM task_team tt
		JOIN users u ON u.id = tt.user_id
		WHERE tt.task_id = $1
		ORDER BY u.name
	`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m entity.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Title, &m.Role, &m.Email); err != nil {
			return err
		}
		t.Team = append(t.Team, m)
	}
	return rows.Err()
}

func (r *TaskRepository) loadSubTasks(ctx context.Context, t *entity.Task) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, task_id, title, tag, date, is_completed
		FROM subtasks WHERE task_id = $1 ORDER BY date
	`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var st entity.SubTask
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.Tag, &st.Date, &st.IsCompleted); err != nil {
			return err
		}
		t.SubTasks = append(t.SubTasks, st)
	}
	return rows.Err()
}

func (r *TaskRepository) loadActivities(ctx context.Context, t *entity.Task) error {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.task_id, a.type, a.activity, COALESCE(a.by_user::text, ''), COALESCE(u.name, ''), a.created_at
		FROM activities a
		LEFT JOIN users u ON u.id = a.by_user
		WHERE a.task_id = $1
		ORDER BY a.created_at
	`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.Activity
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Type, &a.Activity, &a.ByUserID, &a.ByName, &a.Date); err != nil {
			return err
		}
		t.Activities = append(t.Activities, a)
	}
	return rows.Err()
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
