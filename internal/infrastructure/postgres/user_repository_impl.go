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

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, password, title, role, is_admin, is_active, is_verified, otp, otp_expiry, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Title, &u.Role,
		&u.IsAdmin, &u.IsActive, &u.IsVerified, &u.OTP, &u.OTPExpiry,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(u *entity.User) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password, title, role, is_admin, is_active, is_verified, otp, otp_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.Title, u.Role, u.IsAdmin, u.IsActive, u.IsVerified, u.OTP, u.OTPExpiry)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(email string) (*entity.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(u *entity.User) error {
	ctx := context.Background()
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, title = $2, role = $3, updated_at = $4
		WHERE id = $5
	`, u.Name, u.Title, u.Role, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(id, hash string) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE users SET password = $1, updated_at = now() WHERE id = $2
	`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(id string, active bool) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE users SET is_active = $1, updated_at = now() WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(id string) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	return err
}

// SetOTP overwrites the outstanding code. Guarded on is_verified so a
// code can never be attached to an already verified account.
func (r *UserRepository) SetOTP(id, code string, expiry time.Time) error {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE users SET otp = $1, otp_expiry = $2, updated_at = now()
		WHERE id = $3 AND is_verified = false
	`, code, expiry, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkVerified flips the verified flag and clears the OTP fields in one
// statement, guarded on the code still matching. A zero row count means
// a concurrent resend replaced the code.
func (r *UserRepository) MarkVerified(id, code string) (bool, error) {
	res, err := r.pool.Exec(context.Background(), `
		UPDATE users SET is_verified = true, otp = NULL, otp_expiry = NULL, updated_at = now()
		WHERE id = $1 AND is_verified = false AND otp = $2
	`, id, code)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *UserRepository) List(search string) ([]*entity.User, error) {
	ctx := context.Background()
	q := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if search != "" {
		q += ` WHERE name ILIKE $1 OR title ILIKE $1 OR role ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *UserRepository) ListActive(limit int) ([]*entity.User, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+userColumns+` FROM users
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*entity.User, error) {
	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
