package repository

import (
	"errors"
	"time"

	"github.com/promanhq/proman/internal/domain/entity"
)

// ErrNotFound is returned by all repositories when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a uniqueness rule,
// e.g. registering an email that already exists.
var ErrConflict = errors.New("conflict")

// UserRepository defines the persistence operations for user records.
//
// SetOTP and MarkVerified are guarded single-statement updates so that a
// concurrent resend and a stale verify cannot interleave: MarkVerified
// only succeeds while the stored code still equals the one presented.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(u *entity.User) error
	UpdatePassword(id, hash string) error
	SetActive(id string, active bool) error
	Delete(id string) error

	// SetOTP overwrites the outstanding code and expiry for an unverified user.
	SetOTP(id, code string, expiry time.Time) error
	// MarkVerified atomically clears the OTP fields and flips the verified
	// flag, but only if the stored code still matches. Returns false when a
	// concurrent resend already replaced the code.
	MarkVerified(id, code string) (bool, error)

	List(search string) ([]*entity.User, error)
	ListActive(limit int) ([]*entity.User, error)
}
