package application

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promanhq/proman/internal/domain/entity"
	repo "github.com/promanhq/proman/internal/domain/repository"
	"github.com/promanhq/proman/pkg/helpers"
)

type fakeUserRepo struct {
	byID map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) Create(u *entity.User) error {
	for _, e := range f.byID {
		if e.Email == u.Email {
			return repo.ErrConflict
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) Update(u *entity.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdatePassword(id, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUserRepo) SetActive(id string, active bool) error {
	u, ok := f.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUserRepo) Delete(id string) error {
	if _, ok := f.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserRepo) SetOTP(id, code string, expiry time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.OTP = &code
	u.OTPExpiry = &expiry
	return nil
}

func (f *fakeUserRepo) MarkVerified(id, code string) (bool, error) {
	u, ok := f.byID[id]
	if !ok {
		return false, repo.ErrNotFound
	}
	if u.IsVerified || u.OTP == nil || *u.OTP != code {
		return false, nil
	}
	u.IsVerified = true
	u.OTP = nil
	u.OTPExpiry = nil
	return true, nil
}

func (f *fakeUserRepo) List(search string) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(f.byID))
	for _, u := range f.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) ListActive(limit int) ([]*entity.User, error) {
	return f.List("")
}

type fakeMailer struct {
	sent []string // codes, in send order
	fail bool
}

func (m *fakeMailer) SendVerificationOTP(ctx context.Context, to, name, code string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, code)
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeMailer, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	users := newFakeUserRepo()
	mail := &fakeMailer{}
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(users, mail, jwt, testLogger(), func() time.Time { return now })
	return svc, users, mail, &now
}

func TestRegisterCreatesUnverifiedUserAndSendsCode(t *testing.T) {
	svc, repo, mail, _ := newAuthFixture(t)

	id, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, mail.sent, 1)
	assert.Regexp(t, `^\d{6}$`, mail.sent[0])

	u, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.False(t, u.IsVerified)
	assert.True(t, u.IsActive)
	require.NotNil(t, u.OTP)
	assert.Equal(t, mail.sent[0], *u.OTP)
	assert.NotEqual(t, "secret123", u.Password, "password must be stored hashed")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "dup@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "dup@example.com", Password: "secret456"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterRollsBackWhenMailFails(t *testing.T) {
	svc, repo, mail, _ := newAuthFixture(t)
	mail.fail = true

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailDelivery)
	assert.Empty(t, repo.byID, "failed registration must not leave a user behind")

	// The same email can register again once delivery works.
	mail.fail = false
	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	assert.NoError(t, err)
}

func TestVerifyOTP(t *testing.T) {
	svc, _, mail, now := newAuthFixture(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	code := mail.sent[0]

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := svc.VerifyOTP(ctx, uuid.NewString(), code)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		_, _, err := svc.VerifyOTP(ctx, id, wrong)
		assert.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("expired code", func(t *testing.T) {
		*now = now.Add(helpers.OTPTTL + time.Second)
		_, _, err := svc.VerifyOTP(ctx, id, code)
		assert.ErrorIs(t, err, ErrOTPExpired)
		*now = now.Add(-(helpers.OTPTTL + time.Second))
	})

	t.Run("success mints a parseable token", func(t *testing.T) {
		u, token, err := svc.VerifyOTP(ctx, id, code)
		require.NoError(t, err)
		assert.True(t, u.IsVerified)
		assert.Nil(t, u.OTP)

		claims, err := svc.JWT.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, id, claims.UserID)
	})

	t.Run("already verified", func(t *testing.T) {
		_, _, err := svc.VerifyOTP(ctx, id, code)
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})
}

func TestResendInvalidatesPreviousCode(t *testing.T) {
	svc, _, mail, _ := newAuthFixture(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	first := mail.sent[0]

	require.NoError(t, svc.ResendOTP(ctx, id))
	require.Len(t, mail.sent, 2)
	second := mail.sent[1]

	if first != second {
		_, _, err = svc.VerifyOTP(ctx, id, first)
		assert.ErrorIs(t, err, ErrInvalidOTP, "stale code must stop verifying after a resend")
	}
	_, _, err = svc.VerifyOTP(ctx, id, second)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ResendOTP(ctx, id), ErrAlreadyVerified)
	assert.ErrorIs(t, svc.ResendOTP(ctx, uuid.NewString()), ErrUserNotFound)
}

func TestLogin(t *testing.T) {
	svc, repo, mail, _ := newAuthFixture(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)

	t.Run("unverified account", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "jane@example.com", "secret123")
		assert.ErrorIs(t, err, ErrNotVerified)
	})

	_, _, err = svc.VerifyOTP(ctx, id, mail.sent[0])
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "jane@example.com", "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		u, token, err := svc.Login(ctx, "jane@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)

		claims, err := svc.JWT.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, id, claims.UserID)
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, repo.SetActive(id, false))
		_, _, err := svc.Login(ctx, "jane@example.com", "secret123")
		assert.ErrorIs(t, err, ErrDeactivated)
	})
}
