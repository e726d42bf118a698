package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/promanhq/proman/internal/domain/entity"
	repo "github.com/promanhq/proman/internal/domain/repository"
	"github.com/promanhq/proman/pkg/helpers"
)

// Mailer delivers verification mail. A send error is terminal for the
// calling operation; no retries happen here.
type Mailer interface {
	SendVerificationOTP(ctx context.Context, to, name, code string) error
}

// AuthService drives the unverified -> verified account lifecycle:
// registration with OTP issuance, code verification, resend, and login.
type AuthService struct {
	Repo   repo.UserRepository
	Mailer Mailer
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
	Clock  helpers.Clock
}

func NewAuthService(r repo.UserRepository, m Mailer, jwt *helpers.JWTManager, logger *logrus.Logger, clock helpers.Clock) *AuthService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &AuthService{Repo: r, Mailer: m, JWT: jwt, Logger: logger, Clock: clock}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Title    string
	Role     string
	IsAdmin  bool
}

// Register creates an unverified account and sends the verification
// code. If delivery fails the record is deleted again so the email can
// retry registration from scratch.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	if existing, err := s.Repo.GetByEmail(in.Email); err == nil && existing != nil {
		return "", ErrEmailExists
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return "", err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return "", err
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", err
	}
	expiry := s.Clock().Add(helpers.OTPTTL)

	u := &entity.User{
		Name:       in.Name,
		Email:      in.Email,
		Password:   hash,
		Title:      in.Title,
		Role:       in.Role,
		IsAdmin:    in.IsAdmin,
		IsActive:   true,
		IsVerified: false,
		OTP:        &code,
		OTPExpiry:  &expiry,
	}
	if err := s.Repo.Create(u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return "", ErrEmailExists
		}
		return "", err
	}

	if err := s.sendOTP(ctx, u.Email, u.Name, code); err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("verification email failed, rolling back registration")
		if delErr := s.Repo.Delete(u.ID); delErr != nil {
			s.Logger.WithError(delErr).WithField("user_id", u.ID).Error("rollback of unverified user failed")
		}
		return "", ErrEmailDelivery
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered, awaiting verification")
	return u.ID, nil
}

// VerifyOTP checks the supplied code against the outstanding one and, on
// success, flips the account to verified and mints a session token. The
// final flip is a guarded update so a concurrent resend invalidates a
// stale verify instead of being silently overwritten.
func (s *AuthService) VerifyOTP(ctx context.Context, userID, code string) (*entity.User, string, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	if u.IsVerified {
		return nil, "", ErrAlreadyVerified
	}
	if u.OTP == nil || *u.OTP != code {
		return nil, "", ErrInvalidOTP
	}
	if u.OTPExpiry == nil || s.Clock().After(*u.OTPExpiry) {
		return nil, "", ErrOTPExpired
	}

	ok, err := s.Repo.MarkVerified(u.ID, code)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		// A resend replaced the code between our read and the update.
		return nil, "", ErrInvalidOTP
	}
	u.IsVerified = true
	u.OTP = nil
	u.OTPExpiry = nil

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	s.Logger.WithField("user_id", u.ID).Info("email verified")
	return u, token, nil
}

// ResendOTP overwrites the outstanding code with a fresh one; the
// previous code stops verifying immediately. Verification state is
// untouched on delivery failure.
func (s *AuthService) ResendOTP(ctx context.Context, userID string) error {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	if err := s.Repo.SetOTP(u.ID, code, s.Clock().Add(helpers.OTPTTL)); err != nil {
		return err
	}
	if err := s.sendOTP(ctx, u.Email, u.Name, code); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("resend verification email failed")
		return ErrEmailDelivery
	}
	return nil
}

// sendOTP delivers the code, or just logs it when the app runs without
// an email provider configured.
func (s *AuthService) sendOTP(ctx context.Context, email, name, code string) error {
	if s.Mailer == nil {
		s.Logger.WithField("email", email).Warnf("no mail provider configured, verification code: %s", code)
		return nil
	}
	return s.Mailer.SendVerificationOTP(ctx, email, name, code)
}

// Login authenticates a verified, active account and mints a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !u.IsActive {
		return nil, "", ErrDeactivated
	}
	if !u.IsVerified {
		return nil, "", ErrNotVerified
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
