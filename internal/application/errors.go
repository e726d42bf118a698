package application

import "errors"

// Domain error kinds. Handlers translate these to HTTP statuses; nothing
// below the handler boundary knows about status codes.
var (
	ErrEmailExists          = errors.New("email address already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyVerified      = errors.New("email already verified")
	ErrInvalidOTP           = errors.New("invalid OTP")
	ErrOTPExpired           = errors.New("OTP has expired")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrNotVerified          = errors.New("email address not verified")
	ErrDeactivated          = errors.New("user account has been deactivated")
	ErrEmailDelivery        = errors.New("failed to send verification email")
	ErrTaskNotFound         = errors.New("task not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrForbidden            = errors.New("not allowed")
)
