// Package auth is the client for the Track Hub account endpoints: registration
// and login, the phone OTP gate that protects both, and profile lookups.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trackhub.org/trackhub-web/internal/web/normalize"
)

// OTP purposes accepted by the backend's send/verify endpoints.
const (
	PurposeLogin    = "LOGIN"
	PurposeRegister = "REGISTER"
)

// Service exposes the account operations the auth pages need.
type Service interface {
	// Register creates an account and returns the stored profile.
	Register(ctx context.Context, req Registration) (normalize.User, error)

	// Login checks credentials and returns the minimal session identity.
	Login(ctx context.Context, email, password string) (normalize.User, error)

	// SendOTP asks the backend to issue an OTP for the given purpose. For
	// LOGIN the backend resolves the phone from the email; for REGISTER the
	// submitted phone is required. The returned text is the delivery
	// confirmation shown to the user.
	SendOTP(ctx context.Context, email, phone, purpose string) (string, error)

	// VerifyOTP checks the code. The boolean reflects the textual success
	// indicator in the response body, which is the only thing that unlocks
	// the final submit.
	VerifyOTP(ctx context.Context, phone, otp, purpose string) (bool, string, error)

	// PhoneByEmail resolves the registered phone for an email.
	PhoneByEmail(ctx context.Context, email string) (string, error)

	// ProfileByEmail returns the account profile for the profile page.
	ProfileByEmail(ctx context.Context, email string) (normalize.User, error)
}

// ErrUserNotFound is returned when the backend knows no account for the email.
var ErrUserNotFound = errors.New("user not found")

// BackendError carries a server-reported auth failure with its verbatim text.
type BackendError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("auth backend error (%d)", e.StatusCode)
}

// Registration mirrors the backend's register body.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// Validate performs the local checks that must pass before any network call.
func (r Registration) Validate(confirmPassword string) error {
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.New("first name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return errors.New("phone number is required")
	}
	if strings.TrimSpace(r.Password) == "" {
		return errors.New("password is required")
	}
	if r.Password != confirmPassword {
		return errors.New("passwords do not match")
	}
	return nil
}

// IsVerifiedText reports whether an OTP response body carries the textual
// success indicator the flow keys on.
func IsVerifiedText(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "success") || strings.Contains(lower, "verified")
}
