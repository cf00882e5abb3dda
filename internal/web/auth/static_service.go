package auth

import (
	"context"
	"strings"

	"trackhub.org/trackhub-web/internal/web/normalize"
)

// StaticService is a fixture-backed Service for tests and local development.
// Any OTP equal to Code verifies; any password equal to Password logs in.
type StaticService struct {
	Account  normalize.User
	Password string
	Code     string
	Err      error

	SentOTPs []string // purposes, in order
}

// NewStaticService returns a StaticService with one known account.
func NewStaticService() *StaticService {
	return &StaticService{
		Account: normalize.User{
			ID:        "7",
			FirstName: "Priya",
			LastName:  "Sharma",
			Email:     "priya@example.edu",
			Phone:     "+911234567890",
		},
		Password: "changeme",
		Code:     "123456",
	}
}

// Register implements Service.
func (s *StaticService) Register(ctx context.Context, req Registration) (normalize.User, error) {
	if s.Err != nil {
		return normalize.User{}, s.Err
	}
	return normalize.User{
		ID:        s.Account.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}, nil
}

// Login implements Service.
func (s *StaticService) Login(ctx context.Context, email, password string) (normalize.User, error) {
	if s.Err != nil {
		return normalize.User{}, s.Err
	}
	if !strings.EqualFold(email, s.Account.Email) || password != s.Password {
		return normalize.User{}, &BackendError{StatusCode: 401, Message: "Invalid email or password."}
	}
	return s.Account, nil
}

// SendOTP implements Service.
func (s *StaticService) SendOTP(ctx context.Context, email, phone, purpose string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.SentOTPs = append(s.SentOTPs, purpose)
	return "OTP sent successfully to your registered phone.", nil
}

// VerifyOTP implements Service.
func (s *StaticService) VerifyOTP(ctx context.Context, phone, otp, purpose string) (bool, string, error) {
	if s.Err != nil {
		return false, "", s.Err
	}
	if otp != s.Code {
		return false, "", &BackendError{StatusCode: 400, Message: "Invalid or expired OTP."}
	}
	return true, "OTP verified successfully.", nil
}

// PhoneByEmail implements Service.
func (s *StaticService) PhoneByEmail(ctx context.Context, email string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if !strings.EqualFold(email, s.Account.Email) {
		return "", ErrUserNotFound
	}
	return s.Account.Phone, nil
}

// ProfileByEmail implements Service.
func (s *StaticService) ProfileByEmail(ctx context.Context, email string) (normalize.User, error) {
	if s.Err != nil {
		return normalize.User{}, s.Err
	}
	if !strings.EqualFold(email, s.Account.Email) {
		return normalize.User{}, ErrUserNotFound
	}
	return s.Account, nil
}
