package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"trackhub.org/trackhub-web/internal/web/normalize"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPService implements Service against the backend auth endpoints.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service that talks to the Track Hub auth API.
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("auth: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("auth: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{base: parsed, client: client}, nil
}

// Register implements Service.
func (s *HTTPService) Register(ctx context.Context, body Registration) (normalize.User, error) {
	return s.submitUser(ctx, "/api/auth/register", body)
}

// Login implements Service.
func (s *HTTPService) Login(ctx context.Context, email, password string) (normalize.User, error) {
	body := map[string]string{"email": email, "password": password}
	return s.submitUser(ctx, "/api/auth/login", body)
}

// SendOTP implements Service.
func (s *HTTPService) SendOTP(ctx context.Context, email, phone, purpose string) (string, error) {
	body := map[string]string{"email": email, "purpose": purpose}
	if strings.TrimSpace(phone) != "" {
		body["phone"] = phone
	}
	req, err := s.newJSONRequest(ctx, "/api/auth/send-otp", body)
	if err != nil {
		return "", err
	}
	status, text, err := s.doText(req)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", errorFromText(status, text)
	}
	return text, nil
}

// VerifyOTP implements Service.
func (s *HTTPService) VerifyOTP(ctx context.Context, phone, otp, purpose string) (bool, string, error) {
	body := map[string]string{"phone": phone, "otp": otp, "purpose": purpose}
	req, err := s.newJSONRequest(ctx, "/api/auth/verify-otp", body)
	if err != nil {
		return false, "", err
	}
	status, text, err := s.doText(req)
	if err != nil {
		return false, "", err
	}
	if status < 200 || status > 299 {
		return false, "", errorFromText(status, text)
	}
	return IsVerifiedText(text), text, nil
}

// PhoneByEmail implements Service.
func (s *HTTPService) PhoneByEmail(ctx context.Context, email string) (string, error) {
	endpoint := "/api/auth/phone-by-email?email=" + url.QueryEscape(strings.TrimSpace(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.resolve(endpoint), nil)
	if err != nil {
		return "", fmt.Errorf("auth: build request: %w", err)
	}
	status, text, err := s.doText(req)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrUserNotFound, text)
	}
	if status < 200 || status > 299 {
		return "", errorFromText(status, text)
	}
	return text, nil
}

// ProfileByEmail implements Service.
func (s *HTTPService) ProfileByEmail(ctx context.Context, email string) (normalize.User, error) {
	endpoint := "/api/auth/profile?email=" + url.QueryEscape(strings.TrimSpace(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.resolve(endpoint), nil)
	if err != nil {
		return normalize.User{}, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return normalize.User{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusNotFound {
		return normalize.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalize.User{}, errorFromText(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return normalize.User{}, fmt.Errorf("auth: decode profile: %w", err)
	}
	return normalize.UserFromRaw(obj), nil
}

func (s *HTTPService) submitUser(ctx context.Context, endpoint string, payload any) (normalize.User, error) {
	req, err := s.newJSONRequest(ctx, endpoint, payload)
	if err != nil {
		return normalize.User{}, err
	}
	resp, err := s.do(req)
	if err != nil {
		return normalize.User{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalize.User{}, errorFromText(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return normalize.User{}, fmt.Errorf("auth: decode account: %w", err)
	}
	return normalize.UserFromRaw(obj), nil
}

func (s *HTTPService) doText(req *http.Request) (int, string, error) {
	resp, err := s.do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	text := strings.TrimSpace(string(raw))
	// Some backend builds wrap plain messages in a JSON string.
	var unquoted string
	if json.Unmarshal(raw, &unquoted) == nil {
		text = strings.TrimSpace(unquoted)
	}
	return resp.StatusCode, text, nil
}

func (s *HTTPService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: request failed: %w", err)
	}
	return resp, nil
}

func (s *HTTPService) newJSONRequest(ctx context.Context, endpoint string, payload any) (*http.Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("auth: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resolve(endpoint), &buf)
	if err != nil {
		return nil, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) string {
	trimmed := strings.TrimPrefix(endpoint, "/")
	ref, err := url.Parse(trimmed)
	if err != nil {
		ref = &url.URL{Path: trimmed}
	}
	return s.base.ResolveReference(ref).String()
}

func errorFromText(status int, text string) error {
	return &BackendError{StatusCode: status, Message: text}
}
