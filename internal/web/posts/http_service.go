package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"trackhub.org/trackhub-web/internal/web/normalize"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPService implements Service against the backend REST surface. Requests
// are single attempts; retry is an explicit user action, and the injected
// client is expected to carry the request timeout.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service that talks to the Track Hub post API.
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("posts: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("posts: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{base: parsed, client: client}, nil
}

// List implements Service.
func (s *HTTPService) List(ctx context.Context) ([]normalize.Post, error) {
	return s.fetchCollection(ctx, "/api/posts/all")
}

// ListByUser implements Service.
func (s *HTTPService) ListByUser(ctx context.Context, userID string) ([]normalize.Post, error) {
	endpoint := path.Join("/api/posts/user", url.PathEscape(strings.TrimSpace(userID)))
	return s.fetchCollection(ctx, endpoint)
}

// Get implements Service.
func (s *HTTPService) Get(ctx context.Context, id string) (normalize.Post, error) {
	endpoint := path.Join("/api/posts", url.PathEscape(strings.TrimSpace(id)))
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return normalize.Post{}, err
	}
	payload, err := s.doEnveloped(req)
	if err != nil {
		return normalize.Post{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return normalize.Post{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return normalize.PostFromRaw(raw), nil
}

// Create implements Service.
func (s *HTTPService) Create(ctx context.Context, body PostRequest) (normalize.Post, error) {
	return s.submitPost(ctx, http.MethodPost, "/api/posts/create", body)
}

// Update implements Service.
func (s *HTTPService) Update(ctx context.Context, id string, body PostRequest) (normalize.Post, error) {
	endpoint := path.Join("/api/posts", url.PathEscape(strings.TrimSpace(id)))
	return s.submitPost(ctx, http.MethodPut, endpoint, body)
}

// Delete implements Service.
func (s *HTTPService) Delete(ctx context.Context, id string) error {
	endpoint := path.Join("/api/posts", url.PathEscape(strings.TrimSpace(id)))
	req, err := s.newRequest(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	_, err = s.doEnveloped(req)
	return err
}

// ContactInitiate implements Service.
func (s *HTTPService) ContactInitiate(ctx context.Context, postID string, body ContactRequest) (string, error) {
	endpoint := path.Join("/api/posts", url.PathEscape(strings.TrimSpace(postID)), "contact", "initiate")
	return s.submitMessage(ctx, endpoint, body)
}

// ContactVerify implements Service.
func (s *HTTPService) ContactVerify(ctx context.Context, postID string, body ContactVerifyRequest) (string, error) {
	endpoint := path.Join("/api/posts", url.PathEscape(strings.TrimSpace(postID)), "contact", "verify")
	return s.submitMessage(ctx, endpoint, body)
}

// SubmitClaim implements Service.
func (s *HTTPService) SubmitClaim(ctx context.Context, postID string, body ClaimRequest) (string, error) {
	endpoint := path.Join("/api/posts", url.PathEscape(strings.TrimSpace(postID)), "claim")
	return s.submitMessage(ctx, endpoint, body)
}

func (s *HTTPService) fetchCollection(ctx context.Context, endpoint string) ([]normalize.Post, error) {
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	payload, err := s.doEnveloped(req)
	if err != nil {
		return nil, err
	}

	var raws []any
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, fmt.Errorf("%w: expected a collection", ErrMalformedResponse)
	}
	return normalize.PostsFromRaw(raws), nil
}

func (s *HTTPService) submitPost(ctx context.Context, method, endpoint string, body PostRequest) (normalize.Post, error) {
	req, err := s.newJSONRequest(ctx, method, endpoint, body)
	if err != nil {
		return normalize.Post{}, err
	}
	payload, err := s.doEnveloped(req)
	if err != nil {
		return normalize.Post{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return normalize.Post{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return normalize.PostFromRaw(raw), nil
}

// submitMessage posts a workflow body and returns the backend's confirmation
// text, which the UI surfaces to the user as-is.
func (s *HTTPService) submitMessage(ctx context.Context, endpoint string, body any) (string, error) {
	req, err := s.newJSONRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	resp, err := s.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errorFromBody(resp.StatusCode, raw)
	}
	return messageFromBody(raw), nil
}

// doEnveloped executes the request and unwraps an optional {status,message,data}
// envelope, returning the payload JSON.
func (s *HTTPService) doEnveloped(req *http.Request) (json.RawMessage, error) {
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromBody(resp.StatusCode, raw)
	}
	if readErr != nil {
		return nil, fmt.Errorf("posts: read response: %w", readErr)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		return env.Data, nil
	}
	return raw, nil
}

func (s *HTTPService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posts: request failed: %w", err)
	}
	return resp, nil
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("posts: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (s *HTTPService) newJSONRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("posts: encode payload: %w", err)
	}
	req, err := s.newRequest(ctx, method, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) string {
	trimmed := strings.TrimPrefix(endpoint, "/")
	ref := &url.URL{Path: trimmed}
	return s.base.ResolveReference(ref).String()
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// errorFromBody converts a non-success response into a BackendError carrying
// the body's own text. 404 maps to ErrNotFound so handlers can branch on it.
func errorFromBody(status int, body []byte) error {
	message := messageFromBody(body)
	if status == http.StatusNotFound {
		if message == "" {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	}
	return &BackendError{StatusCode: status, Message: message}
}

// messageFromBody extracts human-readable text from a response body that may
// be a JSON envelope, a JSON string, or plain text.
func messageFromBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return trimmed
}
