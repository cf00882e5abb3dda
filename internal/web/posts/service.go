// Package posts is the client for the Track Hub post endpoints: listing
// dashboards, detail lookups, CRUD for a user's own posts, and the OTP-gated
// contact plus single-step claim submissions.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"trackhub.org/trackhub-web/internal/web/normalize"
)

// Service exposes the post operations the page handlers need.
type Service interface {
	// List returns every post, newest first, as the backend orders them.
	List(ctx context.Context) ([]normalize.Post, error)

	// Get returns a single post with its nested poster.
	Get(ctx context.Context, id string) (normalize.Post, error)

	// ListByUser returns the posts owned by the given user.
	ListByUser(ctx context.Context, userID string) ([]normalize.Post, error)

	// Create submits a new post.
	Create(ctx context.Context, req PostRequest) (normalize.Post, error)

	// Update replaces an existing post.
	Update(ctx context.Context, id string, req PostRequest) (normalize.Post, error)

	// Delete removes a post.
	Delete(ctx context.Context, id string) error

	// ContactInitiate asks the backend to issue an OTP to the sender's phone
	// and returns the delivery confirmation text.
	ContactInitiate(ctx context.Context, postID string, req ContactRequest) (string, error)

	// ContactVerify checks the OTP and forwards the message to the poster.
	ContactVerify(ctx context.Context, postID string, req ContactVerifyRequest) (string, error)

	// SubmitClaim files a single-step ownership claim.
	SubmitClaim(ctx context.Context, postID string, req ClaimRequest) (string, error)
}

var (
	// ErrNotFound is returned when the backend reports a missing post.
	ErrNotFound = errors.New("post not found")
	// ErrMalformedResponse is returned when a success status carries an
	// unexpected JSON shape, e.g. a non-collection where a collection was
	// expected.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// BackendError carries a server-reported failure. The message is the response
// body's own text so handlers can surface it verbatim.
type BackendError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend error (%d)", e.StatusCode)
}

// PostRequest mirrors the backend's post create/update body. Identifier fields
// are numeric on the wire.
type PostRequest struct {
	ID              int64  `json:"id,omitempty"`
	UserID          int64  `json:"userId,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	PhotoURL        string `json:"photoUrl,omitempty"`
	Category        string `json:"category"`
	Status          string `json:"status"`
	ContactPublic   string `json:"contactPublic,omitempty"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
}

// BuildPostRequest converts a normalized post back into the wire shape for a
// PUT, reattaching the MIME prefix the normalizer stripped.
func BuildPostRequest(p normalize.Post) PostRequest {
	req := PostRequest{
		Title:           p.Title,
		Description:     p.Description,
		Location:        p.Location,
		Category:        p.Category,
		Status:          p.Status,
		ContactPublic:   p.ContactPublic,
		AdditionalNotes: p.AdditionalNotes,
		PhotoURL:        p.PhotoDataURI(),
	}
	if id, err := strconv.ParseInt(p.ID, 10, 64); err == nil {
		req.ID = id
	}
	if uid, err := strconv.ParseInt(p.UserID, 10, 64); err == nil {
		req.UserID = uid
	}
	return req
}

// ContactRequest carries the sender identity for the contact-initiate step.
type ContactRequest struct {
	SenderName  string `json:"senderName"`
	SenderEmail string `json:"senderEmail"`
	SenderPhone string `json:"senderPhone"`
	Message     string `json:"message"`
}

// ContactVerifyRequest repeats the sender identity with the user-entered OTP.
type ContactVerifyRequest struct {
	SenderName  string `json:"senderName"`
	SenderEmail string `json:"senderEmail"`
	SenderPhone string `json:"senderPhone"`
	Message     string `json:"message"`
	OTP         string `json:"otp"`
}

// ClaimRequest carries the claimer identity for the single-step claim flow.
type ClaimRequest struct {
	ClaimerName  string `json:"claimerName"`
	ClaimerEmail string `json:"claimerEmail"`
	ClaimerPhone string `json:"claimerPhone"`
	ClaimReason  string `json:"claimReason,omitempty"`
}
