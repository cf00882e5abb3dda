// Package contact implements the two-step OTP handshake for contacting a
// poster: initiate issues a one-time code to the sender's phone, verify checks
// the code and forwards the message. The machine is explicit so the flow can
// be tested without a browser and resumed across the two HTTP round trips of a
// server-rendered page.
package contact

import (
	"context"
	"errors"
	"strings"

	"trackhub.org/trackhub-web/internal/web/posts"
)

// State names the workflow positions. There is a single active workflow per
// detail-page view.
type State string

const (
	// StateIdle is the entry state: the contact form is open, nothing sent.
	StateIdle State = "idle"
	// StateAwaitingOtpIssue means the initiate request is in flight.
	StateAwaitingOtpIssue State = "awaiting_otp_issue"
	// StateOtpIssued means the backend confirmed OTP delivery; the OTP entry
	// step is visible.
	StateOtpIssued State = "otp_issued"
	// StateVerifyingOtp means the verify request is in flight.
	StateVerifyingOtp State = "verifying_otp"
	// StateCompleted is terminal: the message reached the poster.
	StateCompleted State = "completed"
	// StateFailed is reachable from any non-terminal state and is fully
	// resettable back to StateIdle.
	StateFailed State = "failed"
)

// Client is the slice of the posts service the workflow drives.
type Client interface {
	ContactInitiate(ctx context.Context, postID string, req posts.ContactRequest) (string, error)
	ContactVerify(ctx context.Context, postID string, req posts.ContactVerifyRequest) (string, error)
}

// ErrInvalidState rejects a step submitted while the machine is not in the
// state that step belongs to (e.g. a replayed verify after completion).
var ErrInvalidState = errors.New("contact: step not valid in current state")

// ValidationError reports a local input failure. No network call is made for
// these; the machine stays where it was.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Message }

// Workflow is the per-view machine. All fields are exported so a snapshot can
// ride the session cookie between the initiate and verify round trips.
type Workflow struct {
	PostID string               `json:"postId"`
	State  State                `json:"state"`
	Sender posts.ContactRequest `json:"sender"`
	Notice string               `json:"notice,omitempty"`
	Fault  string               `json:"fault,omitempty"`
}

// New opens a workflow for the given post in the idle state.
func New(postID string) *Workflow {
	return &Workflow{PostID: postID, State: StateIdle}
}

// Initiate validates the sender fields and asks the backend to issue an OTP.
// Blank or whitespace-only identity fields keep the machine in the idle state
// without any network call. On success the machine holds the backend's
// delivery confirmation text and exposes the OTP step; on failure it moves to
// the failed state with the error text to surface.
func (w *Workflow) Initiate(ctx context.Context, client Client, sender posts.ContactRequest) error {
	if w.State != StateIdle {
		return ErrInvalidState
	}
	if msg := validateSender(sender); msg != "" {
		return &ValidationError{Message: msg}
	}

	w.Sender = sender
	w.State = StateAwaitingOtpIssue

	notice, err := client.ContactInitiate(ctx, w.PostID, sender)
	if err != nil {
		w.fail(err)
		return err
	}

	w.State = StateOtpIssued
	w.Notice = notice
	return nil
}

// Verify submits the user-entered OTP along with the retained sender identity.
// An empty OTP is rejected locally and the OTP step stays available. Success
// completes the workflow and clears the sender fields so nothing leaks into a
// later attempt.
func (w *Workflow) Verify(ctx context.Context, client Client, otp string) error {
	if w.State != StateOtpIssued {
		return ErrInvalidState
	}
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return &ValidationError{Message: "Please enter the OTP sent to your phone."}
	}

	w.State = StateVerifyingOtp

	req := posts.ContactVerifyRequest{
		SenderName:  w.Sender.SenderName,
		SenderEmail: w.Sender.SenderEmail,
		SenderPhone: w.Sender.SenderPhone,
		Message:     w.Sender.Message,
		OTP:         otp,
	}
	notice, err := client.ContactVerify(ctx, w.PostID, req)
	if err != nil {
		w.fail(err)
		return err
	}

	w.State = StateCompleted
	w.Notice = notice
	w.Sender = posts.ContactRequest{}
	return nil
}

// Reset returns the machine to the idle state with no retained sender data,
// notice, or stale OTP context. It is valid from every state.
func (w *Workflow) Reset() {
	w.State = StateIdle
	w.Sender = posts.ContactRequest{}
	w.Notice = ""
	w.Fault = ""
}

// AwaitingOTP reports whether the OTP entry step should be shown.
func (w *Workflow) AwaitingOTP() bool {
	return w.State == StateOtpIssued
}

// Done reports whether the workflow reached its terminal success state.
func (w *Workflow) Done() bool {
	return w.State == StateCompleted
}

func (w *Workflow) fail(err error) {
	w.State = StateFailed
	w.Fault = err.Error()
	if w.Fault == "" {
		w.Fault = "Network error. Please try again."
	}
}

func validateSender(sender posts.ContactRequest) string {
	switch {
	case strings.TrimSpace(sender.SenderName) == "":
		return "Please enter your name."
	case strings.TrimSpace(sender.SenderEmail) == "":
		return "Please enter your email."
	case strings.TrimSpace(sender.SenderPhone) == "":
		return "Please enter your phone number."
	case strings.TrimSpace(sender.Message) == "":
		return "Please enter a message for the poster."
	default:
		return ""
	}
}
