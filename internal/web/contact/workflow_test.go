package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"trackhub.org/trackhub-web/internal/web/posts"
)

// countingClient records every backend call so tests can assert that local
// validation failures never reach the network.
type countingClient struct {
	initiateCalls int
	verifyCalls   int
	initiateErr   error
	verifyErr     error
	lastVerify    posts.ContactVerifyRequest
}

func (c *countingClient) ContactInitiate(_ context.Context, _ string, _ posts.ContactRequest) (string, error) {
	c.initiateCalls++
	if c.initiateErr != nil {
		return "", c.initiateErr
	}
	return "OTP sent to your phone.", nil
}

func (c *countingClient) ContactVerify(_ context.Context, _ string, req posts.ContactVerifyRequest) (string, error) {
	c.verifyCalls++
	c.lastVerify = req
	if c.verifyErr != nil {
		return "", c.verifyErr
	}
	return "Message sent to the poster.", nil
}

func validSender() posts.ContactRequest {
	return posts.ContactRequest{
		SenderName:  "Priya Sharma",
		SenderEmail: "priya@example.edu",
		SenderPhone: "+911234567890",
		Message:     "I think I found your umbrella.",
	}
}

func TestInitiateBlankFieldMakesNoCall(t *testing.T) {
	t.Parallel()

	client := &countingClient{}
	wf := New("1")

	sender := validSender()
	sender.SenderPhone = "   "

	err := wf.Initiate(context.Background(), client, sender)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, 0, client.initiateCalls)
	require.Equal(t, StateIdle, wf.State)
	require.False(t, wf.AwaitingOTP())
}

func TestInitiateSuccessExposesOTPStep(t *testing.T) {
	t.Parallel()

	client := &countingClient{}
	wf := New("1")

	require.NoError(t, wf.Initiate(context.Background(), client, validSender()))
	require.Equal(t, 1, client.initiateCalls)
	require.True(t, wf.AwaitingOTP())
	require.Equal(t, "OTP sent to your phone.", wf.Notice)
}

func TestInitiateFailureNeverRevealsOTPStep(t *testing.T) {
	t.Parallel()

	client := &countingClient{initiateErr: errors.New("phone number rejected")}
	wf := New("1")

	err := wf.Initiate(context.Background(), client, validSender())
	require.Error(t, err)
	require.Equal(t, StateFailed, wf.State)
	require.False(t, wf.AwaitingOTP())
	require.Equal(t, "phone number rejected", wf.Fault)
}

func TestVerifyBlankOTPMakesNoCall(t *testing.T) {
	t.Parallel()

	client := &countingClient{}
	wf := New("1")
	require.NoError(t, wf.Initiate(context.Background(), client, validSender()))

	err := wf.Verify(context.Background(), client, "   ")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, 0, client.verifyCalls)
	require.True(t, wf.AwaitingOTP(), "the OTP step stays available")
}

func TestVerifySuccessCompletesAndClearsSender(t *testing.T) {
	t.Parallel()

	client := &countingClient{}
	wf := New("1")
	require.NoError(t, wf.Initiate(context.Background(), client, validSender()))

	require.NoError(t, wf.Verify(context.Background(), client, " 123456 "))
	require.True(t, wf.Done())
	require.Equal(t, "Message sent to the poster.", wf.Notice)
	require.Equal(t, posts.ContactRequest{}, wf.Sender, "sender identity is cleared")

	// The verify request carried the retained identity and the trimmed OTP.
	require.Equal(t, "123456", client.lastVerify.OTP)
	require.Equal(t, "priya@example.edu", client.lastVerify.SenderEmail)
}

func TestVerifyFailure(t *testing.T) {
	t.Parallel()

	client := &countingClient{verifyErr: errors.New("invalid OTP")}
	wf := New("1")
	require.NoError(t, wf.Initiate(context.Background(), client, validSender()))

	require.Error(t, wf.Verify(context.Background(), client, "000000"))
	require.Equal(t, StateFailed, wf.State)
	require.Equal(t, "invalid OTP", wf.Fault)
}

func TestStepsRejectedOutsideTheirState(t *testing.T) {
	t.Parallel()

	client := &countingClient{}
	wf := New("1")

	// Verify before any OTP was issued.
	require.ErrorIs(t, wf.Verify(context.Background(), client, "123456"), ErrInvalidState)

	require.NoError(t, wf.Initiate(context.Background(), client, validSender()))
	require.NoError(t, wf.Verify(context.Background(), client, "123456"))

	// Replays against the terminal state.
	require.ErrorIs(t, wf.Initiate(context.Background(), client, validSender()), ErrInvalidState)
	require.ErrorIs(t, wf.Verify(context.Background(), client, "123456"), ErrInvalidState)
	require.Equal(t, 1, client.initiateCalls)
	require.Equal(t, 1, client.verifyCalls)
}

func TestResetLeaksNothing(t *testing.T) {
	t.Parallel()

	client := &countingClient{verifyErr: errors.New("invalid OTP")}
	wf := New("1")
	require.NoError(t, wf.Initiate(context.Background(), client, validSender()))
	require.Error(t, wf.Verify(context.Background(), client, "000000"))

	wf.Reset()
	require.Equal(t, StateIdle, wf.State)
	require.Empty(t, wf.Notice)
	require.Empty(t, wf.Fault)
	require.Equal(t, posts.ContactRequest{}, wf.Sender)

	// A fresh attempt works after reset.
	client.verifyErr = nil
	require.NoError(t, wf.Initiate(context.Background(), client, validSender()))
	require.True(t, wf.AwaitingOTP())
}
