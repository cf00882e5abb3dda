package posts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.Handler) *HTTPService {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	svc, err := NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)
	return svc
}

func TestListUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/posts/all", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"message": "fetched",
			"data": [{"id": 1, "title": "Umbrella", "status": "LOST"}]
		}`))
	}))

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "Umbrella", got[0].Title)
}

func TestListAcceptsBareArray(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1}, {"id": 2}]`))
	}))

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestListMalformedCollection(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": "object"}`))
	}))

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status": "NOT_FOUND", "message": "Post not found"}`))
	}))

	_, err := svc.Get(context.Background(), "99")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "Post not found")
}

func TestBackendErrorCarriesBodyText(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "database unavailable"}`))
	}))

	_, err := svc.List(context.Background())
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Equal(t, http.StatusInternalServerError, backendErr.StatusCode)
	require.Equal(t, "database unavailable", backendErr.Message)
}

func TestUpdateSendsNumericIDs(t *testing.T) {
	t.Parallel()

	var received map[string]any
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/posts/42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"id": 42, "title": "Umbrella"}`))
	}))

	req := PostRequest{ID: 42, UserID: 7, Title: "Umbrella", Status: "LOST"}
	updated, err := svc.Update(context.Background(), "42", req)
	require.NoError(t, err)
	require.Equal(t, "42", updated.ID)

	require.Equal(t, float64(42), received["id"], "id travels as a JSON number")
	require.Equal(t, float64(7), received["userId"])
}

func TestContactVerifyReturnsConfirmationText(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/posts/1/contact/verify", r.URL.Path)

		var req ContactVerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "123456", req.OTP)

		w.Write([]byte(`"Message sent to the poster."`))
	}))

	text, err := svc.ContactVerify(context.Background(), "1", ContactVerifyRequest{
		SenderName:  "Priya",
		SenderEmail: "priya@example.edu",
		SenderPhone: "+911234567890",
		Message:     "hello",
		OTP:         "123456",
	})
	require.NoError(t, err)
	require.Equal(t, "Message sent to the poster.", text)
}

func TestSubmitClaimPlainTextBody(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/posts/1/claim", r.URL.Path)
		w.Write([]byte("Claim submitted. The poster will be notified."))
	}))

	text, err := svc.SubmitClaim(context.Background(), "1", ClaimRequest{
		ClaimerName:  "Priya",
		ClaimerEmail: "priya@example.edu",
		ClaimerPhone: "+911234567890",
	})
	require.NoError(t, err)
	require.Equal(t, "Claim submitted. The poster will be notified.", text)
}

func TestRequestFailureIsNotABackendError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svc, err := NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)
	ts.Close()

	_, err = svc.List(context.Background())
	require.Error(t, err)
	var backendErr *BackendError
	require.False(t, errors.As(err, &backendErr), "transport failures are not backend errors")
}
