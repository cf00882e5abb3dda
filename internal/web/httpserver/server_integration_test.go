package httpserver_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"trackhub.org/trackhub-web/internal/web/auth"
	"trackhub.org/trackhub-web/internal/web/normalize"
	"trackhub.org/trackhub-web/internal/web/posts"
	"trackhub.org/trackhub-web/internal/web/testutil"
)

func getPage(t *testing.T, client *http.Client, pageURL string) *goquery.Document {
	t.Helper()

	resp, err := client.Get(pageURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testutil.ParseHTML(t, body)
}

func csrfToken(t *testing.T, doc *goquery.Document) string {
	t.Helper()

	token, ok := doc.Find(`input[name="csrf_token"]`).First().Attr("value")
	require.True(t, ok, "page should embed a csrf token")
	require.NotEmpty(t, token)
	return token
}

func postForm(t *testing.T, client *http.Client, target string, values url.Values) *goquery.Document {
	t.Helper()

	resp, err := client.PostForm(target, values)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testutil.ParseHTML(t, body)
}

func signIn(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	doc := getPage(t, client, baseURL+"/login")
	token := csrfToken(t, doc)

	postForm(t, client, baseURL+"/login/send-otp", url.Values{
		"csrf_token": {token},
		"email":      {"priya@example.edu"},
	})
	postForm(t, client, baseURL+"/login/verify-otp", url.Values{
		"csrf_token": {token},
		"otp":        {"123456"},
	})
	doc = postForm(t, client, baseURL+"/login", url.Values{
		"csrf_token": {token},
		"email":      {"priya@example.edu"},
		"password":   {"changeme"},
	})
	require.Contains(t, doc.Find(".flash").Text(), "Welcome back")
}

func TestMountedUnderBasePath(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t, testutil.WithBasePath("/hub"))
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/hub/")
	require.Equal(t, 2, doc.Find(".card").Length())

	link, ok := doc.Find(".nav-menu a").First().Attr("href")
	require.True(t, ok)
	require.Equal(t, "/hub/login", link)

	detail, ok := doc.Find(".card .btn").First().Attr("href")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(detail, "/hub/items/"), "detail link %q should carry the base path", detail)

	resp, err := client.Get(ts.URL + "/hub/static/styles.css")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFirstResponseSetsSessionCookie(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	resp, err := http.Get(ts.URL + "/login")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == "trackhub_session" && c.Value != "" {
			found = true
		}
	}
	require.True(t, found, "first page view should deliver the session cookie")
}

func TestDashboardRendersCards(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/")
	require.Equal(t, 2, doc.Find(".card").Length())
	require.Contains(t, doc.Text(), "Black umbrella")
	require.Contains(t, doc.Text(), "Student ID card")
}

func TestDashboardFilterChips(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/?filter=lost")
	require.Equal(t, 1, doc.Find(".card").Length())
	require.Contains(t, doc.Text(), "Student ID card")
	require.NotContains(t, doc.Text(), "Black umbrella")

	doc = getPage(t, client, ts.URL+"/?filter=all&category=Accessories")
	require.Equal(t, 1, doc.Find(".card").Length())
	require.Contains(t, doc.Text(), "Black umbrella")
}

func TestDashboardEmptyAndErrorStates(t *testing.T) {
	t.Parallel()

	svc := posts.NewStaticService()
	svc.Posts = nil
	ts := testutil.NewServer(t, testutil.WithPostsService(svc))
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/")
	require.Contains(t, doc.Find(".empty-state").Text(), "No items match this filter yet.")

	failing := posts.NewStaticService()
	failing.Err = &posts.BackendError{StatusCode: 500, Message: "backend down for maintenance"}
	ts2 := testutil.NewServer(t, testutil.WithPostsService(failing))

	doc = getPage(t, client, ts2.URL+"/")
	require.Contains(t, doc.Find(".empty-state").Text(), "backend down for maintenance")
}

func TestDashboardDisablesCardsWithoutID(t *testing.T) {
	t.Parallel()

	svc := posts.NewStaticService()
	svc.Posts = append(svc.Posts, normalize.Post{Title: "Mystery item", Status: normalize.StatusLost})
	ts := testutil.NewServer(t, testutil.WithPostsService(svc))
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/")
	require.Equal(t, 1, doc.Find(".card-disabled").Length())
	require.Contains(t, doc.Find(".card-disabled").Text(), "Details unavailable")
	require.Equal(t, 0, doc.Find(`.card-disabled a[href^="/items/"]`).Length())
}

func TestItemDetailByPathAndLegacyQuery(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/items/1")
	require.Contains(t, doc.Find("h1").Text(), "Black umbrella")

	doc = getPage(t, client, ts.URL+"/item?id=1")
	require.Contains(t, doc.Find("h1").Text(), "Black umbrella")
}

func TestItemDetailUnknownID(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/items/99")
	require.Contains(t, doc.Find(".empty-state").Text(), "This post no longer exists.")
}

func TestContactFlowHappyPath(t *testing.T) {
	t.Parallel()

	svc := posts.NewStaticService()
	ts := testutil.NewServer(t, testutil.WithPostsService(svc))
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/items/1")
	token := csrfToken(t, doc)

	doc = postForm(t, client, ts.URL+"/items/1/contact/initiate", url.Values{
		"csrf_token":  {token},
		"senderName":  {"Rahul"},
		"senderEmail": {"rahul@example.edu"},
		"senderPhone": {"+919999999999"},
		"message":     {"I think this is mine."},
	})
	require.Equal(t, []string{"1"}, svc.Contacted)
	require.Contains(t, doc.Find(".flash").Text(), "OTP sent")
	require.Equal(t, 1, doc.Find(`input[name="otp"]`).Length(), "OTP step is visible")

	doc = postForm(t, client, ts.URL+"/items/1/contact/verify", url.Values{
		"csrf_token": {token},
		"otp":        {"123456"},
	})
	require.Contains(t, doc.Find(".flash").Text(), "Message sent successfully")
	require.Contains(t, doc.Text(), "Send another message")
}

func TestContactBlankFieldIsLocalOnly(t *testing.T) {
	t.Parallel()

	svc := posts.NewStaticService()
	ts := testutil.NewServer(t, testutil.WithPostsService(svc))
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/items/1")
	token := csrfToken(t, doc)

	doc = postForm(t, client, ts.URL+"/items/1/contact/initiate", url.Values{
		"csrf_token":  {token},
		"senderName":  {"Rahul"},
		"senderEmail": {"rahul@example.edu"},
		"senderPhone": {"   "},
		"message":     {"I think this is mine."},
	})
	require.Empty(t, svc.Contacted, "no backend call for local validation failures")
	require.Contains(t, doc.Find(".field-error").Text(), "phone")
	require.Equal(t, 0, doc.Find(`input[name="otp"]`).Length(), "OTP step stays hidden")

	// Entered values are preserved for correction.
	val, _ := doc.Find(`input[name="senderName"]`).Attr("value")
	require.Equal(t, "Rahul", val)
}

// initiateFailService fails only the contact-initiate call; everything else
// behaves like the fixture service.
type initiateFailService struct {
	*posts.StaticService
}

func (s *initiateFailService) ContactInitiate(ctx context.Context, postID string, req posts.ContactRequest) (string, error) {
	return "", &posts.BackendError{StatusCode: 502, Message: "SMS gateway unavailable"}
}

func TestContactInitiateFailureNeverShowsOTPStep(t *testing.T) {
	t.Parallel()

	svc := &initiateFailService{StaticService: posts.NewStaticService()}
	ts := testutil.NewServer(t, testutil.WithPostsService(svc))
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/items/1")
	token := csrfToken(t, doc)

	doc = postForm(t, client, ts.URL+"/items/1/contact/initiate", url.Values{
		"csrf_token":  {token},
		"senderName":  {"Rahul"},
		"senderEmail": {"rahul@example.edu"},
		"senderPhone": {"+919999999999"},
		"message":     {"I think this is mine."},
	})
	require.Equal(t, 0, doc.Find(`input[name="otp"]`).Length(), "a failed initiate must not reveal the OTP step")
	require.Contains(t, doc.Find(".error-panel").Text(), "SMS gateway unavailable")
}

func TestContactResetClearsWorkflow(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/items/1")
	token := csrfToken(t, doc)

	postForm(t, client, ts.URL+"/items/1/contact/initiate", url.Values{
		"csrf_token":  {token},
		"senderName":  {"Rahul"},
		"senderEmail": {"rahul@example.edu"},
		"senderPhone": {"+919999999999"},
		"message":     {"I think this is mine."},
	})

	doc = postForm(t, client, ts.URL+"/items/1/contact/reset", url.Values{
		"csrf_token": {token},
	})
	require.Equal(t, 0, doc.Find(`input[name="otp"]`).Length())

	// The fresh form retains nothing from the abandoned attempt.
	val, _ := doc.Find(`input[name="senderName"]`).Attr("value")
	require.Empty(t, val)
}

func TestClaimRequiresConfirmation(t *testing.T) {
	t.Parallel()

	svc := posts.NewStaticService()
	ts := testutil.NewServer(t, testutil.WithPostsService(svc))
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/items/1")
	token := csrfToken(t, doc)

	doc = postForm(t, client, ts.URL+"/items/1/claim", url.Values{
		"csrf_token":   {token},
		"claimerName":  {"Rahul"},
		"claimerEmail": {"rahul@example.edu"},
		"claimerPhone": {"+919999999999"},
	})
	require.Empty(t, svc.Claimed, "unconfirmed claims are never submitted")
	require.Contains(t, doc.Find(".field-error").Text(), "confirm")

	doc = postForm(t, client, ts.URL+"/items/1/claim", url.Values{
		"csrf_token":   {token},
		"claimerName":  {"Rahul"},
		"claimerEmail": {"rahul@example.edu"},
		"claimerPhone": {"+919999999999"},
		"confirm":      {"yes"},
	})
	require.Equal(t, []string{"1"}, svc.Claimed)
	require.Contains(t, doc.Find(".flash").Text(), "Claim submitted successfully!")
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for _, path := range []string{"/my-posts", "/upload", "/profile"} {
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, http.StatusFound, resp.StatusCode, "path %s", path)
		location := resp.Header.Get("Location")
		require.True(t, strings.HasPrefix(location, "/login"), "path %s redirected to %s", path, location)
	}
}

func TestLoginFlowStages(t *testing.T) {
	t.Parallel()

	authSvc := auth.NewStaticService()
	ts := testutil.NewServer(t, testutil.WithAuthService(authSvc))
	client := testutil.NewClient(t)

	// Stage 1: only the email form is shown.
	doc := getPage(t, client, ts.URL+"/login")
	token := csrfToken(t, doc)
	require.Equal(t, 1, doc.Find(`input[name="email"]`).Length())
	require.Equal(t, 0, doc.Find(`input[name="password"]`).Length())

	// Stage 2: after sending the OTP, the code form appears.
	doc = postForm(t, client, ts.URL+"/login/send-otp", url.Values{
		"csrf_token": {token},
		"email":      {"priya@example.edu"},
	})
	require.Equal(t, []string{auth.PurposeLogin}, authSvc.SentOTPs)
	require.Equal(t, 1, doc.Find(`input[name="otp"]`).Length())
	require.Equal(t, 0, doc.Find(`input[name="password"]`).Length(), "password stays locked until the OTP verifies")

	// A wrong code keeps the password locked.
	doc = postForm(t, client, ts.URL+"/login/verify-otp", url.Values{
		"csrf_token": {token},
		"otp":        {"000000"},
	})
	require.Contains(t, doc.Find(".field-error").Text(), "Invalid or expired OTP.")
	require.Equal(t, 0, doc.Find(`input[name="password"]`).Length())

	// Stage 3: the right code unlocks the password form.
	doc = postForm(t, client, ts.URL+"/login/verify-otp", url.Values{
		"csrf_token": {token},
		"otp":        {"123456"},
	})
	require.Equal(t, 1, doc.Find(`input[name="password"]`).Length())

	// Wrong password surfaces the backend's words.
	doc = postForm(t, client, ts.URL+"/login", url.Values{
		"csrf_token": {token},
		"email":      {"priya@example.edu"},
		"password":   {"wrong"},
	})
	require.Contains(t, doc.Find(".field-error").Text(), "Invalid email or password.")

	// Correct credentials start the session.
	doc = postForm(t, client, ts.URL+"/login", url.Values{
		"csrf_token": {token},
		"email":      {"priya@example.edu"},
		"password":   {"changeme"},
	})
	require.Contains(t, doc.Find(".flash").Text(), "Welcome back, Priya Sharma!")
	require.Contains(t, doc.Find(".navbar").Text(), "Logout")
}

func TestRegisterFlowPasswordMismatchIsLocal(t *testing.T) {
	t.Parallel()

	authSvc := auth.NewStaticService()
	ts := testutil.NewServer(t, testutil.WithAuthService(authSvc))
	client := testutil.NewClient(t)

	doc := getPage(t, client, ts.URL+"/register")
	token := csrfToken(t, doc)

	postForm(t, client, ts.URL+"/register/send-otp", url.Values{
		"csrf_token": {token},
		"firstName":  {"Rahul"},
		"email":      {"rahul@example.edu"},
		"phone":      {"+919999999999"},
	})
	postForm(t, client, ts.URL+"/register/verify-otp", url.Values{
		"csrf_token": {token},
		"otp":        {"123456"},
	})

	doc = postForm(t, client, ts.URL+"/register", url.Values{
		"csrf_token":      {token},
		"firstName":       {"Rahul"},
		"lastName":        {"Verma"},
		"email":           {"rahul@example.edu"},
		"phone":           {"+919999999999"},
		"password":        {"secret123"},
		"confirmPassword": {"different"},
	})
	require.Contains(t, doc.Find(".field-error").Text(), "passwords do not match")

	doc = postForm(t, client, ts.URL+"/register", url.Values{
		"csrf_token":      {token},
		"firstName":       {"Rahul"},
		"lastName":        {"Verma"},
		"email":           {"rahul@example.edu"},
		"phone":           {"+919999999999"},
		"password":        {"secret123"},
		"confirmPassword": {"secret123"},
	})
	require.Contains(t, doc.Find(".flash").Text(), "Account created. Please sign in.")
}

func TestMyPostsAndDelete(t *testing.T) {
	t.Parallel()

	svc := posts.NewStaticService()
	ts := testutil.NewServer(t, testutil.WithPostsService(svc))
	client := testutil.NewClient(t)

	signIn(t, client, ts.URL)

	doc := getPage(t, client, ts.URL+"/my-posts")
	require.Equal(t, 2, doc.Find(".card").Length())
	token := csrfToken(t, doc)

	doc = postForm(t, client, ts.URL+"/my-posts/1/delete", url.Values{
		"csrf_token": {token},
	})
	require.Equal(t, []string{"1"}, svc.Deleted)
	require.Contains(t, doc.Find(".flash").Text(), "Post deleted.")
	require.Equal(t, 1, doc.Find(".card").Length())
}

func TestProfilePage(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)

	signIn(t, client, ts.URL)

	doc := getPage(t, client, ts.URL+"/profile")
	require.Contains(t, doc.Find("h1").Text(), "Priya Sharma")
	require.Contains(t, doc.Text(), "priya@example.edu")
	require.Contains(t, doc.Find(".stats").Text(), "Items posted")
}

func TestPostFormsRejectMissingCSRFToken(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)

	// Establish a session first.
	getPage(t, client, ts.URL+"/")

	resp, err := client.PostForm(ts.URL+"/items/1/contact/reset", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStaticAssetsServed(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	resp, err := http.Get(ts.URL + "/static/styles.css")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
