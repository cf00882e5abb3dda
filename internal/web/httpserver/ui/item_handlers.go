package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"trackhub.org/trackhub-web/internal/web/contact"
	"trackhub.org/trackhub-web/internal/web/normalize"
	"trackhub.org/trackhub-web/internal/web/pageurl"
	"trackhub.org/trackhub-web/internal/web/posts"
)

// itemID resolves the target post id, preferring the route parameter and
// falling back to the legacy location shapes.
func itemID(r *http.Request) (string, bool) {
	if id := chi.URLParam(r, "id"); id != "" {
		return id, true
	}
	return pageurl.ResolveID(r.URL, "id")
}

// ItemPage is the view model for the item detail page with its contact and
// claim panels.
type ItemPage struct {
	Post         normalize.Post
	Workflow     *contact.Workflow
	Sender       posts.ContactRequest
	Claim        posts.ClaimRequest
	ContactError string
	ClaimError   string
	LoadError    string
}

// Item renders the detail page. The id is resolved from the query string
// first, then from the path.
func (h *Handlers) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "That link is missing an item id.")
		return
	}

	page := h.loadItemPage(r, id)
	h.render(w, r, "item.html", http.StatusOK, "Item details", page)
}

// loadItemPage fetches the post and joins in any pending contact workflow for
// it from the session.
func (h *Handlers) loadItemPage(r *http.Request, id string) ItemPage {
	page := ItemPage{}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		logErr("item: fetch post", err)
		page.LoadError = userMessage(err)
		return page
	}
	page.Post = post

	if sess := requestSession(r); sess != nil {
		if wf := sess.Contact(); wf != nil && wf.PostID == id && wf.State != contact.StateIdle {
			page.Workflow = wf
			page.Sender = wf.Sender
		} else if user := sess.User(); user != nil {
			// Pre-fill the sender identity for signed-in visitors.
			page.Sender.SenderName = user.Name
			page.Sender.SenderEmail = user.Email
		}
	}
	return page
}

// ContactInitiate validates the sender identity and asks the backend to issue
// an OTP. Validation failures re-render in place; anything that changes the
// workflow state is stored in the session and redirected.
func (h *Handlers) ContactInitiate(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "That link is missing an item id.")
		return
	}

	sender := posts.ContactRequest{
		SenderName:  r.FormValue("senderName"),
		SenderEmail: r.FormValue("senderEmail"),
		SenderPhone: r.FormValue("senderPhone"),
		Message:     r.FormValue("message"),
	}

	wf := contact.New(id)
	err := wf.Initiate(r.Context(), h.posts, sender)

	var validationErr *contact.ValidationError
	if errors.As(err, &validationErr) {
		page := h.loadItemPage(r, id)
		page.Workflow = nil
		page.Sender = sender
		page.ContactError = validationErr.Message
		h.render(w, r, "item.html", http.StatusOK, "Item details", page)
		return
	}
	if err != nil {
		logErr("contact: initiate", err)
		wf.Fault = userMessage(err)
	}

	if sess := requestSession(r); sess != nil {
		sess.SetContact(wf)
	}
	redirect(w, r, "/items/"+id+"#contact", http.StatusSeeOther)
}

// ContactVerify submits the OTP and forwards the message on success.
func (h *Handlers) ContactVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "That link is missing an item id.")
		return
	}

	sess := requestSession(r)
	var wf *contact.Workflow
	if sess != nil {
		wf = sess.Contact()
	}
	if wf == nil || wf.PostID != id || !wf.AwaitingOTP() {
		redirect(w, r, "/items/"+id+"#contact", http.StatusSeeOther)
		return
	}

	err := wf.Verify(r.Context(), h.posts, r.FormValue("otp"))

	var validationErr *contact.ValidationError
	if errors.As(err, &validationErr) {
		page := h.loadItemPage(r, id)
		page.ContactError = validationErr.Message
		h.render(w, r, "item.html", http.StatusOK, "Item details", page)
		return
	}
	if err != nil {
		logErr("contact: verify", err)
		wf.Fault = userMessage(err)
	}

	if sess != nil {
		sess.SetContact(wf)
	}
	redirect(w, r, "/items/"+id+"#contact", http.StatusSeeOther)
}

// ContactReset abandons the pending workflow so nothing stale leaks into the
// next attempt.
func (h *Handlers) ContactReset(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "That link is missing an item id.")
		return
	}
	if sess := requestSession(r); sess != nil {
		sess.ClearContact()
	}
	redirect(w, r, "/items/"+id+"#contact", http.StatusSeeOther)
}

// Claim files a single-step ownership claim after an explicit confirmation.
func (h *Handlers) Claim(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "That link is missing an item id.")
		return
	}

	claim := posts.ClaimRequest{
		ClaimerName:  r.FormValue("claimerName"),
		ClaimerEmail: r.FormValue("claimerEmail"),
		ClaimerPhone: r.FormValue("claimerPhone"),
		ClaimReason:  r.FormValue("claimReason"),
	}

	if msg := validateClaim(claim, r.FormValue("confirm")); msg != "" {
		page := h.loadItemPage(r, id)
		page.Claim = claim
		page.ClaimError = msg
		h.render(w, r, "item.html", http.StatusOK, "Item details", page)
		return
	}

	confirmation, err := h.posts.SubmitClaim(r.Context(), id, claim)
	if err != nil {
		logErr("claim: submit", err)
		page := h.loadItemPage(r, id)
		page.Claim = claim
		page.ClaimError = userMessage(err)
		h.render(w, r, "item.html", http.StatusOK, "Item details", page)
		return
	}

	if sess := requestSession(r); sess != nil {
		if confirmation == "" {
			confirmation = "Your claim has been submitted."
		}
		sess.SetFlash(confirmation)
	}
	redirect(w, r, "/items/"+id, http.StatusSeeOther)
}

func validateClaim(claim posts.ClaimRequest, confirm string) string {
	if strings.TrimSpace(claim.ClaimerName) == "" ||
		strings.TrimSpace(claim.ClaimerEmail) == "" ||
		strings.TrimSpace(claim.ClaimerPhone) == "" {
		return "Please fill in your name, email and phone."
	}
	if confirm != "yes" {
		return "Please confirm that this item belongs to you."
	}
	return ""
}
