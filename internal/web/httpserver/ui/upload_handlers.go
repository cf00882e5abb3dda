package ui

import (
	"net/http"
	"strings"

	custommw "trackhub.org/trackhub-web/internal/web/httpserver/middleware"
	"trackhub.org/trackhub-web/internal/web/imaging"
	"trackhub.org/trackhub-web/internal/web/normalize"
	"trackhub.org/trackhub-web/internal/web/posts"
	"trackhub.org/trackhub-web/internal/web/session"
)

const maxUploadBytes = 8 << 20

// UploadForm carries the editable post fields between render and submit.
type UploadForm struct {
	Title           string
	Description     string
	Status          string
	Category        string
	Location        string
	AdditionalNotes string
}

// UploadPage is the view model for both the create and edit forms.
type UploadPage struct {
	Editing  bool
	Action   string
	Form     UploadForm
	HasPhoto bool
	Error    string
}

// Upload renders the blank create form.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	page := UploadPage{Action: href(r, "/upload"), Form: UploadForm{Status: normalize.StatusLost}}
	h.render(w, r, "upload.html", http.StatusOK, "Post an item", page)
}

// UploadSubmit validates and creates a new post with an optionally attached,
// re-encoded photo.
func (h *Handlers) UploadSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		redirect(w, r, "/login", http.StatusFound)
		return
	}

	form, photo, errMsg := h.parseUploadForm(r)
	page := UploadPage{Action: href(r, "/upload"), Form: form}
	if errMsg != "" {
		page.Error = errMsg
		h.render(w, r, "upload.html", http.StatusOK, "Post an item", page)
		return
	}

	post := postFromForm(form, user)
	if photo != nil {
		post.PhotoBase64 = photo.Base64
		post.PhotoMime = photo.Mime
	}

	if _, err := h.posts.Create(r.Context(), posts.BuildPostRequest(post)); err != nil {
		logErr("upload: create", err)
		page.Error = userMessage(err)
		h.render(w, r, "upload.html", http.StatusOK, "Post an item", page)
		return
	}

	if sess := requestSession(r); sess != nil {
		sess.SetFlash("Your item has been posted.")
	}
	redirect(w, r, "/my-posts", http.StatusSeeOther)
}

// EditPost renders the edit form prefilled from the stored post.
func (h *Handlers) EditPost(w http.ResponseWriter, r *http.Request) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, ok := itemID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "That link is missing an item id.")
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		logErr("edit: fetch post", err)
		h.renderError(w, r, http.StatusBadGateway, userMessage(err))
		return
	}
	if post.UserID != user.ID {
		h.renderError(w, r, http.StatusForbidden, "You can only edit your own posts.")
		return
	}

	page := UploadPage{
		Editing: true,
		Action:  href(r, "/my-posts/"+id+"/edit"),
		Form: UploadForm{
			Title:           post.Title,
			Description:     post.Description,
			Status:          post.Status,
			Category:        post.Category,
			Location:        post.Location,
			AdditionalNotes: post.AdditionalNotes,
		},
		HasPhoto: post.HasPhoto(),
	}
	h.render(w, r, "upload.html", http.StatusOK, "Edit post", page)
}

// EditPostSubmit validates and replaces an existing post, keeping the stored
// photo when no new file is attached.
func (h *Handlers) EditPostSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		redirect(w, r, "/login", http.StatusFound)
		return
	}

	id, ok := itemID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "That link is missing an item id.")
		return
	}

	existing, err := h.posts.Get(r.Context(), id)
	if err != nil {
		logErr("edit: fetch post", err)
		h.renderError(w, r, http.StatusBadGateway, userMessage(err))
		return
	}
	if existing.UserID != user.ID {
		h.renderError(w, r, http.StatusForbidden, "You can only edit your own posts.")
		return
	}

	form, photo, errMsg := h.parseUploadForm(r)
	page := UploadPage{
		Editing:  true,
		Action:   href(r, "/my-posts/"+id+"/edit"),
		Form:     form,
		HasPhoto: existing.HasPhoto(),
	}
	if errMsg != "" {
		page.Error = errMsg
		h.render(w, r, "upload.html", http.StatusOK, "Edit post", page)
		return
	}

	updated := existing
	updated.Title = form.Title
	updated.Description = form.Description
	updated.Status = form.Status
	updated.Category = form.Category
	updated.Location = form.Location
	updated.AdditionalNotes = form.AdditionalNotes
	if photo != nil {
		updated.PhotoBase64 = photo.Base64
		updated.PhotoMime = photo.Mime
	}

	if _, err := h.posts.Update(r.Context(), id, posts.BuildPostRequest(updated)); err != nil {
		logErr("edit: update", err)
		page.Error = userMessage(err)
		h.render(w, r, "upload.html", http.StatusOK, "Edit post", page)
		return
	}

	if sess := requestSession(r); sess != nil {
		sess.SetFlash("Post updated.")
	}
	redirect(w, r, "/my-posts", http.StatusSeeOther)
}

// parseUploadForm reads the multipart form, validates the required fields,
// and re-encodes the photo when one was attached. The returned message is
// empty on success.
func (h *Handlers) parseUploadForm(r *http.Request) (UploadForm, *imaging.Photo, string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return UploadForm{}, nil, "The form could not be read. Please try again."
	}

	form := UploadForm{
		Title:           strings.TrimSpace(r.FormValue("title")),
		Description:     strings.TrimSpace(r.FormValue("description")),
		Status:          normalize.NormalizeStatus(r.FormValue("status")),
		Category:        strings.TrimSpace(r.FormValue("category")),
		Location:        strings.TrimSpace(r.FormValue("location")),
		AdditionalNotes: strings.TrimSpace(r.FormValue("additionalNotes")),
	}

	if form.Title == "" || form.Description == "" || form.Category == "" || form.Location == "" {
		return form, nil, "Please fill in the title, description, category and location."
	}
	if form.Status == "" {
		return form, nil, "Please choose whether the item was lost or found."
	}

	file, _, err := r.FormFile("photo")
	if err == http.ErrMissingFile {
		return form, nil, ""
	}
	if err != nil {
		return form, nil, "The photo could not be read. Please try again."
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		logErr("upload: process photo", err)
		return form, nil, "That photo could not be processed. Please attach a JPEG or PNG."
	}
	return form, photo, ""
}

func postFromForm(form UploadForm, user *session.User) normalize.Post {
	return normalize.Post{
		UserID:          user.ID,
		Title:           form.Title,
		Description:     form.Description,
		Status:          form.Status,
		Category:        form.Category,
		Location:        form.Location,
		AdditionalNotes: form.AdditionalNotes,
	}
}
