package ui

import (
	"net/http"
	"strings"

	custommw "trackhub.org/trackhub-web/internal/web/httpserver/middleware"
	"trackhub.org/trackhub-web/internal/web/normalize"
	"trackhub.org/trackhub-web/internal/web/posts"
)

// MyPostsPage is the view model for the signed-in user's own posts.
type MyPostsPage struct {
	Filter       string
	Posts        []normalize.Post
	ErrorMessage string
}

// MyPosts renders the signed-in user's posts with the status filter applied.
func (h *Handlers) MyPosts(w http.ResponseWriter, r *http.Request) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		redirect(w, r, "/login", http.StatusFound)
		return
	}

	filterValue := strings.TrimSpace(r.URL.Query().Get("filter"))
	if filterValue == "" {
		filterValue = "all"
	}
	page := MyPostsPage{Filter: strings.ToLower(filterValue)}

	mine, err := h.posts.ListByUser(r.Context(), user.ID)
	if err != nil {
		logErr("myposts: list", err)
		page.ErrorMessage = userMessage(err)
		h.render(w, r, "myposts.html", http.StatusOK, "My Posts", page)
		return
	}

	page.Posts = posts.Apply(mine, posts.ParseFilter(filterValue))
	h.render(w, r, "myposts.html", http.StatusOK, "My Posts", page)
}

// DeletePost removes one of the user's own posts.
func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
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
		logErr("myposts: fetch for delete", err)
		h.renderError(w, r, http.StatusBadGateway, userMessage(err))
		return
	}
	if post.UserID != user.ID {
		h.renderError(w, r, http.StatusForbidden, "You can only delete your own posts.")
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		logErr("myposts: delete", err)
		h.renderError(w, r, http.StatusBadGateway, userMessage(err))
		return
	}

	if sess := requestSession(r); sess != nil {
		sess.SetFlash("Post deleted.")
	}
	redirect(w, r, "/my-posts", http.StatusSeeOther)
}
