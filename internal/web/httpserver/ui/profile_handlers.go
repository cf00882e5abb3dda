package ui

import (
	"net/http"

	custommw "trackhub.org/trackhub-web/internal/web/httpserver/middleware"
	"trackhub.org/trackhub-web/internal/web/normalize"
)

// ProfilePage is the view model for the account profile with its activity
// stats.
type ProfilePage struct {
	Profile       normalize.User
	ItemsPosted   int
	ItemsReturned int
	LoadError     string
}

// Profile renders the signed-in user's account page. The activity stats are
// derived from the user's own posts; when that fetch fails the profile's
// stored counters are shown instead.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		redirect(w, r, "/login", http.StatusFound)
		return
	}

	page := ProfilePage{}

	profile, err := h.auth.ProfileByEmail(r.Context(), user.Email)
	if err != nil {
		logErr("profile: fetch", err)
		page.LoadError = userMessage(err)
		h.render(w, r, "profile.html", http.StatusOK, "Profile", page)
		return
	}
	page.Profile = profile
	page.ItemsPosted = profile.ItemsPosted
	page.ItemsReturned = profile.ItemsReturned

	if mine, err := h.posts.ListByUser(r.Context(), user.ID); err == nil {
		page.ItemsPosted = len(mine)
		returned := 0
		for _, post := range mine {
			if post.Claimed {
				returned++
			}
		}
		page.ItemsReturned = returned
	} else {
		logErr("profile: list posts", err)
	}

	h.render(w, r, "profile.html", http.StatusOK, "Profile", page)
}
