package ui

import (
	"net/http"
	"sort"
	"strings"

	"trackhub.org/trackhub-web/internal/web/normalize"
	"trackhub.org/trackhub-web/internal/web/posts"
)

// DashboardPage is the view model for the public item feed.
type DashboardPage struct {
	Filter       string
	Category     string
	Categories   []string
	Posts        []normalize.Post
	ErrorMessage string
}

// Dashboard renders the item feed with the requested filter applied.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	filterValue := strings.TrimSpace(r.URL.Query().Get("filter"))
	if filterValue == "" {
		filterValue = "all"
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	page := DashboardPage{
		Filter:   strings.ToLower(filterValue),
		Category: category,
	}

	all, err := h.posts.List(r.Context())
	if err != nil {
		logErr("dashboard: list posts", err)
		page.ErrorMessage = userMessage(err)
		h.render(w, r, "dashboard.html", http.StatusOK, "Lost & Found", page)
		return
	}

	filter := posts.ParseFilter(filterValue)
	filter.Category = category
	page.Posts = posts.Apply(all, filter)
	page.Categories = categoriesOf(all)

	h.render(w, r, "dashboard.html", http.StatusOK, "Lost & Found", page)
}

// categoriesOf derives the distinct category names present in a collection,
// sorted for a stable select control.
func categoriesOf(items []normalize.Post) []string {
	seen := make(map[string]string)
	for _, item := range items {
		name := strings.TrimSpace(item.Category)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; !ok {
			seen[key] = name
		}
	}
	out := make([]string, 0, len(seen))
	for _, name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
