package normalize

import "strings"

// User is the canonical poster/account view model.
type User struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	ItemsPosted   int
	ItemsReturned int
	Rating        float64
	HasRating     bool
	MemberSince   Date
}

// UserFromRaw builds a canonical User from a decoded JSON object. Like
// PostFromRaw it never fails; absent fields default.
func UserFromRaw(raw map[string]any) User {
	u := User{
		FirstName: stringField(raw, "firstName", "first_name"),
		LastName:  stringField(raw, "lastName", "last_name"),
		Email:     stringField(raw, "email"),
		Phone:     stringField(raw, "phone"),
	}
	u.ID, _ = idField(raw, "id", "userId", "_id")

	if n, ok := numField(raw, "itemsPosted"); ok {
		u.ItemsPosted = int(n)
	}
	if n, ok := numField(raw, "itemsReturned"); ok {
		u.ItemsReturned = int(n)
	}
	if n, ok := numField(raw, "rating"); ok {
		u.Rating = n
		u.HasRating = true
	}

	u.MemberSince = DateFromRaw(firstPresent(raw, "createdAt", "created_at", "memberSince"))
	return u
}

// DisplayName joins the name parts, falling back to the email local part so a
// poster is never rendered nameless.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
