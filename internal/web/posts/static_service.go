package posts

import (
	"context"
	"strconv"

	"trackhub.org/trackhub-web/internal/web/normalize"
)

// StaticService is a fixture-backed Service for tests and local development
// without a reachable backend.
type StaticService struct {
	Posts   []normalize.Post
	Err     error
	Message string

	Deleted   []string
	Contacted []string
	Claimed   []string
}

// NewStaticService returns a StaticService seeded with a small mixed-status
// collection.
func NewStaticService() *StaticService {
	return &StaticService{
		Message: "OTP sent to your registered phone number.",
		Posts: []normalize.Post{
			{
				ID: "1", HasID: true, UserID: "7",
				Title: "Black umbrella", Description: "Left near the west entrance.",
				Category: "Accessories", Location: "West Entrance",
				Status: normalize.StatusFound,
			},
			{
				ID: "2", HasID: true, UserID: "7",
				Title: "Student ID card", Description: "Lost somewhere between the labs.",
				Category: "Documents", Location: "CS Block",
				Status: normalize.StatusLost,
			},
		},
	}
}

// List implements Service.
func (s *StaticService) List(ctx context.Context) ([]normalize.Post, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return Apply(s.Posts, Filter{}), nil
}

// Get implements Service.
func (s *StaticService) Get(ctx context.Context, id string) (normalize.Post, error) {
	if s.Err != nil {
		return normalize.Post{}, s.Err
	}
	for _, p := range s.Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return normalize.Post{}, ErrNotFound
}

// ListByUser implements Service.
func (s *StaticService) ListByUser(ctx context.Context, userID string) ([]normalize.Post, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []normalize.Post
	for _, p := range s.Posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Create implements Service.
func (s *StaticService) Create(ctx context.Context, req PostRequest) (normalize.Post, error) {
	if s.Err != nil {
		return normalize.Post{}, s.Err
	}
	p := postFromRequest(req)
	if p.ID == "" {
		p.ID = strconv.Itoa(len(s.Posts) + 1)
		p.HasID = true
	}
	s.Posts = append(s.Posts, p)
	return p, nil
}

// Update implements Service.
func (s *StaticService) Update(ctx context.Context, id string, req PostRequest) (normalize.Post, error) {
	if s.Err != nil {
		return normalize.Post{}, s.Err
	}
	for i, p := range s.Posts {
		if p.ID == id {
			updated := postFromRequest(req)
			updated.ID = id
			updated.HasID = true
			s.Posts[i] = updated
			return updated, nil
		}
	}
	return normalize.Post{}, ErrNotFound
}

// Delete implements Service.
func (s *StaticService) Delete(ctx context.Context, id string) error {
	if s.Err != nil {
		return s.Err
	}
	for i, p := range s.Posts {
		if p.ID == id {
			s.Posts = append(s.Posts[:i], s.Posts[i+1:]...)
			s.Deleted = append(s.Deleted, id)
			return nil
		}
	}
	return ErrNotFound
}

// ContactInitiate implements Service.
func (s *StaticService) ContactInitiate(ctx context.Context, postID string, req ContactRequest) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.Contacted = append(s.Contacted, postID)
	return s.Message, nil
}

// ContactVerify implements Service.
func (s *StaticService) ContactVerify(ctx context.Context, postID string, req ContactVerifyRequest) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return "Message sent successfully to post owner.", nil
}

// SubmitClaim implements Service.
func (s *StaticService) SubmitClaim(ctx context.Context, postID string, req ClaimRequest) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.Claimed = append(s.Claimed, postID)
	return "Claim submitted successfully!", nil
}

func postFromRequest(req PostRequest) normalize.Post {
	p := normalize.Post{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Category:        req.Category,
		Status:          normalize.NormalizeStatus(req.Status),
		ContactPublic:   req.ContactPublic,
		AdditionalNotes: req.AdditionalNotes,
	}
	if req.ID != 0 {
		p.ID = strconv.FormatInt(req.ID, 10)
		p.HasID = true
	}
	if req.UserID != 0 {
		p.UserID = strconv.FormatInt(req.UserID, 10)
	}
	if req.PhotoURL != "" {
		mime, payload := normalize.SplitDataURI(req.PhotoURL)
		if mime == "" {
			mime = normalize.DefaultPhotoMime
		}
		p.PhotoBase64 = payload
		p.PhotoMime = mime
	}
	return p
}
