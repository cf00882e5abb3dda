// Package session keeps the durable client-side state: the minimal identity
// marker set at login, the CSRF token, one-shot flash notices, and the pending
// OTP workflow snapshots that have to survive between the steps of a
// server-rendered flow. Everything rides a signed (and optionally encrypted)
// cookie; presence of the user marker is the sole gate on protected pages.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"trackhub.org/trackhub-web/internal/web/contact"
)

const (
	defaultCookieName  = "trackhub_session"
	defaultCookiePath  = "/"
	defaultLifetime    = 12 * time.Hour
	defaultIdleTimeout = 45 * time.Minute
)

// ErrExpired indicates the stored session is no longer valid due to idle or
// absolute expiry.
var ErrExpired = errors.New("session expired")

// ErrInvalidConfig indicates the manager was initialised with missing or
// invalid options.
var ErrInvalidConfig = errors.New("session: invalid config")

// User is the minimal session marker persisted at login.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// OTPGate tracks the auth-flow OTP challenge between the send and verify
// steps, tied to its purpose (LOGIN or REGISTER).
type OTPGate struct {
	Purpose  string `json:"purpose"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Verified bool   `json:"verified"`
	Notice   string `json:"notice,omitempty"`
}

// Data is the full persisted session payload.
type Data struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"createdAt"`
	LastActive time.Time         `json:"lastActive"`
	ExpiresAt  time.Time         `json:"expiresAt,omitempty"`
	CSRFToken  string            `json:"csrfToken,omitempty"`
	User       *User             `json:"user,omitempty"`
	Contact    *contact.Workflow `json:"contact,omitempty"`
	OTP        *OTPGate          `json:"otp,omitempty"`
	Flash      string            `json:"flash,omitempty"`
}

// Session holds mutable state for the current request lifecycle.
type Session struct {
	data      Data
	dirty     bool
	destroyed bool
}

// Config controls cookie encoding and lifecycle limits for the manager.
type Config struct {
	CookieName     string
	HashKey        []byte
	BlockKey       []byte
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	IdleTimeout time.Duration
	Lifetime    time.Duration
	Now         func() time.Time
}

// Manager decodes and persists session state via signed cookies.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
	now   func() time.Time
}

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &Manager{cfg: cfg, codec: codec, now: nowFn}, nil
}

// Load retrieves the session from the incoming request or creates a new one.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.newSession(m.now()), nil
	}

	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil {
		return m.newSession(m.now()), nil
	}

	sess := &Session{data: stored}
	if m.isExpired(sess, m.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

// Save writes the session back to the response as a cookie. Destroyed
// sessions clear the cookie.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return errors.New("session: nil session")
	}
	if sess.destroyed {
		http.SetCookie(w, m.expiredCookie())
		return nil
	}

	sess.Touch(m.now())

	encoded, err := m.codec.Encode(m.cfg.CookieName, sess.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: m.cfg.CookieSameSite,
	}
	if !sess.data.ExpiresAt.IsZero() {
		expiry := sess.data.ExpiresAt.UTC()
		cookie.Expires = expiry
		remaining := expiry.Sub(m.now())
		if remaining <= 0 {
			cookie.MaxAge = -1
		} else {
			cookie.MaxAge = int(remaining.Round(time.Second).Seconds())
		}
	}

	http.SetCookie(w, cookie)
	return nil
}

// Destroy invalidates the session cookie immediately.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, m.expiredCookie())
}

// New returns a new empty session instance using the manager configuration.
func (m *Manager) New() *Session {
	return m.newSession(m.now())
}

func (m *Manager) newSession(now time.Time) *Session {
	data := Data{
		ID:         mustGenerateToken(32),
		CreatedAt:  now.UTC(),
		LastActive: now.UTC(),
	}
	if m.cfg.Lifetime > 0 {
		data.ExpiresAt = now.Add(m.cfg.Lifetime).UTC()
	}
	return &Session{data: data, dirty: true}
}

func (m *Manager) isExpired(sess *Session, now time.Time) bool {
	now = now.UTC()
	if !sess.data.ExpiresAt.IsZero() && now.After(sess.data.ExpiresAt.UTC()) {
		return true
	}
	if m.cfg.IdleTimeout > 0 {
		last := sess.data.LastActive
		if last.IsZero() {
			last = sess.data.CreatedAt
		}
		if !last.IsZero() && now.Sub(last) > m.cfg.IdleTimeout {
			return true
		}
	}
	return false
}

func (m *Manager) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: m.cfg.CookieSameSite,
	}
}

// ID returns the stable session identifier.
func (s *Session) ID() string { return s.data.ID }

// User returns the persisted session marker, if present.
func (s *Session) User() *User { return s.data.User }

// SetUser updates the session marker. A nil user clears it.
func (s *Session) SetUser(user *User) {
	if user == nil {
		if s.data.User != nil {
			s.data.User = nil
			s.dirty = true
		}
		return
	}
	copied := *user
	s.data.User = &copied
	s.dirty = true
}

// Contact returns the pending contact workflow snapshot, if any.
func (s *Session) Contact() *contact.Workflow { return s.data.Contact }

// SetContact stores the workflow snapshot for the next round trip.
func (s *Session) SetContact(w *contact.Workflow) {
	s.data.Contact = w
	s.dirty = true
}

// ClearContact drops the workflow snapshot so no partial state leaks into the
// next attempt.
func (s *Session) ClearContact() {
	if s.data.Contact != nil {
		s.data.Contact = nil
		s.dirty = true
	}
}

// OTP returns the pending auth OTP gate, if any.
func (s *Session) OTP() *OTPGate { return s.data.OTP }

// SetOTP stores the auth OTP gate state.
func (s *Session) SetOTP(gate *OTPGate) {
	s.data.OTP = gate
	s.dirty = true
}

// ClearOTP drops the auth OTP gate.
func (s *Session) ClearOTP() {
	if s.data.OTP != nil {
		s.data.OTP = nil
		s.dirty = true
	}
}

// SetFlash stores a one-shot notice rendered on the next page view.
func (s *Session) SetFlash(message string) {
	s.data.Flash = message
	s.dirty = true
}

// PopFlash returns and clears the stored notice.
func (s *Session) PopFlash() string {
	flash := s.data.Flash
	if flash != "" {
		s.data.Flash = ""
		s.dirty = true
	}
	return flash
}

// EnsureCSRFToken returns the existing CSRF token or generates one on demand.
func (s *Session) EnsureCSRFToken() (string, error) {
	if s.data.CSRFToken != "" {
		return s.data.CSRFToken, nil
	}
	token, err := generateToken(32)
	if err != nil {
		return "", err
	}
	s.data.CSRFToken = token
	s.dirty = true
	return token, nil
}

// CSRFToken returns the stored CSRF token value.
func (s *Session) CSRFToken() string { return s.data.CSRFToken }

// Destroy marks the session for deletion at the end of the request.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

// Destroyed exposes the destroy marker.
func (s *Session) Destroyed() bool { return s.destroyed }

// Touch updates the last active timestamp.
func (s *Session) Touch(now time.Time) {
	now = now.UTC()
	if now.After(s.data.LastActive) {
		s.data.LastActive = now
		s.dirty = true
	}
}

// Dirty indicates whether the session contents changed during this request.
func (s *Session) Dirty() bool { return s.dirty }

func mustGenerateToken(length int) string {
	token, err := generateToken(length)
	if err != nil {
		panic(err)
	}
	return token
}

func generateToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
