package ui

import (
	"net/http"
	"strings"

	"trackhub.org/trackhub-web/internal/web/auth"
	"trackhub.org/trackhub-web/internal/web/session"
)

// LoginPage is the view model for the staged sign-in flow.
type LoginPage struct {
	Email       string
	OTPSent     bool
	OTPVerified bool
	Notice      string
	Error       string
}

// RegisterPage is the view model for the staged registration flow.
type RegisterPage struct {
	Form        auth.Registration
	OTPSent     bool
	OTPVerified bool
	Notice      string
	Error       string
}

func loginPageFromGate(gate *session.OTPGate) LoginPage {
	page := LoginPage{}
	if gate != nil && gate.Purpose == auth.PurposeLogin {
		page.Email = gate.Email
		page.OTPSent = true
		page.OTPVerified = gate.Verified
		page.Notice = gate.Notice
	}
	return page
}

func registerPageFromGate(gate *session.OTPGate) RegisterPage {
	page := RegisterPage{}
	if gate != nil && gate.Purpose == auth.PurposeRegister {
		page.Form.Email = gate.Email
		page.Form.Phone = gate.Phone
		page.OTPSent = true
		page.OTPVerified = gate.Verified
		page.Notice = gate.Notice
	}
	return page
}

func (h *Handlers) loginGate(r *http.Request) *session.OTPGate {
	if sess := requestSession(r); sess != nil {
		if gate := sess.OTP(); gate != nil && gate.Purpose == auth.PurposeLogin {
			return gate
		}
	}
	return nil
}

func (h *Handlers) registerGate(r *http.Request) *session.OTPGate {
	if sess := requestSession(r); sess != nil {
		if gate := sess.OTP(); gate != nil && gate.Purpose == auth.PurposeRegister {
			return gate
		}
	}
	return nil
}

// Login renders the sign-in page at whichever stage the session is in.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", http.StatusOK, "Sign in", loginPageFromGate(h.loginGate(r)))
}

// LoginSendOTP starts the sign-in OTP challenge for an email.
func (h *Handlers) LoginSendOTP(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		page := LoginPage{Error: "Please enter your email."}
		h.render(w, r, "login.html", http.StatusOK, "Sign in", page)
		return
	}

	notice, err := h.auth.SendOTP(r.Context(), email, "", auth.PurposeLogin)
	if err != nil {
		logErr("login: send otp", err)
		page := LoginPage{Email: email, Error: userMessage(err)}
		h.render(w, r, "login.html", http.StatusOK, "Sign in", page)
		return
	}

	if sess := requestSession(r); sess != nil {
		sess.SetOTP(&session.OTPGate{
			Purpose: auth.PurposeLogin,
			Email:   email,
			Notice:  notice,
		})
	}
	redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginVerifyOTP checks the sign-in code. Only the textual success indicator
// in the response unlocks the password step.
func (h *Handlers) LoginVerifyOTP(w http.ResponseWriter, r *http.Request) {
	gate := h.loginGate(r)
	if gate == nil {
		redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	otp := strings.TrimSpace(r.FormValue("otp"))
	if otp == "" {
		page := loginPageFromGate(gate)
		page.Error = "Please enter the code we sent you."
		h.render(w, r, "login.html", http.StatusOK, "Sign in", page)
		return
	}

	phone := gate.Phone
	if phone == "" {
		resolved, err := h.auth.PhoneByEmail(r.Context(), gate.Email)
		if err != nil {
			logErr("login: resolve phone", err)
			page := loginPageFromGate(gate)
			page.Error = userMessage(err)
			h.render(w, r, "login.html", http.StatusOK, "Sign in", page)
			return
		}
		phone = resolved
		gate.Phone = phone
	}

	verified, text, err := h.auth.VerifyOTP(r.Context(), phone, otp, auth.PurposeLogin)
	if err != nil {
		logErr("login: verify otp", err)
		page := loginPageFromGate(gate)
		page.Error = userMessage(err)
		h.render(w, r, "login.html", http.StatusOK, "Sign in", page)
		return
	}
	if !verified {
		page := loginPageFromGate(gate)
		page.Error = text
		if page.Error == "" {
			page.Error = "That code did not match. Please try again."
		}
		h.render(w, r, "login.html", http.StatusOK, "Sign in", page)
		return
	}

	gate.Verified = true
	gate.Notice = text
	if sess := requestSession(r); sess != nil {
		sess.SetOTP(gate)
	}
	redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginSubmit checks the password once the OTP gate is open and starts the
// session.
func (h *Handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	gate := h.loginGate(r)
	if gate == nil || !gate.Verified {
		redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		page := loginPageFromGate(gate)
		page.Email = email
		page.Error = "Please enter your email and password."
		h.render(w, r, "login.html", http.StatusOK, "Sign in", page)
		return
	}

	account, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		logErr("login: submit", err)
		page := loginPageFromGate(gate)
		page.Email = email
		page.Error = userMessage(err)
		h.render(w, r, "login.html", http.StatusOK, "Sign in", page)
		return
	}

	if sess := requestSession(r); sess != nil {
		sess.SetUser(&session.User{
			ID:    account.ID,
			Email: account.Email,
			Name:  account.DisplayName(),
		})
		sess.ClearOTP()
		sess.SetFlash("Welcome back, " + account.DisplayName() + "!")
	}
	redirect(w, r, "/", http.StatusSeeOther)
}

// Register renders the registration page at whichever stage the session is in.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", http.StatusOK, "Create account", registerPageFromGate(h.registerGate(r)))
}

// RegisterSendOTP starts the registration OTP challenge for an email and
// phone pair.
func (h *Handlers) RegisterSendOTP(w http.ResponseWriter, r *http.Request) {
	form := registrationFromForm(r)

	if strings.TrimSpace(form.Email) == "" || strings.TrimSpace(form.Phone) == "" {
		page := RegisterPage{Form: form, Error: "Please enter your email and phone number."}
		h.render(w, r, "register.html", http.StatusOK, "Create account", page)
		return
	}

	notice, err := h.auth.SendOTP(r.Context(), form.Email, form.Phone, auth.PurposeRegister)
	if err != nil {
		logErr("register: send otp", err)
		page := RegisterPage{Form: form, Error: userMessage(err)}
		h.render(w, r, "register.html", http.StatusOK, "Create account", page)
		return
	}

	if sess := requestSession(r); sess != nil {
		sess.SetOTP(&session.OTPGate{
			Purpose: auth.PurposeRegister,
			Email:   form.Email,
			Phone:   form.Phone,
			Notice:  notice,
		})
	}
	redirect(w, r, "/register", http.StatusSeeOther)
}

// RegisterVerifyOTP checks the registration code against the phone it was
// sent to.
func (h *Handlers) RegisterVerifyOTP(w http.ResponseWriter, r *http.Request) {
	gate := h.registerGate(r)
	if gate == nil {
		redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	otp := strings.TrimSpace(r.FormValue("otp"))
	if otp == "" {
		page := registerPageFromGate(gate)
		page.Error = "Please enter the code we sent you."
		h.render(w, r, "register.html", http.StatusOK, "Create account", page)
		return
	}

	verified, text, err := h.auth.VerifyOTP(r.Context(), gate.Phone, otp, auth.PurposeRegister)
	if err != nil {
		logErr("register: verify otp", err)
		page := registerPageFromGate(gate)
		page.Error = userMessage(err)
		h.render(w, r, "register.html", http.StatusOK, "Create account", page)
		return
	}
	if !verified {
		page := registerPageFromGate(gate)
		page.Error = text
		if page.Error == "" {
			page.Error = "That code did not match. Please try again."
		}
		h.render(w, r, "register.html", http.StatusOK, "Create account", page)
		return
	}

	gate.Verified = true
	gate.Notice = text
	if sess := requestSession(r); sess != nil {
		sess.SetOTP(gate)
	}
	redirect(w, r, "/register", http.StatusSeeOther)
}

// RegisterSubmit creates the account once the OTP gate is open. All local
// checks, including the password confirmation, run before any network call.
func (h *Handlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	gate := h.registerGate(r)
	if gate == nil || !gate.Verified {
		redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	form := registrationFromForm(r)
	if err := form.Validate(r.FormValue("confirmPassword")); err != nil {
		page := registerPageFromGate(gate)
		page.Form = form
		page.Error = err.Error()
		h.render(w, r, "register.html", http.StatusOK, "Create account", page)
		return
	}

	if _, err := h.auth.Register(r.Context(), form); err != nil {
		logErr("register: submit", err)
		page := registerPageFromGate(gate)
		page.Form = form
		page.Error = userMessage(err)
		h.render(w, r, "register.html", http.StatusOK, "Create account", page)
		return
	}

	if sess := requestSession(r); sess != nil {
		sess.ClearOTP()
		sess.SetFlash("Account created. Please sign in.")
	}
	redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout ends the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := requestSession(r); sess != nil {
		sess.Destroy()
	}
	redirect(w, r, "/", http.StatusSeeOther)
}

func registrationFromForm(r *http.Request) auth.Registration {
	return auth.Registration{
		FirstName: strings.TrimSpace(r.FormValue("firstName")),
		LastName:  strings.TrimSpace(r.FormValue("lastName")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
		Password:  r.FormValue("password"),
	}
}
