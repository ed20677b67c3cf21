package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate checks the fixed-shape request bodies.
var validate = validator.New()

// decodeAndValidate decodes the body into req and runs struct
// validation, writing the 400 response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "All fields are required.")
		return false
	}
	return true
}

// handleSignup registers a lecturer account.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LecName        string `json:"lec_name" validate:"required"`
		SigninEmail    string `json:"signin_email" validate:"required,email"`
		SigninPassword string `json:"signin_password" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := s.deps.Directory.Signup(r.Context(), req.LecName, req.SigninEmail, req.SigninPassword); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Lecturer registered successfully.",
	})
}

// handleLogin checks credentials against the login mirror.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SigninEmail    string `json:"signin_email" validate:"required"`
		SigninPassword string `json:"signin_password" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	name, err := s.deps.Directory.Login(r.Context(), req.SigninEmail, req.SigninPassword)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"lec_name": name,
		"message":  "login successful",
	})
}

// handleForgotPassword mails an account its stored credentials.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SigninEmail string `json:"signin_email" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.deps.Directory.RecoverCredentials(r.Context(), req.SigninEmail); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleCheckEmail reports membership of an email in the directory.
func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	exists, err := s.deps.Directory.EmailExists(r.Context(), req.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// handleSendOTP issues a login challenge and mails the code. A failed
// dispatch is a soft failure: the challenge stays valid, the caller is
// told delivery failed.
func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.deps.OTP.Issue(r.Context(), req.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !result.Delivered {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "Failed to send OTP email.",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleValidateOTP validates a submitted login code.
func (s *Server) handleValidateOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required"`
		OTP   string `json:"otp" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.deps.OTP.Validate(r.Context(), req.Email, req.OTP); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleListLecturers returns every account in the canonical directory.
func (s *Server) handleListLecturers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.deps.Directory.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}
