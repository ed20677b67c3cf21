package http

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/landmark-lsms/lsms-backend/internal/infrastructure/mail"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAdminExists reports whether the admin directory has been
// bootstrapped.
func (s *Server) handleAdminExists(w http.ResponseWriter, r *http.Request) {
	exists, err := s.deps.Admin.Exists(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// handleAdminBootstrap seeds the admin directory from the canonical
// lecturer directory. Idempotent.
func (s *Server) handleAdminBootstrap(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Admin.Bootstrap(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"exists": true})
}

// handleAdminCheckPass checks a passcode against the admin directory.
func (s *Server) handleAdminCheckPass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pass string `json:"pass" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ok, err := s.deps.Admin.CheckPasscode(r.Context(), req.Pass)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// handleApprovalRequest mails an account-approval request, with the
// requester's identification image attached, to an administrator.
func (s *Server) handleApprovalRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminEmail string `json:"adminEmail" validate:"required,email"`
		UserEmail  string `json:"userEmail" validate:"required,email"`
		Image      string `json:"image" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	attachment, err := decodeDataURL(req.Image)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid image data",
		})
		return
	}

	if err := s.deps.Approvals.SendApprovalRequest(r.Context(), req.AdminEmail, req.UserEmail, attachment); err != nil {
		s.logger.Error("approval mail dispatch failed",
			logger.Email(req.AdminEmail), logger.Err(err))
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// decodeDataURL parses a base64 data URL ("data:image/png;base64,...")
// into an attachment named after its MIME subtype.
func decodeDataURL(dataURL string) (mail.Attachment, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return mail.Attachment{}, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return mail.Attachment{}, fmt.Errorf("not a base64 data URL")
	}
	mimeType := strings.TrimSuffix(meta, ";base64")

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return mail.Attachment{}, fmt.Errorf("invalid base64 payload: %w", err)
	}

	ext := mimeType
	if _, sub, ok := strings.Cut(mimeType, "/"); ok {
		ext = sub
	}
	return mail.Attachment{
		Filename: "lecturer_id." + ext,
		MIMEType: mimeType,
		Content:  content,
	}, nil
}
