package handlers

import (
	"net/http"

	"github.com/diewo77/vae-dossiers/auth"
	"github.com/diewo77/vae-dossiers/httpx"
	"github.com/diewo77/vae-dossiers/internal/services"
	"go.uber.org/zap"
)

type RegistrationHandler struct {
	svc      *services.RegistrationService
	subjects SubjectCache
	log      *zap.Logger
}

func NewRegistrationHandler(svc *services.RegistrationService, subjects SubjectCache, log *zap.Logger) *RegistrationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if subjects == nil {
		subjects = noCache{}
	}
	return &RegistrationHandler{svc: svc, subjects: subjects, log: log}
}

type askRegistrationRequest struct {
	Email           string `json:"email"`
	CertificationID string `json:"certification_id,omitempty"`
}

// Ask sends the registration or sign-in email. The answer does not reveal
// whether the address is known.
func (h *RegistrationHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRegistrationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}
	if err := h.svc.AskForRegistration(r.Context(), req.Email, req.CertificationID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

type askPasswordResetRequest struct {
	Email string `json:"email"`
}

// AskPasswordReset emails a reset link to known addresses. Unknown addresses
// get the same answer.
func (h *RegistrationHandler) AskPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req askPasswordResetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}
	if err := h.svc.AskForPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword consumes an emailed token and signs the account in.
func (h *RegistrationHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}
	acc, err := h.svc.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.subjects.Invalidate(acc.ID)
	auth.CreateSession(w, acc.ID)
	httpx.JSON(w, http.StatusOK, newAccountResponse(acc))
}
