package handlers

import (
	"net/http"

	"github.com/diewo77/vae-dossiers/auth"
	"github.com/diewo77/vae-dossiers/httpx"
	"github.com/diewo77/vae-dossiers/internal/iam"
	"github.com/diewo77/vae-dossiers/internal/models"
	"go.uber.org/zap"
)

// SubjectCache forgets the cached authorization subject of an account.
type SubjectCache interface {
	Invalidate(accountID uint)
}

type noCache struct{}

func (noCache) Invalidate(uint) {}

type AuthHandler struct {
	dir      iam.Directory
	subjects SubjectCache
	log      *zap.Logger
}

func NewAuthHandler(dir iam.Directory, subjects SubjectCache, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if subjects == nil {
		subjects = noCache{}
	}
	return &AuthHandler{dir: dir, subjects: subjects, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func newAccountResponse(a *models.Account) accountResponse {
	return accountResponse{ID: a.ID, Email: a.Email, Role: a.Role}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}
	acc, err := h.dir.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	// A new session picks up role or candidate changes made since the last one.
	h.subjects.Invalidate(acc.ID)
	auth.CreateSession(w, acc.ID)
	httpx.JSON(w, http.StatusOK, newAccountResponse(acc))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	acc, err := h.dir.Get(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newAccountResponse(acc))
}
