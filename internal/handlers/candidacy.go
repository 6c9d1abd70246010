package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/vae-dossiers/auth"
	"github.com/diewo77/vae-dossiers/httpx"
	"github.com/diewo77/vae-dossiers/internal/models"
	"github.com/diewo77/vae-dossiers/internal/policy"
	"github.com/diewo77/vae-dossiers/internal/services"
	"go.uber.org/zap"
)

type CandidacyHandler struct {
	candidacies *services.CandidacyService
	feasibility *services.FeasibilityService
	gate        *policy.Gate
	log         *zap.Logger
}

func NewCandidacyHandler(c *services.CandidacyService, f *services.FeasibilityService, gate *policy.Gate, log *zap.Logger) *CandidacyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CandidacyHandler{candidacies: c, feasibility: f, gate: gate, log: log}
}

type candidacyResponse struct {
	*models.Candidacy
	FeasibilityFileReady bool `json:"feasibility_file_ready"`
}

// load fetches the candidacy named in the path and checks that the caller may
// perform action on it. Candidacies the caller does not own answer like
// missing ones.
func (h *CandidacyHandler) load(r *http.Request, resource string, action policy.Action) (*models.Candidacy, error) {
	uid, _ := auth.UserIDFromContext(r.Context())
	c, err := h.candidacies.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if err := h.gate.Authorize(r.Context(), uid, action, resource, c); err != nil {
		if errors.Is(err, policy.ErrForbidden) {
			return nil, &services.Error{Kind: services.KindNotFound, Code: "candidacy_not_found"}
		}
		return nil, err
	}
	return c, nil
}

func (h *CandidacyHandler) Show(w http.ResponseWriter, r *http.Request) {
	c, err := h.load(r, policy.ResourceCandidacy, policy.ActionView)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	ready, err := h.feasibility.IsReady(r.Context(), c.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, candidacyResponse{Candidacy: c, FeasibilityFileReady: ready})
}

// SwitchToAutonome moves the candidacy to autonomous mode.
func (h *CandidacyHandler) SwitchToAutonome(w http.ResponseWriter, r *http.Request) {
	c, err := h.load(r, policy.ResourceCandidacy, policy.ActionSwitchAutonome)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	updated, err := h.candidacies.SwitchToAutonome(r.Context(), c.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, candidacyResponse{Candidacy: updated})
}

// FeasibilityFilePDF streams the generated dematerialized feasibility file.
func (h *CandidacyHandler) FeasibilityFilePDF(w http.ResponseWriter, r *http.Request) {
	c, err := h.load(r, policy.ResourceFeasibility, policy.ActionView)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	data, err := h.feasibility.GenerateFeasibilityFile(r.Context(), c.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="dossier-de-faisabilite-`+c.ID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Warn("write pdf response", zap.Error(err))
	}
}
