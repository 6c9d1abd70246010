// Package handlers exposes the candidacy services over JSON HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/vae-dossiers/httpx"
	"github.com/diewo77/vae-dossiers/i18n"
	"github.com/diewo77/vae-dossiers/internal/iam"
	"github.com/diewo77/vae-dossiers/internal/policy"
	"github.com/diewo77/vae-dossiers/internal/services"
	"go.uber.org/zap"
)

// writeError maps service, directory and policy errors to a JSON response whose
// message follows the request language.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	lang := i18n.LangFrom(r.Context())
	reply := func(status int, code string, details any) {
		httpx.JSONErrorMessage(w, status, code, i18n.T(lang, code), details)
	}

	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]string, len(verr.Fields))
		for field, code := range verr.Fields {
			details[field] = i18n.T(lang, code)
		}
		reply(http.StatusBadRequest, "validation_failed", details)
	case errors.Is(err, services.ErrNotFound):
		reply(http.StatusNotFound, services.Code(err), nil)
	case errors.Is(err, services.ErrInvalidState):
		reply(http.StatusBadRequest, services.Code(err), nil)
	case errors.Is(err, services.ErrGeneration):
		log.Error("document generation failed", zap.String("path", r.URL.Path), zap.Error(err))
		reply(http.StatusInternalServerError, services.Code(err), nil)
	case errors.Is(err, iam.ErrInvalidCredentials):
		reply(http.StatusUnauthorized, "invalid_credentials", nil)
	case errors.Is(err, policy.ErrUnauthorized), errors.Is(err, iam.ErrAccountNotFound):
		reply(http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, policy.ErrForbidden):
		reply(http.StatusForbidden, "forbidden", nil)
	default:
		log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		reply(http.StatusInternalServerError, "internal_error", nil)
	}
}

func badJSON(w http.ResponseWriter, r *http.Request) {
	httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", i18n.T(i18n.LangFrom(r.Context()), "invalid_json"), nil)
}
