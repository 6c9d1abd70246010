// Package i18n holds the message catalogue used for API error messages.
// French is the reference language; English is offered to admin tooling.
package i18n

import (
	"context"
	"strings"
)

const DefaultLang = "fr"

type ctxKey struct{}

var catalogue = map[string]map[string]string{
	"fr": {
		"required":                       "Requis",
		"invalid_email":                  "Adresse e-mail invalide",
		"password_too_short":             "Le mot de passe doit contenir au moins 12 caractères",
		"invalid_json":                   "Requête invalide",
		"validation_failed":              "Données invalides",
		"unauthorized":                   "Authentification requise",
		"invalid_credentials":            "Identifiants invalides",
		"forbidden":                      "Accès refusé",
		"not_found":                      "Ressource introuvable",
		"internal_error":                 "Erreur interne",
		"candidacy_not_found":            "Candidature non trouvée",
		"already_autonome":               "Impossible de modifier le type d'accompagnement. Le type d'accompagnement est déjà AUTONOME",
		"not_hors_plateforme":            "Impossible de modifier le type d'accompagnement si l'utilisateur n'est pas hors financement",
		"unresolved_dematerialized_file": "Impossible de modifier le type d'accompagnement d'un DF dématérialisé si la recevabilité n'est pas valide",
		"certification_not_found":        "Certification non trouvée",
		"feasibility_not_found":          "Dossier de faisabilité non trouvé",
		"dematerialized_file_not_found":  "Dossier de faisabilité dématérialisé non trouvé",
		"feasibility_file_incomplete":    "Dossier de faisabilité incomplet pour la génération du pdf",
		"pdf_generation_failed":          "Erreur lors de la génération du pdf",
		"invalid_token":                  "Lien invalide ou expiré",
		"unknown_action":                 "Action non reconnue",
		"candidate_not_found":            "Candidat non trouvé",
		"default_department_not_found":   "Département par défaut non trouvé",
	},
	"en": {
		"required":                       "Required",
		"invalid_email":                  "Invalid email address",
		"password_too_short":             "Password must be at least 12 characters long",
		"invalid_json":                   "Invalid request",
		"validation_failed":              "Invalid data",
		"unauthorized":                   "Authentication required",
		"invalid_credentials":            "Invalid credentials",
		"forbidden":                      "Forbidden",
		"not_found":                      "Not found",
		"internal_error":                 "Internal error",
		"candidacy_not_found":            "Candidacy not found",
		"already_autonome":               "Cannot change accompaniment type: candidacy is already AUTONOME",
		"not_hors_plateforme":            "Cannot change accompaniment type unless funding is out of platform",
		"unresolved_dematerialized_file": "Cannot change accompaniment type while the dematerialized feasibility file is not admissible",
		"certification_not_found":        "Certification not found",
		"feasibility_not_found":          "Feasibility file not found",
		"dematerialized_file_not_found":  "Dematerialized feasibility file not found",
		"feasibility_file_incomplete":    "Feasibility file is incomplete, cannot generate the pdf",
		"pdf_generation_failed":          "PDF generation failed",
		"invalid_token":                  "Invalid or expired link",
		"unknown_action":                 "Unknown action",
		"candidate_not_found":            "Candidate not found",
		"default_department_not_found":   "Default department not found",
	},
}

// T translates code into lang. Unknown languages fall back to French and
// unknown codes are returned unchanged.
func T(lang, code string) string {
	if msgs, ok := catalogue[normalize(lang)]; ok {
		if msg, ok := msgs[code]; ok {
			return msg
		}
	}
	if msg, ok := catalogue[DefaultLang][code]; ok {
		return msg
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		if lang := normalize(tag); lang != "" {
			if _, ok := catalogue[lang]; ok {
				return lang
			}
		}
	}
	return DefaultLang
}

func normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return tag
}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, normalize(lang))
}

// LangFrom returns the language stored in ctx, or DefaultLang.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		if _, known := catalogue[v]; known {
			return v
		}
	}
	return DefaultLang
}
