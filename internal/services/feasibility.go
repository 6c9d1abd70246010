package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/vae-dossiers/internal/models"
	"github.com/diewo77/vae-dossiers/internal/pdf"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IsFeasibilityFileReady reports whether a dematerialized file may be turned
// into its final document. Bloc completion only matters for full eligibility.
func IsFeasibilityFileReady(f models.ReadinessFlags) bool {
	ready := f.AttachmentsPartComplete &&
		f.CertificationPartComplete &&
		f.PrerequisitesPartComplete &&
		f.EligibilityRequirement != nil
	if ready && *f.EligibilityRequirement == models.EligibilityFull {
		ready = f.CompetenceBlocsPartCompletion == models.CompletionCompleted
	}
	return ready
}

var situationLabels = map[models.EligibilitySituation]struct {
	label string
	tone  pdf.Tone
}{
	models.SituationFirstRequest:               {"Première demande de recevabilité", pdf.ToneInfo},
	models.SituationHolderWithRncpChange:       {"Demande de recevabilité suite à un changement de code RNCP", pdf.ToneWarning},
	models.SituationHolderWithoutFrameworkDiff: {"Demande de recevabilité suite à une réévaluation", pdf.ToneWarning},
}

// EligibilityLabel returns the request nature shown on the document. The
// candidate situation takes priority over the eligibility requirement.
func EligibilityLabel(req *models.EligibilityRequirement, situation *models.EligibilitySituation) (string, pdf.Tone) {
	if situation != nil {
		if l, ok := situationLabels[*situation]; ok {
			return l.label, l.tone
		}
	}
	if req != nil {
		switch *req {
		case models.EligibilityFull:
			return "Accès complet", pdf.ToneInfo
		case models.EligibilityPartial:
			return "Accès partiel", pdf.ToneWarning
		}
	}
	return "", pdf.ToneInfo
}

// IsAAPAvailableForCertification reports whether at least one active organism
// accompanies the certification.
func IsAAPAvailableForCertification(db *gorm.DB, certificationID string) (bool, error) {
	var n int64
	err := db.Model(&models.Organism{}).
		Joins("JOIN organism_certifications oc ON oc.organism_id = organisms.id").
		Where("oc.certification_id = ? AND organisms.is_active = ?", certificationID, true).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count organisms: %w", err)
	}
	return n > 0, nil
}

type FeasibilityService struct {
	DB  *gorm.DB
	Log *zap.Logger
	// Render turns presentation data into document bytes.
	Render func(pdf.FeasibilityFile) ([]byte, error)
}

func NewFeasibilityService(db *gorm.DB, log *zap.Logger) *FeasibilityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeasibilityService{DB: db, Log: log, Render: pdf.RenderFeasibilityFile}
}

// IsReady loads the active dematerialized file of a candidacy and applies the
// readiness gate. A candidacy without such a file is not ready.
func (s *FeasibilityService) IsReady(ctx context.Context, candidacyID string) (bool, error) {
	var f models.DematerializedFeasibilityFile
	err := s.DB.WithContext(ctx).
		Joins("JOIN feasibilities ON feasibilities.id = dematerialized_feasibility_files.feasibility_id").
		Where("feasibilities.candidacy_id = ? AND feasibilities.is_active = ?", candidacyID, true).
		Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load dematerialized file: %w", err)
	}
	return IsFeasibilityFileReady(f.ReadinessFlags()), nil
}

// GenerateFeasibilityFile renders the dematerialized feasibility file of a
// candidacy. It never returns a partial document.
func (s *FeasibilityService) GenerateFeasibilityFile(ctx context.Context, candidacyID string) ([]byte, error) {
	c, err := NewCandidacyService(s.DB, s.Log).Get(ctx, candidacyID)
	if err != nil {
		return nil, err
	}
	if c.Certification == nil {
		return nil, notFound("certification_not_found")
	}
	feas := ActiveFeasibility(c)
	if feas == nil {
		return nil, notFound("feasibility_not_found")
	}
	file := feas.DematerializedFeasibilityFile
	if file == nil {
		return nil, notFound("dematerialized_file_not_found")
	}
	if !IsFeasibilityFileReady(file.ReadinessFlags()) {
		return nil, invalidState("feasibility_file_incomplete")
	}

	aap, err := IsAAPAvailableForCertification(s.DB.WithContext(ctx), c.Certification.ID)
	if err != nil {
		return nil, err
	}
	data := buildFeasibilityFile(c, file, aap)

	out, err := s.Render(data)
	if err != nil {
		s.Log.Error("feasibility pdf generation failed", zap.String("candidacy_id", candidacyID), zap.Error(err))
		return nil, generationError(err)
	}
	if len(out) == 0 {
		return nil, generationError(pdf.ErrEmpty)
	}
	s.Log.Debug("feasibility pdf generated", zap.String("candidacy_id", candidacyID), zap.Int("bytes", len(out)))
	return out, nil
}

func buildFeasibilityFile(c *models.Candidacy, file *models.DematerializedFeasibilityFile, aap bool) pdf.FeasibilityFile {
	label, tone := EligibilityLabel(file.EligibilityRequirement, file.EligibilityCandidateSituation)
	selected := file.SelectedBlocIDs()
	var blocs []pdf.Bloc
	for _, b := range c.Certification.SortedBlocs() {
		blocs = append(blocs, pdf.Bloc{Code: b.Code, Label: b.Label, Selected: selected[b.ID]})
	}
	return pdf.FeasibilityFile{
		EligibilityLabel:       label,
		EligibilityTone:        tone,
		CertificationRncpID:    c.Certification.RncpID,
		CertificationLabel:     c.Certification.Label,
		AAPAvailable:           aap,
		Option:                 deref(file.Option),
		FirstForeignLanguage:   deref(file.FirstForeignLanguage),
		SecondForeignLanguage:  deref(file.SecondForeignLanguage),
		IsCertificationPartial: c.IsCertificationPartial,
		Blocs:                  blocs,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
