package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/diewo77/vae-dossiers/internal/models"
	"github.com/diewo77/vae-dossiers/internal/pdf"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func reqPtr(r models.EligibilityRequirement) *models.EligibilityRequirement { return &r }

func sitPtr(s models.EligibilitySituation) *models.EligibilitySituation { return &s }

func strPtr(s string) *string { return &s }

func TestIsFeasibilityFileReady(t *testing.T) {
	complete := models.ReadinessFlags{
		AttachmentsPartComplete:   true,
		CertificationPartComplete: true,
		PrerequisitesPartComplete: true,
	}
	cases := []struct {
		name   string
		mutate func(*models.ReadinessFlags)
		want   bool
	}{
		{"partial ignores blocs", func(f *models.ReadinessFlags) {
			f.EligibilityRequirement = reqPtr(models.EligibilityPartial)
			f.CompetenceBlocsPartCompletion = models.CompletionNotStarted
		}, true},
		{"full needs blocs", func(f *models.ReadinessFlags) {
			f.EligibilityRequirement = reqPtr(models.EligibilityFull)
			f.CompetenceBlocsPartCompletion = models.CompletionNotStarted
		}, false},
		{"full in progress", func(f *models.ReadinessFlags) {
			f.EligibilityRequirement = reqPtr(models.EligibilityFull)
			f.CompetenceBlocsPartCompletion = models.CompletionInProgress
		}, false},
		{"full completed", func(f *models.ReadinessFlags) {
			f.EligibilityRequirement = reqPtr(models.EligibilityFull)
			f.CompetenceBlocsPartCompletion = models.CompletionCompleted
		}, true},
		{"no eligibility", func(f *models.ReadinessFlags) {
			f.CompetenceBlocsPartCompletion = models.CompletionCompleted
		}, false},
		{"attachments missing", func(f *models.ReadinessFlags) {
			f.EligibilityRequirement = reqPtr(models.EligibilityPartial)
			f.AttachmentsPartComplete = false
		}, false},
		{"certification missing", func(f *models.ReadinessFlags) {
			f.EligibilityRequirement = reqPtr(models.EligibilityPartial)
			f.CertificationPartComplete = false
		}, false},
		{"prerequisites missing", func(f *models.ReadinessFlags) {
			f.EligibilityRequirement = reqPtr(models.EligibilityFull)
			f.CompetenceBlocsPartCompletion = models.CompletionCompleted
			f.PrerequisitesPartComplete = false
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := complete
			tc.mutate(&f)
			if got := IsFeasibilityFileReady(f); got != tc.want {
				t.Fatalf("IsFeasibilityFileReady(%+v) = %v, want %v", f, got, tc.want)
			}
		})
	}
}

func TestEligibilityLabel(t *testing.T) {
	cases := []struct {
		name  string
		req   *models.EligibilityRequirement
		sit   *models.EligibilitySituation
		label string
		tone  pdf.Tone
	}{
		{"empty", nil, nil, "", pdf.ToneInfo},
		{"full", reqPtr(models.EligibilityFull), nil, "Accès complet", pdf.ToneInfo},
		{"partial", reqPtr(models.EligibilityPartial), nil, "Accès partiel", pdf.ToneWarning},
		{"first request wins", reqPtr(models.EligibilityPartial), sitPtr(models.SituationFirstRequest), "Première demande de recevabilité", pdf.ToneInfo},
		{"rncp change", reqPtr(models.EligibilityFull), sitPtr(models.SituationHolderWithRncpChange), "Demande de recevabilité suite à un changement de code RNCP", pdf.ToneWarning},
		{"reevaluation", nil, sitPtr(models.SituationHolderWithoutFrameworkDiff), "Demande de recevabilité suite à une réévaluation", pdf.ToneWarning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			label, tone := EligibilityLabel(tc.req, tc.sit)
			assert.Equal(t, tc.label, label)
			assert.Equal(t, tc.tone, tone)
		})
	}
}

type dffFixture struct {
	candidacy *models.Candidacy
	cert      *models.Certification
	file      *models.DematerializedFeasibilityFile
}

func seedReadyFile(t *testing.T, db *gorm.DB) dffFixture {
	t.Helper()
	cert := models.Certification{RncpID: "37537", Label: "Conducteur d'engins", Status: models.CertificationAvailable, FeasibilityFormat: models.FeasibilityDematerialized}
	mustCreate(t, db, &cert)
	b2 := models.CompetenceBloc{CertificationID: cert.ID, Code: "BC02", Label: "Conduire", Position: 2}
	b1 := models.CompetenceBloc{CertificationID: cert.ID, Code: "BC01", Label: "Préparer", Position: 1}
	mustCreate(t, db, &b2)
	mustCreate(t, db, &b1)

	c := seedCandidacy(t, db, candidacyOpts{format: models.FeasibilityDematerialized, partial: true})
	require.NoError(t, db.Model(c).Update("certification_id", cert.ID).Error)
	f := seedFeasibility(t, db, c.ID, models.DecisionPending)
	file := models.DematerializedFeasibilityFile{
		FeasibilityID:                 f.ID,
		AttachmentsPartComplete:       true,
		CertificationPartComplete:     true,
		PrerequisitesPartComplete:     true,
		CompetenceBlocsPartCompletion: models.CompletionInProgress,
		EligibilityRequirement:        reqPtr(models.EligibilityPartial),
		Option:                        strPtr("Option A"),
		FirstForeignLanguage:          strPtr("Anglais"),
	}
	mustCreate(t, db, &file)
	mustCreate(t, db, &models.DFFCompetenceBloc{DematerializedFeasibilityFileID: file.ID, CompetenceBlocID: b2.ID})
	return dffFixture{candidacy: c, cert: &cert, file: &file}
}

func TestGenerateFeasibilityFile(t *testing.T) {
	db := setupTestDB(t)
	fx := seedReadyFile(t, db)
	svc := NewFeasibilityService(db, nil)

	var captured pdf.FeasibilityFile
	svc.Render = func(f pdf.FeasibilityFile) ([]byte, error) {
		captured = f
		return pdf.RenderFeasibilityFile(f)
	}

	out, err := svc.GenerateFeasibilityFile(context.Background(), fx.candidacy.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	want := pdf.FeasibilityFile{
		EligibilityLabel:       "Accès partiel",
		EligibilityTone:        pdf.ToneWarning,
		CertificationRncpID:    "37537",
		CertificationLabel:     "Conducteur d'engins",
		AAPAvailable:           false,
		Option:                 "Option A",
		FirstForeignLanguage:   "Anglais",
		IsCertificationPartial: true,
		Blocs: []pdf.Bloc{
			{Code: "BC01", Label: "Préparer", Selected: false},
			{Code: "BC02", Label: "Conduire", Selected: true},
		},
	}
	if diff := cmp.Diff(want, captured); diff != "" {
		t.Fatalf("presentation data mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateFeasibilityFile_NotReady(t *testing.T) {
	db := setupTestDB(t)
	fx := seedReadyFile(t, db)
	require.NoError(t, db.Model(fx.file).Update("eligibility_requirement", models.EligibilityFull).Error)

	svc := NewFeasibilityService(db, nil)
	rendered := false
	svc.Render = func(f pdf.FeasibilityFile) ([]byte, error) {
		rendered = true
		return nil, nil
	}
	out, err := svc.GenerateFeasibilityFile(context.Background(), fx.candidacy.ID)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "feasibility_file_incomplete", Code(err))
	assert.False(t, rendered)

	ready, err := svc.IsReady(context.Background(), fx.candidacy.ID)
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestGenerateFeasibilityFile_MissingPieces(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeasibilityService(db, nil)
	ctx := context.Background()

	_, err := svc.GenerateFeasibilityFile(ctx, "missing")
	assert.Equal(t, "candidacy_not_found", Code(err))

	c := seedCandidacy(t, db, candidacyOpts{})
	_, err = svc.GenerateFeasibilityFile(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "certification_not_found", Code(err))

	cert := models.Certification{RncpID: "1", Label: "L", Status: models.CertificationAvailable, FeasibilityFormat: models.FeasibilityUploadedPDF}
	mustCreate(t, db, &cert)
	require.NoError(t, db.Model(c).Update("certification_id", cert.ID).Error)
	_, err = svc.GenerateFeasibilityFile(ctx, c.ID)
	assert.Equal(t, "feasibility_not_found", Code(err))

	seedFeasibility(t, db, c.ID, models.DecisionPending)
	_, err = svc.GenerateFeasibilityFile(ctx, c.ID)
	assert.Equal(t, "dematerialized_file_not_found", Code(err))
}

func TestGenerateFeasibilityFile_RendererFailure(t *testing.T) {
	db := setupTestDB(t)
	fx := seedReadyFile(t, db)
	svc := NewFeasibilityService(db, nil)
	ctx := context.Background()

	svc.Render = func(pdf.FeasibilityFile) ([]byte, error) { return []byte("%PDF-partial"), errors.New("disk full") }
	out, err := svc.GenerateFeasibilityFile(ctx, fx.candidacy.ID)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrGeneration)

	svc.Render = func(pdf.FeasibilityFile) ([]byte, error) { return nil, nil }
	out, err = svc.GenerateFeasibilityFile(ctx, fx.candidacy.ID)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, "pdf_generation_failed", Code(err))
}

func TestIsAAPAvailableForCertification(t *testing.T) {
	db := setupTestDB(t)
	cert := models.Certification{RncpID: "1", Label: "L", Status: models.CertificationAvailable, FeasibilityFormat: models.FeasibilityUploadedPDF}
	mustCreate(t, db, &cert)

	ok, err := IsAAPAvailableForCertification(db, cert.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	inactive := models.Organism{Label: "Closed", IsActive: false, Certifications: []models.Certification{cert}}
	mustCreate(t, db, &inactive)
	ok, err = IsAAPAvailableForCertification(db, cert.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	active := models.Organism{Label: "Open", IsActive: true, Certifications: []models.Certification{cert}}
	mustCreate(t, db, &active)
	ok, err = IsAAPAvailableForCertification(db, cert.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsReady(t *testing.T) {
	db := setupTestDB(t)
	fx := seedReadyFile(t, db)
	svc := NewFeasibilityService(db, nil)

	ready, err := svc.IsReady(context.Background(), fx.candidacy.ID)
	require.NoError(t, err)
	assert.True(t, ready)

	ready, err = svc.IsReady(context.Background(), "none")
	require.NoError(t, err)
	assert.False(t, ready)
}
