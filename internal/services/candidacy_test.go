package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/vae-dossiers/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSwitchToAutonome_SetsModeAndClearsOrganism(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCandidacyService(db, nil)
	c := seedCandidacy(t, db, candidacyOpts{})

	out, err := svc.SwitchToAutonome(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeAutonome, out.TypeAccompagnement)
	assert.Nil(t, out.OrganismID)

	got := reload(t, db, c.ID)
	assert.Equal(t, models.TypeAutonome, got.TypeAccompagnement)
	assert.Nil(t, got.OrganismID)
	assert.Equal(t, models.StatusProjet, got.Status)
}

func TestSwitchToAutonome_StatusRollback(t *testing.T) {
	for _, status := range models.AllStatuses {
		t.Run(string(status), func(t *testing.T) {
			db := setupTestDB(t)
			svc := NewCandidacyService(db, nil)
			c := seedCandidacy(t, db, candidacyOpts{status: status})

			_, err := svc.SwitchToAutonome(context.Background(), c.ID)
			require.NoError(t, err)

			want := status
			switch status {
			case models.StatusValidation, models.StatusPriseEnCharge, models.StatusParcoursEnvoye, models.StatusParcoursConfirme:
				want = models.StatusProjet
			}
			got := reload(t, db, c.ID)
			assert.Equal(t, want, got.Status)

			hist := activeHistory(t, db, c.ID)
			require.Len(t, hist, 1)
			assert.Equal(t, want, hist[0].Status)

			var total int64
			db.Model(&models.CandidacyStatusEntry{}).Where("candidacy_id = ?", c.ID).Count(&total)
			if want == status {
				assert.EqualValues(t, 1, total, "no history row expected without rollback")
			} else {
				assert.EqualValues(t, 2, total)
			}
		})
	}
}

func TestSwitchToAutonome_Preconditions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCandidacyService(db, nil)
	ctx := context.Background()

	_, err := svc.SwitchToAutonome(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "candidacy_not_found", Code(err))

	auto := seedCandidacy(t, db, candidacyOpts{typ: models.TypeAutonome})
	_, err = svc.SwitchToAutonome(ctx, auto.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "already_autonome", Code(err))

	funded := seedCandidacy(t, db, candidacyOpts{finance: models.FinanceUnifvae, status: models.StatusPriseEnCharge})
	_, err = svc.SwitchToAutonome(ctx, funded.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "not_hors_plateforme", Code(err))
	got := reload(t, db, funded.ID)
	assert.Equal(t, models.TypeAccompagne, got.TypeAccompagnement)
	assert.Equal(t, models.StatusPriseEnCharge, got.Status)
	assert.NotNil(t, got.OrganismID)
}

func TestSwitchToAutonome_DematerializedNotAdmissibleFails(t *testing.T) {
	for _, d := range []models.FeasibilityDecision{models.DecisionDraft, models.DecisionPending, models.DecisionRejected, models.DecisionIncomplete} {
		t.Run(string(d), func(t *testing.T) {
			db := setupTestDB(t)
			svc := NewCandidacyService(db, nil)
			c := seedCandidacy(t, db, candidacyOpts{status: models.StatusParcoursConfirme, format: models.FeasibilityDematerialized})
			seedFeasibility(t, db, c.ID, d)
			before := reload(t, db, c.ID)

			_, err := svc.SwitchToAutonome(context.Background(), c.ID)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidState))
			assert.Equal(t, "unresolved_dematerialized_file", Code(err))

			after := reload(t, db, c.ID)
			if diff := cmp.Diff(before, after); diff != "" {
				t.Fatalf("candidacy mutated (-before +after):\n%s", diff)
			}
			hist := activeHistory(t, db, c.ID)
			require.Len(t, hist, 1)
			assert.Equal(t, models.StatusParcoursConfirme, hist[0].Status)
		})
	}
}

func TestSwitchToAutonome_DematerializedAdmissibleKeepsFormat(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCandidacyService(db, nil)
	c := seedCandidacy(t, db, candidacyOpts{status: models.StatusDossierFaisabiliteRecevable, format: models.FeasibilityDematerialized})
	seedFeasibility(t, db, c.ID, models.DecisionAdmissible)

	_, err := svc.SwitchToAutonome(context.Background(), c.ID)
	require.NoError(t, err)
	got := reload(t, db, c.ID)
	assert.Equal(t, models.FeasibilityDematerialized, got.FeasibilityFormat)
	assert.Equal(t, models.StatusDossierFaisabiliteRecevable, got.Status)
}

func TestSwitchToAutonome_NoFileSentBecomesUploadedPDF(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCandidacyService(db, nil)
	c := seedCandidacy(t, db, candidacyOpts{format: models.FeasibilityDematerialized})
	// an inactive review does not count
	f := models.Feasibility{CandidacyID: c.ID, IsActive: false, Decision: models.DecisionRejected, FeasibilityFormat: models.FeasibilityDematerialized}
	mustCreate(t, db, &f)

	_, err := svc.SwitchToAutonome(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeasibilityUploadedPDF, reload(t, db, c.ID).FeasibilityFormat)
}

func TestSwitchToAutonome_TwiceFailsAndKeepsState(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCandidacyService(db, nil)
	ctx := context.Background()
	c := seedCandidacy(t, db, candidacyOpts{status: models.StatusValidation})

	_, err := svc.SwitchToAutonome(ctx, c.ID)
	require.NoError(t, err)
	first := reload(t, db, c.ID)

	_, err = svc.SwitchToAutonome(ctx, c.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "already_autonome", Code(err))
	if diff := cmp.Diff(first, reload(t, db, c.ID)); diff != "" {
		t.Fatalf("second switch mutated state:\n%s", diff)
	}
}

func TestSwitchToAutonome_IsAtomic(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCandidacyService(db, nil)
	c := seedCandidacy(t, db, candidacyOpts{status: models.StatusPriseEnCharge})

	boom := errors.New("boom")
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_switch", func(tx *gorm.DB) {
		if tx.Statement.Table != "candidacies" {
			return
		}
		if m, ok := tx.Statement.Dest.(map[string]any); ok {
			if _, switching := m["type_accompagnement"]; switching {
				_ = tx.AddError(boom)
			}
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Update().Remove("test:fail_switch") })

	_, err = svc.SwitchToAutonome(context.Background(), c.ID)
	require.ErrorIs(t, err, boom)

	got := reload(t, db, c.ID)
	assert.Equal(t, models.StatusPriseEnCharge, got.Status, "status rollback must be undone")
	assert.Equal(t, models.TypeAccompagne, got.TypeAccompagnement)
	assert.NotNil(t, got.OrganismID)
	hist := activeHistory(t, db, c.ID)
	require.Len(t, hist, 1)
	assert.Equal(t, models.StatusPriseEnCharge, hist[0].Status)
}

func TestUpdateStatusKeepsOneActiveEntry(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCandidacyService(db, nil)
	c := seedCandidacy(t, db, candidacyOpts{})

	for _, s := range []models.CandidacyStatus{models.StatusValidation, models.StatusPriseEnCharge} {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return svc.UpdateStatus(tx, c.ID, s) }))
	}
	hist := activeHistory(t, db, c.ID)
	require.Len(t, hist, 1)
	assert.Equal(t, models.StatusPriseEnCharge, hist[0].Status)
	assert.Equal(t, models.StatusPriseEnCharge, reload(t, db, c.ID).Status)

	err := db.Transaction(func(tx *gorm.DB) error { return svc.UpdateStatus(tx, "missing", models.StatusProjet) })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPreloadsActiveFeasibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCandidacyService(db, nil)
	c := seedCandidacy(t, db, candidacyOpts{format: models.FeasibilityDematerialized})
	mustCreate(t, db, &models.Feasibility{CandidacyID: c.ID, IsActive: false, Decision: models.DecisionRejected, FeasibilityFormat: models.FeasibilityDematerialized})
	active := seedFeasibility(t, db, c.ID, models.DecisionPending)

	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, got.Feasibilities, 1)
	assert.Equal(t, active.ID, ActiveFeasibility(got).ID)
	require.NotNil(t, got.Organism)
}
