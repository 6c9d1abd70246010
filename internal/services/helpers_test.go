package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/diewo77/vae-dossiers/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

type candidacyOpts struct {
	status  models.CandidacyStatus
	typ     models.TypeAccompagnement
	finance models.FinanceModule
	format  models.FeasibilityFormat
	partial bool
}

// seedCandidacy creates a candidate, an organism and a candidacy attached to it
// with an active status history entry.
func seedCandidacy(t *testing.T, db *gorm.DB, o candidacyOpts) *models.Candidacy {
	t.Helper()
	if o.status == "" {
		o.status = models.StatusProjet
	}
	if o.typ == "" {
		o.typ = models.TypeAccompagne
	}
	if o.finance == "" {
		o.finance = models.FinanceHorsPlateforme
	}
	if o.format == "" {
		o.format = models.FeasibilityUploadedPDF
	}
	var dept models.Department
	if err := db.Where(models.Department{Code: "75"}).Attrs(models.Department{Label: "Paris"}).FirstOrCreate(&dept).Error; err != nil {
		t.Fatalf("department: %v", err)
	}
	var n int64
	db.Model(&models.Account{}).Count(&n)
	acc := models.Account{Email: fmt.Sprintf("candidate%d@example.com", n), Role: models.RoleCandidate}
	mustCreate(t, db, &acc)
	cand := models.Candidate{AccountID: acc.ID, Email: acc.Email, DepartmentID: dept.ID}
	mustCreate(t, db, &cand)
	org := models.Organism{Label: "AAP", IsActive: true}
	mustCreate(t, db, &org)
	c := models.Candidacy{
		CandidateID:            cand.ID,
		Status:                 o.status,
		TypeAccompagnement:     o.typ,
		FinanceModule:          o.finance,
		FeasibilityFormat:      o.format,
		IsCertificationPartial: o.partial,
		OrganismID:             &org.ID,
	}
	mustCreate(t, db, &c)
	mustCreate(t, db, &models.CandidacyStatusEntry{CandidacyID: c.ID, Status: o.status, IsActive: true})
	return &c
}

func seedFeasibility(t *testing.T, db *gorm.DB, candidacyID string, decision models.FeasibilityDecision) *models.Feasibility {
	t.Helper()
	f := models.Feasibility{CandidacyID: candidacyID, IsActive: true, Decision: decision, FeasibilityFormat: models.FeasibilityDematerialized}
	mustCreate(t, db, &f)
	return &f
}

func reload(t *testing.T, db *gorm.DB, id string) models.Candidacy {
	t.Helper()
	var c models.Candidacy
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	return c
}

func activeHistory(t *testing.T, db *gorm.DB, id string) []models.CandidacyStatusEntry {
	t.Helper()
	var rows []models.CandidacyStatusEntry
	if err := db.Where("candidacy_id = ? AND is_active = ?", id, true).Find(&rows).Error; err != nil {
		t.Fatalf("history: %v", err)
	}
	return rows
}
