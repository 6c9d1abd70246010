package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/vae-dossiers/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CandidacyService holds the case-management rules of a candidacy.
type CandidacyService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewCandidacyService(db *gorm.DB, log *zap.Logger) *CandidacyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CandidacyService{DB: db, Log: log}
}

// Get loads a candidacy with its certification, organism and active
// feasibility (dematerialized file included).
func (s *CandidacyService) Get(ctx context.Context, candidacyID string) (*models.Candidacy, error) {
	var c models.Candidacy
	err := s.DB.WithContext(ctx).
		Preload("Certification.CompetenceBlocs").
		Preload("Organism").
		Preload("Feasibilities", "is_active = ?", true).
		Preload("Feasibilities.DematerializedFeasibilityFile.CompetenceBlocs").
		First(&c, "id = ?", candidacyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("candidacy_not_found")
	}
	if err != nil {
		return nil, fmt.Errorf("load candidacy: %w", err)
	}
	return &c, nil
}

// ActiveFeasibility returns the active feasibility of a loaded candidacy, or nil.
func ActiveFeasibility(c *models.Candidacy) *models.Feasibility {
	for i := range c.Feasibilities {
		if c.Feasibilities[i].IsActive {
			return &c.Feasibilities[i]
		}
	}
	return nil
}

// UpdateStatus closes the active history entry, opens a new one and mirrors the
// status on the candidacy row. It must run inside the caller's transaction.
func (s *CandidacyService) UpdateStatus(tx *gorm.DB, candidacyID string, status models.CandidacyStatus) error {
	res := tx.Model(&models.Candidacy{}).Where("id = ?", candidacyID).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("candidacy_not_found")
	}
	if err := tx.Model(&models.CandidacyStatusEntry{}).
		Where("candidacy_id = ? AND is_active = ?", candidacyID, true).
		Update("is_active", false).Error; err != nil {
		return fmt.Errorf("close status history: %w", err)
	}
	entry := models.CandidacyStatusEntry{CandidacyID: candidacyID, Status: status, IsActive: true}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

// SwitchToAutonome moves a candidacy to AUTONOME: the organism is detached,
// statuses that require an organism fall back to PROJET and the feasibility
// format is settled. Every write happens in one transaction.
func (s *CandidacyService) SwitchToAutonome(ctx context.Context, candidacyID string) (*models.Candidacy, error) {
	var (
		from, to  models.CandidacyStatus
		newFormat models.FeasibilityFormat
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Candidacy
		if err := tx.First(&c, "id = ?", candidacyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("candidacy_not_found")
			}
			return fmt.Errorf("load candidacy: %w", err)
		}
		if c.IsAutonome() {
			return invalidState("already_autonome")
		}
		if c.FinanceModule != models.FinanceHorsPlateforme {
			return invalidState("not_hors_plateforme")
		}
		from, to = c.Status, models.AutonomeStatus(c.Status)

		updates := map[string]any{
			"type_accompagnement": models.TypeAutonome,
			"organism_id":         nil,
		}
		keepFormat := false
		if c.FeasibilityFormat == models.FeasibilityDematerialized {
			var f models.Feasibility
			err := tx.Where("candidacy_id = ? AND is_active = ?", c.ID, true).First(&f).Error
			switch {
			case err == nil && f.Decision != models.DecisionAdmissible:
				return invalidState("unresolved_dematerialized_file")
			case err == nil:
				keepFormat = true
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("load active feasibility: %w", err)
			}
		}
		if !keepFormat {
			newFormat = models.FeasibilityUploadedPDF
			updates["feasibility_format"] = newFormat
		}

		if to != from {
			if err := s.UpdateStatus(tx, c.ID, to); err != nil {
				return err
			}
		}
		res := tx.Model(&models.Candidacy{}).
			Where("id = ? AND type_accompagnement <> ?", c.ID, models.TypeAutonome).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("switch candidacy: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalidState("already_autonome")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("candidacy switched to autonome",
		zap.String("candidacy_id", candidacyID),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(to)),
		zap.String("feasibility_format", string(newFormat)),
	)
	return s.Get(ctx, candidacyID)
}
