package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDModel is embedded by domain entities that are identified by a UUID string.
type UUIDModel struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a new UUID when the caller did not set one.
func (m *UUIDModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// All returns every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Department{}, &Organism{}, &Certification{}, &CompetenceBloc{},
		&Account{}, &Candidate{}, &Candidacy{}, &CandidacyStatusEntry{},
		&Feasibility{}, &DematerializedFeasibilityFile{}, &DFFCompetenceBloc{},
	}
}
