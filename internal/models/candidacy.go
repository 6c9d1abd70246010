package models

import "time"

// CandidacyStatus is a lifecycle stage of a candidacy.
type CandidacyStatus string

const (
	StatusArchive                        CandidacyStatus = "ARCHIVE"
	StatusProjet                         CandidacyStatus = "PROJET"
	StatusValidation                     CandidacyStatus = "VALIDATION"
	StatusPriseEnCharge                  CandidacyStatus = "PRISE_EN_CHARGE"
	StatusParcoursEnvoye                 CandidacyStatus = "PARCOURS_ENVOYE"
	StatusParcoursConfirme               CandidacyStatus = "PARCOURS_CONFIRME"
	StatusDossierFaisabiliteEnvoye       CandidacyStatus = "DOSSIER_FAISABILITE_ENVOYE"
	StatusDossierFaisabiliteIncomplet    CandidacyStatus = "DOSSIER_FAISABILITE_INCOMPLET"
	StatusDossierFaisabiliteRecevable    CandidacyStatus = "DOSSIER_FAISABILITE_RECEVABLE"
	StatusDossierFaisabiliteNonRecevable CandidacyStatus = "DOSSIER_FAISABILITE_NON_RECEVABLE"
	StatusDossierDeValidationEnvoye      CandidacyStatus = "DOSSIER_DE_VALIDATION_ENVOYE"
	StatusDossierDeValidationSignale     CandidacyStatus = "DOSSIER_DE_VALIDATION_SIGNALE"
	StatusDemandeFinancementEnvoye       CandidacyStatus = "DEMANDE_FINANCEMENT_ENVOYE"
	StatusDemandePaiementEnvoyee         CandidacyStatus = "DEMANDE_PAIEMENT_ENVOYEE"
)

// AllStatuses lists the lifecycle in order.
var AllStatuses = []CandidacyStatus{
	StatusArchive,
	StatusProjet,
	StatusValidation,
	StatusPriseEnCharge,
	StatusParcoursEnvoye,
	StatusParcoursConfirme,
	StatusDossierFaisabiliteEnvoye,
	StatusDossierFaisabiliteIncomplet,
	StatusDossierFaisabiliteRecevable,
	StatusDossierFaisabiliteNonRecevable,
	StatusDossierDeValidationEnvoye,
	StatusDossierDeValidationSignale,
	StatusDemandeFinancementEnvoye,
	StatusDemandePaiementEnvoyee,
}

// autonomeStatus maps every status to the status it must hold once the
// candidacy is AUTONOME. Stages that only exist with an accompanying organism
// go back to PROJET.
var autonomeStatus = map[CandidacyStatus]CandidacyStatus{
	StatusArchive:                        StatusArchive,
	StatusProjet:                         StatusProjet,
	StatusValidation:                     StatusProjet,
	StatusPriseEnCharge:                  StatusProjet,
	StatusParcoursEnvoye:                 StatusProjet,
	StatusParcoursConfirme:               StatusProjet,
	StatusDossierFaisabiliteEnvoye:       StatusDossierFaisabiliteEnvoye,
	StatusDossierFaisabiliteIncomplet:    StatusDossierFaisabiliteIncomplet,
	StatusDossierFaisabiliteRecevable:    StatusDossierFaisabiliteRecevable,
	StatusDossierFaisabiliteNonRecevable: StatusDossierFaisabiliteNonRecevable,
	StatusDossierDeValidationEnvoye:      StatusDossierDeValidationEnvoye,
	StatusDossierDeValidationSignale:     StatusDossierDeValidationSignale,
	StatusDemandeFinancementEnvoye:       StatusDemandeFinancementEnvoye,
	StatusDemandePaiementEnvoyee:         StatusDemandePaiementEnvoyee,
}

// AutonomeStatus returns the status valid for an AUTONOME candidacy.
func AutonomeStatus(s CandidacyStatus) CandidacyStatus {
	if target, ok := autonomeStatus[s]; ok {
		return target
	}
	return s
}

// Valid reports whether s belongs to the lifecycle.
func (s CandidacyStatus) Valid() bool {
	_, ok := autonomeStatus[s]
	return ok
}

type TypeAccompagnement string

const (
	TypeAccompagne TypeAccompagnement = "ACCOMPAGNE"
	TypeAutonome   TypeAccompagnement = "AUTONOME"
)

// FinanceModule is the funding channel of a candidacy.
type FinanceModule string

const (
	FinanceUnireva        FinanceModule = "unireva"
	FinanceUnifvae        FinanceModule = "unifvae"
	FinanceHorsPlateforme FinanceModule = "hors_plateforme"
)

type FeasibilityFormat string

const (
	FeasibilityDematerialized FeasibilityFormat = "DEMATERIALIZED"
	FeasibilityUploadedPDF    FeasibilityFormat = "UPLOADED_PDF"
)

// Candidacy is one candidate's certification case.
type Candidacy struct {
	UUIDModel

	CandidateID string     `gorm:"size:36;index;not null" json:"candidate_id"`
	Candidate   *Candidate `gorm:"foreignKey:CandidateID" json:"-"`

	Status                 CandidacyStatus    `gorm:"size:50;not null" json:"status"`
	TypeAccompagnement     TypeAccompagnement `gorm:"size:20;not null" json:"type_accompagnement"`
	FinanceModule          FinanceModule      `gorm:"size:30;not null" json:"finance_module"`
	FeasibilityFormat      FeasibilityFormat  `gorm:"size:20;not null" json:"feasibility_format"`
	IsCertificationPartial bool               `gorm:"not null;default:false" json:"is_certification_partial"`

	CertificationID *string        `gorm:"size:36;index" json:"certification_id,omitempty"`
	Certification   *Certification `gorm:"foreignKey:CertificationID" json:"certification,omitempty"`

	// OrganismID is the accompanying body; always nil for AUTONOME candidacies
	// created through the switch.
	OrganismID *string   `gorm:"size:36;index" json:"organism_id,omitempty"`
	Organism   *Organism `gorm:"foreignKey:OrganismID" json:"organism,omitempty"`

	StatusHistory []CandidacyStatusEntry `gorm:"foreignKey:CandidacyID" json:"-"`
	Feasibilities []Feasibility          `gorm:"foreignKey:CandidacyID" json:"-"`
}

// IsAutonome reports whether the candidate proceeds without an organism.
func (c *Candidacy) IsAutonome() bool {
	return c.TypeAccompagnement == TypeAutonome
}

// CandidacyStatusEntry is one row of the status history. Exactly one entry per
// candidacy is active and it mirrors Candidacy.Status.
type CandidacyStatusEntry struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	CandidacyID string          `gorm:"size:36;index;not null" json:"candidacy_id"`
	Status      CandidacyStatus `gorm:"size:50;not null" json:"status"`
	IsActive    bool            `gorm:"not null;default:false" json:"is_active"`
}

func (CandidacyStatusEntry) TableName() string { return "candidacy_statuses" }
