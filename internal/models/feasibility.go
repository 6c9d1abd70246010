package models

type FeasibilityDecision string

const (
	DecisionDraft      FeasibilityDecision = "DRAFT"
	DecisionPending    FeasibilityDecision = "PENDING"
	DecisionAdmissible FeasibilityDecision = "ADMISSIBLE"
	DecisionRejected   FeasibilityDecision = "REJECTED"
	DecisionIncomplete FeasibilityDecision = "INCOMPLETE"
)

// Feasibility is a feasibility review of a candidacy. Older reviews are kept
// with IsActive=false.
type Feasibility struct {
	UUIDModel

	CandidacyID       string              `gorm:"size:36;index;not null" json:"candidacy_id"`
	IsActive          bool                `gorm:"not null;default:false" json:"is_active"`
	Decision          FeasibilityDecision `gorm:"size:20;not null" json:"decision"`
	FeasibilityFormat FeasibilityFormat   `gorm:"size:20;not null" json:"feasibility_format"`

	DematerializedFeasibilityFile *DematerializedFeasibilityFile `gorm:"foreignKey:FeasibilityID" json:"dematerialized_feasibility_file,omitempty"`
}

type CompetenceBlocsPartCompletion string

const (
	CompletionNotStarted CompetenceBlocsPartCompletion = "NOT_STARTED"
	CompletionInProgress CompetenceBlocsPartCompletion = "IN_PROGRESS"
	CompletionCompleted  CompetenceBlocsPartCompletion = "COMPLETED"
)

type EligibilityRequirement string

const (
	EligibilityFull    EligibilityRequirement = "FULL_ELIGIBILITY_REQUIREMENT"
	EligibilityPartial EligibilityRequirement = "PARTIAL_ELIGIBILITY_REQUIREMENT"
)

type EligibilitySituation string

const (
	SituationFirstRequest               EligibilitySituation = "PREMIERE_DEMANDE_RECEVABILITE"
	SituationHolderWithRncpChange       EligibilitySituation = "DETENTEUR_RECEVABILITE_AVEC_CHGT_CODE_RNCP_ET_REVAL_AUTRE_QUE_CAS_DE_PASSERELLES"
	SituationHolderWithoutFrameworkDiff EligibilitySituation = "DETENTEUR_RECEVABILITE_AVEC_REVAL_SANS_CHGT_REFERENTIEL"
)

type AAPDecision string

const (
	AAPFavorable   AAPDecision = "FAVORABLE"
	AAPUnfavorable AAPDecision = "UNFAVORABLE"
)

// DematerializedFeasibilityFile is the structured feasibility dossier filled
// online part by part.
type DematerializedFeasibilityFile struct {
	UUIDModel

	FeasibilityID string `gorm:"size:36;uniqueIndex;not null" json:"feasibility_id"`

	AttachmentsPartComplete       bool                          `gorm:"not null;default:false" json:"attachments_part_complete"`
	CertificationPartComplete     bool                          `gorm:"not null;default:false" json:"certification_part_complete"`
	PrerequisitesPartComplete     bool                          `gorm:"not null;default:false" json:"prerequisites_part_complete"`
	CompetenceBlocsPartCompletion CompetenceBlocsPartCompletion `gorm:"size:20;not null;default:'NOT_STARTED'" json:"competence_blocs_part_completion"`

	EligibilityRequirement        *EligibilityRequirement `gorm:"size:40" json:"eligibility_requirement,omitempty"`
	EligibilityCandidateSituation *EligibilitySituation   `gorm:"size:100" json:"eligibility_candidate_situation,omitempty"`
	AAPDecision                   *AAPDecision            `gorm:"size:20" json:"aap_decision,omitempty"`

	Option                *string `gorm:"size:500" json:"option,omitempty"`
	FirstForeignLanguage  *string `gorm:"size:100" json:"first_foreign_language,omitempty"`
	SecondForeignLanguage *string `gorm:"size:100" json:"second_foreign_language,omitempty"`

	CompetenceBlocs []DFFCompetenceBloc `gorm:"foreignKey:DematerializedFeasibilityFileID" json:"competence_blocs,omitempty"`
}

// SelectedBlocIDs returns the competence bloc ids chosen in the file.
func (f *DematerializedFeasibilityFile) SelectedBlocIDs() map[string]bool {
	ids := make(map[string]bool, len(f.CompetenceBlocs))
	for _, b := range f.CompetenceBlocs {
		ids[b.CompetenceBlocID] = true
	}
	return ids
}

// DFFCompetenceBloc records that a competence bloc was selected in a file.
type DFFCompetenceBloc struct {
	DematerializedFeasibilityFileID string `gorm:"primaryKey;size:36" json:"dematerialized_feasibility_file_id"`
	CompetenceBlocID                string `gorm:"primaryKey;size:36" json:"competence_bloc_id"`
}

func (DFFCompetenceBloc) TableName() string { return "dff_competence_blocs" }

// ReadinessFlags are the inputs of the readiness gate.
type ReadinessFlags struct {
	AttachmentsPartComplete       bool
	CertificationPartComplete     bool
	PrerequisitesPartComplete     bool
	CompetenceBlocsPartCompletion CompetenceBlocsPartCompletion
	EligibilityRequirement        *EligibilityRequirement
}

func (f *DematerializedFeasibilityFile) ReadinessFlags() ReadinessFlags {
	return ReadinessFlags{
		AttachmentsPartComplete:       f.AttachmentsPartComplete,
		CertificationPartComplete:     f.CertificationPartComplete,
		PrerequisitesPartComplete:     f.PrerequisitesPartComplete,
		CompetenceBlocsPartCompletion: f.CompetenceBlocsPartCompletion,
		EligibilityRequirement:        f.EligibilityRequirement,
	}
}
