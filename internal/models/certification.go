package models

import "sort"

type CertificationStatus string

const (
	CertificationAvailable CertificationStatus = "AVAILABLE"
	CertificationInactive  CertificationStatus = "INACTIVE"
)

// Certification is a professional certification registered in the RNCP.
type Certification struct {
	UUIDModel

	RncpID string              `gorm:"size:20;index;not null" json:"rncp_id"`
	Label  string              `gorm:"size:500;not null" json:"label"`
	Status CertificationStatus `gorm:"size:20;not null" json:"status"`
	// FeasibilityFormat is the format used by accompanied candidacies.
	FeasibilityFormat FeasibilityFormat `gorm:"size:20;not null" json:"feasibility_format"`

	CompetenceBlocs []CompetenceBloc `gorm:"foreignKey:CertificationID" json:"competence_blocs,omitempty"`
}

// IsAvailable reports whether candidates may pick the certification.
func (c *Certification) IsAvailable() bool {
	return c.Status == CertificationAvailable
}

// SortedBlocs returns the competence blocs in display order.
func (c *Certification) SortedBlocs() []CompetenceBloc {
	blocs := make([]CompetenceBloc, len(c.CompetenceBlocs))
	copy(blocs, c.CompetenceBlocs)
	sort.SliceStable(blocs, func(i, j int) bool { return blocs[i].Position < blocs[j].Position })
	return blocs
}

// CompetenceBloc is a certifiable sub-unit of a certification.
type CompetenceBloc struct {
	UUIDModel
	CertificationID string `gorm:"size:36;index;not null" json:"certification_id"`
	Code            string `gorm:"size:50" json:"code"`
	Label           string `gorm:"size:500" json:"label"`
	Position        int    `gorm:"not null;default:0" json:"position"`
}
