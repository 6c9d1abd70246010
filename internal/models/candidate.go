package models

import "time"

// Candidate is the person behind one or more candidacies.
type Candidate struct {
	UUIDModel

	AccountID uint     `gorm:"uniqueIndex;not null" json:"account_id"`
	Account   *Account `gorm:"foreignKey:AccountID" json:"-"`

	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Firstname string `gorm:"size:255" json:"firstname"`
	Lastname  string `gorm:"size:255" json:"lastname"`
	Phone     string `gorm:"size:50" json:"phone"`

	DepartmentID string      `gorm:"size:36;index;not null" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	PasswordUpdatedAt *time.Time `json:"password_updated_at,omitempty"`

	Candidacies []Candidacy `gorm:"foreignKey:CandidateID" json:"-"`
}

// Department is a French administrative department.
type Department struct {
	UUIDModel
	Code  string `gorm:"uniqueIndex;size:3;not null" json:"code"`
	Label string `gorm:"size:100;not null" json:"label"`
}

// DefaultDepartmentCode is assigned to candidates who register before filling
// their profile.
const DefaultDepartmentCode = "75"
