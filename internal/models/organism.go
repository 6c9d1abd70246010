package models

// Organism is an accompanying body (AAP).
type Organism struct {
	UUIDModel
	Label        string `gorm:"size:255;not null" json:"label"`
	ContactEmail string `gorm:"size:255" json:"contact_email,omitempty"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
	// Certifications the organism accompanies candidates on.
	Certifications []Certification `gorm:"many2many:organism_certifications;" json:"-"`
}
