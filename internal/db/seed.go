package db

import (
	"context"
	"fmt"

	"github.com/diewo77/vae-dossiers/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedCertification struct {
	RncpID string
	Label  string
	Format models.FeasibilityFormat
	Blocs  []models.CompetenceBloc
}

var seedDepartments = []models.Department{
	{Code: "75", Label: "Paris"},
	{Code: "13", Label: "Bouches-du-Rhône"},
	{Code: "33", Label: "Gironde"},
	{Code: "69", Label: "Rhône"},
}

var seedCertifications = []seedCertification{
	{
		RncpID: "37537",
		Label:  "Titre à finalité professionnelle Conducteur d'engins de travaux publics",
		Format: models.FeasibilityDematerialized,
		Blocs: []models.CompetenceBloc{
			{Code: "RNCP37537BC01", Label: "Préparer et sécuriser le chantier", Position: 1},
			{Code: "RNCP37537BC02", Label: "Conduire l'engin de travaux publics", Position: 2},
		},
	},
	{
		RncpID: "34692",
		Label:  "CAP Accompagnant éducatif petite enfance",
		Format: models.FeasibilityUploadedPDF,
		Blocs: []models.CompetenceBloc{
			{Code: "RNCP34692BC01", Label: "Accompagner le développement du jeune enfant", Position: 1},
			{Code: "RNCP34692BC02", Label: "Exercer son activité en accueil collectif", Position: 2},
			{Code: "RNCP34692BC03", Label: "Exercer son activité en accueil individuel", Position: 3},
		},
	},
}

// Seed inserts reference data. Rows are matched by their natural key so it can
// run on every start.
func Seed(ctx context.Context, conn *gorm.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range seedDepartments {
			var existing models.Department
			if err := tx.Where(models.Department{Code: d.Code}).Attrs(models.Department{Label: d.Label}).
				FirstOrCreate(&existing).Error; err != nil {
				return fmt.Errorf("seed department %s: %w", d.Code, err)
			}
		}

		var certs []models.Certification
		for _, sc := range seedCertifications {
			var cert models.Certification
			if err := tx.Where(models.Certification{RncpID: sc.RncpID}).
				Attrs(models.Certification{Label: sc.Label, Status: models.CertificationAvailable, FeasibilityFormat: sc.Format}).
				FirstOrCreate(&cert).Error; err != nil {
				return fmt.Errorf("seed certification %s: %w", sc.RncpID, err)
			}
			for _, b := range sc.Blocs {
				var bloc models.CompetenceBloc
				if err := tx.Where(models.CompetenceBloc{CertificationID: cert.ID, Code: b.Code}).
					Attrs(models.CompetenceBloc{Label: b.Label, Position: b.Position}).
					FirstOrCreate(&bloc).Error; err != nil {
					return fmt.Errorf("seed bloc %s: %w", b.Code, err)
				}
			}
			certs = append(certs, cert)
		}

		var org models.Organism
		if err := tx.Where(models.Organism{Label: "AAP Île-de-France"}).
			Attrs(models.Organism{ContactEmail: "contact@aap-idf.example", IsActive: true}).
			FirstOrCreate(&org).Error; err != nil {
			return fmt.Errorf("seed organism: %w", err)
		}
		if err := tx.Model(&org).Association("Certifications").Append(certs[:1]); err != nil {
			return fmt.Errorf("seed organism certifications: %w", err)
		}
		log.Info("reference data seeded",
			zap.Int("departments", len(seedDepartments)), zap.Int("certifications", len(certs)))
		return nil
	})
}
