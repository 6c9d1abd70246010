package pdf

import "fmt"

// Bloc is a competence bloc row of the checklist.
type Bloc struct {
	Code     string
	Label    string
	Selected bool
}

// FeasibilityFile is the presentation data of a dematerialized feasibility file.
type FeasibilityFile struct {
	EligibilityLabel string
	EligibilityTone  Tone

	CertificationRncpID string
	CertificationLabel  string
	AAPAvailable        bool

	Option                string
	FirstForeignLanguage  string
	SecondForeignLanguage string

	IsCertificationPartial bool
	Blocs                  []Bloc
}

// RenderFeasibilityFile lays the file out and returns the finished document.
func RenderFeasibilityFile(f FeasibilityFile) ([]byte, error) {
	d := New("Dossier de faisabilité")
	d.AddHeader("RÉPUBLIQUE\nFRANÇAISE", "France VAE")
	d.AddSection("Contexte de la demande", func(d *Document) {
		natureDemande(d, f)
		certificationInfo(d, f)
	})
	return d.Finalize()
}

func natureDemande(d *Document, f FeasibilityFile) {
	d.AddSubTitle("Nature de la demande")
	d.AddTag(f.EligibilityLabel, d.X()+PxToPt(40), f.EligibilityTone)
	d.MoveDown(1)
}

func certificationInfo(d *Document, f FeasibilityFile) {
	d.AddSubTitle("Informations sur la certification professionnelle visée")

	x := d.X()
	d.AddFrame(x, PxToPt(1160), func(d *Document) {
		d.MoveDown(0.75)
		tag := "VAE en autonomie"
		if f.AAPAvailable {
			tag = "VAE en autonomie ou accompagnée"
		}
		d.AddTag(tag, x+PxToPt(72), ToneNeutral)
		d.MoveDown(0.5)
		d.font("", 6)
		d.Text(fmt.Sprintf("RNCP %s", f.CertificationRncpID), x+PxToPt(72), 0)
		d.font("B", 11)
		d.Text(f.CertificationLabel, x+PxToPt(72), PxToPt(1096)-PxToPt(72))
		d.font("", 10)
		d.MoveDown(1)
	})
	d.MoveDown(0.5)

	d.AddInfoText("Option ou parcours :", f.Option, x, 0, PxToPt(1160))
	d.MoveDown(0.5)

	y := d.Y()
	d.AddInfoText("Langue vivante 1 :", f.FirstForeignLanguage, x, y, PxToPt(300))
	bottom := d.Y()
	d.AddInfoText("Langue vivante 2 :", f.SecondForeignLanguage, x+PxToPt(300), y, PxToPt(300))
	if d.Y() < bottom {
		d.SetXY(x, bottom)
	}
	d.SetXY(x, d.Y())
	d.MoveDown(1)

	desc := "La certification dans sa totalité"
	if f.IsCertificationPartial {
		desc = "Un ou plusieurs bloc(s) de compétences de la certification"
	}
	d.AddCallout("Le candidat vise", desc, x, PxToPt(1160))
	d.MoveDown(1)

	d.AddTitledBlock("Choix des blocs de compétences", x, PxToPt(1160), func(d *Document) {
		for _, b := range f.Blocs {
			d.AddDisabledCheckbox(fmt.Sprintf("%s - %s", b.Code, b.Label), b.Selected)
			d.MoveDown(0.5)
		}
	})
}
