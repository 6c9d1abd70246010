package pdf

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	api.DisableConfigDir()
	goleak.VerifyTestMain(m)
}

func sampleFile() FeasibilityFile {
	return FeasibilityFile{
		EligibilityLabel:       "Première demande de recevabilité",
		EligibilityTone:        ToneInfo,
		CertificationRncpID:    "37537",
		CertificationLabel:     "Titre à finalité professionnelle Conducteur d'engins",
		AAPAvailable:           true,
		Option:                 "Option B",
		FirstForeignLanguage:   "Anglais",
		SecondForeignLanguage:  "Espagnol",
		IsCertificationPartial: true,
		Blocs: []Bloc{
			{Code: "RNCP37537BC01", Label: "Préparer le chantier", Selected: true},
			{Code: "RNCP37537BC02", Label: "Conduire l'engin", Selected: false},
		},
	}
}

func TestRenderFeasibilityFile(t *testing.T) {
	data, err := RenderFeasibilityFile(sampleFile())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "missing pdf header")

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestRenderFeasibilityFileManyBlocsPaginates(t *testing.T) {
	f := sampleFile()
	f.IsCertificationPartial = false
	f.EligibilityTone = ToneWarning
	f.AAPAvailable = false
	f.Option = strings.Repeat("parcours long ", 60)
	for i := 0; i < 80; i++ {
		f.Blocs = append(f.Blocs, Bloc{Code: "BC", Label: "Bloc de compétences", Selected: i%2 == 0})
	}
	data, err := RenderFeasibilityFile(f)
	require.NoError(t, err)

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestRenderFeasibilityFileEmptyFields(t *testing.T) {
	data, err := RenderFeasibilityFile(FeasibilityFile{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestFinalizeTwice(t *testing.T) {
	d := New("")
	d.AddSubTitle("x")
	_, err := d.Finalize()
	require.NoError(t, err)
	_, err = d.Finalize()
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestFinalizeReportsRendererError(t *testing.T) {
	d := New("")
	d.pdf.SetError(errors.New("boom"))
	data, err := d.Finalize()
	assert.Nil(t, data)
	assert.ErrorContains(t, err, "boom")
}

func TestHexColor(t *testing.T) {
	r, g, b := hexColor("#e8edff")
	assert.Equal(t, []int{0xe8, 0xed, 0xff}, []int{r, g, b})
	r, g, b = hexColor("nope")
	assert.Equal(t, []int{0, 0, 0}, []int{r, g, b})
}

func TestPxToPt(t *testing.T) {
	assert.InDelta(t, 40.32, PxToPt(100), 0.01)
}
