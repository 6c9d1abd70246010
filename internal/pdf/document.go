// Package pdf lays out feasibility documents with gofpdf.
//
// Document is a synchronous builder: drawing calls accumulate on an
// in-memory page set and bytes are only produced by Finalize.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
)

// PxToPt converts a design pixel measure to PDF points.
func PxToPt(px float64) float64 { return px / 2.48 }

var (
	ErrFinalized = errors.New("pdf: document already finalized")
	ErrEmpty     = errors.New("pdf: renderer produced no data")
)

const (
	fontFamily  = "Helvetica"
	lineSpacing = 1.2
)

// Tone selects the colour scheme of a tag.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneWarning Tone = "warning"
	ToneNeutral Tone = "neutral"
)

type palette struct{ bg, fg string }

var tonePalette = map[Tone]palette{
	ToneInfo:    {bg: "#e8edff", fg: "#0063cb"},
	ToneWarning: {bg: "#feebd0", fg: "#695240"},
	ToneNeutral: {bg: "#eeeeee", fg: "#3a3a3a"},
}

type Document struct {
	pdf       *gofpdf.Fpdf
	tr        func(string) string
	size      float64
	finalized bool
}

// New starts an A4 portrait document with its first page.
func New(title string) *Document {
	f := gofpdf.New("P", "pt", "A4", "")
	f.SetMargins(PxToPt(100), PxToPt(20), 30)
	f.SetAutoPageBreak(true, 60)
	f.SetCompression(true)
	d := &Document{pdf: f, tr: f.UnicodeTranslatorFromDescriptor("")}
	if title != "" {
		f.SetTitle(title, true)
	}
	f.SetCreator("vae-dossiers", true)
	f.AddPage()
	d.font("", 10)
	return d
}

// Err reports the first error recorded by the renderer.
func (d *Document) Err() error {
	if d.pdf.Err() {
		return d.pdf.Error()
	}
	return nil
}

func (d *Document) font(style string, size float64) {
	d.pdf.SetFont(fontFamily, style, size)
	d.size = size
}

func (d *Document) lineHeight() float64 { return d.size * lineSpacing }

func (d *Document) textColor(hex string) {
	r, g, b := hexColor(hex)
	d.pdf.SetTextColor(r, g, b)
}

func (d *Document) fillColor(hex string) {
	r, g, b := hexColor(hex)
	d.pdf.SetFillColor(r, g, b)
}

func (d *Document) drawColor(hex string) {
	r, g, b := hexColor(hex)
	d.pdf.SetDrawColor(r, g, b)
}

// X returns the current horizontal position.
func (d *Document) X() float64 { return d.pdf.GetX() }

// Y returns the current vertical position.
func (d *Document) Y() float64 { return d.pdf.GetY() }

func (d *Document) SetXY(x, y float64) { d.pdf.SetXY(x, y) }

// MoveDown advances by a number of lines of the current font.
func (d *Document) MoveDown(lines float64) {
	x := d.pdf.GetX()
	d.pdf.SetY(d.pdf.GetY() + lines*d.lineHeight())
	d.pdf.SetX(x)
}

func (d *Document) contentWidth() float64 {
	w, _ := d.pdf.GetPageSize()
	l, _, r, _ := d.pdf.GetMargins()
	return w - l - r
}

// Text writes a wrapped paragraph at x with the given width (0 means up to the
// right margin).
func (d *Document) Text(s string, x, width float64) {
	if width <= 0 {
		l, _, _, _ := d.pdf.GetMargins()
		width = d.contentWidth() - (x - l)
	}
	d.pdf.SetX(x)
	d.pdf.MultiCell(width, d.lineHeight(), d.tr(s), "", "L", false)
}

// AddHeader draws the two-sided document banner.
func (d *Document) AddHeader(left, right string) {
	l, top, _, _ := d.pdf.GetMargins()
	d.textColor("#000091")
	d.font("B", 11)
	d.pdf.SetXY(l, top+10)
	d.pdf.MultiCell(PxToPt(260), d.lineHeight(), d.tr(left), "", "L", false)
	d.font("B", 16)
	d.pdf.SetXY(l+400, top+16)
	d.pdf.CellFormat(0, d.lineHeight(), d.tr(right), "", 0, "L", false, 0, "")
	d.textColor("#000000")
	d.font("", 10)
	d.pdf.SetXY(l, top+PxToPt(260))
}

// AddSection writes a titled section and frames its content.
func (d *Document) AddSection(title string, content func(*Document)) {
	l, top, _, _ := d.pdf.GetMargins()
	page, yStart := d.pdf.PageNo(), d.pdf.GetY()

	d.font("B", 14)
	d.Text(title, l+PxToPt(90), 0)
	d.MoveDown(0.5)
	d.font("", 10)
	d.pdf.SetX(l + PxToPt(140))

	content(d)

	d.font("", 10)
	d.MoveDown(1)
	if d.pdf.PageNo() != page {
		yStart = top
	}
	d.drawColor("#dddddd")
	d.pdf.SetLineWidth(0.5)
	d.pdf.Rect(l, yStart, PxToPt(1280), d.pdf.GetY()-yStart, "D")
	d.pdf.SetX(l)
}

func (d *Document) AddSubTitle(s string) {
	x := d.pdf.GetX()
	d.font("B", 12)
	d.Text(s, x, 0)
	d.MoveDown(0.5)
	d.pdf.SetX(x)
	d.font("", 10)
}

// AddTag draws a coloured label at x on the current line.
func (d *Document) AddTag(text string, x float64, tone Tone) {
	p, ok := tonePalette[tone]
	if !ok {
		p = tonePalette[ToneInfo]
	}
	d.font("B", 8)
	pad := 4.0
	w := d.pdf.GetStringWidth(d.tr(text)) + 2*pad + 10
	h := d.lineHeight() + 2
	y := d.pdf.GetY()
	d.fillColor(p.bg)
	d.pdf.Rect(x, y, w, h, "F")
	d.fillColor(p.fg)
	d.pdf.Circle(x+pad+2.5, y+h/2, 2.5, "F")
	d.textColor(p.fg)
	d.pdf.SetXY(x+pad+8, y+1)
	d.pdf.CellFormat(w-pad-8, d.lineHeight(), d.tr(text), "", 0, "L", false, 0, "")
	d.textColor("#000000")
	d.pdf.SetXY(x, y+h)
	d.font("", 10)
}

// AddFrame draws a light border around content, starting at x.
func (d *Document) AddFrame(x, width float64, content func(*Document)) {
	page, yStart := d.pdf.PageNo(), d.pdf.GetY()
	d.pdf.SetX(x)
	content(d)
	if d.pdf.PageNo() != page {
		_, yStart, _, _ = d.pdf.GetMargins()
	}
	d.drawColor("#dddddd")
	d.pdf.SetLineWidth(0.5)
	d.pdf.Rect(x, yStart, width, d.pdf.GetY()-yStart, "D")
	d.pdf.SetX(x)
}

// AddInfoText writes "title value" at (x, y). A zero y keeps the current line.
func (d *Document) AddInfoText(title, value string, x, y, maxWidth float64) {
	if y > 0 {
		d.pdf.SetY(y)
	}
	d.font("B", 10)
	d.pdf.SetX(x)
	tw := d.pdf.GetStringWidth(d.tr(title)) + 4
	d.pdf.CellFormat(tw, d.lineHeight(), d.tr(title), "", 0, "L", false, 0, "")
	d.font("", 10)
	if maxWidth <= 0 {
		maxWidth = PxToPt(280)
	}
	d.pdf.MultiCell(maxWidth-tw, d.lineHeight(), d.tr(value), "", "L", false)
	d.pdf.SetX(x)
}

// AddCallout writes a highlighted title and description with a left accent bar.
func (d *Document) AddCallout(title, description string, x, width float64) {
	page, yStart := d.pdf.PageNo(), d.pdf.GetY()
	d.fillColor("#eeeeee")
	pad := 10.0
	d.font("B", 11)
	d.pdf.SetXY(x+pad, yStart+pad)
	d.pdf.MultiCell(width-2*pad, d.lineHeight(), d.tr(title), "", "L", false)
	d.font("", 10)
	d.pdf.SetX(x + pad)
	d.pdf.MultiCell(width-2*pad, d.lineHeight(), d.tr(description), "", "L", false)
	yEnd := d.pdf.GetY() + pad
	if d.pdf.PageNo() != page {
		_, yStart, _, _ = d.pdf.GetMargins()
	}
	d.fillColor("#6a6af4")
	d.pdf.Rect(x, yStart, 3, yEnd-yStart, "F")
	d.pdf.SetXY(x, yEnd)
}

// AddTitledBlock writes a bordered block with a grey title bar.
func (d *Document) AddTitledBlock(title string, x, width float64, content func(*Document)) {
	page, yStart := d.pdf.PageNo(), d.pdf.GetY()
	d.fillColor("#f6f6f6")
	d.font("B", 11)
	d.pdf.SetX(x)
	d.pdf.CellFormat(width, d.lineHeight()+10, "  "+d.tr(title), "", 1, "L", true, 0, "")
	d.font("", 10)
	d.MoveDown(0.5)
	d.pdf.SetX(x + 10)
	content(d)
	if d.pdf.PageNo() != page {
		_, yStart, _, _ = d.pdf.GetMargins()
	}
	d.drawColor("#dddddd")
	d.pdf.SetLineWidth(0.5)
	d.pdf.Rect(x, yStart, width, d.pdf.GetY()-yStart, "D")
	d.pdf.SetX(x)
}

// AddDisabledCheckbox draws a greyed, read-only checkbox followed by label.
func (d *Document) AddDisabledCheckbox(label string, checked bool) {
	x, y := d.pdf.GetX(), d.pdf.GetY()
	box := 9.0
	d.drawColor("#929292")
	d.pdf.SetLineWidth(0.75)
	if checked {
		d.fillColor("#e5e5e5")
		d.pdf.Rect(x, y+1, box, box, "FD")
		d.pdf.Line(x+2, y+1+box/2, x+box/2-0.5, y+box-1)
		d.pdf.Line(x+box/2-0.5, y+box-1, x+box-2, y+3)
	} else {
		d.pdf.Rect(x, y+1, box, box, "D")
	}
	d.textColor("#929292")
	d.font("", 10)
	l, _, _, _ := d.pdf.GetMargins()
	d.pdf.SetX(x + box + 6)
	d.pdf.MultiCell(d.contentWidth()-(x+box+6-l)-20, d.lineHeight(), d.tr(label), "", "L", false)
	d.textColor("#000000")
	d.pdf.SetX(x)
}

// Finalize closes the document and returns its bytes. It fails when any drawing
// call failed or nothing was produced; the document cannot be reused.
func (d *Document) Finalize() ([]byte, error) {
	if d.finalized {
		return nil, ErrFinalized
	}
	d.finalized = true
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmpty
	}
	return buf.Bytes(), nil
}

// hexColor parses "#rrggbb"; anything else is black.
func hexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
