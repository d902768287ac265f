package pdfexport

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"github.com/AnshRaj112/serenify-journal/internal/richtext"
)

const (
	pageMargin   = 20.0
	quoteIndent  = 10.0
	footerOffset = 15.0
	fontFamily   = "Helvetica"
)

func fontStyle(s richtext.Style) string {
	switch s {
	case richtext.StyleBold:
		return "B"
	case richtext.StyleItalic:
		return "I"
	case richtext.StyleBoldItalic:
		return "BI"
	default:
		return ""
	}
}

// fontMeasurer measures text with the core font metrics. It uses its own
// document so measuring never writes into page content.
type fontMeasurer struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	size float64
}

func (m fontMeasurer) Width(text string, style richtext.Style) float64 {
	m.pdf.SetFont(fontFamily, fontStyle(style), m.size)
	return m.pdf.GetStringWidth(m.tr(text))
}

// canvas tracks the vertical cursor over an A4 portrait document and
// starts new pages when the next line would cross the bottom margin.
type canvas struct {
	pdf     *fpdf.Fpdf
	measure *fpdf.Fpdf
	tr      func(string) string
	width   float64
	height  float64
	y       float64
}

func newCanvas(title string) *canvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("serenify-journal", true)

	w, h := pdf.GetPageSize()
	return &canvas{
		pdf:     pdf,
		measure: fpdf.New("P", "mm", "A4", ""),
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		width:   w,
		height:  h,
	}
}

func (c *canvas) contentWidth() float64 {
	return c.width - 2*pageMargin
}

func (c *canvas) measurer(size float64) Measurer {
	return fontMeasurer{pdf: c.measure, tr: c.tr, size: size}
}

func (c *canvas) addPage() {
	c.pdf.AddPage()
	c.y = pageMargin
}

func (c *canvas) ensure(lineHeight float64) {
	if c.y+lineHeight > c.height-pageMargin {
		c.addPage()
	}
}

func (c *canvas) font(style richtext.Style, size float64) {
	c.pdf.SetFont(fontFamily, fontStyle(style), size)
}

func (c *canvas) gray(v int) {
	c.pdf.SetTextColor(v, v, v)
}

func (c *canvas) text(x float64, s string) {
	c.pdf.Text(x, c.y, c.tr(s))
}

func (c *canvas) textRight(s string) {
	c.text(c.width-pageMargin-c.pdf.GetStringWidth(c.tr(s)), s)
}

func (c *canvas) textCenter(s string) {
	c.text((c.width-c.pdf.GetStringWidth(c.tr(s)))/2, s)
}

func (c *canvas) rule() {
	c.pdf.SetDrawColor(200, 200, 200)
	c.pdf.SetLineWidth(0.3)
	c.pdf.Line(pageMargin, c.y, c.width-pageMargin, c.y)
}

// lines draws laid-out lines starting at the cursor, switching font style
// per run.
func (c *canvas) lines(lines []Line, size, lineHeight float64, color int) {
	for _, l := range lines {
		c.ensure(lineHeight)
		if l.Quote {
			c.gray(80)
		} else {
			c.gray(color)
		}
		x := pageMargin + l.Indent
		for _, r := range l.Runs {
			c.font(r.Style, size)
			c.text(x, r.Text)
			x += c.pdf.GetStringWidth(c.tr(r.Text))
		}
		c.y += lineHeight
	}
}

func (c *canvas) bytes() ([]byte, error) {
	if c.pdf.Err() {
		return nil, c.pdf.Error()
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
