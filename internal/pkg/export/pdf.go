package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/go-pdf/fpdf"
)

const (
	OrientationPortrait  = "P"
	OrientationLandscape = "L"

	fontFamily   = "jp"
	fallbackFont = "Helvetica"
)

var fontCache sync.Map // path -> []byte

func loadFont(path string) ([]byte, bool) {
	if path == "" {
		return nil, false
	}
	if cached, ok := fontCache.Load(path); ok {
		return cached.([]byte), true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("PDF font not readable, falling back to core font", "path", path, "error", err)
		return nil, false
	}
	fontCache.Store(path, data)
	return data, true
}

// Document is a thin A4 layout helper over fpdf that knows how to draw
// titles, label/value blocks and paginated tables with a Japanese font.
type Document struct {
	pdf    *fpdf.Fpdf
	family string
	utf8   bool
	// tr maps text onto the font's encoding. Core fonts only know cp1252,
	// so anything outside it is printed as '.'.
	tr func(string) string
}

// NewDocument starts an A4 document with one page. fontPath should point at a
// TrueType font with Japanese glyphs; without it the core Helvetica is used
// and Japanese text degrades to placeholders.
func NewDocument(fontPath, orientation string) *Document {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)

	d := &Document{pdf: pdf, family: fallbackFont}
	if data, ok := loadFont(fontPath); ok {
		pdf.AddUTF8FontFromBytes(fontFamily, "", data)
		pdf.AddUTF8FontFromBytes(fontFamily, "B", data)
		d.family = fontFamily
		d.utf8 = true
		d.tr = func(s string) string { return s }
	} else {
		d.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	d.font("", 10)
	return d
}

func (d *Document) font(style string, size float64) {
	d.pdf.SetFont(d.family, style, size)
}

// UTF8 reports whether a Unicode font was loaded.
func (d *Document) UTF8() bool {
	return d.utf8
}

// lineCount is how many lines text wraps to inside width. SplitText indexes
// the width table by rune, which only a UTF-8 font can take.
func (d *Document) lineCount(text string, width float64) int {
	if d.utf8 {
		return len(d.pdf.SplitText(text, width))
	}
	return len(d.pdf.SplitLines([]byte(d.tr(text)), width))
}

func (d *Document) contentWidth() float64 {
	pageW, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	return pageW - left - right
}

// Title writes a centered heading.
func (d *Document) Title(text string) {
	d.font("B", 16)
	d.pdf.CellFormat(0, 10, d.tr(text), "", 1, "C", false, 0, "")
	d.pdf.Ln(2)
	d.font("", 10)
}

// Line writes a single left-aligned line.
func (d *Document) Line(text string) {
	d.font("", 10)
	d.pdf.CellFormat(0, 6, d.tr(text), "", 1, "L", false, 0, "")
}

// RightLine writes a single right-aligned line, e.g. a print date.
func (d *Document) RightLine(text string) {
	d.font("", 9)
	d.pdf.CellFormat(0, 5, d.tr(text), "", 1, "R", false, 0, "")
	d.font("", 10)
}

func (d *Document) Space(h float64) {
	d.pdf.Ln(h)
}

// Section writes a bold sub heading.
func (d *Document) Section(text string) {
	d.pdf.Ln(2)
	d.font("B", 11)
	d.pdf.CellFormat(0, 7, d.tr(text), "", 1, "L", false, 0, "")
	d.font("", 10)
}

// Field is one label/value pair of a KeyValues block.
type Field struct {
	Label string
	Value string
}

// KeyValues draws a two column bordered block. Long values wrap.
func (d *Document) KeyValues(fields []Field, labelWidth float64) {
	valueWidth := d.contentWidth() - labelWidth
	for _, f := range fields {
		d.font("B", 9)
		d.pdf.SetFillColor(240, 240, 240)
		x, y := d.pdf.GetXY()
		h := 7.0 * float64(max(d.lineCount(f.Value, valueWidth-2), 1))
		if y+h > d.pageBottom() {
			d.pdf.AddPage()
			x, y = d.pdf.GetXY()
		}
		d.pdf.CellFormat(labelWidth, h, d.tr(f.Label), "1", 0, "L", true, 0, "")
		d.font("", 9)
		d.pdf.MultiCell(valueWidth, 7, d.tr(f.Value), "1", "L", false)
		d.pdf.SetXY(x, y+h)
	}
	d.font("", 10)
}

func (d *Document) pageBottom() float64 {
	_, pageH := d.pdf.GetPageSize()
	_, _, _, bottom := d.pdf.GetMargins()
	return pageH - bottom
}

// Table draws a bordered table whose header repeats on every page. A nil
// widths slice spreads the columns evenly.
func (d *Document) Table(headers []string, widths []float64, rows [][]string, fontSize float64) {
	if len(widths) != len(headers) {
		widths = make([]float64, len(headers))
		for i := range widths {
			widths[i] = d.contentWidth() / float64(len(headers))
		}
	}
	rowH := fontSize * 0.6

	header := func() {
		d.font("B", fontSize)
		d.pdf.SetFillColor(217, 225, 242)
		for i, h := range headers {
			d.pdf.CellFormat(widths[i], rowH, d.tr(h), "1", 0, "C", true, 0, "")
		}
		d.pdf.Ln(-1)
		d.font("", fontSize)
	}

	header()
	for _, row := range rows {
		if d.pdf.GetY()+rowH > d.pageBottom() {
			d.pdf.AddPage()
			header()
		}
		for i := range headers {
			var cell string
			if i < len(row) {
				cell = d.fit(row[i], widths[i]-1)
			}
			d.pdf.CellFormat(widths[i], rowH, cell, "1", 0, "L", false, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.font("", 10)
}

// fit truncates text so it stays inside one cell and returns it in the
// font's encoding.
func (d *Document) fit(text string, width float64) string {
	if out := d.tr(text); d.pdf.GetStringWidth(out) <= width {
		return out
	}
	runes := []rune(text)
	for len(runes) > 0 && d.pdf.GetStringWidth(d.tr(string(runes)+"…")) > width {
		runes = runes[:len(runes)-1]
	}
	return d.tr(string(runes) + "…")
}

// Bytes finishes the document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
