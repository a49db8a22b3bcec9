// PDF renderer: converts a delta into a styled PDF using gofpdf.
// Handles headers (variable font sizes), paragraphs, lists, code blocks,
// table cells and inline bold/italic/underline/link runs. Embeds are written
// as a grey placeholder naming their source; images are not downloaded.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/pastepipe/core"
	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/match"
	"github.com/jung-kurt/gofpdf"
)

const (
	bodySize   = 10.0
	indentStep = 6.0
)

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}

// PDFRenderer renders a delta as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the delta into PDF bytes.
func (r *PDFRenderer) Render(d delta.Delta, meta core.Metadata) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	left, _, _, _ := pdf.GetMargins()
	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), left: left}

	if meta.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, w.tr(meta.Title), "", "L", false)
		pdf.Ln(4)
	}
	if meta.Source != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, w.tr("Source: "+meta.Source), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}

	for _, line := range d.Lines() {
		w.line(line)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

type pdfWriter struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	left float64

	numbers []int // next ordered-list number per indent
	rowID   string
}

func (w *pdfWriter) line(l delta.Line) {
	attrs := l.Attrs
	if attrs[match.AttrList] == nil {
		w.numbers = nil
	}
	row := tableRow(attrs)
	if row != w.rowID {
		if w.rowID != "" || row != "" {
			w.rule()
		}
		w.rowID = row
	}

	indent, _ := intAttr(attrs[match.AttrIndent])
	w.pdf.SetLeftMargin(w.left + float64(indent)*indentStep)
	w.pdf.SetX(w.left + float64(indent)*indentStep)
	defer w.pdf.SetLeftMargin(w.left)

	switch {
	case attrs[match.AttrHeader] != nil:
		level, _ := intAttr(attrs[match.AttrHeader])
		size, ok := headingSizes[level]
		if !ok {
			size = bodySize
		}
		w.pdf.Ln(4)
		w.runs(l.Content, size, "B", "")
		w.pdf.Ln(2)
	case attrs[match.AttrCodeBlock] != nil:
		w.pdf.SetFont("Courier", "", 9)
		w.pdf.SetFillColor(245, 245, 245)
		w.pdf.MultiCell(0, 4.5, w.tr(l.Content.Text()), "", "L", true)
	case attrs[match.AttrList] != nil:
		w.runs(l.Content, bodySize, "", w.marker(attrs[match.AttrList], indent))
	case row != "":
		w.runs(l.Content, bodySize, cellStyle(attrs), "| ")
	default:
		w.runs(l.Content, bodySize, "", "")
	}
}

// runs writes the inline ops of one line, wrapping at the margin.
func (w *pdfWriter) runs(content delta.Delta, size float64, base, prefix string) {
	h := size * 0.5
	if prefix != "" {
		w.pdf.SetFont("Helvetica", base, size)
		w.pdf.Write(h, w.tr(prefix))
	}
	for _, op := range content {
		if op.IsEmbed() {
			w.pdf.SetFont("Helvetica", "I", size)
			w.pdf.SetTextColor(100, 100, 100)
			w.pdf.Write(h, w.tr("["+op.Embed.Key+": "+op.Embed.Value+"]"))
			w.pdf.SetTextColor(0, 0, 0)
			continue
		}
		family := "Helvetica"
		if truthy(op.Attrs[match.AttrCode]) {
			family = "Courier"
		}
		w.pdf.SetFont(family, fontStyle(base, op.Attrs), size)
		if href, _ := op.Attrs[match.AttrLink].(string); href != "" {
			w.pdf.SetTextColor(0, 0, 200)
			w.pdf.WriteLinkString(h, w.tr(op.Text), href)
			w.pdf.SetTextColor(0, 0, 0)
			continue
		}
		w.pdf.Write(h, w.tr(op.Text))
	}
	w.pdf.Ln(h)
}

// marker returns the prefix of a list line and advances ordered numbering.
func (w *pdfWriter) marker(kind any, indent int) string {
	if len(w.numbers) > indent+1 {
		w.numbers = w.numbers[:indent+1]
	}
	for len(w.numbers) <= indent {
		w.numbers = append(w.numbers, 1)
	}
	switch kind {
	case "ordered":
		n := w.numbers[indent]
		w.numbers[indent]++
		return strconv.Itoa(n) + ". "
	case "checked":
		return "[x] "
	case "unchecked":
		return "[ ] "
	}
	return "• "
}

// rule draws a thin separator between table rows.
func (w *pdfWriter) rule() {
	y := w.pdf.GetY() + 1
	pageW, _ := w.pdf.GetPageSize()
	_, _, right, _ := w.pdf.GetMargins()
	w.pdf.SetDrawColor(200, 200, 200)
	w.pdf.Line(w.left, y, pageW-right, y)
	w.pdf.SetDrawColor(0, 0, 0)
	w.pdf.Ln(2)
}

func tableRow(attrs delta.Attrs) string {
	if v := attrs[match.AttrTableHeaderCell]; v != nil {
		return "header:" + fmt.Sprint(v)
	}
	if v := attrs[match.AttrTable]; v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func cellStyle(attrs delta.Attrs) string {
	if attrs[match.AttrTableHeaderCell] != nil {
		return "B"
	}
	return ""
}

// fontStyle merges a line's base style with an op's inline formats into a
// gofpdf style string.
func fontStyle(base string, attrs delta.Attrs) string {
	style := base
	for attr, s := range map[string]string{match.AttrBold: "B", match.AttrItalic: "I", match.AttrUnderline: "U"} {
		if truthy(attrs[attr]) && !strings.Contains(style, s) {
			style += s
		}
	}
	return style
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != "" && x != "false"
	case nil:
		return false
	}
	return true
}
