package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Field is a label/value pair printed in the document header block.
type Field struct {
	Label string
	Value string
}

// Section is a headed block of free text.
type Section struct {
	Heading string
	Body    string
}

// Document is a printable report: a title, a metadata block, then sections.
type Document struct {
	Title    string
	Fields   []Field
	Sections []Section
	Footer   string
}

// PDFExporter renders documents into A4 PDFs.
type PDFExporter struct {
	fontFamily string
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{fontFamily: "Arial"}
}

// Render lays the document out on as many pages as needed.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("pdf requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if doc.Footer != "" {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-12)
			pdf.SetFont(e.fontFamily, "I", 8)
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s - page %d", doc.Footer, pdf.PageNo())), "", 0, "C", false, 0, "")
		})
	}
	pdf.AddPage()

	pdf.SetFont(e.fontFamily, "B", 14)
	pdf.MultiCell(0, 8, tr(doc.Title), "", "C", false)
	pdf.Ln(4)

	if len(doc.Fields) > 0 {
		for _, f := range doc.Fields {
			pdf.SetFont(e.fontFamily, "B", 10)
			pdf.CellFormat(45, 7, tr(f.Label), "1", 0, "", false, 0, "")
			pdf.SetFont(e.fontFamily, "", 10)
			pdf.CellFormat(0, 7, tr(f.Value), "1", 1, "", false, 0, "")
		}
		pdf.Ln(6)
	}

	for _, s := range doc.Sections {
		pdf.SetFont(e.fontFamily, "B", 11)
		pdf.MultiCell(0, 7, tr(s.Heading), "B", "", false)
		pdf.Ln(1)
		pdf.SetFont(e.fontFamily, "", 10)
		pdf.MultiCell(0, 5, tr(s.Body), "", "", false)
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
