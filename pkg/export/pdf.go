package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const wideTableColumns = 5

// PDFRenderer lays a Table out as a bordered grid on A4 pages.
// Tables wider than five columns switch to landscape.
type PDFRenderer struct {
	now func() time.Time
}

// NewPDFRenderer constructs a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{now: time.Now}
}

// ContentType implements Renderer.
func (PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (PDFRenderer) Extension() string { return "pdf" }

// Render implements Renderer.
func (r *PDFRenderer) Render(table Table) ([]byte, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}

	orientation := "P"
	if len(table.Columns) > wideTableColumns {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.SetAutoPageBreak(true, 15)

	generated := r.now().UTC().Format("2006-01-02 15:04 MST")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Generated %s  |  Page %d", generated, pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	if table.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, table.Title, "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(table.Columns))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(99, 102, 241)
	pdf.SetTextColor(255, 255, 255)
	for _, column := range table.Columns {
		pdf.CellFormat(colWidth, 8, column, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range table.Rows {
		shaded := i%2 == 1
		pdf.SetFillColor(243, 244, 246)
		for _, cell := range row {
			pdf.CellFormat(colWidth, 7, cell, "1", 0, "L", shaded, 0, "")
		}
		pdf.Ln(-1)
	}

	if table.Footer != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 8, table.Footer, "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
