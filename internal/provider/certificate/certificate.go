// Package certificate renders course completion certificates as PDF documents.
package certificate

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/provider"
)

type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

var _ provider.CertificateRenderer = (*Renderer)(nil)

func (r *Renderer) Render(data provider.CertificateData) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Certificate of completion", true)
	pdf.SetAuthor("Zerofiltre", true)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	pdf.SetLineWidth(1.5)
	pdf.SetDrawColor(30, 64, 175)
	pdf.Rect(10, 10, w-20, h-20, "D")

	pdf.SetY(40)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(0, 16, tr("Certificate of completion"), "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, tr("This certifies that"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(0, 16, tr(data.FullName), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, tr("has successfully completed the course"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 12, tr(data.CourseTitle), "", "C", false)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, data.CompletedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Reference: %s", data.Reference), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
