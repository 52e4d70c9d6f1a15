package receipt

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDF writes the receipt as a single A4 page.
func (r Receipt) PDF(w io.Writer) error {
	return r.writePDF(w, true)
}

func (r Receipt) writePDF(w io.Writer, compress bool) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Loan Receipt "+r.Number, true)
	pdf.SetCreator(r.Business.Name, true)
	pdf.SetCreationDate(r.IssuedOn)
	pdf.SetModificationDate(r.IssuedOn)
	pdf.AddPage()

	// Core fonts are cp1252; the rupee sign has no glyph there.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.ReplaceAll(s, "₹", "Rs. "))
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, text(r.Business.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(190, 10, "Date: "+r.Date(), "", 1, "C", false, 0, "")
	if r.Business.Address != "" {
		pdf.CellFormat(190, 10, text("Address: "+r.Business.Address), "", 1, "C", false, 0, "")
	}
	if r.Number != "" {
		pdf.CellFormat(190, 8, text("Receipt No: "+r.Number), "", 1, "C", false, 0, "")
	}
	pdf.Ln(10)

	section := func(title string, rows []Row) {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(190, 10, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		for _, row := range rows {
			pdf.CellFormat(190, 8, text(row.Label+": "+row.Value), "", 1, "L", false, 0, "")
		}
	}

	section("Customer Details", r.CustomerRows())
	pdf.Ln(5)
	section("Loan Summary", r.SummaryRows())
	if len(r.Cycles) > 1 {
		pdf.Ln(5)
		section("Interest Cycles", r.CycleRows())
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt pdf: %w", err)
	}
	return nil
}
