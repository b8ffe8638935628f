package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/plradhouane-dev/gmao/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateInterventionPDF renders a repair report for a completed or
// in-progress intervention: equipment identification, dates, technician,
// the part lines with their costs, and the labor/total breakdown.
// storagePath is the directory where the PDF is written (created if
// needed). Returns the absolute path to the generated file.
func GenerateInterventionPDF(iv *model.Intervention, currency, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("intervention_%s.pdf", iv.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Rapport d'intervention", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Equipment block ──────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Equipement", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if iv.Equipment != nil {
		pdf.CellFormat(contentW, 5, fmt.Sprintf("N° de série : %s", iv.Equipment.SerialNumber), "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Marque / modèle : %s %s", iv.Equipment.Brand, iv.Equipment.Model), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Equipement : %s", iv.EquipmentID), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Intervention block ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Intervention", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Date d'entrée : %s", iv.EntryDate.Format("02/01/2006")), "", 1, "L", false, 0, "")
	if iv.ExitDate != nil {
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Date de sortie : %s", iv.ExitDate.Format("02/01/2006")), "", 1, "L", false, 0, "")
	}
	if iv.Technician != "" {
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Technicien : %s", iv.Technician), "", 1, "L", false, 0, "")
	}
	if iv.RepairDetails != "" {
		pdf.MultiCell(contentW, 5, "Détails : "+iv.RepairDetails, "", "L", false)
	}
	pdf.Ln(3)

	// ── Part lines ───────────────────────────────────────────────────────────
	col1 := contentW * 0.46 // part name
	col2 := contentW * 0.18 // reference
	col3 := contentW * 0.12 // qty
	col4 := contentW * 0.24 // line cost

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Pièce", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Référence", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Qté", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 6, "Coût", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, u := range iv.Usages {
		name, ref := "", ""
		if u.Part != nil {
			name, ref = u.Part.Name, u.Part.Reference
		}
		if len(name) > 34 {
			name = name[:33] + "…"
		}
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, ref, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, fmt.Sprintf("x%d", u.QuantityUsed), "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 6, u.LineCost.StringFixed(2)+" "+currency, "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(col1+col2+col3, 6, "Main d'oeuvre :", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, iv.LaborCost.StringFixed(2)+" "+currency, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 7, "TOTAL :", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 7, iv.TotalCost.StringFixed(2)+" "+currency, "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
