package pdf

import (
	"bytes"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
)

// ReferralReport dados do relatório de anamnese exportado para a assistente.
type ReferralReport struct {
	PatientName   string
	GuardianName  string
	InterviewDate string // já formatada (dd/mm/aaaa), vazia quando desconhecida
	AssistantName string
	Rows          []anamnesis.DisplayRow
	// Link de volta para o encaminhamento no console; vira QR na última página.
	ReportURL string
}

// BuildReferralReportPDF gera o PDF "Relatório de Anamnese" apenas com os
// campos liberados na seleção.
func BuildReferralReportPDF(r ReferralReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr("Relatório de Anamnese"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Paciente: "+r.PatientName), "", 1, "L", false, 0, "")
	if r.GuardianName != "" {
		pdf.CellFormat(0, 6, tr("Responsável: "+r.GuardianName), "", 1, "L", false, 0, "")
	}
	if r.InterviewDate != "" {
		pdf.CellFormat(0, 6, tr("Data da entrevista: "+r.InterviewDate), "", 1, "L", false, 0, "")
	}
	if r.AssistantName != "" {
		pdf.CellFormat(0, 6, tr("Assistente: "+r.AssistantName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, row := range r.Rows {
		if !row.Selected {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 6, tr(row.Label), "", "", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(row.Value), "", "", false)
		pdf.Ln(3)
	}

	if r.ReportURL != "" {
		qrPNG, err := qrcode.Encode(r.ReportURL, qrcode.Medium, 128)
		if err == nil {
			tmpFile, err := os.CreateTemp("", "qr-*.png")
			if err == nil {
				tmpFile.Write(qrPNG)
				path := tmpFile.Name()
				tmpFile.Close()
				defer os.Remove(path)
				pdf.Ln(4)
				pdf.RegisterImage(path, "PNG")
				pdf.Image(path, 15, pdf.GetY(), 30, 30, false, "", 0, "")
				pdf.SetY(pdf.GetY() + 32)
			}
		}
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, tr("Encaminhamento: "+r.ReportURL), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
