package pdf

import (
	"bytes"
	"testing"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
)

func TestBuildReferralReportPDF(t *testing.T) {
	rows := anamnesis.BuildDisplay(
		[]string{"diagnoses", "feeding"},
		map[string]string{"diagnoses": "Autismo, Epilepsia"},
	)
	b, err := BuildReferralReportPDF(ReferralReport{
		PatientName:   "João da Silva",
		GuardianName:  "Maria da Silva",
		InterviewDate: "11/02/2026",
		AssistantName: "Carla",
		Rows:          rows,
		ReportURL:     "http://localhost:3000/encaminhamentos/abc",
	})
	if err != nil {
		t.Fatalf("BuildReferralReportPDF: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", b[:8])
	}
}

func TestBuildReferralReportPDFEmptyReport(t *testing.T) {
	b, err := BuildReferralReportPDF(ReferralReport{PatientName: "Ana"})
	if err != nil {
		t.Fatalf("BuildReferralReportPDF: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("empty output")
	}
}
