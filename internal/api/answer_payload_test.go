package api

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

func TestAnswerPayloadApplyDiagnosisForms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"array", `["Autismo","TDAH"]`, []string{"Autismo", "TDAH"}},
		{"array as JSON string", `"[\"Autismo\",\"Epilepsia\"]"`, []string{"Autismo", "Epilepsia"}},
		{"comma-joined string", `"Autismo, Obesidade"`, []string{"Autismo", "Obesidade"}},
		{"empty array", `[]`, []string{}},
		{"absent", ``, []string{}},
	}
	for _, tc := range cases {
		p := &AnswerPayload{Diagnoses: json.RawMessage(tc.raw), Sleep: "Sono agitado"}
		var a repo.Anamnesis
		if err := p.apply(&a); err != nil {
			t.Fatalf("%s: apply: %v", tc.name, err)
		}
		if !reflect.DeepEqual(a.Diagnoses, tc.want) {
			t.Fatalf("%s: diagnoses = %v, want %v", tc.name, a.Diagnoses, tc.want)
		}
		if a.Sleep == nil || *a.Sleep != "Sono agitado" {
			t.Fatalf("%s: sleep answer lost", tc.name)
		}
	}
}

func TestAnswerPayloadApplyCustomDiagnosis(t *testing.T) {
	p := &AnswerPayload{
		Diagnoses:      json.RawMessage(`["Autismo","Outro"]`),
		OtherDiagnosis: "Epilepsia",
	}
	var a repo.Anamnesis
	if err := p.apply(&a); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !reflect.DeepEqual(a.Diagnoses, []string{"Autismo", "Epilepsia"}) {
		t.Fatalf("custom entry should replace the Outro placeholder, got %v", a.Diagnoses)
	}
}
