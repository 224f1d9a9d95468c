package anamnesis

import (
	"testing"
	"time"
)

func TestReduceSetField(t *testing.T) {
	d := NewDraft()
	d2 := Reduce(d, SetField{Key: "sleep", Value: "tranquilo"})
	if d2.Fields["sleep"] != "tranquilo" {
		t.Fatalf("field not set: %+v", d2.Fields)
	}
	if _, ok := d.Fields["sleep"]; ok {
		t.Fatal("input state mutated")
	}

	d3 := Reduce(d2, SetField{Key: "interviewDate", Value: "2026-05-01"})
	if d3.InterviewDate != "2026-05-01" {
		t.Fatalf("interviewDate not set: %q", d3.InterviewDate)
	}
}

func TestReduceViewModeIsReadOnly(t *testing.T) {
	loaded := Reduce(NewDraft(), LoadRecord{
		Mode:   ModeView,
		Fields: map[string]string{"sleep": "agitado"},
	})
	after := Reduce(loaded, SetField{Key: "sleep", Value: "mudou"})
	if after.Fields["sleep"] != "agitado" {
		t.Fatalf("view mode allowed edit: %+v", after.Fields)
	}
	if loaded.Fields["sleep"] != "agitado" {
		t.Fatal("loaded state mutated")
	}
}

func TestReducePublicModeDefaultsInterviewDate(t *testing.T) {
	today := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	d := Reduce(NewDraft(), LoadRecord{Mode: ModePublic, Today: today})
	if d.InterviewDate != "2026-04-02" {
		t.Fatalf("expected today's date, got %q", d.InterviewDate)
	}

	// an already-set date is kept
	d2 := Reduce(NewDraft(), LoadRecord{Mode: ModePublic, InterviewDate: "2026-01-01", Today: today})
	if d2.InterviewDate != "2026-01-01" {
		t.Fatalf("stored date overwritten: %q", d2.InterviewDate)
	}

	// edit mode never defaults
	d3 := Reduce(NewDraft(), LoadRecord{Mode: ModeEdit, Today: today})
	if d3.InterviewDate != "" {
		t.Fatalf("edit mode defaulted date: %q", d3.InterviewDate)
	}
}

func TestReduceStepClamping(t *testing.T) {
	d := NewDraft()
	d = Reduce(d, RetreatStep{})
	if d.Step != 0 {
		t.Fatalf("retreat below first step: %d", d.Step)
	}
	for i := 0; i < 5; i++ {
		d = Reduce(d, AdvanceStep{})
	}
	if d.Step != 2 {
		t.Fatalf("advance past last step: %d", d.Step)
	}
	d = Reduce(d, RetreatStep{})
	if d.Step != 1 {
		t.Fatalf("retreat: %d", d.Step)
	}
}

func TestLoadRecordCopiesInput(t *testing.T) {
	fields := map[string]string{"sleep": "x"}
	diagnoses := []string{"Autismo"}
	d := Reduce(NewDraft(), LoadRecord{Mode: ModeEdit, Fields: fields, Diagnoses: diagnoses})
	fields["sleep"] = "mutated"
	diagnoses[0] = "mutated"
	if d.Fields["sleep"] != "x" || d.Diagnoses[0] != "Autismo" {
		t.Fatalf("draft aliased caller slices/maps: %+v %+v", d.Fields, d.Diagnoses)
	}
}
