package anamnesis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionFromKeys(t *testing.T) {
	s, err := SelectionFromKeys([]string{"objectives", "diagnoses", "diagnoses", " sleep "})
	require.NoError(t, err)
	assert.Equal(t, []string{"diagnoses", "objectives", "sleep"}, s.Keys())

	if _, err := SelectionFromKeys(nil); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("empty selection: got %v", err)
	}
	if _, err := SelectionFromKeys([]string{"", "  "}); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("blank-only selection: got %v", err)
	}
	if _, err := SelectionFromKeys([]string{"diagnoses", "shoeSize"}); err == nil {
		t.Fatal("unknown key accepted")
	}
}

func TestSetGroupSelectAll(t *testing.T) {
	s := NewSelection()
	s.SetGroup(GroupPatientInfo, true)
	assert.Equal(t, []string{"diagnoses", "medicationAndAllergies", "indications", "objectives"}, s.Keys())

	// marcar de novo não muda nada
	s.SetGroup(GroupPatientInfo, true)
	assert.Equal(t, []string{"diagnoses", "medicationAndAllergies", "indications", "objectives"}, s.Keys())

	// partial group: select-all fills the gaps
	require.NoError(t, s.Toggle("diagnoses"))
	s.SetGroup(GroupPatientInfo, true)
	assert.Len(t, s.Keys(), 4)

	s.SetGroup(GroupPatientInfo, false)
	assert.True(t, s.Empty())
	s.SetGroup(GroupPatientInfo, false)
	assert.True(t, s.Empty())

	s.SetGroup(GroupPatientInfo, true)
	s.SetGroup(GroupDevelopmentHistory, true)
	assert.Len(t, s.Keys(), len(FieldCatalogue))
}

func TestSetGroupDoesNotTouchOtherGroup(t *testing.T) {
	s := NewSelection()
	require.NoError(t, s.Toggle("sleep"))
	s.SetGroup(GroupPatientInfo, true)
	assert.True(t, s.Selected("sleep"))
	s.SetGroup(GroupPatientInfo, false)
	assert.Equal(t, []string{"sleep"}, s.Keys())
}

func TestBuildDisplay(t *testing.T) {
	rows := BuildDisplay([]string{"diagnoses", "feeding"}, map[string]string{
		"diagnoses": "Autismo, Epilepsia",
		"sleep":     "Agitado",
	})
	require.Len(t, rows, len(FieldCatalogue))

	byKey := map[string]DisplayRow{}
	for _, r := range rows {
		byKey[r.Key] = r
	}
	assert.True(t, byKey["diagnoses"].Selected)
	assert.Equal(t, "Autismo, Epilepsia", byKey["diagnoses"].Value)
	assert.Equal(t, "Diagnóstico do paciente", byKey["diagnoses"].Label)

	// selected but unanswered renders the placeholder
	assert.True(t, byKey["feeding"].Selected)
	assert.Equal(t, NoAnswer, byKey["feeding"].Value)

	// answered but not selected keeps its value with Selected=false
	assert.False(t, byKey["sleep"].Selected)
	assert.Equal(t, "Agitado", byKey["sleep"].Value)

	// catalogue order preserved
	assert.Equal(t, "diagnoses", rows[0].Key)
	assert.Equal(t, "therapists", rows[len(rows)-1].Key)
}
