package anamnesis

import (
	"errors"
	"fmt"
	"strings"
)

// NoAnswer is rendered in referral reports for fields the guardian left
// blank but the professional chose to disclose anyway.
const NoAnswer = "Sem resposta registrada."

// DisclosureGroup splits the field catalogue the way the selection screen
// presents it.
type DisclosureGroup string

const (
	GroupPatientInfo        DisclosureGroup = "patient_info"
	GroupDevelopmentHistory DisclosureGroup = "development_history"
)

// Field is one disclosable anamnesis answer.
type Field struct {
	Key   string
	Label string
	Group DisclosureGroup
}

// FieldCatalogue lists every disclosable field, in the fixed order the
// report renders them.
var FieldCatalogue = []Field{
	{Key: "diagnoses", Label: "Diagnóstico do paciente", Group: GroupPatientInfo},
	{Key: "medicationAndAllergies", Label: "Medicação e Alergias", Group: GroupPatientInfo},
	{Key: "indications", Label: "Indicações", Group: GroupPatientInfo},
	{Key: "objectives", Label: "Por qual motivo nos procurou? (Objetivos)", Group: GroupPatientInfo},
	{Key: "developmentHistory", Label: "Gestação - Diagnóstico - Processo de Desenvolvimento - Dias Atuais", Group: GroupDevelopmentHistory},
	{Key: "preferences", Label: "Preferências do aluno (a)", Group: GroupDevelopmentHistory},
	{Key: "interferingBehaviors", Label: "Comportamentos interferentes e plano de conduta", Group: GroupDevelopmentHistory},
	{Key: "qualityOfLife", Label: "Comprometimento da qualidade de vida (aluno e família)", Group: GroupDevelopmentHistory},
	{Key: "feeding", Label: "Alimentação (Seletividade - Compulsividade - Acompanhamento Nutricional)", Group: GroupDevelopmentHistory},
	{Key: "sleep", Label: "Rotina do sono (agitação, continuidade)", Group: GroupDevelopmentHistory},
	{Key: "therapists", Label: "Equipe de terapeutas", Group: GroupDevelopmentHistory},
}

var fieldByKey = func() map[string]Field {
	m := make(map[string]Field, len(FieldCatalogue))
	for _, f := range FieldCatalogue {
		m[f.Key] = f
	}
	return m
}()

var ErrEmptySelection = errors.New("selecione ao menos um campo para o encaminhamento")

// Selection is an ordered subset of the catalogue chosen for a referral.
type Selection struct {
	keys map[string]bool
}

// NewSelection builds an empty selection.
func NewSelection() *Selection {
	return &Selection{keys: make(map[string]bool)}
}

// SelectionFromKeys validates a submitted key list. Unknown keys are
// rejected, duplicates collapse, an empty result is an error.
func SelectionFromKeys(keys []string) (*Selection, error) {
	s := NewSelection()
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := fieldByKey[k]; !ok {
			return nil, fmt.Errorf("campo desconhecido: %q", k)
		}
		s.keys[k] = true
	}
	if len(s.keys) == 0 {
		return nil, ErrEmptySelection
	}
	return s, nil
}

// Toggle flips a single field.
func (s *Selection) Toggle(key string) error {
	if _, ok := fieldByKey[key]; !ok {
		return fmt.Errorf("campo desconhecido: %q", key)
	}
	if s.keys[key] {
		delete(s.keys, key)
	} else {
		s.keys[key] = true
	}
	return nil
}

// SetGroup implements the group-scoped select-all checkbox: selected=true
// marca todos os campos do grupo, selected=false desmarca todos. A direção
// vem do checkbox, então repetir a mesma chamada é um no-op.
func (s *Selection) SetGroup(g DisclosureGroup, selected bool) {
	for _, f := range FieldCatalogue {
		if f.Group != g {
			continue
		}
		if selected {
			s.keys[f.Key] = true
		} else {
			delete(s.keys, f.Key)
		}
	}
}

// Selected reports whether key is part of the selection.
func (s *Selection) Selected(key string) bool { return s.keys[key] }

// Keys returns the selection in catalogue order, ready for storage.
func (s *Selection) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for _, f := range FieldCatalogue {
		if s.keys[f.Key] {
			out = append(out, f.Key)
		}
	}
	return out
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool { return len(s.keys) == 0 }

// DisplayRow is one rendered line of a referral report.
type DisplayRow struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// BuildDisplay reconstructs the report rows for a stored selection. values
// maps field key to the guardian's answer; a selected field with a blank
// answer renders the NoAnswer placeholder. Rows come out in catalogue
// order, unselected fields included with Selected=false so callers can
// render either the filtered report or the full selection screen.
func BuildDisplay(selected []string, values map[string]string) []DisplayRow {
	sel := make(map[string]bool, len(selected))
	for _, k := range selected {
		sel[k] = true
	}
	rows := make([]DisplayRow, 0, len(FieldCatalogue))
	for _, f := range FieldCatalogue {
		v := strings.TrimSpace(values[f.Key])
		if sel[f.Key] && v == "" {
			v = NoAnswer
		}
		rows = append(rows, DisplayRow{Key: f.Key, Label: f.Label, Value: v, Selected: sel[f.Key]})
	}
	return rows
}
