package anamnesis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outro is the placeholder kept in the canonical list while the "other"
// option is checked but no custom text was typed yet. It never co-exists
// with a non-empty custom entry.
const Outro = "Outro"

// KnownDiagnoses is the fixed checkbox catalogue, in display order.
var KnownDiagnoses = []string{
	"Sem diagnóstico",
	"Autismo",
	"TDAH",
	"Altas Habilidades",
	"Síndrome de Down",
	"Obesidade",
	"Apraxia da Fala",
	"Dispraxia",
}

var knownDiagnosisIdx = func() map[string]int {
	m := make(map[string]int, len(KnownDiagnoses))
	for i, d := range KnownDiagnoses {
		m[d] = i
	}
	return m
}()

// KnownDiagnosis reports whether name is one of the fixed catalogue entries.
func KnownDiagnosis(name string) bool {
	_, ok := knownDiagnosisIdx[name]
	return ok
}

// DiagnosisSet is the normalized form of an anamnesis diagnoses field:
// catalogue entries plus at most one free-text entry. The "other" checkbox
// state is tracked explicitly so clearing the text does not silently drop
// the checkbox.
type DiagnosisSet struct {
	checked [8]bool
	custom  string
	outro   bool
}

// NormalizeDiagnoses parses a stored or submitted diagnoses value. Accepts a
// []string, a JSON array, or a comma-separated string (older records).
// Entries are trimmed and deduped; an unknown non-empty entry becomes the
// custom value (last one wins) and marks the "other" option checked.
func NormalizeDiagnoses(raw interface{}) (DiagnosisSet, error) {
	var entries []string
	switch v := raw.(type) {
	case nil:
		return DiagnosisSet{}, nil
	case []string:
		entries = v
	case []interface{}:
		// json.Unmarshal em interface{} entrega arrays nessa forma.
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return DiagnosisSet{}, fmt.Errorf("diagnoses: entrada %T não suportada", item)
			}
			entries = append(entries, s)
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return DiagnosisSet{}, nil
		}
		if strings.HasPrefix(s, "[") {
			if err := json.Unmarshal([]byte(s), &entries); err != nil {
				return DiagnosisSet{}, fmt.Errorf("diagnoses: %w", err)
			}
		} else {
			entries = strings.Split(s, ",")
		}
	default:
		return DiagnosisSet{}, fmt.Errorf("diagnoses: tipo %T não suportado", raw)
	}

	var ds DiagnosisSet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if i, ok := knownDiagnosisIdx[e]; ok {
			ds.checked[i] = true
			continue
		}
		ds.outro = true
		if e != Outro {
			ds.custom = e
		}
	}
	if ds.custom != "" {
		ds.outro = true
	}
	return ds, nil
}

// Toggle flips a catalogue entry or, when name is Outro, the "other"
// checkbox. Unchecking Outro discards any custom text.
func (ds *DiagnosisSet) Toggle(name string) error {
	if name == Outro {
		ds.outro = !ds.outro
		if !ds.outro {
			ds.custom = ""
		}
		return nil
	}
	i, ok := knownDiagnosisIdx[name]
	if !ok {
		return fmt.Errorf("diagnóstico desconhecido: %q", name)
	}
	ds.checked[i] = !ds.checked[i]
	return nil
}

// SetCustom replaces the free-text entry. Typing text while "other" is
// unchecked checks it; clearing the text keeps the checkbox as-is, so the
// Outro placeholder reappears in Canonical.
func (ds *DiagnosisSet) SetCustom(text string) {
	text = strings.TrimSpace(text)
	ds.custom = text
	if text != "" {
		ds.outro = true
	}
}

// Custom returns the current free-text entry, empty when none.
func (ds DiagnosisSet) Custom() string { return ds.custom }

// OtherChecked reports the "other" checkbox state.
func (ds DiagnosisSet) OtherChecked() bool { return ds.outro }

// Has reports whether a catalogue entry is checked.
func (ds DiagnosisSet) Has(name string) bool {
	i, ok := knownDiagnosisIdx[name]
	return ok && ds.checked[i]
}

// Canonical serializes the set back to the stored list form: catalogue
// entries in display order, then the custom text, or the Outro placeholder
// when "other" is checked without text. Never contains duplicates, and
// never both the placeholder and a custom value.
func (ds DiagnosisSet) Canonical() []string {
	out := make([]string, 0, len(KnownDiagnoses)+1)
	for i, d := range KnownDiagnoses {
		if ds.checked[i] {
			out = append(out, d)
		}
	}
	switch {
	case ds.custom != "":
		out = append(out, ds.custom)
	case ds.outro:
		out = append(out, Outro)
	}
	return out
}
