package anamnesis

import "time"

// FormMode controls how a record is loaded into the 3-step form.
type FormMode string

const (
	ModeEdit   FormMode = "edit"
	ModeView   FormMode = "view"
	ModePublic FormMode = "public"
)

const (
	minStep = 0
	maxStep = 2
)

// Draft is the form state the API serves to the 3-step anamnesis form.
// Value semantics: Reduce returns a new Draft and never mutates its input,
// so a view-mode draft handed to a renderer stays stable.
type Draft struct {
	Mode          FormMode          `json:"mode"`
	Step          int               `json:"step"`
	InterviewDate string            `json:"interviewDate"`
	Diagnoses     []string          `json:"diagnoses"`
	Fields        map[string]string `json:"fields"`
}

// Action mutates a Draft through Reduce.
type Action interface{ isAction() }

// SetField sets one free-form answer (or interviewDate with Key
// "interviewDate"). Ignored in view mode.
type SetField struct {
	Key   string
	Value string
}

// LoadRecord replaces the draft with a stored record's answers in the given
// mode. In public mode a missing interview date defaults to today.
type LoadRecord struct {
	Mode          FormMode
	InterviewDate string
	Diagnoses     []string
	Fields        map[string]string
	Today         time.Time
}

// AdvanceStep moves to the next form step, clamped at the last.
type AdvanceStep struct{}

// RetreatStep moves to the previous form step, clamped at the first.
type RetreatStep struct{}

func (SetField) isAction()    {}
func (LoadRecord) isAction()  {}
func (AdvanceStep) isAction() {}
func (RetreatStep) isAction() {}

// NewDraft returns the empty edit-mode form state.
func NewDraft() Draft {
	return Draft{Mode: ModeEdit, Fields: map[string]string{}}
}

// Reduce applies one action and returns the next state.
func Reduce(state Draft, action Action) Draft {
	switch a := action.(type) {
	case SetField:
		if state.Mode == ModeView {
			return state
		}
		next := state.clone()
		if a.Key == "interviewDate" {
			next.InterviewDate = a.Value
		} else {
			next.Fields[a.Key] = a.Value
		}
		return next
	case LoadRecord:
		next := Draft{
			Mode:          a.Mode,
			Step:          minStep,
			InterviewDate: a.InterviewDate,
			Diagnoses:     append([]string(nil), a.Diagnoses...),
			Fields:        make(map[string]string, len(a.Fields)),
		}
		for k, v := range a.Fields {
			next.Fields[k] = v
		}
		if a.Mode == ModePublic && next.InterviewDate == "" {
			today := a.Today
			if today.IsZero() {
				today = time.Now()
			}
			next.InterviewDate = today.Format("2006-01-02")
		}
		return next
	case AdvanceStep:
		next := state.clone()
		if next.Step < maxStep {
			next.Step++
		}
		return next
	case RetreatStep:
		next := state.clone()
		if next.Step > minStep {
			next.Step--
		}
		return next
	}
	return state
}

func (d Draft) clone() Draft {
	next := d
	next.Diagnoses = append([]string(nil), d.Diagnoses...)
	next.Fields = make(map[string]string, len(d.Fields))
	for k, v := range d.Fields {
		next.Fields[k] = v
	}
	return next
}
