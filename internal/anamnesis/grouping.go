package anamnesis

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ListItem is the flattened list row the grouping helpers consume. The repo
// layer fills it from the anamneses/patients/guardians JOIN.
type ListItem struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patientId"`
	PatientName   string     `json:"patientName"`
	GuardianName  string     `json:"guardianName,omitempty"`
	Status        Status     `json:"status"`
	InterviewDate *time.Time `json:"interviewDate,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
}

// EffectiveDate walks interviewDate, createdAt, sentAt in that order and
// returns the first value present. Nil when the record carries no usable
// date.
func (it ListItem) EffectiveDate() *time.Time {
	for _, t := range []*time.Time{it.InterviewDate, it.CreatedAt, it.SentAt} {
		if t != nil && !t.IsZero() {
			return t
		}
	}
	return nil
}

// PatientGroup aggregates one patient's records for the history screen.
type PatientGroup struct {
	PatientID          uuid.UUID `json:"patientId"`
	PatientName        string    `json:"patientName"`
	LatestGuardianName string    `json:"guardianName,omitempty"`
	TotalCount         int       `json:"totalCount"`
}

// GroupByPatient collapses the list into one row per patient, keeping the
// guardian name of the most recent record. Groups come out in first-seen
// input order.
func GroupByPatient(items []ListItem) []PatientGroup {
	idx := make(map[uuid.UUID]int, len(items))
	latest := make(map[uuid.UUID]time.Time, len(items))
	groups := make([]PatientGroup, 0, len(items))
	for _, it := range items {
		i, seen := idx[it.PatientID]
		if !seen {
			idx[it.PatientID] = len(groups)
			groups = append(groups, PatientGroup{
				PatientID:          it.PatientID,
				PatientName:        it.PatientName,
				LatestGuardianName: it.GuardianName,
			})
			i = len(groups) - 1
		}
		groups[i].TotalCount++
		if d := it.EffectiveDate(); d != nil {
			if prev, ok := latest[it.PatientID]; !ok || d.After(prev) {
				latest[it.PatientID] = *d
				if it.GuardianName != "" {
					groups[i].LatestGuardianName = it.GuardianName
				}
			}
		}
	}
	return groups
}

// UnknownDay keys the bucket for records without any parseable date.
const UnknownDay = "unknown"

// DayGroup is one calendar-day bucket of a patient's history.
type DayGroup struct {
	Day   string     `json:"day"`
	Items []ListItem `json:"items"`
}

// GroupByDay buckets records by calendar day of the selector date,
// descending, with the UnknownDay bucket trailing. Within a bucket the
// input order is preserved.
func GroupByDay(items []ListItem, selector func(ListItem) *time.Time) []DayGroup {
	if selector == nil {
		selector = ListItem.EffectiveDate
	}
	buckets := make(map[string][]ListItem)
	order := make([]string, 0)
	for _, it := range items {
		key := UnknownDay
		if d := selector(it); d != nil {
			key = d.Format("2006-01-02")
		}
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], it)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i] == UnknownDay {
			return false
		}
		if order[j] == UnknownDay {
			return true
		}
		return order[i] > order[j]
	})
	out := make([]DayGroup, 0, len(order))
	for _, key := range order {
		out = append(out, DayGroup{Day: key, Items: buckets[key]})
	}
	return out
}
