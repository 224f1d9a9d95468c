package anamnesis

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func tp(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestEffectiveDateFallback(t *testing.T) {
	cases := []struct {
		name string
		item ListItem
		want *time.Time
	}{
		{"interview wins", ListItem{InterviewDate: tp("2026-03-01"), CreatedAt: tp("2026-02-01"), SentAt: tp("2026-01-01")}, tp("2026-03-01")},
		{"falls back to createdAt", ListItem{CreatedAt: tp("2026-02-01"), SentAt: tp("2026-01-01")}, tp("2026-02-01")},
		{"falls back to sentAt", ListItem{SentAt: tp("2026-01-01")}, tp("2026-01-01")},
		{"nothing", ListItem{}, nil},
	}
	for _, c := range cases {
		got := c.item.EffectiveDate()
		if (got == nil) != (c.want == nil) {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
		if got != nil && !got.Equal(*c.want) {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestGroupByPatient(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	items := []ListItem{
		{PatientID: p1, PatientName: "Ana", GuardianName: "Clara", InterviewDate: tp("2026-01-10")},
		{PatientID: p2, PatientName: "Bia", GuardianName: "Duda", InterviewDate: tp("2026-01-11")},
		{PatientID: p1, PatientName: "Ana", GuardianName: "Elisa", InterviewDate: tp("2026-02-10")},
	}
	groups := GroupByPatient(items)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].PatientID != p1 || groups[0].TotalCount != 2 {
		t.Fatalf("first group wrong: %+v", groups[0])
	}
	// guardian name of the most recent record wins
	if groups[0].LatestGuardianName != "Elisa" {
		t.Fatalf("expected latest guardian Elisa, got %q", groups[0].LatestGuardianName)
	}
	if groups[1].PatientID != p2 || groups[1].TotalCount != 1 {
		t.Fatalf("second group wrong: %+v", groups[1])
	}
}

func TestGroupByDay(t *testing.T) {
	items := []ListItem{
		{PatientName: "a", InterviewDate: tp("2026-01-10")},
		{PatientName: "b"},
		{PatientName: "c", InterviewDate: tp("2026-02-05")},
		{PatientName: "d", InterviewDate: tp("2026-01-10")},
	}
	groups := GroupByDay(items, nil)
	if len(groups) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(groups))
	}
	if groups[0].Day != "2026-02-05" || groups[1].Day != "2026-01-10" {
		t.Fatalf("buckets not descending: %q %q", groups[0].Day, groups[1].Day)
	}
	if groups[2].Day != UnknownDay || len(groups[2].Items) != 1 {
		t.Fatalf("unknown bucket must trail: %+v", groups[2])
	}
	// stable in-bucket order
	if groups[1].Items[0].PatientName != "a" || groups[1].Items[1].PatientName != "d" {
		t.Fatalf("in-bucket order not preserved: %+v", groups[1].Items)
	}
}

func TestGroupByDayCustomSelector(t *testing.T) {
	items := []ListItem{
		{PatientName: "a", InterviewDate: tp("2026-01-10"), SentAt: tp("2026-03-01")},
	}
	groups := GroupByDay(items, func(it ListItem) *time.Time { return it.SentAt })
	if groups[0].Day != "2026-03-01" {
		t.Fatalf("selector ignored: %q", groups[0].Day)
	}
}
