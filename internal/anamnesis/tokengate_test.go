package anamnesis

import (
	"testing"
	"time"
)

func TestResolveToken(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(72 * time.Hour)
	past := now.Add(-time.Hour)
	used := now.Add(-30 * time.Minute)

	cases := []struct {
		name string
		st   TokenState
		want TokenOutcome
	}{
		{"live token, sent form", TokenState{Found: true, ExpiresAt: future, Status: StatusEncaminhada}, TokenFillable},
		{"not found", TokenState{}, TokenInvalid},
		{"expired", TokenState{Found: true, ExpiresAt: past, Status: StatusEncaminhada}, TokenInvalid},
		{"consumed token", TokenState{Found: true, ExpiresAt: future, UsedAt: &used, Status: StatusRespondido}, TokenAlreadySubmitted},
		{"answered without used_at", TokenState{Found: true, ExpiresAt: future, Status: StatusRespondido}, TokenAlreadySubmitted},
		{"deep in workflow", TokenState{Found: true, ExpiresAt: future, Status: StatusAssistenteAtribuido}, TokenAlreadySubmitted},
		{"expired by sweep", TokenState{Found: true, ExpiresAt: past, Status: StatusNaoRespondido}, TokenInvalid},
		{"form never sent", TokenState{Found: true, ExpiresAt: future, Status: StatusCriada}, TokenInvalid},
	}
	for _, c := range cases {
		if got := ResolveToken(c.st, now); got != c.want {
			t.Fatalf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}

func TestResolveTokenNeverFillableTwice(t *testing.T) {
	now := time.Now()
	st := TokenState{Found: true, ExpiresAt: now.Add(time.Hour), Status: StatusEncaminhada}
	if ResolveToken(st, now) != TokenFillable {
		t.Fatal("fresh token should be fillable")
	}
	// after a successful submission the record moved on and the token was stamped
	used := now
	st.UsedAt = &used
	st.Status = StatusRespondido
	if ResolveToken(st, now) != TokenAlreadySubmitted {
		t.Fatal("consumed token reached fillable again")
	}
}
