package anamnesis

import "time"

// TokenOutcome is the result of resolving a public form token.
type TokenOutcome string

const (
	// TokenFillable lets the guardian open and submit the form.
	TokenFillable TokenOutcome = "fillable"
	// TokenAlreadySubmitted signals a consumed link. Non-retryable; the
	// guardian is told the answers were already received.
	TokenAlreadySubmitted TokenOutcome = "already_submitted"
	// TokenInvalid covers unknown, malformed and expired tokens.
	TokenInvalid TokenOutcome = "invalid"
)

// TokenState is what the repo lookup knows about a token.
type TokenState struct {
	Found     bool
	ExpiresAt time.Time
	UsedAt    *time.Time
	Status    Status
}

// ResolveToken maps a token lookup to the public-form outcome. A form is
// fillable only while its record sits exactly in Encaminhada with a live,
// unused token; once the record moved past Encaminhada the same token can
// never reach fillable again.
func ResolveToken(st TokenState, now time.Time) TokenOutcome {
	if !st.Found {
		return TokenInvalid
	}
	if st.UsedAt != nil || st.Status != StatusEncaminhada {
		if st.Status == StatusCriada || st.Status == StatusNaoRespondido {
			return TokenInvalid
		}
		return TokenAlreadySubmitted
	}
	if !st.ExpiresAt.IsZero() && now.After(st.ExpiresAt) {
		return TokenInvalid
	}
	return TokenFillable
}
