// Package anamnesis holds the intake-workflow rules: the referral status
// machine, diagnosis normalization, selective field disclosure, list
// groupings and the form draft reducer. It has no HTTP or SQL dependency;
// internal/api drives it and internal/repo persists its results.
package anamnesis

import (
	"errors"
	"fmt"
)

// Status of an anamnesis record. Values are the pt-BR labels the console
// displays, stored as-is.
type Status string

const (
	StatusCriada              Status = "Criada"
	StatusEncaminhada         Status = "Encaminhada"
	StatusRespondido          Status = "Respondido"
	StatusNaoRespondido       Status = "Não Respondido"
	StatusEmAnalise           Status = "Em Análise"
	StatusPronto              Status = "Pronto"
	StatusCamposSelecionados  Status = "Campos Selecionados"
	StatusAssistenteAtribuido Status = "Assistente Atribuído"
)

// Channel selects how an assigned assistant is notified.
type Channel string

const (
	ChannelDirect Channel = "direct"
	ChannelEmail  Channel = "email"
)

var (
	ErrPatientRequired    = errors.New("patientId obrigatório")
	ErrNotSendable        = errors.New("anamnese já encaminhada ou finalizada")
	ErrAlreadyAnswered    = errors.New("anamnese já respondida")
	ErrNotAwaitingAnswer  = errors.New("anamnese não está aguardando resposta")
	ErrNotAnswered        = errors.New("anamnese ainda não foi respondida")
	ErrEditSentForbidden  = errors.New("anamnese encaminhada não pode ser editada")
	ErrNoReferral         = errors.New("nenhum encaminhamento encontrado para a anamnese")
	ErrFieldsNotSelected  = errors.New("anamnese não está com campos selecionados")
	ErrReferralAssigned   = errors.New("encaminhamento já possui assistente atribuído")
	ErrInvalidChannel     = errors.New("canal de atribuição inválido")
	ErrInvalidReviewState = errors.New("status de análise inválido")
)

// ValidStatus reports whether s is one of the known workflow statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusCriada, StatusEncaminhada, StatusRespondido, StatusNaoRespondido,
		StatusEmAnalise, StatusPronto, StatusCamposSelecionados, StatusAssistenteAtribuido:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool { return s == StatusAssistenteAtribuido }

// Editable reports whether staff may still edit the record's answers.
// Once a form is with the guardian (Encaminhada) or further along, edits are
// rejected server-side, not just hidden in the UI.
func (s Status) Editable() bool {
	return s == StatusCriada || s == StatusRespondido || s == StatusEmAnalise || s == StatusPronto
}

// Send moves a freshly created record to Encaminhada. The caller issues the
// public access token alongside this transition.
func Send(current Status, hasPatient bool) (Status, error) {
	if !hasPatient {
		return current, ErrPatientRequired
	}
	if current != StatusCriada {
		return current, ErrNotSendable
	}
	return StatusEncaminhada, nil
}

// Respond records a guardian submission. Legal only while the record is
// exactly Encaminhada; a consumed token must be rejected, never overwritten.
func Respond(current Status) (Status, error) {
	switch current {
	case StatusEncaminhada:
		return StatusRespondido, nil
	case StatusCriada:
		return current, ErrNotAwaitingAnswer
	default:
		return current, ErrAlreadyAnswered
	}
}

// Expire marks a sent form whose token lapsed without an answer.
func Expire(current Status) (Status, error) {
	if current != StatusEncaminhada {
		return current, ErrNotAwaitingAnswer
	}
	return StatusNaoRespondido, nil
}

// Review moves an answered record between the staff review statuses
// (Em Análise / Pronto). Any other target is rejected.
func Review(current, target Status) (Status, error) {
	if target != StatusEmAnalise && target != StatusPronto {
		return current, ErrInvalidReviewState
	}
	switch current {
	case StatusRespondido, StatusEmAnalise, StatusPronto:
		return target, nil
	default:
		return current, ErrNotAnswered
	}
}

// SelectFields validates the transition into Campos Selecionados. The field
// subset itself is checked by the disclosure filter; here only the status
// gate applies: the record must have been answered (or already be under
// review / re-selection).
func SelectFields(current Status) (Status, error) {
	switch current {
	case StatusRespondido, StatusEmAnalise, StatusPronto, StatusCamposSelecionados:
		return StatusCamposSelecionados, nil
	case StatusCriada, StatusEncaminhada, StatusNaoRespondido:
		return current, ErrNotAnswered
	default:
		return current, fmt.Errorf("transição inválida de %q", current)
	}
}

// AssignAssistant validates the terminal transition. The referral must
// already exist (hasReferral) — assignment never auto-creates one — and a
// referral already assigned is immutable.
func AssignAssistant(current Status, hasReferral, alreadyAssigned bool, ch Channel) (Status, error) {
	if !hasReferral {
		return current, ErrNoReferral
	}
	if alreadyAssigned || current == StatusAssistenteAtribuido {
		return current, ErrReferralAssigned
	}
	if ch != ChannelDirect && ch != ChannelEmail {
		return current, ErrInvalidChannel
	}
	if current != StatusCamposSelecionados {
		return current, ErrFieldsNotSelected
	}
	return StatusAssistenteAtribuido, nil
}
