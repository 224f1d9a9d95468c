package anamnesis

import (
	"errors"
	"testing"
)

func TestSend(t *testing.T) {
	got, err := Send(StatusCriada, true)
	if err != nil || got != StatusEncaminhada {
		t.Fatalf("send from Criada: got %q err=%v", got, err)
	}

	if _, err := Send(StatusCriada, false); !errors.Is(err, ErrPatientRequired) {
		t.Fatalf("expected ErrPatientRequired, got %v", err)
	}

	for _, s := range []Status{StatusEncaminhada, StatusRespondido, StatusPronto, StatusAssistenteAtribuido} {
		if _, err := Send(s, true); !errors.Is(err, ErrNotSendable) {
			t.Fatalf("send from %q: expected ErrNotSendable, got %v", s, err)
		}
	}
}

func TestRespond(t *testing.T) {
	got, err := Respond(StatusEncaminhada)
	if err != nil || got != StatusRespondido {
		t.Fatalf("respond: got %q err=%v", got, err)
	}

	if _, err := Respond(StatusCriada); !errors.Is(err, ErrNotAwaitingAnswer) {
		t.Fatalf("respond from Criada: got %v", err)
	}

	// resubmission after a first answer must be rejected, never overwritten
	for _, s := range []Status{StatusRespondido, StatusEmAnalise, StatusPronto, StatusCamposSelecionados, StatusAssistenteAtribuido, StatusNaoRespondido} {
		if _, err := Respond(s); !errors.Is(err, ErrAlreadyAnswered) {
			t.Fatalf("respond from %q: expected ErrAlreadyAnswered, got %v", s, err)
		}
	}
}

func TestExpire(t *testing.T) {
	got, err := Expire(StatusEncaminhada)
	if err != nil || got != StatusNaoRespondido {
		t.Fatalf("expire: got %q err=%v", got, err)
	}
	if _, err := Expire(StatusRespondido); err == nil {
		t.Fatal("expire from Respondido: expected error")
	}
}

func TestReview(t *testing.T) {
	cases := []struct {
		current Status
		target  Status
		want    Status
		wantErr error
	}{
		{StatusRespondido, StatusEmAnalise, StatusEmAnalise, nil},
		{StatusEmAnalise, StatusPronto, StatusPronto, nil},
		{StatusPronto, StatusEmAnalise, StatusEmAnalise, nil},
		{StatusRespondido, StatusEncaminhada, StatusRespondido, ErrInvalidReviewState},
		{StatusCriada, StatusPronto, StatusCriada, ErrNotAnswered},
		{StatusEncaminhada, StatusEmAnalise, StatusEncaminhada, ErrNotAnswered},
	}
	for _, c := range cases {
		got, err := Review(c.current, c.target)
		if got != c.want || !errors.Is(err, c.wantErr) {
			t.Fatalf("review %q->%q: got %q err=%v", c.current, c.target, got, err)
		}
	}
}

func TestSelectFields(t *testing.T) {
	for _, s := range []Status{StatusRespondido, StatusEmAnalise, StatusPronto, StatusCamposSelecionados} {
		got, err := SelectFields(s)
		if err != nil || got != StatusCamposSelecionados {
			t.Fatalf("selectFields from %q: got %q err=%v", s, got, err)
		}
	}
	for _, s := range []Status{StatusCriada, StatusEncaminhada, StatusNaoRespondido} {
		if _, err := SelectFields(s); !errors.Is(err, ErrNotAnswered) {
			t.Fatalf("selectFields from %q: expected ErrNotAnswered, got %v", s, err)
		}
	}
}

func TestAssignAssistant(t *testing.T) {
	got, err := AssignAssistant(StatusCamposSelecionados, true, false, ChannelDirect)
	if err != nil || got != StatusAssistenteAtribuido {
		t.Fatalf("assign direct: got %q err=%v", got, err)
	}
	got, err = AssignAssistant(StatusCamposSelecionados, true, false, ChannelEmail)
	if err != nil || got != StatusAssistenteAtribuido {
		t.Fatalf("assign email: got %q err=%v", got, err)
	}

	if _, err := AssignAssistant(StatusRespondido, false, false, ChannelDirect); !errors.Is(err, ErrNoReferral) {
		t.Fatalf("assign without referral: got %v", err)
	}
	if _, err := AssignAssistant(StatusAssistenteAtribuido, true, true, ChannelDirect); !errors.Is(err, ErrReferralAssigned) {
		t.Fatalf("re-assign: got %v", err)
	}
	if _, err := AssignAssistant(StatusCamposSelecionados, true, false, Channel("sms")); !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("bad channel: got %v", err)
	}
	// um encaminhamento existe mas a seleção de campos ainda não foi feita
	if _, err := AssignAssistant(StatusRespondido, true, false, ChannelDirect); !errors.Is(err, ErrFieldsNotSelected) {
		t.Fatalf("assign before field selection: got %v", err)
	}
}

func TestEditable(t *testing.T) {
	if !StatusCriada.Editable() || !StatusRespondido.Editable() {
		t.Fatal("Criada/Respondido should be editable")
	}
	if StatusEncaminhada.Editable() {
		t.Fatal("Encaminhada must not be editable")
	}
	if StatusAssistenteAtribuido.Editable() {
		t.Fatal("terminal status must not be editable")
	}
	if !StatusAssistenteAtribuido.Terminal() {
		t.Fatal("Assistente Atribuído is terminal")
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(StatusNaoRespondido) {
		t.Fatal("Não Respondido is valid")
	}
	if ValidStatus(Status("Arquivada")) {
		t.Fatal("unknown status accepted")
	}
}
