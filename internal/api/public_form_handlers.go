package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/alerts"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/auth"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/metrics"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

const maxReportBytes = 10 << 20

// AnswerPayload é o JSON enviado no campo "anamnesis" do multipart, tanto
// pelo formulário público quanto pela edição interna.
type AnswerPayload struct {
	InterviewDate          string          `json:"interviewDate"`
	Diagnoses              json.RawMessage `json:"diagnoses"`
	OtherDiagnosis         string          `json:"otherDiagnosis"`
	MedicationAndAllergies string          `json:"medicationAndAllergies"`
	Indications            string          `json:"indications"`
	Objectives             string          `json:"objectives"`
	DevelopmentHistory     string          `json:"developmentHistory"`
	Preferences            string          `json:"preferences"`
	InterferingBehaviors   string          `json:"interferingBehaviors"`
	QualityOfLife          string          `json:"qualityOfLife"`
	Feeding                string          `json:"feeding"`
	Sleep                  string          `json:"sleep"`
	Therapists             string          `json:"therapists"`
}

func (p *AnswerPayload) apply(a *repo.Anamnesis) error {
	var raw interface{}
	if len(p.Diagnoses) > 0 {
		if err := json.Unmarshal(p.Diagnoses, &raw); err != nil {
			// o frontend antigo mandava a lista como string JSON
			raw = string(p.Diagnoses)
		}
	}
	ds, err := anamnesis.NormalizeDiagnoses(raw)
	if err != nil {
		return err
	}
	if strings.TrimSpace(p.OtherDiagnosis) != "" {
		ds.SetCustom(p.OtherDiagnosis)
	}
	a.Diagnoses = ds.Canonical()
	a.InterviewDate = strPtr(p.InterviewDate)
	a.MedicationAndAllergies = strPtr(p.MedicationAndAllergies)
	a.Indications = strPtr(p.Indications)
	a.Objectives = strPtr(p.Objectives)
	a.DevelopmentHistory = strPtr(p.DevelopmentHistory)
	a.Preferences = strPtr(p.Preferences)
	a.InterferingBehaviors = strPtr(p.InterferingBehaviors)
	a.QualityOfLife = strPtr(p.QualityOfLife)
	a.Feeding = strPtr(p.Feeding)
	a.Sleep = strPtr(p.Sleep)
	a.Therapists = strPtr(p.Therapists)
	return nil
}

func (h *Handler) resolveFormToken(r *http.Request, token string) (*repo.AccessToken, anamnesis.TokenOutcome) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, anamnesis.TokenInvalid
	}
	at, err := repo.AccessTokenByToken(r.Context(), h.Pool, token)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, anamnesis.ResolveToken(anamnesis.TokenState{}, time.Now())
	}
	if err != nil {
		return nil, anamnesis.TokenInvalid
	}
	st := anamnesis.TokenState{
		Found:     true,
		ExpiresAt: at.ExpiresAt,
		UsedAt:    at.UsedAt,
		Status:    anamnesis.Status(at.AnamnesisStatus),
	}
	return at, anamnesis.ResolveToken(st, time.Now())
}

func writeTokenOutcome(w http.ResponseWriter, outcome anamnesis.TokenOutcome) {
	switch outcome {
	case anamnesis.TokenAlreadySubmitted:
		http.Error(w, `{"error":"esta anamnese já foi respondida"}`, http.StatusGone)
	default:
		http.Error(w, `{"error":"link inválido ou expirado"}`, http.StatusNotFound)
	}
}

// GetPublicForm resolve o token do link enviado ao responsável e devolve o
// formulário pré-carregado quando ainda preenchível.
func (h *Handler) GetPublicForm(w http.ResponseWriter, r *http.Request) {
	at, outcome := h.resolveFormToken(r, mux.Vars(r)["token"])
	if outcome != anamnesis.TokenFillable {
		writeTokenOutcome(w, outcome)
		return
	}
	a, err := repo.AnamnesisByID(r.Context(), h.Pool, at.AnamnesisID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	patient, err := repo.PatientByID(r.Context(), h.Pool, a.PatientID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	guardian, err := repo.GuardianByID(r.Context(), h.Pool, patient.GuardianID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}

	draft := anamnesis.Reduce(anamnesis.NewDraft(), anamnesis.LoadRecord{
		Mode:          anamnesis.ModePublic,
		InterviewDate: deref(a.InterviewDate),
		Diagnoses:     a.Diagnoses,
		Fields:        a.FieldsMap(),
		Today:         time.Now(),
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"anamnesisId":   a.ID.String(),
		"patientName":   patient.Name,
		"guardianName":  guardian.Name,
		"interviewDate": draft.InterviewDate,
		"diagnoses":     draft.Diagnoses,
		"fields":        draft.Fields,
	})
}

type uploadedReport struct {
	name    string
	content []byte
}

func readAnswerMultipart(w http.ResponseWriter, r *http.Request) (*AnswerPayload, []uploadedReport, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, `{"error":"formulário inválido"}`, http.StatusBadRequest)
		return nil, nil, false
	}
	var payload AnswerPayload
	if err := json.Unmarshal([]byte(r.FormValue("anamnesis")), &payload); err != nil {
		http.Error(w, `{"error":"campo anamnesis inválido"}`, http.StatusBadRequest)
		return nil, nil, false
	}
	var files []uploadedReport
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["reports"] {
			if fh.Size > maxReportBytes {
				http.Error(w, `{"error":"relatório excede o tamanho máximo de 10MB"}`, http.StatusBadRequest)
				return nil, nil, false
			}
			f, err := fh.Open()
			if err != nil {
				http.Error(w, `{"error":"falha ao ler relatório"}`, http.StatusBadRequest)
				return nil, nil, false
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				http.Error(w, `{"error":"falha ao ler relatório"}`, http.StatusBadRequest)
				return nil, nil, false
			}
			files = append(files, uploadedReport{name: fh.Filename, content: content})
		}
	}
	return &payload, files, true
}

func (h *Handler) saveReports(r *http.Request, anamnesisID uuid.UUID, files []uploadedReport) error {
	for _, f := range files {
		if _, err := repo.SaveReport(r.Context(), h.Pool, anamnesisID, f.name, f.content); err != nil {
			return err
		}
	}
	return nil
}

// SubmitAnamnesisResponse grava a resposta do formulário. Quando a query
// traz ?token=, é o responsável respondendo pelo link público; sem token,
// é a edição interna e exige sessão de staff.
func (h *Handler) SubmitAnamnesisResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if token := r.URL.Query().Get("token"); token != "" {
		h.submitPublicForm(w, r, id, token)
		return
	}
	claims := auth.ClaimsFrom(r.Context())
	if claims == nil {
		http.Error(w, `{"error":"não autenticado"}`, http.StatusUnauthorized)
		h.alert(alerts.SeverityWarning, "acesso não autenticado ao formulário de anamnese")
		return
	}
	switch claims.Role {
	case auth.RoleAdmin, auth.RoleSecretary, auth.RoleProfessional:
	default:
		http.Error(w, `{"error":"acesso negado"}`, http.StatusForbidden)
		return
	}
	h.submitStaffAnswers(w, r, id)
}

// O token é de uso único: o consumo e a transição Encaminhada→Respondido
// são ambos condicionais, então reenvios concorrentes perdem a corrida e
// recebem 410.
func (h *Handler) submitPublicForm(w http.ResponseWriter, r *http.Request, id uuid.UUID, token string) {
	at, outcome := h.resolveFormToken(r, token)
	if outcome != anamnesis.TokenFillable {
		writeTokenOutcome(w, outcome)
		return
	}
	if at.AnamnesisID != id {
		writeTokenOutcome(w, anamnesis.TokenInvalid)
		return
	}
	payload, files, ok := readAnswerMultipart(w, r)
	if !ok {
		return
	}
	a, err := repo.AnamnesisByID(r.Context(), h.Pool, at.AnamnesisID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	next, err := anamnesis.Respond(anamnesis.Status(a.Status))
	if err != nil {
		writeTokenOutcome(w, anamnesis.TokenAlreadySubmitted)
		return
	}
	if err := payload.apply(a); err != nil {
		http.Error(w, `{"error":"diagnósticos inválidos"}`, http.StatusBadRequest)
		return
	}
	if err := repo.ConsumeAccessToken(r.Context(), h.Pool, at.Token); err != nil {
		writeTokenOutcome(w, anamnesis.TokenAlreadySubmitted)
		return
	}
	if err := repo.UpdateAnamnesisAnswers(r.Context(), h.Pool, a, string(anamnesis.StatusEncaminhada), string(next)); err != nil {
		if errors.Is(err, repo.ErrStatusConflict) {
			writeTokenOutcome(w, anamnesis.TokenAlreadySubmitted)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := h.saveReports(r, a.ID, files); err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	metrics.RecordAnamnesisAnswered("public")
	metrics.RecordStatusTransition(string(anamnesis.StatusEncaminhada), string(next))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "resposta registrada, obrigado!"})
}

// A edição interna do mesmo formulário é permitida em Criada, Respondido,
// Em Análise e Pronto; o status não muda.
func (h *Handler) submitStaffAnswers(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	a, err := repo.AnamnesisByID(r.Context(), h.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"anamnese não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	cur := anamnesis.Status(a.Status)
	if !cur.Editable() {
		if cur == anamnesis.StatusEncaminhada {
			http.Error(w, `{"error":"anamnese encaminhada não pode ser editada, aguarde a resposta"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"anamnese não pode mais ser editada"}`, http.StatusConflict)
		return
	}
	payload, files, pOK := readAnswerMultipart(w, r)
	if !pOK {
		return
	}
	if err := payload.apply(a); err != nil {
		http.Error(w, `{"error":"diagnósticos inválidos"}`, http.StatusBadRequest)
		return
	}
	if err := repo.UpdateAnamnesisAnswers(r.Context(), h.Pool, a, a.Status, a.Status); err != nil {
		if errors.Is(err, repo.ErrStatusConflict) {
			http.Error(w, `{"error":"status da anamnese mudou, recarregue a página"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := h.saveReports(r, a.ID, files); err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	metrics.RecordAnamnesisAnswered("staff")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "anamnese atualizada"})
}
