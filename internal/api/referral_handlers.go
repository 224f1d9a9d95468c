package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/alerts"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/auth"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/metrics"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/pdf"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

type CreateReferralRequest struct {
	AnamnesisID    string   `json:"anamnesisId"`
	SelectedFields []string `json:"selectedFields"`
}

// CreateReferral grava a seleção de campos a divulgar. Repetir a operação
// antes da atribuição substitui a seleção; depois dela o encaminhamento é
// imutável e a chamada devolve 409.
func (h *Handler) CreateReferral(w http.ResponseWriter, r *http.Request) {
	var req CreateReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	anamnesisID, err := parseUUID(req.AnamnesisID)
	if err != nil {
		http.Error(w, `{"error":"anamnesisId obrigatório"}`, http.StatusBadRequest)
		return
	}
	sel, err := anamnesis.SelectionFromKeys(req.SelectedFields)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
		return
	}
	a, err := repo.AnamnesisByID(r.Context(), h.Pool, anamnesisID)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"anamnese não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	cur := anamnesis.Status(a.Status)
	next, err := anamnesis.SelectFields(cur)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusConflict)
		return
	}
	ref, err := repo.UpsertReferral(r.Context(), h.Pool, anamnesisID, sel.Keys())
	if errors.Is(err, repo.ErrStatusConflict) {
		http.Error(w, `{"error":"encaminhamento já possui assistente atribuído"}`, http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if cur != next {
		if err := repo.UpdateAnamnesisStatus(r.Context(), h.Pool, anamnesisID, a.Status, string(next)); err != nil {
			if errors.Is(err, repo.ErrStatusConflict) {
				http.Error(w, `{"error":"status da anamnese mudou, recarregue a página"}`, http.StatusConflict)
				return
			}
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		metrics.RecordStatusTransition(a.Status, string(next))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":             ref.ID.String(),
		"anamnesisId":    ref.AnamnesisID.String(),
		"selectedFields": ref.SelectedFields,
		"status":         next,
	})
}

func (h *Handler) GetReferralForAnamnesis(w http.ResponseWriter, r *http.Request) {
	anamnesisID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ref, err := repo.ReferralByAnamnesis(r.Context(), h.Pool, anamnesisID)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"nenhum encaminhamento encontrado para a anamnese"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(referralJSON(ref))
}

func referralJSON(ref *repo.Referral) map[string]interface{} {
	out := map[string]interface{}{
		"id":             ref.ID.String(),
		"anamnesisId":    ref.AnamnesisID.String(),
		"selectedFields": ref.SelectedFields,
		"sentAt":         ref.SentAt.Format(time.RFC3339),
	}
	if ref.AssistantID != nil {
		out["assistantId"] = ref.AssistantID.String()
	}
	if ref.AssignmentChannel != nil {
		out["assignmentChannel"] = *ref.AssignmentChannel
	}
	return out
}

type AssignAssistantRequest struct {
	AssistantID string `json:"assistantId"`
}

// assignAssistant faz a atribuição terminal. O UPDATE condicional no
// assistant_id garante a unicidade mesmo sob corrida; só depois dele o
// canal "email" dispara a notificação.
func (h *Handler) assignAssistant(w http.ResponseWriter, r *http.Request, channel anamnesis.Channel) {
	referralID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req AssignAssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	assistantID, err := parseUUID(req.AssistantID)
	if err != nil {
		http.Error(w, `{"error":"assistantId obrigatório"}`, http.StatusBadRequest)
		return
	}
	assistant, err := repo.StaffByID(r.Context(), h.Pool, assistantID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && assistant.Role != auth.RoleAssistant) {
		http.Error(w, `{"error":"assistente não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	ref, err := repo.ReferralByID(r.Context(), h.Pool, referralID)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"encaminhamento não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	a, err := repo.AnamnesisByID(r.Context(), h.Pool, ref.AnamnesisID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	next, err := anamnesis.AssignAssistant(anamnesis.Status(a.Status), true, ref.AssistantID != nil, channel)
	if err != nil {
		code := http.StatusConflict
		if errors.Is(err, anamnesis.ErrInvalidChannel) {
			code = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), code)
		return
	}
	if err := repo.AssignReferralAssistant(r.Context(), h.Pool, referralID, assistantID, string(channel)); err != nil {
		if errors.Is(err, repo.ErrStatusConflict) {
			http.Error(w, `{"error":"encaminhamento já possui assistente atribuído"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := repo.UpdateAnamnesisStatus(r.Context(), h.Pool, ref.AnamnesisID, a.Status, string(next)); err != nil && !errors.Is(err, repo.ErrStatusConflict) {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	metrics.RecordStatusTransition(a.Status, string(next))
	metrics.RecordReferralAssigned(string(channel))

	emailSent := false
	if channel == anamnesis.ChannelEmail && h.sendReferralAssignedEmail != nil {
		patient, perr := repo.PatientByID(r.Context(), h.Pool, a.PatientID)
		patientName := ""
		if perr == nil {
			patientName = patient.Name
		}
		reportURL := fmt.Sprintf("%s/api/anamnesis/referral/findById/%s", h.Cfg.BackendPublicURL, referralID)
		if err := h.sendReferralAssignedEmail(assistant.Email, assistant.FullName, patientName, reportURL); err != nil {
			log.Printf("[referral] notificação por e-mail falhou referral=%s: %v", referralID, err)
			h.alert(alerts.SeverityWarning, "Assistente atribuído, mas o e-mail de notificação falhou.")
			metrics.RecordEmailSent("referral_assigned", false)
		} else {
			emailSent = true
			metrics.RecordEmailSent("referral_assigned", true)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      next,
		"assistantId": assistantID.String(),
		"channel":     channel,
		"emailSent":   emailSent,
	})
}

func (h *Handler) AssignAssistantDirect(w http.ResponseWriter, r *http.Request) {
	h.assignAssistant(w, r, anamnesis.ChannelDirect)
}

func (h *Handler) AssignAssistantMail(w http.ResponseWriter, r *http.Request) {
	h.assignAssistant(w, r, anamnesis.ChannelEmail)
}

// ReferralsByAssistant lista os encaminhamentos visíveis para um
// assistente; um assistente autenticado só enxerga os próprios.
func (h *Handler) ReferralsByAssistant(w http.ResponseWriter, r *http.Request) {
	assistantID, ok := pathUUID(w, r, "assistantId")
	if !ok {
		return
	}
	if claims := auth.ClaimsFrom(r.Context()); claims != nil && claims.Role == auth.RoleAssistant && claims.UserID != assistantID.String() {
		http.Error(w, `{"error":"acesso negado"}`, http.StatusForbidden)
		return
	}
	items, err := repo.ReferralsByAssistant(r.Context(), h.Pool, assistantID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		row := map[string]interface{}{
			"id":          it.ID.String(),
			"anamnesisId": it.AnamnesisID.String(),
			"patientId":   it.PatientID.String(),
			"patientName": it.PatientName,
			"sentAt":      it.SentAt.Format(time.RFC3339),
		}
		if it.AssistantName != nil {
			row["assistantName"] = *it.AssistantName
		}
		out = append(out, row)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": out})
}

func (h *Handler) referralReport(r *http.Request, referralID string) (*pdf.ReferralReport, *repo.Referral, error) {
	id, err := parseUUID(referralID)
	if err != nil {
		return nil, nil, pgx.ErrNoRows
	}
	ref, err := repo.ReferralByID(r.Context(), h.Pool, id)
	if err != nil {
		return nil, nil, err
	}
	a, err := repo.AnamnesisByID(r.Context(), h.Pool, ref.AnamnesisID)
	if err != nil {
		return nil, nil, err
	}
	patient, err := repo.PatientByID(r.Context(), h.Pool, a.PatientID)
	if err != nil {
		return nil, nil, err
	}
	guardian, err := repo.GuardianByID(r.Context(), h.Pool, patient.GuardianID)
	if err != nil {
		return nil, nil, err
	}
	assistantName := ""
	if ref.AssistantID != nil {
		if assistant, aerr := repo.StaffByID(r.Context(), h.Pool, *ref.AssistantID); aerr == nil {
			assistantName = assistant.FullName
		}
	}
	values := a.FieldsMap()
	values["diagnoses"] = joinDiagnoses(a.Diagnoses)
	report := &pdf.ReferralReport{
		PatientName:   patient.Name,
		GuardianName:  guardian.Name,
		InterviewDate: formatDateBR(deref(a.InterviewDate)),
		AssistantName: assistantName,
		Rows:          anamnesis.BuildDisplay(ref.SelectedFields, values),
		ReportURL:     fmt.Sprintf("%s/api/anamnesis/referral/findById/%s", h.Cfg.BackendPublicURL, ref.ID),
	}
	return report, ref, nil
}

func joinDiagnoses(ds []string) string {
	out := ""
	for i, d := range ds {
		if i > 0 {
			out += ", "
		}
		out += d
	}
	return out
}

// GetReferralByID monta o relatório de divulgação: apenas os campos
// selecionados aparecem, com "Sem resposta registrada." nos vazios.
func (h *Handler) GetReferralByID(w http.ResponseWriter, r *http.Request) {
	report, ref, err := h.referralReport(r, muxVar(r, "referralId"))
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"encaminhamento não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	rows := make([]map[string]interface{}, 0, len(report.Rows))
	for _, row := range report.Rows {
		if !row.Selected {
			continue
		}
		rows = append(rows, map[string]interface{}{
			"key":   row.Key,
			"label": row.Label,
			"value": row.Value,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":            ref.ID.String(),
		"anamnesisId":   ref.AnamnesisID.String(),
		"patientName":   report.PatientName,
		"guardianName":  report.GuardianName,
		"interviewDate": report.InterviewDate,
		"assistantName": report.AssistantName,
		"rows":          rows,
	})
}

// GetReferralPDF renderiza o mesmo relatório em PDF, com QR para a versão
// online.
func (h *Handler) GetReferralPDF(w http.ResponseWriter, r *http.Request) {
	report, ref, err := h.referralReport(r, muxVar(r, "referralId"))
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"encaminhamento não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	content, err := pdf.BuildReferralReportPDF(*report)
	if err != nil {
		log.Printf("[referral] geração de PDF falhou referral=%s: %v", ref.ID, err)
		http.Error(w, `{"error":"falha ao gerar o PDF"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "encaminhamento-"+ref.ID.String()+".pdf"))
	_, _ = w.Write(content)
}

// ReferralsByPatient devolve o histórico de encaminhamentos de um paciente
// agrupado por dia de envio.
func (h *Handler) ReferralsByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUUID(w, r, "patientId")
	if !ok {
		return
	}
	items, err := repo.ReferralItemsByPatient(r.Context(), h.Pool, patientID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	groups := anamnesis.GroupByDay(items, func(it anamnesis.ListItem) *time.Time { return it.SentAt })
	if groups == nil {
		groups = []anamnesis.DayGroup{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"groups": groups})
}
