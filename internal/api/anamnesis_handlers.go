package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/alerts"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/metrics"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

type CreateAnamnesisRequest struct {
	PatientID string `json:"patientId"`
}

// CreateAnamnesis cria o registro e já o encaminha: grava o stub em Criada,
// emite o token de uso único e envia o link público ao responsável.
func (h *Handler) CreateAnamnesis(w http.ResponseWriter, r *http.Request) {
	var req CreateAnamnesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	patientID, err := parseUUID(req.PatientID)
	if err != nil {
		http.Error(w, `{"error":"patientId obrigatório"}`, http.StatusBadRequest)
		return
	}
	patient, err := repo.PatientByID(r.Context(), h.Pool, patientID)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"paciente não encontrado"}`, http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}

	id, err := repo.CreateAnamnesis(r.Context(), h.Pool, patientID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	ttl := formTokenTTL(h.Cfg.FormTokenTTLHours)
	token, err := repo.CreateAccessToken(r.Context(), h.Pool, id, ttl)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	// o UPDATE condicional Criada→Encaminhada é o guard de envio
	if err := repo.MarkAnamnesisSent(r.Context(), h.Pool, id); err != nil {
		if errors.Is(err, repo.ErrStatusConflict) {
			http.Error(w, `{"error":"anamnese já encaminhada ou finalizada"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	metrics.RecordAnamnesisSent()
	metrics.RecordStatusTransition(string(anamnesis.StatusCriada), string(anamnesis.StatusEncaminhada))

	formURL := fmt.Sprintf("%s/anamnese/%s", h.Cfg.AppPublicURL, token)
	emailSent := false
	if h.sendFormLinkEmail != nil {
		guardian, gerr := repo.GuardianByID(r.Context(), h.Pool, patient.GuardianID)
		if gerr == nil && guardian.Email != nil {
			validDays := h.Cfg.FormTokenTTLHours / 24
			if err := h.sendFormLinkEmail(*guardian.Email, guardian.Name, patient.Name, formURL, validDays); err != nil {
				log.Printf("[anamnesis] envio do link falhou anamnesis=%s: %v", id, err)
				h.alert(alerts.SeverityWarning, "Falha ao enviar o link da anamnese por e-mail; copie o link manualmente.")
				metrics.RecordEmailSent("form_link", false)
			} else {
				emailSent = true
				metrics.RecordEmailSent("form_link", true)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":        id.String(),
		"status":    anamnesis.StatusEncaminhada,
		"formUrl":   formURL,
		"emailSent": emailSent,
	})
}

type AnamnesisDetail struct {
	ID            string            `json:"id"`
	PatientID     string            `json:"patientId"`
	PatientName   string            `json:"patientName"`
	Status        string            `json:"status"`
	InterviewDate string            `json:"interviewDate,omitempty"`
	Diagnoses     []string          `json:"diagnoses"`
	Fields        map[string]string `json:"fields"`
	SentAt        *string           `json:"sentAt,omitempty"`
	Reports       []ReportInfo      `json:"reports"`
	HasReferral   bool              `json:"hasReferral"`
}

type ReportInfo struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Size     int    `json:"size"`
}

func (h *Handler) anamnesisDetail(r *http.Request, a *repo.Anamnesis) (*AnamnesisDetail, error) {
	patient, err := repo.PatientByID(r.Context(), h.Pool, a.PatientID)
	if err != nil {
		return nil, err
	}
	reports, err := repo.ReportsByAnamnesis(r.Context(), h.Pool, a.ID)
	if err != nil {
		return nil, err
	}
	infos := make([]ReportInfo, 0, len(reports))
	for _, m := range reports {
		infos = append(infos, ReportInfo{ID: m.ID.String(), FileName: m.FileName, Size: m.Size})
	}
	hasReferral := true
	if _, err := repo.ReferralByAnamnesis(r.Context(), h.Pool, a.ID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		hasReferral = false
	}
	d := &AnamnesisDetail{
		ID:            a.ID.String(),
		PatientID:     a.PatientID.String(),
		PatientName:   patient.Name,
		Status:        a.Status,
		InterviewDate: deref(a.InterviewDate),
		Diagnoses:     a.Diagnoses,
		Fields:        a.FieldsMap(),
		Reports:       infos,
		HasReferral:   hasReferral,
	}
	if a.Diagnoses == nil {
		d.Diagnoses = []string{}
	}
	if a.SentAt != nil {
		s := a.SentAt.Format("2006-01-02T15:04:05Z07:00")
		d.SentAt = &s
	}
	return d, nil
}

func (h *Handler) GetAnamnesis(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := repo.AnamnesisByID(r.Context(), h.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"anamnese não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	detail, err := h.anamnesisDetail(r, a)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(detail)
}

func (h *Handler) ListAnamneses(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r)
	items, err := repo.ListAnamnesisItems(r.Context(), h.Pool, limit, offset)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []anamnesis.ListItem{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": items, "limit": limit, "offset": offset})
}

// AnamnesisHistory agrupa por paciente: uma linha por paciente com total e
// o nome do responsável do registro mais recente.
func (h *Handler) AnamnesisHistory(w http.ResponseWriter, r *http.Request) {
	items, err := repo.ListAnamnesisItems(r.Context(), h.Pool, 0, 0)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	groups := anamnesis.GroupByPatient(items)
	if groups == nil {
		groups = []anamnesis.PatientGroup{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"groups": groups})
}

// AnamnesesByPatient lista o histórico de um paciente; ?grouped=day devolve
// os buckets por dia (desc, "unknown" por último).
func (h *Handler) AnamnesesByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUUID(w, r, "patientId")
	if !ok {
		return
	}
	items, err := repo.AnamnesisItemsByPatient(r.Context(), h.Pool, patientID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("grouped") == "day" {
		groups := anamnesis.GroupByDay(items, nil)
		if groups == nil {
			groups = []anamnesis.DayGroup{}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"groups": groups})
		return
	}
	if items == nil {
		items = []anamnesis.ListItem{}
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
}

type StatusPatchRequest struct {
	Status string `json:"status"`
}

// PatchAnamnesisStatus move um registro respondido entre os status de
// análise (Em Análise / Pronto).
func (h *Handler) PatchAnamnesisStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req StatusPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	a, err := repo.AnamnesisByID(r.Context(), h.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"anamnese não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	next, err := anamnesis.Review(anamnesis.Status(a.Status), anamnesis.Status(req.Status))
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
		return
	}
	if err := repo.UpdateAnamnesisStatus(r.Context(), h.Pool, id, a.Status, string(next)); err != nil {
		if errors.Is(err, repo.ErrStatusConflict) {
			http.Error(w, `{"error":"status da anamnese mudou, recarregue a página"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	metrics.RecordStatusTransition(a.Status, string(next))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": string(next)})
}

// DeleteAnamnesis recusa com 409 quando já existe encaminhamento.
func (h *Handler) DeleteAnamnesis(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	err := repo.DeleteAnamnesis(r.Context(), h.Pool, id)
	switch {
	case errors.Is(err, repo.ErrHasDependents):
		http.Error(w, `{"error":"anamnese possui encaminhamento vinculado"}`, http.StatusConflict)
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, `{"error":"anamnese não encontrada"}`, http.StatusNotFound)
	case err != nil:
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}
}

// GetAnamnesisReport serve o PDF mais recente anexado à anamnese.
func (h *Handler) GetAnamnesisReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	name, content, err := repo.LatestReportContent(r.Context(), h.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"nenhum relatório anexado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	_, _ = w.Write(content)
}
