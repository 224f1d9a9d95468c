package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

type GuardianInput struct {
	Name         string `json:"name"`
	CPF          string `json:"cpf"`
	Email        string `json:"email"`
	PhoneNumber1 string `json:"phoneNumber1"`
	PhoneNumber2 string `json:"phoneNumber2"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	CEP          string `json:"cep"`
	State        string `json:"state"`
	City         string `json:"city"`
	DateBirth    string `json:"dateBirth"`
}

type GuardianResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CPF          string `json:"cpf"`
	Email        string `json:"email,omitempty"`
	PhoneNumber1 string `json:"phoneNumber1"`
	PhoneNumber2 string `json:"phoneNumber2,omitempty"`
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	Number       string `json:"number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	CEP          string `json:"cep,omitempty"`
	State        string `json:"state,omitempty"`
	City         string `json:"city,omitempty"`
	DateBirth    string `json:"dateBirth,omitempty"`
}

func guardianResponse(g repo.Guardian) GuardianResponse {
	return GuardianResponse{
		ID:           g.ID.String(),
		Name:         g.Name,
		CPF:          g.CPF,
		Email:        deref(g.Email),
		PhoneNumber1: g.PhoneNumber1,
		PhoneNumber2: deref(g.PhoneNumber2),
		AddressLine1: deref(g.AddressLine1),
		AddressLine2: deref(g.AddressLine2),
		Number:       deref(g.Number),
		Neighborhood: deref(g.Neighborhood),
		CEP:          deref(g.CEP),
		State:        deref(g.State),
		City:         deref(g.City),
		DateBirth:    deref(g.DateBirth),
	}
}

func (h *Handler) guardianFromInput(req *GuardianInput) (*repo.Guardian, string, int) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, `{"error":"nome obrigatório"}`, http.StatusBadRequest
	}
	cpf, err := NormalizeCPF(req.CPF)
	if err != nil {
		return nil, `{"error":"CPF deve ter 11 dígitos"}`, http.StatusBadRequest
	}
	phone, err := ValidatePhone(req.PhoneNumber1)
	if err != nil {
		return nil, `{"error":"telefone principal obrigatório"}`, http.StatusBadRequest
	}
	if strings.TrimSpace(req.Email) != "" {
		if err := ValidateEmailRegex(req.Email); err != nil {
			return nil, `{"error":"e-mail inválido"}`, http.StatusBadRequest
		}
	}
	g := &repo.Guardian{
		Name:         req.Name,
		CPF:          cpf,
		Email:        strPtr(req.Email),
		PhoneNumber1: phone,
		PhoneNumber2: strPtr(onlyDigits(req.PhoneNumber2)),
		AddressLine1: strPtr(req.AddressLine1),
		AddressLine2: strPtr(req.AddressLine2),
		Number:       strPtr(req.Number),
		Neighborhood: strPtr(req.Neighborhood),
		State:        strPtr(req.State),
		City:         strPtr(req.City),
		DateBirth:    strPtr(req.DateBirth),
	}
	if strings.TrimSpace(req.CEP) != "" {
		cep, err := ValidateCEP(req.CEP)
		if err != nil {
			return nil, `{"error":"CEP deve ter 8 dígitos"}`, http.StatusBadRequest
		}
		g.CEP = &cep
	}
	return g, "", 0
}

// CreateGuardian aplica o dedup por CPF: CPF já cadastrado reaproveita o id
// existente em vez de criar duplicata.
func (h *Handler) CreateGuardian(w http.ResponseWriter, r *http.Request) {
	var req GuardianInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	g, msg, code := h.guardianFromInput(&req)
	if g == nil {
		http.Error(w, msg, code)
		return
	}
	id, created, err := repo.GetOrCreateGuardianByCPF(r.Context(), h.Pool, g)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if created {
		w.WriteHeader(http.StatusCreated)
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": id.String(), "created": created})
}

// ListGuardians atende também a busca por CPF (?cpf=): 11 dígitos fazem
// busca exata, menos dígitos fazem busca por prefixo.
func (h *Handler) ListGuardians(w http.ResponseWriter, r *http.Request) {
	if q := strings.TrimSpace(r.URL.Query().Get("cpf")); q != "" {
		h.lookupGuardiansByCPF(w, r, q)
		return
	}
	limit, offset := ParseLimitOffset(r)
	list, err := repo.ListGuardians(r.Context(), h.Pool, limit, offset)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]GuardianResponse, 0, len(list))
	for _, g := range list {
		out = append(out, guardianResponse(g))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": out, "limit": limit, "offset": offset})
}

func (h *Handler) lookupGuardiansByCPF(w http.ResponseWriter, r *http.Request, q string) {
	digits := onlyDigits(q)
	if digits == "" {
		http.Error(w, `{"error":"cpf deve conter dígitos"}`, http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if len(digits) >= 11 {
		g, err := repo.GuardianByCPF(r.Context(), h.Pool, digits[:11])
		if errors.Is(err, pgx.ErrNoRows) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": []GuardianResponse{}})
			return
		}
		if err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": []GuardianResponse{guardianResponse(*g)}})
		return
	}
	list, err := repo.GuardiansByCPFPrefix(r.Context(), h.Pool, digits, 10)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]GuardianResponse, 0, len(list))
	for _, g := range list {
		out = append(out, guardianResponse(g))
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": out})
}

func (h *Handler) GetGuardian(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	g, err := repo.GuardianByID(r.Context(), h.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"responsável não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(guardianResponse(*g))
}

func (h *Handler) UpdateGuardian(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req GuardianInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	g, msg, code := h.guardianFromInput(&req)
	if g == nil {
		http.Error(w, msg, code)
		return
	}
	g.ID = id
	if err := repo.UpdateGuardian(r.Context(), h.Pool, g); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, `{"error":"responsável não encontrado"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
}

func (h *Handler) DeleteGuardian(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	err := repo.DeleteGuardian(r.Context(), h.Pool, id)
	switch {
	case errors.Is(err, repo.ErrHasDependents):
		http.Error(w, `{"error":"responsável possui pacientes vinculados"}`, http.StatusConflict)
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, `{"error":"responsável não encontrado"}`, http.StatusNotFound)
	case err != nil:
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}
}
