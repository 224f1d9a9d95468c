package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/auth"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

// As rotas /user, /secretary e /assistant são visões da mesma tabela
// staff_users filtradas por papel: /user administra ADMIN e PROFESSIONAL,
// as outras duas administram um papel fixo cada.

type StaffInput struct {
	FullName string `json:"fullName"`
	CPF      string `json:"cpf"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type StaffResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	CPF      string `json:"cpf"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func staffResponse(u repo.StaffUser) StaffResponse {
	return StaffResponse{
		ID:       u.ID.String(),
		FullName: u.FullName,
		CPF:      u.CPF,
		Email:    u.Email,
		Role:     u.Role,
		Status:   u.Status,
	}
}

// ListStaff devolve a lista paginada da visão.
func (h *Handler) ListStaff(roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParseLimitOffset(r)
		list, err := repo.ListStaffByRoles(r.Context(), h.Pool, roles, limit, offset)
		if err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		total, err := repo.CountStaffByRoles(r.Context(), h.Pool, roles)
		if err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		out := make([]StaffResponse, 0, len(list))
		for _, u := range list {
			out = append(out, staffResponse(u))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"items": out, "total": total, "limit": limit, "offset": offset,
		})
	}
}

// CreateStaff cria um usuário na visão. defaultRole fixa o papel quando a
// visão administra um papel só; as visões multi-papel validam o papel do body.
func (h *Handler) CreateStaff(defaultRole string, allowed ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StaffInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
			return
		}
		req.FullName = strings.TrimSpace(req.FullName)
		if req.FullName == "" {
			http.Error(w, `{"error":"nome obrigatório"}`, http.StatusBadRequest)
			return
		}
		cpf, err := NormalizeCPF(req.CPF)
		if err != nil {
			http.Error(w, `{"error":"CPF deve ter 11 dígitos"}`, http.StatusBadRequest)
			return
		}
		if err := ValidateEmailRegex(req.Email); err != nil {
			http.Error(w, `{"error":"e-mail inválido"}`, http.StatusBadRequest)
			return
		}
		if len(req.Password) < 8 {
			http.Error(w, `{"error":"senha deve ter ao menos 8 caracteres"}`, http.StatusBadRequest)
			return
		}
		role := defaultRole
		if role == "" {
			role = strings.ToUpper(strings.TrimSpace(req.Role))
			ok := false
			for _, a := range allowed {
				if a == role {
					ok = true
					break
				}
			}
			if !ok {
				http.Error(w, `{"error":"papel inválido para esta rota"}`, http.StatusBadRequest)
				return
			}
		}

		if _, err := repo.StaffByCPF(r.Context(), h.Pool, cpf); err == nil {
			http.Error(w, `{"error":"CPF já cadastrado"}`, http.StatusConflict)
			return
		} else if !errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}

		hashFn := h.hashPassword
		if hashFn == nil {
			hashFn = auth.HashPassword
		}
		hash, err := hashFn(req.Password)
		if err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		id, err := repo.CreateStaffUser(r.Context(), h.Pool, req.FullName, cpf, strings.TrimSpace(req.Email), hash, role)
		if err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id.String()})
	}
}

// UpdateStaff altera nome/e-mail (e opcionalmente a senha) de um usuário da
// visão. O papel nunca muda por aqui.
func (h *Handler) UpdateStaff(roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		u, err := repo.StaffByID(r.Context(), h.Pool, id)
		if err != nil {
			http.Error(w, `{"error":"usuário não encontrado"}`, http.StatusNotFound)
			return
		}
		if !roleIn(u.Role, roles) {
			http.Error(w, `{"error":"usuário não pertence a esta rota"}`, http.StatusNotFound)
			return
		}

		var req StaffInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
			return
		}
		req.FullName = strings.TrimSpace(req.FullName)
		if req.FullName == "" {
			http.Error(w, `{"error":"nome obrigatório"}`, http.StatusBadRequest)
			return
		}
		if err := ValidateEmailRegex(req.Email); err != nil {
			http.Error(w, `{"error":"e-mail inválido"}`, http.StatusBadRequest)
			return
		}
		if err := repo.UpdateStaffUser(r.Context(), h.Pool, id, req.FullName, strings.TrimSpace(req.Email)); err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		if req.Password != "" {
			if len(req.Password) < 8 {
				http.Error(w, `{"error":"senha deve ter ao menos 8 caracteres"}`, http.StatusBadRequest)
				return
			}
			hashFn := h.hashPassword
			if hashFn == nil {
				hashFn = auth.HashPassword
			}
			hash, err := hashFn(req.Password)
			if err != nil {
				http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
				return
			}
			if err := repo.UpdateStaffPassword(r.Context(), h.Pool, id, hash); err != nil {
				http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
				return
			}
		}
		if h.Cache != nil {
			h.Cache.Delete("me:" + id.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}
}

func (h *Handler) DeleteStaff(roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		u, err := repo.StaffByID(r.Context(), h.Pool, id)
		if err != nil {
			http.Error(w, `{"error":"usuário não encontrado"}`, http.StatusNotFound)
			return
		}
		if !roleIn(u.Role, roles) {
			http.Error(w, `{"error":"usuário não pertence a esta rota"}`, http.StatusNotFound)
			return
		}
		if err := repo.DeleteStaffUser(r.Context(), h.Pool, id); err != nil {
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		if h.Cache != nil {
			h.Cache.Delete("me:" + id.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}
}

func roleIn(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
