package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/auth"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

type LoginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        UserInfo  `json:"user"`
}

type UserInfo struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Login autentica a equipe por CPF e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	cpf, err := NormalizeCPF(req.CPF)
	if err != nil || req.Password == "" {
		http.Error(w, `{"error":"CPF e senha são obrigatórios"}`, http.StatusBadRequest)
		return
	}

	u, err := repo.StaffByCPF(r.Context(), h.Pool, cpf)
	if err != nil {
		genericLoginError(w)
		return
	}
	if u.Status != "ACTIVE" || !auth.CheckPassword(u.PasswordHash, req.Password) {
		genericLoginError(w)
		return
	}
	tok, err := auth.BuildJWT(h.Cfg.JWTSecret, u.ID.String(), u.Role, u.FullName, 24*time.Hour)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{
		AccessToken: tok,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
		User: UserInfo{
			ID:       u.ID.String(),
			FullName: u.FullName,
			Email:    u.Email,
			Role:     u.Role,
		},
	})
}

// Resposta genérica: não revela se o CPF existe.
func genericLoginError(w http.ResponseWriter) {
	http.Error(w, `{"error":"CPF ou senha incorretos"}`, http.StatusUnauthorized)
}

type MeResponse struct {
	User UserInfo        `json:"user"`
	Nav  []auth.NavEntry `json:"nav"`
}

// Me devolve o usuário do token e o menu que o papel enxerga. Cacheado por
// usuário; o cache é invalidado nas mutações de staff.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	c := auth.ClaimsFrom(r.Context())
	if c == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	key := "me:" + c.UserID
	var resp MeResponse
	if h.Cache != nil && h.Cache.GetJSON(key, &resp) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	uid, err := parseUUID(c.UserID)
	if err != nil {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return
	}
	u, err := repo.StaffByID(r.Context(), h.Pool, uid)
	if err != nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	resp = MeResponse{
		User: UserInfo{ID: u.ID.String(), FullName: u.FullName, Email: u.Email, Role: u.Role},
		Nav:  auth.NavFor(u.Role),
	}
	if h.Cache != nil {
		h.Cache.SetJSON(key, resp)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
