package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/ibge"
)

// ListStates devolve as UFs brasileiras (cacheadas) para o cadastro de
// responsáveis.
func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.IBGE.States(r.Context())
	if err != nil {
		http.Error(w, `{"error":"serviço de localidades indisponível"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"states": states})
}

// ListCities devolve os municípios de uma UF.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	uf := mux.Vars(r)["uf"]
	cities, err := h.IBGE.Cities(r.Context(), uf)
	if err != nil {
		if errors.Is(err, ibge.ErrInvalidUF) {
			http.Error(w, `{"error":"UF inválida"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"serviço de localidades indisponível"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"cities": cities})
}
