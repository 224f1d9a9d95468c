package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func formTokenTTL(hours int) time.Duration {
	if hours <= 0 {
		hours = 168
	}
	return time.Duration(hours) * time.Hour
}

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// pathUUID lê um UUID de uma variável de rota do mux; escreve o 400 e
// retorna false quando inválido.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := parseUUID(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, `{"error":"id inválido"}`, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
