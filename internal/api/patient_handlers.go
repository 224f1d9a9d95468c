package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

const maxPhotoBytes = 5 << 20 // 5 MB

type PatientResponse struct {
	ID         string `json:"id"`
	GuardianID string `json:"guardianId"`
	Name       string `json:"name"`
	CPF        string `json:"cpf,omitempty"`
	DateBirth  string `json:"dateBirth,omitempty"`
	Kinship    string `json:"kinship,omitempty"`
	HasPhoto   bool   `json:"hasPhoto"`
}

func patientResponse(p repo.Patient) PatientResponse {
	return PatientResponse{
		ID:         p.ID.String(),
		GuardianID: p.GuardianID.String(),
		Name:       p.Name,
		CPF:        deref(p.CPF),
		DateBirth:  deref(p.DateBirth),
		Kinship:    deref(p.Kinship),
		HasPhoto:   p.HasPhoto,
	}
}

// patientForm lê o multipart do cadastro: campos texto + foto opcional.
func patientForm(w http.ResponseWriter, r *http.Request) (guardianID uuid.UUID, name string, cpf, dateBirth, kinship *string, photo []byte, ok bool) {
	if err := r.ParseMultipartForm(maxPhotoBytes + 1<<20); err != nil {
		http.Error(w, `{"error":"multipart inválido"}`, http.StatusBadRequest)
		return
	}
	name = strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, `{"error":"nome obrigatório"}`, http.StatusBadRequest)
		return
	}
	gid, err := parseUUID(r.FormValue("guardianId"))
	if err != nil {
		http.Error(w, `{"error":"guardianId obrigatório"}`, http.StatusBadRequest)
		return
	}
	guardianID = gid

	if raw := strings.TrimSpace(r.FormValue("cpf")); raw != "" {
		d, err := NormalizeCPF(raw)
		if err != nil {
			http.Error(w, `{"error":"CPF deve ter 11 dígitos"}`, http.StatusBadRequest)
			return
		}
		cpf = &d
	}
	dateBirth = strPtr(r.FormValue("dateBirth"))
	kinship = strPtr(r.FormValue("kinship"))

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		if header.Size > maxPhotoBytes {
			http.Error(w, `{"error":"foto maior que 5MB"}`, http.StatusBadRequest)
			return
		}
		b, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
		if err != nil || len(b) > maxPhotoBytes {
			http.Error(w, `{"error":"foto maior que 5MB"}`, http.StatusBadRequest)
			return
		}
		photo = b
	}
	ok = true
	return
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	guardianID, name, cpf, dateBirth, kinship, photo, ok := patientForm(w, r)
	if !ok {
		return
	}
	if _, err := repo.GuardianByID(r.Context(), h.Pool, guardianID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"responsável não encontrado"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	id, err := repo.CreatePatient(r.Context(), h.Pool, guardianID, name, cpf, dateBirth, kinship, photo)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id.String()})
}

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r)
	list, err := repo.ListPatients(r.Context(), h.Pool, limit, offset)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	total, err := repo.CountPatients(r.Context(), h.Pool)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]PatientResponse, 0, len(list))
	for _, p := range list {
		out = append(out, patientResponse(p))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"items": out, "total": total, "limit": limit, "offset": offset,
	})
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := repo.PatientByID(r.Context(), h.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"paciente não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(patientResponse(*p))
}

// GetPatientPhoto serve os bytes da foto com sniff de content-type.
func (h *Handler) GetPatientPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	photo, err := repo.PatientPhoto(r.Context(), h.Pool, id)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && len(photo) == 0) {
		http.Error(w, `{"error":"foto não encontrada"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(photo))
	_, _ = w.Write(photo)
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	_, name, cpf, dateBirth, kinship, photo, ok := patientForm(w, r)
	if !ok {
		return
	}
	err := repo.UpdatePatient(r.Context(), h.Pool, id, name, cpf, dateBirth, kinship, photo)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, `{"error":"paciente não encontrado"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
}

// DeletePatient recusa com 409 enquanto o paciente tiver anamneses.
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	err := repo.DeletePatient(r.Context(), h.Pool, id)
	switch {
	case errors.Is(err, repo.ErrHasDependents):
		http.Error(w, `{"error":"paciente possui anamneses vinculadas"}`, http.StatusConflict)
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, `{"error":"paciente não encontrado"}`, http.StatusNotFound)
	case err != nil:
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}
}
