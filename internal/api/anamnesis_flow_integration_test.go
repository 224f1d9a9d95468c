//go:build integration

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/config"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/testutil"
)

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	pool, _ := testutil.OpenPool(ctx)
	if pool == nil {
		t.Skip("DATABASE_URL not set for integration tests")
		return nil
	}
	if err := testutil.MustMigrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func randomCPF() string {
	return fmt.Sprintf("%011d", rand.Int63n(100000000000))
}

func createGuardianAndPatient(t *testing.T, ctx context.Context, pool *pgxpool.Pool) (uuid.UUID, uuid.UUID) {
	t.Helper()
	email := "resp@example.com"
	gid, _, err := repo.GetOrCreateGuardianByCPF(ctx, pool, &repo.Guardian{
		Name:         "Responsável Teste",
		CPF:          randomCPF(),
		Email:        &email,
		PhoneNumber1: "47999999999",
	})
	if err != nil {
		t.Fatalf("create guardian: %v", err)
	}
	pid, err := repo.CreatePatient(ctx, pool, gid, "Paciente Teste", nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return gid, pid
}

func TestIntegration_GuardianCPFDedup(t *testing.T) {
	pool := openTestPool(t)
	defer pool.Close()
	ctx := context.Background()

	cpf := randomCPF()
	email1 := "primeiro@example.com"
	id1, created1, err := repo.GetOrCreateGuardianByCPF(ctx, pool, &repo.Guardian{
		Name: "Maria", CPF: cpf, Email: &email1,
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if !created1 {
		t.Fatal("first call should create")
	}

	email2 := "segundo@example.com"
	id2, created2, err := repo.GetOrCreateGuardianByCPF(ctx, pool, &repo.Guardian{
		Name: "Maria Atualizada", CPF: cpf, Email: &email2,
	})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created2 {
		t.Fatal("second call with same CPF must reuse, not create")
	}
	if id1 != id2 {
		t.Fatalf("same CPF produced two guardians: %s vs %s", id1, id2)
	}

	g, err := repo.GuardianByID(ctx, pool, id1)
	if err != nil {
		t.Fatalf("load guardian: %v", err)
	}
	if g.Email == nil || *g.Email != email2 {
		t.Fatalf("second call should refresh contact data, got %v", g.Email)
	}
}

func newPublicFormRouter(h *Handler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/anamnesis/form/{token}", h.GetPublicForm).Methods(http.MethodGet)
	r.HandleFunc("/api/anamnesis/{id}/response", h.SubmitAnamnesisResponse).Methods(http.MethodPut)
	return r
}

func answerBody(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	payload := map[string]interface{}{
		"interviewDate": "2026-08-01",
		"diagnoses":     []string{"Autismo"},
		"objectives":    "Avaliação inicial",
		"sleep":         "Sono agitado",
	}
	raw, _ := json.Marshal(payload)
	if err := mw.WriteField("anamnesis", string(raw)); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestIntegration_PublicFormTokenSingleUse(t *testing.T) {
	pool := openTestPool(t)
	defer pool.Close()
	ctx := context.Background()

	_, pid := createGuardianAndPatient(t, ctx, pool)
	aid, err := repo.CreateAnamnesis(ctx, pool, pid)
	if err != nil {
		t.Fatalf("create anamnesis: %v", err)
	}
	token, err := repo.CreateAccessToken(ctx, pool, aid, 24*time.Hour)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if err := repo.MarkAnamnesisSent(ctx, pool, aid); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	// o envio é guardado pelo UPDATE condicional: repetir conflita
	if err := repo.MarkAnamnesisSent(ctx, pool, aid); !errors.Is(err, repo.ErrStatusConflict) {
		t.Fatalf("second send should conflict, got %v", err)
	}

	h := &Handler{Pool: pool, Cfg: config.Load()}
	router := newPublicFormRouter(h)

	get := httptest.NewRequest(http.MethodGet, "/api/anamnesis/form/"+token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, get)
	if rec.Code != http.StatusOK {
		t.Fatalf("fillable form expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	submitURL := "/api/anamnesis/" + aid.String() + "/response?token=" + token

	body, ctype := answerBody(t)
	put := httptest.NewRequest(http.MethodPut, submitURL, body)
	put.Header.Set("Content-Type", ctype)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, put)
	if rec.Code != http.StatusOK {
		t.Fatalf("first submit expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	a, err := repo.AnamnesisByID(ctx, pool, aid)
	if err != nil {
		t.Fatalf("load anamnesis: %v", err)
	}
	if a.Status != string(anamnesis.StatusRespondido) {
		t.Fatalf("status after submit = %q, want Respondido", a.Status)
	}
	if a.Sleep == nil || !strings.Contains(*a.Sleep, "agitado") {
		t.Fatalf("answers not persisted: %+v", a.Sleep)
	}

	body2, ctype2 := answerBody(t)
	put2 := httptest.NewRequest(http.MethodPut, submitURL, body2)
	put2.Header.Set("Content-Type", ctype2)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, put2)
	if rec.Code != http.StatusGone {
		t.Fatalf("second submit expected 410, got %d: %s", rec.Code, rec.Body.String())
	}

	get2 := httptest.NewRequest(http.MethodGet, "/api/anamnesis/form/"+token, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, get2)
	if rec.Code != http.StatusGone {
		t.Fatalf("reopening a used link expected 410, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIntegration_ReferralAssignedExactlyOnce(t *testing.T) {
	pool := openTestPool(t)
	defer pool.Close()
	ctx := context.Background()

	_, pid := createGuardianAndPatient(t, ctx, pool)
	aid, err := repo.CreateAnamnesis(ctx, pool, pid)
	if err != nil {
		t.Fatalf("create anamnesis: %v", err)
	}
	if err := repo.MarkAnamnesisSent(ctx, pool, aid); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	a, err := repo.AnamnesisByID(ctx, pool, aid)
	if err != nil {
		t.Fatalf("load anamnesis: %v", err)
	}
	a.Objectives = strPtr("Avaliação")
	if err := repo.UpdateAnamnesisAnswers(ctx, pool, a,
		string(anamnesis.StatusEncaminhada), string(anamnesis.StatusRespondido)); err != nil {
		t.Fatalf("answer: %v", err)
	}

	ref, err := repo.UpsertReferral(ctx, pool, aid, []string{"objectives", "diagnoses"})
	if err != nil {
		t.Fatalf("upsert referral: %v", err)
	}
	if err := repo.UpdateAnamnesisStatus(ctx, pool, aid,
		string(anamnesis.StatusRespondido), string(anamnesis.StatusCamposSelecionados)); err != nil {
		t.Fatalf("select fields transition: %v", err)
	}

	assistantID, err := repo.CreateStaffUser(ctx, pool, "Assistente Teste", randomCPF(),
		"assistente@example.com", "x", "ASSISTANT")
	if err != nil {
		t.Fatalf("create assistant: %v", err)
	}

	if err := repo.AssignReferralAssistant(ctx, pool, ref.ID, assistantID, "direct"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if err := repo.UpdateAnamnesisStatus(ctx, pool, aid,
		string(anamnesis.StatusCamposSelecionados), string(anamnesis.StatusAssistenteAtribuido)); err != nil {
		t.Fatalf("terminal transition: %v", err)
	}

	// segunda atribuição perde para o WHERE assistant_id IS NULL
	if err := repo.AssignReferralAssistant(ctx, pool, ref.ID, assistantID, "email"); err != repo.ErrStatusConflict {
		t.Fatalf("second assign expected ErrStatusConflict, got %v", err)
	}

	// com assistente atribuído, a seleção de campos vira imutável
	if _, err := repo.UpsertReferral(ctx, pool, aid, []string{"sleep"}); err != repo.ErrStatusConflict {
		t.Fatalf("reselect after assign expected ErrStatusConflict, got %v", err)
	}

	got, err := repo.ReferralByID(ctx, pool, ref.ID)
	if err != nil {
		t.Fatalf("load referral: %v", err)
	}
	if got.AssistantID == nil || *got.AssistantID != assistantID {
		t.Fatalf("assistant not persisted: %+v", got.AssistantID)
	}
	if got.AssignmentChannel == nil || *got.AssignmentChannel != "direct" {
		t.Fatalf("channel = %v, want direct", got.AssignmentChannel)
	}
	if len(got.SelectedFields) != 2 {
		t.Fatalf("selection must survive the failed reselect, got %v", got.SelectedFields)
	}
}
