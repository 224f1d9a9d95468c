package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
)

type Anamnesis struct {
	ID            uuid.UUID
	PatientID     uuid.UUID
	Status        string
	InterviewDate *string
	Diagnoses     []string
	MedicationAndAllergies *string
	Indications            *string
	Objectives             *string
	DevelopmentHistory     *string
	Preferences            *string
	InterferingBehaviors   *string
	QualityOfLife          *string
	Feeding                *string
	Sleep                  *string
	Therapists             *string
	SentAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldsMap devolve as respostas livres indexadas pela chave usada no
// catálogo de campos do encaminhamento.
func (a *Anamnesis) FieldsMap() map[string]string {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return map[string]string{
		"medicationAndAllergies": deref(a.MedicationAndAllergies),
		"indications":            deref(a.Indications),
		"objectives":             deref(a.Objectives),
		"developmentHistory":     deref(a.DevelopmentHistory),
		"preferences":            deref(a.Preferences),
		"interferingBehaviors":   deref(a.InterferingBehaviors),
		"qualityOfLife":          deref(a.QualityOfLife),
		"feeding":                deref(a.Feeding),
		"sleep":                  deref(a.Sleep),
		"therapists":             deref(a.Therapists),
	}
}

const anamnesisColumns = `id, patient_id, status, interview_date::text, diagnoses,
	medication_and_allergies, indications, objectives, development_history,
	preferences, interfering_behaviors, quality_of_life, feeding, sleep, therapists,
	sent_at, created_at, updated_at`

func scanAnamnesis(row interface{ Scan(...interface{}) error }) (*Anamnesis, error) {
	var a Anamnesis
	err := row.Scan(&a.ID, &a.PatientID, &a.Status, &a.InterviewDate, &a.Diagnoses,
		&a.MedicationAndAllergies, &a.Indications, &a.Objectives, &a.DevelopmentHistory,
		&a.Preferences, &a.InterferingBehaviors, &a.QualityOfLife, &a.Feeding, &a.Sleep, &a.Therapists,
		&a.SentAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func CreateAnamnesis(ctx context.Context, pool *pgxpool.Pool, patientID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO anamneses (patient_id, status) VALUES ($1, $2) RETURNING id
	`, patientID, string(anamnesis.StatusCriada)).Scan(&id)
	return id, err
}

func AnamnesisByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Anamnesis, error) {
	return scanAnamnesis(pool.QueryRow(ctx, `SELECT `+anamnesisColumns+` FROM anamneses WHERE id = $1`, id))
}

// MarkAnamnesisSent move Criada -> Encaminhada gravando sent_at. Zero linhas
// afetadas significa que o registro não estava mais em Criada.
func MarkAnamnesisSent(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	tag, err := pool.Exec(ctx, `
		UPDATE anamneses SET status = $1, sent_at = now(), updated_at = now()
		WHERE id = $2 AND status = $3
	`, string(anamnesis.StatusEncaminhada), id, string(anamnesis.StatusCriada))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

// UpdateAnamnesisStatus faz a transição condicionada ao status atual, para a
// corrida entre duas abas nunca aplicar a mesma transição duas vezes.
func UpdateAnamnesisStatus(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, from, to string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE anamneses SET status = $1, updated_at = now() WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

// UpdateAnamnesisAnswers grava as respostas do formulário. O chamador já
// validou o status; aqui a escrita é condicionada ao status informado.
func UpdateAnamnesisAnswers(ctx context.Context, pool *pgxpool.Pool, a *Anamnesis, expectedStatus, newStatus string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE anamneses SET
			interview_date = $1, diagnoses = $2,
			medication_and_allergies = $3, indications = $4, objectives = $5,
			development_history = $6, preferences = $7, interfering_behaviors = $8,
			quality_of_life = $9, feeding = $10, sleep = $11, therapists = $12,
			status = $13, updated_at = now()
		WHERE id = $14 AND status = $15
	`, a.InterviewDate, a.Diagnoses,
		a.MedicationAndAllergies, a.Indications, a.Objectives,
		a.DevelopmentHistory, a.Preferences, a.InterferingBehaviors,
		a.QualityOfLife, a.Feeding, a.Sleep, a.Therapists,
		newStatus, a.ID, expectedStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

const listItemQuery = `
	SELECT a.id, a.patient_id, p.name, g.name, a.status,
	       a.interview_date, a.created_at, a.sent_at
	FROM anamneses a
	JOIN patients p ON p.id = a.patient_id
	JOIN guardians g ON g.id = p.guardian_id`

func scanListItems(ctx context.Context, pool *pgxpool.Pool, query string, args ...interface{}) ([]anamnesis.ListItem, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []anamnesis.ListItem
	for rows.Next() {
		var it anamnesis.ListItem
		var status string
		if err := rows.Scan(&it.ID, &it.PatientID, &it.PatientName, &it.GuardianName, &status,
			&it.InterviewDate, &it.CreatedAt, &it.SentAt); err != nil {
			return nil, err
		}
		it.Status = anamnesis.Status(status)
		list = append(list, it)
	}
	return list, rows.Err()
}

func ListAnamnesisItems(ctx context.Context, pool *pgxpool.Pool, limit, offset int) ([]anamnesis.ListItem, error) {
	q := listItemQuery + ` ORDER BY a.created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	return scanListItems(ctx, pool, q, args...)
}

func AnamnesisItemsByPatient(ctx context.Context, pool *pgxpool.Pool, patientID uuid.UUID) ([]anamnesis.ListItem, error) {
	return scanListItems(ctx, pool, listItemQuery+` WHERE a.patient_id = $1 ORDER BY a.created_at DESC`, patientID)
}

// DeleteAnamnesis remove o registro e seus anexos; recusa quando já existe
// encaminhamento.
func DeleteAnamnesis(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM referrals WHERE anamnesis_id = $1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrHasDependents
	}
	if _, err := pool.Exec(ctx, `DELETE FROM anamnesis_reports WHERE anamnesis_id = $1`, id); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `DELETE FROM anamnesis_access_tokens WHERE anamnesis_id = $1`, id); err != nil {
		return err
	}
	tag, err := pool.Exec(ctx, `DELETE FROM anamneses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
