package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
)

type Referral struct {
	ID             uuid.UUID
	AnamnesisID    uuid.UUID
	AssistantID    *uuid.UUID
	SentAt         time.Time
	SelectedFields []string
	AssignmentChannel *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const referralColumns = `id, anamnesis_id, assistant_id, sent_at, selected_fields, assignment_channel, created_at, updated_at`

func scanReferral(row interface{ Scan(...interface{}) error }) (*Referral, error) {
	var r Referral
	err := row.Scan(&r.ID, &r.AnamnesisID, &r.AssistantID, &r.SentAt, &r.SelectedFields, &r.AssignmentChannel, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertReferral cria o encaminhamento 1:1 da anamnese ou, enquanto nenhuma
// assistente foi atribuída, substitui a seleção de campos. Com assistente já
// atribuída nada muda e ErrStatusConflict é devolvido.
func UpsertReferral(ctx context.Context, pool *pgxpool.Pool, anamnesisID uuid.UUID, selectedFields []string) (*Referral, error) {
	row := pool.QueryRow(ctx, `
		INSERT INTO referrals (anamnesis_id, sent_at, selected_fields)
		VALUES ($1, now(), $2)
		ON CONFLICT (anamnesis_id) DO UPDATE
			SET selected_fields = EXCLUDED.selected_fields, sent_at = now(), updated_at = now()
			WHERE referrals.assistant_id IS NULL
		RETURNING `+referralColumns, anamnesisID, selectedFields)
	r, err := scanReferral(row)
	if err != nil {
		// ON CONFLICT ... WHERE sem match não retorna linha
		return nil, ErrStatusConflict
	}
	return r, nil
}

func ReferralByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Referral, error) {
	return scanReferral(pool.QueryRow(ctx, `SELECT `+referralColumns+` FROM referrals WHERE id = $1`, id))
}

func ReferralByAnamnesis(ctx context.Context, pool *pgxpool.Pool, anamnesisID uuid.UUID) (*Referral, error) {
	return scanReferral(pool.QueryRow(ctx, `SELECT `+referralColumns+` FROM referrals WHERE anamnesis_id = $1`, anamnesisID))
}

// AssignReferralAssistant grava a atribuição terminal. Só afeta linha quando
// ainda não havia assistente; imutável depois disso.
func AssignReferralAssistant(ctx context.Context, pool *pgxpool.Pool, referralID, assistantID uuid.UUID, channel string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE referrals SET assistant_id = $1, assignment_channel = $2, updated_at = now()
		WHERE id = $3 AND assistant_id IS NULL
	`, assistantID, channel, referralID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

type ReferralListItem struct {
	ID            uuid.UUID
	AnamnesisID   uuid.UUID
	PatientID     uuid.UUID
	PatientName   string
	SentAt        time.Time
	AssistantName *string
}

func ReferralsByAssistant(ctx context.Context, pool *pgxpool.Pool, assistantID uuid.UUID) ([]ReferralListItem, error) {
	rows, err := pool.Query(ctx, `
		SELECT r.id, r.anamnesis_id, a.patient_id, p.name, r.sent_at, s.full_name
		FROM referrals r
		JOIN anamneses a ON a.id = r.anamnesis_id
		JOIN patients p ON p.id = a.patient_id
		LEFT JOIN staff_users s ON s.id = r.assistant_id
		WHERE r.assistant_id = $1
		ORDER BY r.sent_at DESC
	`, assistantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []ReferralListItem
	for rows.Next() {
		var it ReferralListItem
		if err := rows.Scan(&it.ID, &it.AnamnesisID, &it.PatientID, &it.PatientName, &it.SentAt, &it.AssistantName); err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// ReferralItemsByPatient alimenta o histórico de encaminhamentos por
// paciente, agrupado por dia na camada de cima.
func ReferralItemsByPatient(ctx context.Context, pool *pgxpool.Pool, patientID uuid.UUID) ([]anamnesis.ListItem, error) {
	rows, err := pool.Query(ctx, `
		SELECT a.id, a.patient_id, p.name, g.name, a.status, a.interview_date, a.created_at, r.sent_at
		FROM referrals r
		JOIN anamneses a ON a.id = r.anamnesis_id
		JOIN patients p ON p.id = a.patient_id
		JOIN guardians g ON g.id = p.guardian_id
		WHERE a.patient_id = $1
		ORDER BY r.sent_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []anamnesis.ListItem
	for rows.Next() {
		var it anamnesis.ListItem
		var status string
		var sentAt time.Time
		if err := rows.Scan(&it.ID, &it.PatientID, &it.PatientName, &it.GuardianName, &status, &it.InterviewDate, &it.CreatedAt, &sentAt); err != nil {
			return nil, err
		}
		it.Status = anamnesis.Status(status)
		it.SentAt = &sentAt
		list = append(list, it)
	}
	return list, rows.Err()
}
