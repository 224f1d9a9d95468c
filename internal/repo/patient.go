package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Patient struct {
	ID         uuid.UUID
	GuardianID uuid.UUID
	Name       string
	CPF        *string
	DateBirth  *string
	Kinship    *string
	HasPhoto   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func CreatePatient(ctx context.Context, pool *pgxpool.Pool, guardianID uuid.UUID, name string, cpf, dateBirth, kinship *string, photo []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO patients (guardian_id, name, cpf, date_birth, kinship, photo)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, guardianID, name, cpf, dateBirth, kinship, photo).Scan(&id)
	return id, err
}

func PatientByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := pool.QueryRow(ctx, `
		SELECT id, guardian_id, name, cpf, date_birth::text, kinship, photo IS NOT NULL, created_at, updated_at
		FROM patients WHERE id = $1
	`, id).Scan(&p.ID, &p.GuardianID, &p.Name, &p.CPF, &p.DateBirth, &p.Kinship, &p.HasPhoto, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func ListPatients(ctx context.Context, pool *pgxpool.Pool, limit, offset int) ([]Patient, error) {
	q := `
		SELECT id, guardian_id, name, cpf, date_birth::text, kinship, photo IS NOT NULL, created_at, updated_at
		FROM patients ORDER BY name
	`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.GuardianID, &p.Name, &p.CPF, &p.DateBirth, &p.Kinship, &p.HasPhoto, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func CountPatients(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n)
	return n, err
}

// PatientPhoto retorna os bytes da foto (nil quando o paciente não tem foto).
func PatientPhoto(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) ([]byte, error) {
	var photo []byte
	err := pool.QueryRow(ctx, `SELECT photo FROM patients WHERE id = $1`, id).Scan(&photo)
	if err != nil {
		return nil, err
	}
	return photo, nil
}

func UpdatePatient(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, name string, cpf, dateBirth, kinship *string, photo []byte) error {
	var tagQuery string
	var args []interface{}
	if photo != nil {
		tagQuery = `
			UPDATE patients SET name = $1, cpf = $2, date_birth = $3, kinship = $4, photo = $5, updated_at = now()
			WHERE id = $6`
		args = []interface{}{name, cpf, dateBirth, kinship, photo, id}
	} else {
		tagQuery = `
			UPDATE patients SET name = $1, cpf = $2, date_birth = $3, kinship = $4, updated_at = now()
			WHERE id = $5`
		args = []interface{}{name, cpf, dateBirth, kinship, id}
	}
	tag, err := pool.Exec(ctx, tagQuery, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePatient recusa a exclusão enquanto houver anamneses do paciente.
func DeletePatient(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM anamneses WHERE patient_id = $1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrHasDependents
	}
	tag, err := pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
