package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Guardian struct {
	ID           uuid.UUID
	Name         string
	CPF          string
	Email        *string
	PhoneNumber1 string
	PhoneNumber2 *string
	AddressLine1 *string
	AddressLine2 *string
	Number       *string
	Neighborhood *string
	CEP          *string
	State        *string
	City         *string
	DateBirth    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const guardianColumns = `id, name, cpf, email, phone_number1, phone_number2,
	address_line1, address_line2, number, neighborhood, cep, state, city,
	date_birth::text, created_at, updated_at`

func scanGuardian(row pgx.Row) (*Guardian, error) {
	var g Guardian
	err := row.Scan(&g.ID, &g.Name, &g.CPF, &g.Email, &g.PhoneNumber1, &g.PhoneNumber2,
		&g.AddressLine1, &g.AddressLine2, &g.Number, &g.Neighborhood, &g.CEP, &g.State, &g.City,
		&g.DateBirth, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func CreateGuardian(ctx context.Context, pool *pgxpool.Pool, g *Guardian) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO guardians (name, cpf, email, phone_number1, phone_number2,
			address_line1, address_line2, number, neighborhood, cep, state, city, date_birth)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, g.Name, g.CPF, g.Email, g.PhoneNumber1, g.PhoneNumber2,
		g.AddressLine1, g.AddressLine2, g.Number, g.Neighborhood, g.CEP, g.State, g.City, g.DateBirth).Scan(&id)
	return id, err
}

func GuardianByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Guardian, error) {
	return scanGuardian(pool.QueryRow(ctx, `SELECT `+guardianColumns+` FROM guardians WHERE id = $1`, id))
}

// GuardianByCPF busca por CPF exato (11 dígitos, só números).
func GuardianByCPF(ctx context.Context, pool *pgxpool.Pool, cpf string) (*Guardian, error) {
	return scanGuardian(pool.QueryRow(ctx, `SELECT `+guardianColumns+` FROM guardians WHERE cpf = $1`, cpf))
}

// GuardiansByCPFPrefix atende a busca parcial da tela de cadastro.
func GuardiansByCPFPrefix(ctx context.Context, pool *pgxpool.Pool, prefix string, limit int) ([]Guardian, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := pool.Query(ctx, `
		SELECT `+guardianColumns+` FROM guardians
		WHERE cpf LIKE $1 || '%' ORDER BY cpf LIMIT $2
	`, prefix, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Guardian
	for rows.Next() {
		g, err := scanGuardian(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

func ListGuardians(ctx context.Context, pool *pgxpool.Pool, limit, offset int) ([]Guardian, error) {
	q := `SELECT ` + guardianColumns + ` FROM guardians ORDER BY name`
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
	var list []Guardian
	for rows.Next() {
		g, err := scanGuardian(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

func UpdateGuardian(ctx context.Context, pool *pgxpool.Pool, g *Guardian) error {
	tag, err := pool.Exec(ctx, `
		UPDATE guardians SET name = $1, email = $2, phone_number1 = $3, phone_number2 = $4,
			address_line1 = $5, address_line2 = $6, number = $7, neighborhood = $8,
			cep = $9, state = $10, city = $11, date_birth = $12, updated_at = now()
		WHERE id = $13
	`, g.Name, g.Email, g.PhoneNumber1, g.PhoneNumber2,
		g.AddressLine1, g.AddressLine2, g.Number, g.Neighborhood,
		g.CEP, g.State, g.City, g.DateBirth, g.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrCreateGuardianByCPF aplica o dedup por CPF: um CPF já cadastrado
// reaproveita o id existente (e atualiza os dados), nunca cria duplicata.
func GetOrCreateGuardianByCPF(ctx context.Context, pool *pgxpool.Pool, g *Guardian) (uuid.UUID, bool, error) {
	existing, err := GuardianByCPF(ctx, pool, g.CPF)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, err
	}
	if existing != nil {
		g.ID = existing.ID
		if err := UpdateGuardian(ctx, pool, g); err != nil {
			return uuid.Nil, false, err
		}
		return existing.ID, false, nil
	}
	id, err := CreateGuardian(ctx, pool, g)
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

func DeleteGuardian(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE guardian_id = $1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrHasDependents
	}
	tag, err := pool.Exec(ctx, `DELETE FROM guardians WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
