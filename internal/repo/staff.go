package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StaffUser struct {
	ID           uuid.UUID
	FullName     string
	CPF          string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func CreateStaffUser(ctx context.Context, pool *pgxpool.Pool, fullName, cpf, email, passwordHash, role string) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO staff_users (full_name, cpf, email, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5, 'ACTIVE') RETURNING id
	`, fullName, cpf, email, passwordHash, role).Scan(&id)
	return id, err
}

func StaffByCPF(ctx context.Context, pool *pgxpool.Pool, cpf string) (*StaffUser, error) {
	var u StaffUser
	err := pool.QueryRow(ctx, `
		SELECT id, full_name, cpf, email, password_hash, role, status, created_at, updated_at
		FROM staff_users WHERE cpf = $1
	`, cpf).Scan(&u.ID, &u.FullName, &u.CPF, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func StaffByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*StaffUser, error) {
	var u StaffUser
	err := pool.QueryRow(ctx, `
		SELECT id, full_name, cpf, email, password_hash, role, status, created_at, updated_at
		FROM staff_users WHERE id = $1
	`, id).Scan(&u.ID, &u.FullName, &u.CPF, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListStaffByRoles lists staff for the role-filtered CRUD views
// (/user, /secretary, /assistant).
func ListStaffByRoles(ctx context.Context, pool *pgxpool.Pool, roles []string, limit, offset int) ([]StaffUser, error) {
	q := `
		SELECT id, full_name, cpf, email, password_hash, role, status, created_at, updated_at
		FROM staff_users WHERE role = ANY($1)
		ORDER BY full_name
	`
	args := []interface{}{roles}
	if limit > 0 {
		q += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []StaffUser
	for rows.Next() {
		var u StaffUser
		if err := rows.Scan(&u.ID, &u.FullName, &u.CPF, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func CountStaffByRoles(ctx context.Context, pool *pgxpool.Pool, roles []string) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff_users WHERE role = ANY($1)`, roles).Scan(&n)
	return n, err
}

func UpdateStaffUser(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, fullName, email string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE staff_users SET full_name = $1, email = $2, updated_at = now() WHERE id = $3
	`, fullName, email, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func UpdateStaffPassword(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID, passwordHash string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE staff_users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func DeleteStaffUser(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM staff_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
