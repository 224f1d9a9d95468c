package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportMeta struct {
	ID         uuid.UUID
	AnamnesisID uuid.UUID
	FileName   string
	Size       int
	UploadedAt time.Time
}

func SaveReport(ctx context.Context, pool *pgxpool.Pool, anamnesisID uuid.UUID, fileName string, content []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO anamnesis_reports (anamnesis_id, file_name, content)
		VALUES ($1, $2, $3) RETURNING id
	`, anamnesisID, fileName, content).Scan(&id)
	return id, err
}

func ReportsByAnamnesis(ctx context.Context, pool *pgxpool.Pool, anamnesisID uuid.UUID) ([]ReportMeta, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, anamnesis_id, file_name, octet_length(content), uploaded_at
		FROM anamnesis_reports WHERE anamnesis_id = $1 ORDER BY uploaded_at
	`, anamnesisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []ReportMeta
	for rows.Next() {
		var m ReportMeta
		if err := rows.Scan(&m.ID, &m.AnamnesisID, &m.FileName, &m.Size, &m.UploadedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func ReportContent(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (string, []byte, error) {
	var name string
	var content []byte
	err := pool.QueryRow(ctx, `
		SELECT file_name, content FROM anamnesis_reports WHERE id = $1
	`, id).Scan(&name, &content)
	if err != nil {
		return "", nil, err
	}
	return name, content, nil
}

// LatestReportContent serve o PDF mais recente da anamnese.
func LatestReportContent(ctx context.Context, pool *pgxpool.Pool, anamnesisID uuid.UUID) (string, []byte, error) {
	var name string
	var content []byte
	err := pool.QueryRow(ctx, `
		SELECT file_name, content FROM anamnesis_reports
		WHERE anamnesis_id = $1 ORDER BY uploaded_at DESC LIMIT 1
	`, anamnesisID).Scan(&name, &content)
	if err != nil {
		return "", nil, err
	}
	return name, content, nil
}
