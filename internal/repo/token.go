package repo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccessToken struct {
	Token       string
	AnamnesisID uuid.UUID
	ExpiresAt   time.Time
	UsedAt      *time.Time
	// Status atual da anamnese dona do token, carregado junto no lookup.
	AnamnesisStatus string
}

// NewOpaqueToken gera o token do link público (32 bytes, hex).
func NewOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func CreateAccessToken(ctx context.Context, pool *pgxpool.Pool, anamnesisID uuid.UUID, ttl time.Duration) (string, error) {
	token, err := NewOpaqueToken()
	if err != nil {
		return "", err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO anamnesis_access_tokens (token, anamnesis_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, anamnesisID, time.Now().Add(ttl))
	if err != nil {
		return "", err
	}
	return token, nil
}

func AccessTokenByToken(ctx context.Context, pool *pgxpool.Pool, token string) (*AccessToken, error) {
	var t AccessToken
	err := pool.QueryRow(ctx, `
		SELECT t.token, t.anamnesis_id, t.expires_at, t.used_at, a.status
		FROM anamnesis_access_tokens t
		JOIN anamneses a ON a.id = t.anamnesis_id
		WHERE t.token = $1
	`, token).Scan(&t.Token, &t.AnamnesisID, &t.ExpiresAt, &t.UsedAt, &t.AnamnesisStatus)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ConsumeAccessToken marca o token como usado. Uso único: a segunda chamada
// não afeta linha nenhuma e devolve ErrStatusConflict.
func ConsumeAccessToken(ctx context.Context, pool *pgxpool.Pool, token string) error {
	tag, err := pool.Exec(ctx, `
		UPDATE anamnesis_access_tokens SET used_at = now()
		WHERE token = $1 AND used_at IS NULL AND expires_at > now()
	`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ExpiredSentAnamneses lista anamneses ainda em Encaminhada cujos tokens já
// venceram todos, para a varredura do cmd/expiry.
func ExpiredSentAnamneses(ctx context.Context, pool *pgxpool.Pool, sentStatus string) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, `
		SELECT a.id FROM anamneses a
		WHERE a.status = $1
		  AND NOT EXISTS (
			SELECT 1 FROM anamnesis_access_tokens t
			WHERE t.anamnesis_id = a.id AND t.used_at IS NULL AND t.expires_at > now()
		  )
	`, sentStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
