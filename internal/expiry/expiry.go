// Package expiry contém a varredura que marca como "Não Respondido" as
// anamneses encaminhadas cujos links públicos venceram sem resposta.
// Rodada pelo cmd/expiry (cron diário).
package expiry

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/anamnesis"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/metrics"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/repo"
)

// Lister lista as anamneses encaminhadas cujos tokens já venceram todos.
// Interface para mock nos testes; em produção é o repo.
type Lister interface {
	ExpiredSentAnamneses(ctx context.Context) ([]uuid.UUID, error)
}

// Marker aplica a transição Encaminhada -> Não Respondido em um registro.
type Marker interface {
	MarkUnanswered(ctx context.Context, id uuid.UUID) error
}

type poolStore struct {
	pool *pgxpool.Pool
}

func (s poolStore) ExpiredSentAnamneses(ctx context.Context) ([]uuid.UUID, error) {
	return repo.ExpiredSentAnamneses(ctx, s.pool, string(anamnesis.StatusEncaminhada))
}

func (s poolStore) MarkUnanswered(ctx context.Context, id uuid.UUID) error {
	return repo.UpdateAnamnesisStatus(ctx, s.pool, id,
		string(anamnesis.StatusEncaminhada), string(anamnesis.StatusNaoRespondido))
}

// Sweep marca cada registro vencido. Falha em um registro não interrompe os
// demais; um conflito de status (respondido entre o SELECT e o UPDATE) conta
// como skip, não como erro.
func Sweep(ctx context.Context, lister Lister, marker Marker, logger *zap.Logger) (marked, skipped int) {
	ids, err := lister.ExpiredSentAnamneses(ctx)
	if err != nil {
		logger.Error("expiry: listagem falhou", zap.Error(err))
		return 0, 0
	}
	for _, id := range ids {
		if err := marker.MarkUnanswered(ctx, id); err != nil {
			logger.Warn("expiry: registro pulado", zap.String("anamnesis_id", id.String()), zap.Error(err))
			skipped++
			continue
		}
		marked++
		metrics.RecordAnamnesisExpired()
		metrics.RecordStatusTransition(string(anamnesis.StatusEncaminhada), string(anamnesis.StatusNaoRespondido))
		logger.Info("expiry: anamnese marcada como não respondida", zap.String("anamnesis_id", id.String()))
	}
	return marked, skipped
}

// SweepPool é a variante de produção sobre o pool.
func SweepPool(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (int, int) {
	s := poolStore{pool: pool}
	return Sweep(ctx, s, s, logger)
}
