package expiry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockStore struct {
	ids     []uuid.UUID
	listErr error
	failOn  map[uuid.UUID]error
	marked  []uuid.UUID
}

func (m *mockStore) ExpiredSentAnamneses(ctx context.Context) ([]uuid.UUID, error) {
	return m.ids, m.listErr
}

func (m *mockStore) MarkUnanswered(ctx context.Context, id uuid.UUID) error {
	if err := m.failOn[id]; err != nil {
		return err
	}
	m.marked = append(m.marked, id)
	return nil
}

func TestSweepMarksAllExpired(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	m := &mockStore{ids: ids}
	marked, skipped := Sweep(context.Background(), m, m, zap.NewNop())
	if marked != 3 || skipped != 0 {
		t.Fatalf("marked=%d skipped=%d", marked, skipped)
	}
	if len(m.marked) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(m.marked))
	}
}

func TestSweepSkipsConflicts(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	m := &mockStore{
		ids:    []uuid.UUID{a, b},
		failOn: map[uuid.UUID]error{a: errors.New("status da anamnese mudou")},
	}
	marked, skipped := Sweep(context.Background(), m, m, zap.NewNop())
	if marked != 1 || skipped != 1 {
		t.Fatalf("marked=%d skipped=%d", marked, skipped)
	}
	if len(m.marked) != 1 || m.marked[0] != b {
		t.Fatalf("wrong records marked: %v", m.marked)
	}
}

func TestSweepListFailure(t *testing.T) {
	m := &mockStore{listErr: errors.New("db down")}
	marked, skipped := Sweep(context.Background(), m, m, zap.NewNop())
	if marked != 0 || skipped != 0 {
		t.Fatalf("expected no work on list failure, got marked=%d skipped=%d", marked, skipped)
	}
}
