package repo

import "errors"

var (
	ErrNotFound = errors.New("registro não encontrado")
	// ErrHasDependents bloqueia exclusões enquanto há registros filhos.
	ErrHasDependents = errors.New("registro possui dependentes")
	// ErrStatusConflict indica que a transição de status perdeu a corrida
	// (o registro não estava mais no status esperado).
	ErrStatusConflict = errors.New("status da anamnese mudou")
)
