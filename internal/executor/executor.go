package executor

import (
	"context"

	"ledger-gateway/internal/model"
)

// Executor runs a resolved query against one backend family. Execution
// failures come back as typed errors, never panics; the statement string is
// whatever was actually sent to the backend, for the response metadata.
type Executor interface {
	Execute(ctx context.Context, rq *model.ResolvedQuery) (*model.Result, string, error)
	Kind() model.BackendKind
}
