package drainer

import (
	"context"

	"github.com/iliyamo/pos-order-api/internal/gateway"
	"github.com/iliyamo/pos-order-api/internal/repository"
)

// GatewayExecutor executes tasks through the remote domain's task-execution
// endpoint. The session is built once from the task runner's machine
// credential; task payloads pass through opaquely.
type GatewayExecutor struct {
	Session gateway.Session
}

func (e GatewayExecutor) Execute(ctx context.Context, task repository.TaskRecord) error {
	return e.Session.ExecuteTask(ctx, task.Name, task.Data)
}
