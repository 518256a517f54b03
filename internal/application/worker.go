package application

import "context"

// Worker drains queued snapshot jobs until the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
