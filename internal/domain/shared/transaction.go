package shared

import "context"

// TransactionManager runs a unit of work inside a single storage
// transaction. Repository calls made with the context passed to fn join
// that transaction; an error from fn rolls every write back.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
