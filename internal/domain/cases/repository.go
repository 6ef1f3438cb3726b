package cases

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, c Case) error
	GetByID(ctx context.Context, id string) (Case, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Case, error)
	ListByStatus(ctx context.Context, statuses []Status) ([]Case, error)
	ListByIDs(ctx context.Context, ids []string) ([]Case, error)

	// Advance mueve el caso de "from" a "to" solo si sigue en "from".
	// Devuelve ErrInvalidState si otro request ya lo movió.
	Advance(ctx context.Context, id string, from, to Status, at time.Time) (Case, error)
}
