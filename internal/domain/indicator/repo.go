package indicator

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for indicators. Indicators are never
// updated or deleted; creation and ordered listing are the whole lifecycle.
type Repository interface {
	Create(ctx context.Context, ind *Indicator) error
	GetByID(ctx context.Context, id uuid.UUID) (*Indicator, error)
	ListByType(ctx context.Context, t Type) ([]*Indicator, error)
	List(ctx context.Context, limit, offset int) ([]*Indicator, int, error)
}
