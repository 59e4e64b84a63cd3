package indicator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddIndicator creates a new indicator after trimming the name. Duplicates
// are rejected by the storage layer's unique constraint and surface as
// db.ErrDuplicate, so concurrent administrators cannot both win.
func (s *Service) AddIndicator(ctx context.Context, name string, t Type) (*Indicator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("indicator name is required")
	}
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}

	ind := &Indicator{Name: name, Type: t}
	if err := s.repo.Create(ctx, ind); err != nil {
		return nil, err
	}
	return ind, nil
}

func (s *Service) GetIndicator(ctx context.Context, id uuid.UUID) (*Indicator, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByType returns all indicators of one type in name-ascending order.
func (s *Service) ListByType(ctx context.Context, t Type) ([]*Indicator, error) {
	return s.repo.ListByType(ctx, t)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Indicator, int, error) {
	return s.repo.List(ctx, limit, offset)
}
