package project

import (
	"context"

	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

// CreateProject checks numero then nom for uniqueness and saves a new project created now.
func (s *Service) CreateProject(ctx context.Context, attrs domain.ProjectAttrs) (*domain.Project, error) {
	var created *domain.Project
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, attrs.Numero, attrs.Nom); err != nil {
			return err
		}
		p, err := s.insert(ctx, attrs)
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
