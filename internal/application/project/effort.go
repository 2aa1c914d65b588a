package project

import (
	"context"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// Avancement returns the progress percentage of a project, uncapped.
func (s *Service) Avancement(ctx context.Context, id int64) (*ports.Progress, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.Progress{
		ProjectID:        p.ID,
		HeuresPlanifiees: p.HeuresPlanifiees,
		HeuresReelles:    p.HeuresReelles,
		Avancement:       p.Avancement(),
	}, nil
}

// EcartTemps returns actual minus planned hours, and that gap as a share of planned hours.
func (s *Service) EcartTemps(ctx context.Context, id int64) (*ports.Variance, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.Variance{
		ProjectID:        p.ID,
		HeuresPlanifiees: p.HeuresPlanifiees,
		HeuresReelles:    p.HeuresReelles,
		Ecart:            p.EcartTemps(),
		EcartPourcentage: p.EcartPourcentage(),
	}, nil
}
