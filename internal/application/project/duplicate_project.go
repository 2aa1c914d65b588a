package project

import (
	"context"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

// DuplicateProject copies the source under a new numero, nom and window. The copy starts with
// no actual hours, is not a template and has no template reference.
func (s *Service) DuplicateProject(ctx context.Context, input ports.DuplicateProjectInput) (*domain.Project, error) {
	var created *domain.Project
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		src, err := s.load(ctx, input.SourceID)
		if err != nil {
			return err
		}
		if err := s.checkUnique(ctx, input.Numero, input.Nom); err != nil {
			return err
		}
		attrs := src.Attrs()
		attrs.Numero = input.Numero
		attrs.Nom = input.Nom
		attrs.DateDebut = input.DateDebut
		attrs.DateEcheance = input.DateEcheance
		attrs.HeuresReelles = 0
		attrs.EstTemplate = false
		attrs.ProjetTemplateID = nil

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
