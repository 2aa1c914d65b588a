package project

import (
	"context"
	"fmt"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// SaveAsTemplate flags an existing project as a template. Nothing else changes.
func (s *Service) SaveAsTemplate(ctx context.Context, id int64) (*domain.Project, error) {
	var updated *domain.Project
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		p.EstTemplate = true
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update project %d: %w", id, err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateFromTemplate instantiates a template. Description, type, stade, commentaire and planned
// hours come from the template; ownership comes from the input.
func (s *Service) CreateFromTemplate(ctx context.Context, input ports.CreateFromTemplateInput) (*domain.Project, error) {
	var created *domain.Project
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		tpl, err := s.load(ctx, input.TemplateID)
		if err != nil {
			return err
		}
		if !tpl.IsTemplate() {
			return domerrors.ErrNotTemplate
		}
		if err := s.checkUnique(ctx, input.Numero, input.Nom); err != nil {
			return err
		}
		templateID := tpl.ID
		attrs := domain.ProjectAttrs{
			Numero:           input.Numero,
			Nom:              input.Nom,
			Description:      tpl.Description,
			Type:             tpl.Type,
			Stade:            tpl.Stade,
			Commentaire:      tpl.Commentaire,
			DateDebut:        input.DateDebut,
			DateEcheance:     input.DateEcheance,
			HeuresPlanifiees: tpl.HeuresPlanifiees,
			ProjetTemplateID: &templateID,
			ResponsableID:    input.ResponsableID,
			EntrepriseID:     input.EntrepriseID,
		}
		if input.ContactID != nil {
			contactID := *input.ContactID
			attrs.ContactID = &contactID
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
