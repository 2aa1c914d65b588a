package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

// UpdateProject applies the supplied fields onto the stored project and re-validates the result.
// A changed numero or nom is checked for uniqueness. DateCreation is always kept.
func (s *Service) UpdateProject(ctx context.Context, id int64, input ports.UpdateProjectInput) (*domain.Project, error) {
	var updated *domain.Project
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		attrs := existing.Attrs()
		applyUpdate(&attrs, input)

		if numero := strings.TrimSpace(attrs.Numero); numero != existing.Numero {
			if err := s.checkNumero(ctx, numero); err != nil {
				return err
			}
		}
		if nom := strings.TrimSpace(attrs.Nom); nom != existing.Nom {
			if err := s.checkNom(ctx, nom); err != nil {
				return err
			}
		}

		p, err := domain.LoadProject(existing.ID, attrs, existing.DateCreation)
		if err != nil {
			return err
		}
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

func applyUpdate(a *domain.ProjectAttrs, in ports.UpdateProjectInput) {
	if in.Numero != nil {
		a.Numero = *in.Numero
	}
	if in.Nom != nil {
		a.Nom = *in.Nom
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.Stade != nil {
		a.Stade = *in.Stade
	}
	if in.Commentaire != nil {
		a.Commentaire = *in.Commentaire
	}
	if in.DateDebut != nil {
		a.DateDebut = *in.DateDebut
	}
	if in.DateEcheance != nil {
		a.DateEcheance = *in.DateEcheance
	}
	if in.HeuresPlanifiees != nil {
		a.HeuresPlanifiees = *in.HeuresPlanifiees
	}
	if in.HeuresReelles != nil {
		a.HeuresReelles = *in.HeuresReelles
	}
	if in.EstTemplate != nil {
		a.EstTemplate = *in.EstTemplate
	}
	if in.ProjetTemplateID != nil {
		id := *in.ProjetTemplateID
		a.ProjetTemplateID = &id
	}
	if in.ResponsableID != nil {
		a.ResponsableID = *in.ResponsableID
	}
	if in.EntrepriseID != nil {
		a.EntrepriseID = *in.EntrepriseID
	}
	if in.ContactID != nil {
		id := *in.ContactID
		a.ContactID = &id
	}
}
