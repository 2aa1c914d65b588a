package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// Service runs the project use cases. Every mutation runs inside one transaction.
type Service struct {
	repo ports.ProjectRepository
	tx   ports.Transactor
	now  func() time.Time
}

// NewService builds the project use cases. now defaults to time.Now.
func NewService(repo ports.ProjectRepository, tx ports.Transactor, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, tx: tx, now: now}
}

// GetProject returns the project or a NotFound error.
func (s *Service) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	return s.load(ctx, id)
}

// DeleteProject hard-deletes an existing project.
func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.load(ctx, id); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete project %d: %w", id, err)
		}
		return nil
	})
}

func (s *Service) ListProjects(ctx context.Context, offset, limit int) ([]*domain.Project, error) {
	return s.repo.FindAll(ctx, offset, limit)
}

func (s *Service) ListTemplates(ctx context.Context) ([]*domain.Project, error) {
	return s.repo.FindTemplates(ctx)
}

// ListFromTemplate returns the projects instantiated from templateID.
func (s *Service) ListFromTemplate(ctx context.Context, templateID int64) ([]*domain.Project, error) {
	return s.repo.FindByTemplateID(ctx, templateID)
}

func (s *Service) ListByResponsable(ctx context.Context, responsableID int64) ([]*domain.Project, error) {
	return s.repo.FindByResponsable(ctx, responsableID)
}

func (s *Service) ListByEntreprise(ctx context.Context, entrepriseID int64) ([]*domain.Project, error) {
	return s.repo.FindByEntreprise(ctx, entrepriseID)
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project %d: %w", id, err)
	}
	if p == nil {
		return nil, domerrors.NotFound("project", id)
	}
	return p, nil
}

// checkUnique runs the numero check before the name check.
func (s *Service) checkUnique(ctx context.Context, numero, nom string) error {
	if err := s.checkNumero(ctx, numero); err != nil {
		return err
	}
	return s.checkNom(ctx, nom)
}

func (s *Service) checkNumero(ctx context.Context, numero string) error {
	numero = strings.TrimSpace(numero)
	exists, err := s.repo.ExistsByNumero(ctx, numero)
	if err != nil {
		return fmt.Errorf("check numero: %w", err)
	}
	if exists {
		return domerrors.AlreadyExists("project", "numero", numero)
	}
	return nil
}

func (s *Service) checkNom(ctx context.Context, nom string) error {
	nom = strings.TrimSpace(nom)
	exists, err := s.repo.ExistsByName(ctx, nom)
	if err != nil {
		return fmt.Errorf("check nom: %w", err)
	}
	if exists {
		return domerrors.AlreadyExists("project", "nom", nom)
	}
	return nil
}

// insert validates attrs as a new project and saves it.
func (s *Service) insert(ctx context.Context, attrs domain.ProjectAttrs) (*domain.Project, error) {
	p, err := domain.NewProject(attrs, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return p, nil
}

var _ ports.ProjectUseCases = (*Service)(nil)
