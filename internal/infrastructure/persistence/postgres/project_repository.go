package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/persistence/db"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Save(ctx context.Context, p *domain.Project) error {
	id, err := queries(ctx, r.pool).CreateProjet(ctx, db.CreateProjetParams{
		Numero:           p.Numero,
		Nom:              p.Nom,
		Description:      p.Description,
		Type:             string(p.Type),
		Stade:            p.Stade,
		Commentaire:      p.Commentaire,
		DateDebut:        toDate(p.DateDebut),
		DateEcheance:     toDate(p.DateEcheance),
		HeuresPlanifiees: p.HeuresPlanifiees,
		HeuresReelles:    p.HeuresReelles,
		EstTemplate:      p.EstTemplate,
		ProjetTemplateID: toInt8(p.ProjetTemplateID),
		ResponsableID:    p.ResponsableID,
		EntrepriseID:     p.EntrepriseID,
		ContactID:        toInt8(p.ContactID),
		DateCreation:     p.DateCreation,
	})
	if err != nil {
		return mapUniqueViolation(err, projectKeys(p))
	}
	p.ID = id
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	row, err := queries(ctx, r.pool).GetProjetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dbProjetToDomain(row)
}

func (r *ProjectRepository) FindAll(ctx context.Context, offset, limit int) ([]*domain.Project, error) {
	off, lim := pageParams(offset, limit)
	return toProjects(queries(ctx, r.pool).ListProjets(ctx, db.ListProjetsParams{
		Limit:  lim,
		Offset: off,
	}))
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	n, err := queries(ctx, r.pool).UpdateProjet(ctx, db.UpdateProjetParams{
		ID:               p.ID,
		Numero:           p.Numero,
		Nom:              p.Nom,
		Description:      p.Description,
		Type:             string(p.Type),
		Stade:            p.Stade,
		Commentaire:      p.Commentaire,
		DateDebut:        toDate(p.DateDebut),
		DateEcheance:     toDate(p.DateEcheance),
		HeuresPlanifiees: p.HeuresPlanifiees,
		HeuresReelles:    p.HeuresReelles,
		EstTemplate:      p.EstTemplate,
		ProjetTemplateID: toInt8(p.ProjetTemplateID),
		ResponsableID:    p.ResponsableID,
		EntrepriseID:     p.EntrepriseID,
		ContactID:        toInt8(p.ContactID),
	})
	if err != nil {
		return mapUniqueViolation(err, projectKeys(p))
	}
	if n == 0 {
		return domerrors.NotFound("project", p.ID)
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return queries(ctx, r.pool).DeleteProjet(ctx, id)
}

func (r *ProjectRepository) ExistsByName(ctx context.Context, nom string) (bool, error) {
	return queries(ctx, r.pool).ProjetExistsByNom(ctx, nom)
}

func (r *ProjectRepository) ExistsByNumero(ctx context.Context, numero string) (bool, error) {
	return queries(ctx, r.pool).ProjetExistsByNumero(ctx, numero)
}

func (r *ProjectRepository) FindTemplates(ctx context.Context) ([]*domain.Project, error) {
	return toProjects(queries(ctx, r.pool).ListTemplates(ctx))
}

func (r *ProjectRepository) FindByTemplateID(ctx context.Context, templateID int64) ([]*domain.Project, error) {
	return toProjects(queries(ctx, r.pool).ListProjetsByTemplateID(ctx, templateID))
}

func (r *ProjectRepository) FindByEntreprise(ctx context.Context, entrepriseID int64) ([]*domain.Project, error) {
	return toProjects(queries(ctx, r.pool).ListProjetsByEntreprise(ctx, entrepriseID))
}

func (r *ProjectRepository) FindByResponsable(ctx context.Context, responsableID int64) ([]*domain.Project, error) {
	return toProjects(queries(ctx, r.pool).ListProjetsByResponsable(ctx, responsableID))
}

func toProjects(rows []db.Projet, err error) ([]*domain.Project, error) {
	if err != nil {
		return nil, err
	}
	list := make([]*domain.Project, 0, len(rows))
	for _, row := range rows {
		p, err := dbProjetToDomain(row)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

// dbProjetToDomain re-validates the row; a stored row that breaks an invariant is an error.
func dbProjetToDomain(row db.Projet) (*domain.Project, error) {
	p, err := domain.LoadProject(row.ID, domain.ProjectAttrs{
		Numero:           row.Numero,
		Nom:              row.Nom,
		Description:      row.Description,
		Type:             domain.ProjectType(row.Type),
		Stade:            row.Stade,
		Commentaire:      row.Commentaire,
		DateDebut:        row.DateDebut.Time,
		DateEcheance:     row.DateEcheance.Time,
		HeuresPlanifiees: row.HeuresPlanifiees,
		HeuresReelles:    row.HeuresReelles,
		EstTemplate:      row.EstTemplate,
		ProjetTemplateID: fromInt8(row.ProjetTemplateID),
		ResponsableID:    row.ResponsableID,
		EntrepriseID:     row.EntrepriseID,
		ContactID:        fromInt8(row.ContactID),
	}, row.DateCreation)
	if err != nil {
		return nil, fmt.Errorf("load projet %d: %w", row.ID, err)
	}
	return p, nil
}

func projectKeys(p *domain.Project) map[string]string {
	return map[string]string{"numero": p.Numero, "nom": p.Nom}
}

func toDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: !t.IsZero()}
}

func toInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func fromInt8(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)
