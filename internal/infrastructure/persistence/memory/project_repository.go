package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// ProjectRepository is an in-memory ProjectRepository suitable for single-instance deployment and tests.
// It enforces the same numero and nom uniqueness as the Postgres schema.
type ProjectRepository struct {
	mu   sync.RWMutex
	data map[int64]*domain.Project
	seq  int64
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{data: make(map[int64]*domain.Project)}
}

func (r *ProjectRepository) Save(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(p, 0); err != nil {
		return err
	}
	r.seq++
	p.ID = r.seq
	r.data[p.ID] = cloneProject(p)
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return cloneProject(p), nil
}

func (r *ProjectRepository) FindAll(ctx context.Context, offset, limit int) ([]*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(r.data))
	start, end := pageBounds(len(ids), offset, limit)
	out := make([]*domain.Project, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, cloneProject(r.data[id]))
	}
	return out, nil
}

// Update keeps the stored DateCreation.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.data[p.ID]
	if !ok {
		return domerrors.NotFound("project", p.ID)
	}
	if err := r.conflict(p, p.ID); err != nil {
		return err
	}
	next := cloneProject(p)
	next.DateCreation = old.DateCreation
	r.data[p.ID] = next
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

func (r *ProjectRepository) ExistsByName(ctx context.Context, nom string) (bool, error) {
	return r.exists(func(p *domain.Project) bool { return p.Nom == nom }), nil
}

func (r *ProjectRepository) ExistsByNumero(ctx context.Context, numero string) (bool, error) {
	return r.exists(func(p *domain.Project) bool { return p.Numero == numero }), nil
}

func (r *ProjectRepository) FindTemplates(ctx context.Context) ([]*domain.Project, error) {
	return r.filter(func(p *domain.Project) bool { return p.EstTemplate }), nil
}

func (r *ProjectRepository) FindByTemplateID(ctx context.Context, templateID int64) ([]*domain.Project, error) {
	return r.filter(func(p *domain.Project) bool {
		return p.ProjetTemplateID != nil && *p.ProjetTemplateID == templateID
	}), nil
}

func (r *ProjectRepository) FindByEntreprise(ctx context.Context, entrepriseID int64) ([]*domain.Project, error) {
	return r.filter(func(p *domain.Project) bool { return p.EntrepriseID == entrepriseID }), nil
}

func (r *ProjectRepository) FindByResponsable(ctx context.Context, responsableID int64) ([]*domain.Project, error) {
	return r.filter(func(p *domain.Project) bool { return p.ResponsableID == responsableID }), nil
}

func (r *ProjectRepository) exists(match func(*domain.Project) bool) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.data {
		if match(p) {
			return true
		}
	}
	return false
}

func (r *ProjectRepository) filter(match func(*domain.Project) bool) []*domain.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Project{}
	for _, id := range slices.Sorted(maps.Keys(r.data)) {
		if p := r.data[id]; match(p) {
			out = append(out, cloneProject(p))
		}
	}
	return out
}

// conflict reports a numero or nom already used by a project other than self. Numero is checked
// across every row before nom. Caller holds mu.
func (r *ProjectRepository) conflict(p *domain.Project, self int64) error {
	taken := func(match func(*domain.Project) bool) bool {
		for id, other := range r.data {
			if id != self && match(other) {
				return true
			}
		}
		return false
	}
	if taken(func(o *domain.Project) bool { return o.Numero == p.Numero }) {
		return domerrors.AlreadyExists("project", "numero", p.Numero)
	}
	if taken(func(o *domain.Project) bool { return o.Nom == p.Nom }) {
		return domerrors.AlreadyExists("project", "nom", p.Nom)
	}
	return nil
}

func cloneProject(p *domain.Project) *domain.Project {
	return &domain.Project{ID: p.ID, ProjectAttrs: p.Attrs(), DateCreation: p.DateCreation}
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)
