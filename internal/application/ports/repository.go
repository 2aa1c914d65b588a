package ports

import (
	"context"

	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

// Repositories return (nil, nil) from FindBy* when nothing matches; callers turn that into NotFound.
// A unique constraint violated by Save or Update surfaces as *errors.AlreadyExistsError.

// ProjectRepository defines persistence for projects and templates.
type ProjectRepository interface {
	// Save inserts a new project and assigns its ID.
	Save(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	// FindAll returns projects ordered by ID.
	FindAll(ctx context.Context, offset, limit int) ([]*domain.Project, error)
	// Update replaces every mutable field of an existing project. DateCreation is never written.
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, nom string) (bool, error)
	ExistsByNumero(ctx context.Context, numero string) (bool, error)
	FindTemplates(ctx context.Context) ([]*domain.Project, error)
	FindByTemplateID(ctx context.Context, templateID int64) ([]*domain.Project, error)
	FindByEntreprise(ctx context.Context, entrepriseID int64) ([]*domain.Project, error)
	FindByResponsable(ctx context.Context, responsableID int64) ([]*domain.Project, error)
}

// UserRepository defines persistence for users. Email lookups expect a normalized address.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindAll(ctx context.Context, offset, limit int) ([]*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the row. Services soft-delete through Update instead.
	Delete(ctx context.Context, id int64) error
}

// Transactor runs fn inside one storage transaction. Repositories called with the ctx passed
// to fn take part in it; fn returning an error rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
