package ports

import (
	"context"
	"time"

	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

// UpdateProjectInput carries a partial update. Nil fields keep the stored value.
type UpdateProjectInput struct {
	Numero           *string
	Nom              *string
	Description      *string
	Type             *domain.ProjectType
	Stade            *string
	Commentaire      *string
	DateDebut        *time.Time
	DateEcheance     *time.Time
	HeuresPlanifiees *float64
	HeuresReelles    *float64
	EstTemplate      *bool
	ProjetTemplateID *int64
	ResponsableID    *int64
	EntrepriseID     *int64
	ContactID        *int64
}

// DuplicateProjectInput names the copy of SourceID.
type DuplicateProjectInput struct {
	SourceID     int64
	Numero       string
	Nom          string
	DateDebut    time.Time
	DateEcheance time.Time
}

// CreateFromTemplateInput instantiates TemplateID for a new owner.
type CreateFromTemplateInput struct {
	TemplateID    int64
	Numero        string
	Nom           string
	DateDebut     time.Time
	DateEcheance  time.Time
	ResponsableID int64
	EntrepriseID  int64
	ContactID     *int64
}

// Progress is the avancement of one project.
type Progress struct {
	ProjectID        int64   `json:"projet_id"`
	HeuresPlanifiees float64 `json:"heures_planifiees"`
	HeuresReelles    float64 `json:"heures_reelles"`
	Avancement       float64 `json:"avancement"`
}

// Variance is the gap between actual and planned hours of one project.
type Variance struct {
	ProjectID        int64   `json:"projet_id"`
	HeuresPlanifiees float64 `json:"heures_planifiees"`
	HeuresReelles    float64 `json:"heures_reelles"`
	Ecart            float64 `json:"ecart"`
	EcartPourcentage float64 `json:"ecart_pourcentage"`
}

// ProjectUseCases is everything the adapters may ask of projects.
type ProjectUseCases interface {
	CreateProject(ctx context.Context, attrs domain.ProjectAttrs) (*domain.Project, error)
	GetProject(ctx context.Context, id int64) (*domain.Project, error)
	UpdateProject(ctx context.Context, id int64, input UpdateProjectInput) (*domain.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	ListProjects(ctx context.Context, offset, limit int) ([]*domain.Project, error)
	DuplicateProject(ctx context.Context, input DuplicateProjectInput) (*domain.Project, error)
	SaveAsTemplate(ctx context.Context, id int64) (*domain.Project, error)
	CreateFromTemplate(ctx context.Context, input CreateFromTemplateInput) (*domain.Project, error)
	ListTemplates(ctx context.Context) ([]*domain.Project, error)
	ListFromTemplate(ctx context.Context, templateID int64) ([]*domain.Project, error)
	ListByResponsable(ctx context.Context, responsableID int64) ([]*domain.Project, error)
	ListByEntreprise(ctx context.Context, entrepriseID int64) ([]*domain.Project, error)
	Avancement(ctx context.Context, id int64) (*Progress, error)
	EcartTemps(ctx context.Context, id int64) (*Variance, error)
}

// CreateUserInput holds a new user's details. Password is plaintext and never stored.
type CreateUserInput struct {
	Nom      string
	Prenom   string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput carries a partial update. Nil fields keep the stored value.
type UpdateUserInput struct {
	Nom    *string
	Prenom *string
	Email  *string
}

// UserUseCases is everything the adapters may ask of users.
type UserUseCases interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) (*domain.User, error)
	ChangeRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error)
	ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
	// Authorize reports whether user id is active and its role grants action.
	Authorize(ctx context.Context, id int64, action domain.Action) (bool, error)
}
