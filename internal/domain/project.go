package domain

import (
	"math"
	"strings"
	"time"

	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// ProjectType is the closed set of project categories.
type ProjectType string

const (
	ProjectTypeInternal    ProjectType = "INTERNAL"
	ProjectTypeExternal    ProjectType = "EXTERNAL"
	ProjectTypeMaintenance ProjectType = "MAINTENANCE"
	ProjectTypeDevelopment ProjectType = "DEVELOPMENT"
)

// ProjectTypes lists every member in declaration order.
var ProjectTypes = []ProjectType{
	ProjectTypeInternal,
	ProjectTypeExternal,
	ProjectTypeMaintenance,
	ProjectTypeDevelopment,
}

// Valid reports whether t is a member of the enumeration.
func (t ProjectType) Valid() bool {
	switch t {
	case ProjectTypeInternal, ProjectTypeExternal, ProjectTypeMaintenance, ProjectTypeDevelopment:
		return true
	}
	return false
}

func (t ProjectType) String() string { return string(t) }

// ParseProjectType accepts a member name in any case.
func ParseProjectType(s string) (ProjectType, error) {
	t := ProjectType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", domerrors.Validation("type", "unknown project type "+s)
	}
	return t, nil
}

// ProjectAttrs holds every mutable field of a project. Updates replace the whole set.
type ProjectAttrs struct {
	Numero           string
	Nom              string
	Description      string
	Type             ProjectType
	Stade            string
	Commentaire      string
	DateDebut        time.Time
	DateEcheance     time.Time
	HeuresPlanifiees float64
	HeuresReelles    float64
	EstTemplate      bool
	ProjetTemplateID *int64
	ResponsableID    int64
	EntrepriseID     int64
	ContactID        *int64
}

// Project is one project or project template. ID is 0 until the repository assigns one.
type Project struct {
	ID int64
	ProjectAttrs
	DateCreation time.Time
}

// NewProject builds an unsaved project created at now.
func NewProject(attrs ProjectAttrs, now time.Time) (*Project, error) {
	return LoadProject(0, attrs, now)
}

// LoadProject rebuilds a project from stored state. It runs the same checks as NewProject.
func LoadProject(id int64, attrs ProjectAttrs, createdAt time.Time) (*Project, error) {
	attrs.Numero = strings.TrimSpace(attrs.Numero)
	attrs.Nom = strings.TrimSpace(attrs.Nom)
	attrs.DateDebut = DateOf(attrs.DateDebut)
	attrs.DateEcheance = DateOf(attrs.DateEcheance)
	p := &Project{ID: id, ProjectAttrs: attrs, DateCreation: createdAt}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the structural invariants of the project.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Numero) == "" {
		return domerrors.Validation("numero", "must not be empty")
	}
	if strings.TrimSpace(p.Nom) == "" {
		return domerrors.Validation("nom", "must not be empty")
	}
	if !p.Type.Valid() {
		return domerrors.Validation("type", "unknown project type "+string(p.Type))
	}
	if p.HeuresPlanifiees < 0 || math.IsNaN(p.HeuresPlanifiees) || math.IsInf(p.HeuresPlanifiees, 0) {
		return domerrors.Validation("heures_planifiees", "must be a finite number >= 0")
	}
	if p.HeuresReelles < 0 || math.IsNaN(p.HeuresReelles) || math.IsInf(p.HeuresReelles, 0) {
		return domerrors.Validation("heures_reelles", "must be a finite number >= 0")
	}
	if p.DateDebut.IsZero() || p.DateEcheance.IsZero() {
		return domerrors.Validation("date_debut", "start and due dates are required")
	}
	if !p.DateEcheance.After(p.DateDebut) {
		return domerrors.Validation("date_echeance", "must be after date_debut")
	}
	if p.DateCreation.IsZero() {
		return domerrors.Validation("date_creation", "is required")
	}
	return nil
}

// Attrs returns a copy of the mutable fields, used as the base of a partial update.
func (p *Project) Attrs() ProjectAttrs {
	a := p.ProjectAttrs
	a.ProjetTemplateID = cloneID(p.ProjetTemplateID)
	a.ContactID = cloneID(p.ContactID)
	return a
}

// IsActive reports whether today falls within [DateDebut, DateEcheance].
func (p *Project) IsActive() bool { return p.IsActiveAt(time.Now()) }

// IsActiveAt is IsActive evaluated at t.
func (p *Project) IsActiveAt(t time.Time) bool {
	today := DateOf(t)
	return !today.Before(p.DateDebut) && !today.After(p.DateEcheance)
}

// DaysRemaining is the number of days until DateEcheance, 0 once it has passed.
func (p *Project) DaysRemaining() int { return p.DaysRemainingAt(time.Now()) }

// DaysRemainingAt is DaysRemaining evaluated at t.
func (p *Project) DaysRemainingAt(t time.Time) int {
	today := DateOf(t)
	if today.After(p.DateEcheance) {
		return 0
	}
	return int(p.DateEcheance.Sub(today).Hours() / 24)
}

// Avancement is actual over planned hours as a percentage. Not capped at 100.
func (p *Project) Avancement() float64 {
	if p.HeuresPlanifiees == 0 {
		return 0
	}
	return p.HeuresReelles / p.HeuresPlanifiees * 100
}

// EcartTemps is actual minus planned hours; positive means overrun.
func (p *Project) EcartTemps() float64 {
	return p.HeuresReelles - p.HeuresPlanifiees
}

// EcartPourcentage is EcartTemps relative to planned hours, 0 when nothing is planned.
func (p *Project) EcartPourcentage() float64 {
	if p.HeuresPlanifiees == 0 {
		return 0
	}
	return p.EcartTemps() / p.HeuresPlanifiees * 100
}

// EnRetard reports a past deadline or an effort overrun.
func (p *Project) EnRetard() bool { return p.EnRetardAt(time.Now()) }

// EnRetardAt is EnRetard evaluated at t.
func (p *Project) EnRetardAt(t time.Time) bool {
	return DateOf(t).After(p.DateEcheance) || p.HeuresReelles > p.HeuresPlanifiees
}

func (p *Project) IsTemplate() bool { return p.EstTemplate }

func (p *Project) CreatedFromTemplate() bool { return p.ProjetTemplateID != nil }

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
