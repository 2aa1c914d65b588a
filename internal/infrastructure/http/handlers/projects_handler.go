package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
)

// ProjectsHandler handles /api/projects/*.
type ProjectsHandler struct {
	projects ports.ProjectUseCases
	audit    *Auditor
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

// NewProjectsHandler creates the project handler. Computed fields are evaluated at now (nil = time.Now).
func NewProjectsHandler(projects ports.ProjectUseCases, audit *Auditor, log zerolog.Logger, now func() time.Time) *ProjectsHandler {
	if now == nil {
		now = time.Now
	}
	return &ProjectsHandler{
		projects: projects,
		audit:    audit,
		validate: NewValidator(),
		log:      log,
		now:      now,
	}
}

type createProjectRequest struct {
	Numero           string  `json:"numero" validate:"required,max=50"`
	Nom              string  `json:"nom" validate:"required,max=255"`
	Description      string  `json:"description"`
	Type             string  `json:"type" validate:"required,project_type"`
	Stade            string  `json:"stade" validate:"max=100"`
	Commentaire      string  `json:"commentaire"`
	DateDebut        string  `json:"date_debut" validate:"required,datetime=2006-01-02"`
	DateEcheance     string  `json:"date_echeance" validate:"required,datetime=2006-01-02"`
	HeuresPlanifiees float64 `json:"heures_planifiees" validate:"gte=0"`
	HeuresReelles    float64 `json:"heures_reelles" validate:"gte=0"`
	EstTemplate      bool    `json:"est_template"`
	ProjetTemplateID *int64  `json:"projet_template_id" validate:"omitempty,gt=0"`
	ResponsableID    int64   `json:"responsable_id" validate:"required,gt=0"`
	EntrepriseID     int64   `json:"entreprise_id" validate:"required,gt=0"`
	ContactID        *int64  `json:"contact_id" validate:"omitempty,gt=0"`
}

type updateProjectRequest struct {
	Numero           *string  `json:"numero" validate:"omitempty,max=50"`
	Nom              *string  `json:"nom" validate:"omitempty,max=255"`
	Description      *string  `json:"description"`
	Type             *string  `json:"type" validate:"omitempty,project_type"`
	Stade            *string  `json:"stade" validate:"omitempty,max=100"`
	Commentaire      *string  `json:"commentaire"`
	DateDebut        *string  `json:"date_debut" validate:"omitempty,datetime=2006-01-02"`
	DateEcheance     *string  `json:"date_echeance" validate:"omitempty,datetime=2006-01-02"`
	HeuresPlanifiees *float64 `json:"heures_planifiees" validate:"omitempty,gte=0"`
	HeuresReelles    *float64 `json:"heures_reelles" validate:"omitempty,gte=0"`
	EstTemplate      *bool    `json:"est_template"`
	ProjetTemplateID *int64   `json:"projet_template_id" validate:"omitempty,gt=0"`
	ResponsableID    *int64   `json:"responsable_id" validate:"omitempty,gt=0"`
	EntrepriseID     *int64   `json:"entreprise_id" validate:"omitempty,gt=0"`
	ContactID        *int64   `json:"contact_id" validate:"omitempty,gt=0"`
}

type duplicateProjectRequest struct {
	Numero       string `json:"numero" validate:"required,max=50"`
	Nom          string `json:"nom" validate:"required,max=255"`
	DateDebut    string `json:"date_debut" validate:"required,datetime=2006-01-02"`
	DateEcheance string `json:"date_echeance" validate:"required,datetime=2006-01-02"`
}

type fromTemplateRequest struct {
	TemplateID    int64  `json:"template_id" validate:"required,gt=0"`
	Numero        string `json:"numero" validate:"required,max=50"`
	Nom           string `json:"nom" validate:"required,max=255"`
	DateDebut     string `json:"date_debut" validate:"required,datetime=2006-01-02"`
	DateEcheance  string `json:"date_echeance" validate:"required,datetime=2006-01-02"`
	ResponsableID int64  `json:"responsable_id" validate:"required,gt=0"`
	EntrepriseID  int64  `json:"entreprise_id" validate:"required,gt=0"`
	ContactID     *int64 `json:"contact_id" validate:"omitempty,gt=0"`
}

// ProjectResponse is the JSON shape of a project, with its computed indicators.
type ProjectResponse struct {
	ID               int64   `json:"id"`
	Numero           string  `json:"numero"`
	Nom              string  `json:"nom"`
	Description      string  `json:"description"`
	Type             string  `json:"type"`
	Stade            string  `json:"stade"`
	Commentaire      string  `json:"commentaire"`
	DateDebut        string  `json:"date_debut"`
	DateEcheance     string  `json:"date_echeance"`
	HeuresPlanifiees float64 `json:"heures_planifiees"`
	HeuresReelles    float64 `json:"heures_reelles"`
	EstTemplate      bool    `json:"est_template"`
	ProjetTemplateID *int64  `json:"projet_template_id"`
	ResponsableID    int64   `json:"responsable_id"`
	EntrepriseID     int64   `json:"entreprise_id"`
	ContactID        *int64  `json:"contact_id"`
	DateCreation     string  `json:"date_creation"`
	IsActive         bool    `json:"is_active"`
	DaysRemaining    int     `json:"days_remaining"`
	Avancement       float64 `json:"avancement"`
	EcartTemps       float64 `json:"ecart_temps"`
	EstEnRetard      bool    `json:"est_en_retard"`
}

// ProjectListResponse wraps a list. Offset and Limit are set for paged listings only.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Offset   *int              `json:"offset,omitempty"`
	Limit    *int              `json:"limit,omitempty"`
	Total    int               `json:"total"`
}

func (h *ProjectsHandler) toResponse(p *domain.Project) ProjectResponse {
	return NewProjectResponse(p, h.now())
}

// NewProjectResponse renders p with its indicators evaluated at now.
func NewProjectResponse(p *domain.Project, now time.Time) ProjectResponse {
	return ProjectResponse{
		ID:               p.ID,
		Numero:           p.Numero,
		Nom:              p.Nom,
		Description:      p.Description,
		Type:             p.Type.String(),
		Stade:            p.Stade,
		Commentaire:      p.Commentaire,
		DateDebut:        p.DateDebut.Format(DateLayout),
		DateEcheance:     p.DateEcheance.Format(DateLayout),
		HeuresPlanifiees: p.HeuresPlanifiees,
		HeuresReelles:    p.HeuresReelles,
		EstTemplate:      p.EstTemplate,
		ProjetTemplateID: p.ProjetTemplateID,
		ResponsableID:    p.ResponsableID,
		EntrepriseID:     p.EntrepriseID,
		ContactID:        p.ContactID,
		DateCreation:     p.DateCreation.UTC().Format(time.RFC3339),
		IsActive:         p.IsActiveAt(now),
		DaysRemaining:    p.DaysRemainingAt(now),
		Avancement:       p.Avancement(),
		EcartTemps:       p.EcartTemps(),
		EstEnRetard:      p.EnRetardAt(now),
	}
}

func (h *ProjectsHandler) toList(projects []*domain.Project) ProjectListResponse {
	items := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, h.toResponse(p))
	}
	return ProjectListResponse{Projects: items, Total: len(items)}
}

// List handles GET /api/projects. At most one of template_id, responsable_id or
// entreprise_id filters the list; otherwise offset/limit page through everything.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	templateID, byTemplate, err := queryID(r, "template_id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	responsableID, byResponsable, err := queryID(r, "responsable_id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	entrepriseID, byEntreprise, err := queryID(r, "entreprise_id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	filters := 0
	for _, set := range []bool{byTemplate, byResponsable, byEntreprise} {
		if set {
			filters++
		}
	}
	if filters > 1 {
		writeErr(w, http.StatusBadRequest, "", "use only one of template_id, responsable_id, entreprise_id")
		return
	}

	var projects []*domain.Project
	switch {
	case byTemplate:
		projects, err = h.projects.ListFromTemplate(r.Context(), templateID)
	case byResponsable:
		projects, err = h.projects.ListByResponsable(r.Context(), responsableID)
	case byEntreprise:
		projects, err = h.projects.ListByEntreprise(r.Context(), entrepriseID)
	default:
		offset, limit := pagination(r)
		projects, err = h.projects.ListProjects(r.Context(), offset, limit)
		if err != nil {
			writeDomainErr(w, h.log, err, "list projects")
			return
		}
		resp := h.toList(projects)
		resp.Offset, resp.Limit = &offset, &limit
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if err != nil {
		writeDomainErr(w, h.log, err, "list projects")
		return
	}
	writeJSON(w, http.StatusOK, h.toList(projects))
}

// Templates handles GET /api/projects/templates.
func (h *ProjectsHandler) Templates(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListTemplates(r.Context())
	if err != nil {
		writeDomainErr(w, h.log, err, "list templates")
		return
	}
	writeJSON(w, http.StatusOK, h.toList(projects))
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createProjectRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	pt, err := domain.ParseProjectType(body.Type)
	if err != nil {
		writeDomainErr(w, h.log, err, "create project")
		return
	}
	debut, echeance, ok := parseDateRange(w, body.DateDebut, body.DateEcheance)
	if !ok {
		return
	}
	p, err := h.projects.CreateProject(r.Context(), domain.ProjectAttrs{
		Numero:           body.Numero,
		Nom:              body.Nom,
		Description:      body.Description,
		Type:             pt,
		Stade:            body.Stade,
		Commentaire:      body.Commentaire,
		DateDebut:        debut,
		DateEcheance:     echeance,
		HeuresPlanifiees: body.HeuresPlanifiees,
		HeuresReelles:    body.HeuresReelles,
		EstTemplate:      body.EstTemplate,
		ProjetTemplateID: body.ProjetTemplateID,
		ResponsableID:    body.ResponsableID,
		EntrepriseID:     body.EntrepriseID,
		ContactID:        body.ContactID,
	})
	if err != nil {
		writeDomainErr(w, h.log, err, "create project")
		return
	}
	h.audit.Emit(r, ports.EventProjectCreated, p.ID, map[string]any{"numero": p.Numero, "nom": p.Nom})
	writeJSON(w, http.StatusCreated, h.toResponse(p))
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.projects.GetProject(r.Context(), id)
	if err != nil {
		writeDomainErr(w, h.log, err, "get project")
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(p))
}

// Update handles PATCH and PUT /api/projects/{id}. Absent fields keep their stored value.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body updateProjectRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	in := ports.UpdateProjectInput{
		Numero:           body.Numero,
		Nom:              body.Nom,
		Description:      body.Description,
		Stade:            body.Stade,
		Commentaire:      body.Commentaire,
		HeuresPlanifiees: body.HeuresPlanifiees,
		HeuresReelles:    body.HeuresReelles,
		EstTemplate:      body.EstTemplate,
		ProjetTemplateID: body.ProjetTemplateID,
		ResponsableID:    body.ResponsableID,
		EntrepriseID:     body.EntrepriseID,
		ContactID:        body.ContactID,
	}
	if body.Type != nil {
		pt, err := domain.ParseProjectType(*body.Type)
		if err != nil {
			writeDomainErr(w, h.log, err, "update project")
			return
		}
		in.Type = &pt
	}
	var err error
	if in.DateDebut, err = parseDatePtr(body.DateDebut); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "date_debut: must be a date formatted "+DateLayout)
		return
	}
	if in.DateEcheance, err = parseDatePtr(body.DateEcheance); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "date_echeance: must be a date formatted "+DateLayout)
		return
	}
	p, err := h.projects.UpdateProject(r.Context(), id, in)
	if err != nil {
		writeDomainErr(w, h.log, err, "update project")
		return
	}
	h.audit.Emit(r, ports.EventProjectUpdated, p.ID, map[string]any{"numero": p.Numero, "nom": p.Nom})
	writeJSON(w, http.StatusOK, h.toResponse(p))
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.projects.DeleteProject(r.Context(), id); err != nil {
		writeDomainErr(w, h.log, err, "delete project")
		return
	}
	h.audit.Emit(r, ports.EventProjectDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// Duplicate handles POST /api/projects/{id}/duplicate.
func (h *ProjectsHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body duplicateProjectRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	debut, echeance, ok := parseDateRange(w, body.DateDebut, body.DateEcheance)
	if !ok {
		return
	}
	p, err := h.projects.DuplicateProject(r.Context(), ports.DuplicateProjectInput{
		SourceID:     id,
		Numero:       body.Numero,
		Nom:          body.Nom,
		DateDebut:    debut,
		DateEcheance: echeance,
	})
	if err != nil {
		writeDomainErr(w, h.log, err, "duplicate project")
		return
	}
	h.audit.Emit(r, ports.EventProjectDuplicated, p.ID, map[string]any{"source_id": id})
	writeJSON(w, http.StatusCreated, h.toResponse(p))
}

// SaveAsTemplate handles POST /api/projects/{id}/template.
func (h *ProjectsHandler) SaveAsTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.projects.SaveAsTemplate(r.Context(), id)
	if err != nil {
		writeDomainErr(w, h.log, err, "save as template")
		return
	}
	h.audit.Emit(r, ports.EventProjectTemplated, p.ID, nil)
	writeJSON(w, http.StatusOK, h.toResponse(p))
}

// FromTemplate handles POST /api/projects/from-template.
func (h *ProjectsHandler) FromTemplate(w http.ResponseWriter, r *http.Request) {
	var body fromTemplateRequest
	if !decodeAndValidate(w, r, h.validate, &body) {
		return
	}
	debut, echeance, ok := parseDateRange(w, body.DateDebut, body.DateEcheance)
	if !ok {
		return
	}
	p, err := h.projects.CreateFromTemplate(r.Context(), ports.CreateFromTemplateInput{
		TemplateID:    body.TemplateID,
		Numero:        body.Numero,
		Nom:           body.Nom,
		DateDebut:     debut,
		DateEcheance:  echeance,
		ResponsableID: body.ResponsableID,
		EntrepriseID:  body.EntrepriseID,
		ContactID:     body.ContactID,
	})
	if err != nil {
		writeDomainErr(w, h.log, err, "create from template")
		return
	}
	h.audit.Emit(r, ports.EventProjectInstantiated, p.ID, map[string]any{"template_id": body.TemplateID})
	writeJSON(w, http.StatusCreated, h.toResponse(p))
}

// Avancement handles GET /api/projects/{id}/avancement.
func (h *ProjectsHandler) Avancement(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	progress, err := h.projects.Avancement(r.Context(), id)
	if err != nil {
		writeDomainErr(w, h.log, err, "avancement")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Ecart handles GET /api/projects/{id}/ecart.
func (h *ProjectsHandler) Ecart(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	variance, err := h.projects.EcartTemps(r.Context(), id)
	if err != nil {
		writeDomainErr(w, h.log, err, "ecart temps")
		return
	}
	writeJSON(w, http.StatusOK, variance)
}

// parseDateRange parses two validated dates. It writes the 400 itself and returns false on failure.
func parseDateRange(w http.ResponseWriter, debut, echeance string) (time.Time, time.Time, bool) {
	d, err := parseDate(debut)
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "date_debut: must be a date formatted "+DateLayout)
		return time.Time{}, time.Time{}, false
	}
	e, err := parseDate(echeance)
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidation, "date_echeance: must be a date formatted "+DateLayout)
		return time.Time{}, time.Time{}, false
	}
	return d, e, true
}
