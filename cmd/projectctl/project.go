package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/domain"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/handlers"
)

func newProjectCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create, list and copy projects",
	}
	cmd.AddCommand(
		newProjectCreateCmd(get),
		newProjectListCmd(get),
		newProjectDuplicateCmd(get),
		newProjectFromTemplateCmd(get),
		newProjectProgressCmd(get),
	)
	return cmd
}

func parseDates(debut, echeance string) (time.Time, time.Time, error) {
	d, err := time.Parse(time.DateOnly, debut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	e, err := time.Parse(time.DateOnly, echeance)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--due: %w", err)
	}
	return d, e, nil
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func (a *app) printProject(p *domain.Project) error {
	return a.print(handlers.NewProjectResponse(p, a.now()))
}

func (a *app) printProjects(projects []*domain.Project) error {
	items := make([]handlers.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, handlers.NewProjectResponse(p, a.now()))
	}
	return a.print(handlers.ProjectListResponse{Projects: items, Total: len(items)})
}

func (a *app) emit(cmd *cobra.Command, eventType string, entityID int64, data map[string]any) {
	a.emitEvent(cmd, ports.DomainEvent{Type: eventType, EntityID: entityID, Data: data})
}

func newProjectCreateCmd(get func() *app) *cobra.Command {
	var (
		numero, nom, description, typ, stade, commentaire string
		debut, echeance                                   string
		planned, actual                                   float64
		template                                          bool
		responsable, entreprise, contact                  int64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Example: `  projectctl project create --numero P-1 --nom Alpha --type INTERNAL \
    --start 2025-01-01 --due 2025-01-31 --planned 100 --responsable 1 --entreprise 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			pt, err := domain.ParseProjectType(typ)
			if err != nil {
				return err
			}
			d, e, err := parseDates(debut, echeance)
			if err != nil {
				return err
			}
			p, err := a.projects.CreateProject(cmd.Context(), domain.ProjectAttrs{
				Numero:           numero,
				Nom:              nom,
				Description:      description,
				Type:             pt,
				Stade:            stade,
				Commentaire:      commentaire,
				DateDebut:        d,
				DateEcheance:     e,
				HeuresPlanifiees: planned,
				HeuresReelles:    actual,
				EstTemplate:      template,
				ResponsableID:    responsable,
				EntrepriseID:     entreprise,
				ContactID:        optionalID(contact),
			})
			if err != nil {
				return err
			}
			a.emit(cmd, ports.EventProjectCreated, p.ID, map[string]any{"numero": p.Numero, "nom": p.Nom})
			return a.printProject(p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&numero, "numero", "", "project number (unique)")
	f.StringVar(&nom, "nom", "", "project name (unique)")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&typ, "type", string(domain.ProjectTypeInternal), "INTERNAL, EXTERNAL, MAINTENANCE or DEVELOPMENT")
	f.StringVar(&stade, "stade", "", "stage")
	f.StringVar(&commentaire, "commentaire", "", "comment")
	f.StringVar(&debut, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&echeance, "due", "", "due date (YYYY-MM-DD)")
	f.Float64Var(&planned, "planned", 0, "planned hours")
	f.Float64Var(&actual, "actual", 0, "actual hours")
	f.BoolVar(&template, "template", false, "create as a template")
	f.Int64Var(&responsable, "responsable", 0, "responsible user id")
	f.Int64Var(&entreprise, "entreprise", 0, "company id")
	f.Int64Var(&contact, "contact", 0, "contact id (optional)")
	for _, name := range []string{"numero", "nom", "start", "due", "responsable", "entreprise"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newProjectListCmd(get func() *app) *cobra.Command {
	var (
		offset, limit                    int
		templates                        bool
		templateID, responsable, company int64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, templates, or the projects of one owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ctx := cmd.Context()
			var (
				projects []*domain.Project
				err      error
			)
			switch {
			case templates:
				projects, err = a.projects.ListTemplates(ctx)
			case templateID > 0:
				projects, err = a.projects.ListFromTemplate(ctx, templateID)
			case responsable > 0:
				projects, err = a.projects.ListByResponsable(ctx, responsable)
			case company > 0:
				projects, err = a.projects.ListByEntreprise(ctx, company)
			default:
				projects, err = a.projects.ListProjects(ctx, offset, limit)
			}
			if err != nil {
				return err
			}
			return a.printProjects(projects)
		},
	}
	f := cmd.Flags()
	f.IntVar(&offset, "offset", 0, "rows to skip")
	f.IntVar(&limit, "limit", 100, "rows to return")
	f.BoolVar(&templates, "templates", false, "list templates only")
	f.Int64Var(&templateID, "from-template", 0, "list projects created from this template")
	f.Int64Var(&responsable, "responsable", 0, "list projects of this responsible user")
	f.Int64Var(&company, "entreprise", 0, "list projects of this company")
	cmd.MarkFlagsMutuallyExclusive("templates", "from-template", "responsable", "entreprise")
	return cmd
}

func newProjectDuplicateCmd(get func() *app) *cobra.Command {
	var numero, nom, debut, echeance string
	cmd := &cobra.Command{
		Use:   "duplicate <source-id>",
		Short: "Copy a project under a new numero, nom and window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, e, err := parseDates(debut, echeance)
			if err != nil {
				return err
			}
			p, err := a.projects.DuplicateProject(cmd.Context(), ports.DuplicateProjectInput{
				SourceID:     id,
				Numero:       numero,
				Nom:          nom,
				DateDebut:    d,
				DateEcheance: e,
			})
			if err != nil {
				return err
			}
			a.emit(cmd, ports.EventProjectDuplicated, p.ID, map[string]any{"source_id": id})
			return a.printProject(p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&numero, "numero", "", "new project number")
	f.StringVar(&nom, "nom", "", "new project name")
	f.StringVar(&debut, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&echeance, "due", "", "due date (YYYY-MM-DD)")
	for _, name := range []string{"numero", "nom", "start", "due"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newProjectFromTemplateCmd(get func() *app) *cobra.Command {
	var (
		numero, nom, debut, echeance     string
		responsable, entreprise, contact int64
		save                             bool
	)
	cmd := &cobra.Command{
		Use:   "from-template <template-id>",
		Short: "Instantiate a template (use --save to first flag the project as a template)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if save {
				if _, err := a.projects.SaveAsTemplate(cmd.Context(), id); err != nil {
					return err
				}
				a.emit(cmd, ports.EventProjectTemplated, id, nil)
			}
			d, e, err := parseDates(debut, echeance)
			if err != nil {
				return err
			}
			p, err := a.projects.CreateFromTemplate(cmd.Context(), ports.CreateFromTemplateInput{
				TemplateID:    id,
				Numero:        numero,
				Nom:           nom,
				DateDebut:     d,
				DateEcheance:  e,
				ResponsableID: responsable,
				EntrepriseID:  entreprise,
				ContactID:     optionalID(contact),
			})
			if err != nil {
				return err
			}
			a.emit(cmd, ports.EventProjectInstantiated, p.ID, map[string]any{"template_id": id})
			return a.printProject(p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&numero, "numero", "", "project number")
	f.StringVar(&nom, "nom", "", "project name")
	f.StringVar(&debut, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&echeance, "due", "", "due date (YYYY-MM-DD)")
	f.Int64Var(&responsable, "responsable", 0, "responsible user id")
	f.Int64Var(&entreprise, "entreprise", 0, "company id")
	f.Int64Var(&contact, "contact", 0, "contact id (optional)")
	f.BoolVar(&save, "save", false, "flag the source project as a template first")
	for _, name := range []string{"numero", "nom", "start", "due", "responsable", "entreprise"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newProjectProgressCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id>",
		Short: "Show avancement and time variance of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			progress, err := a.projects.Avancement(cmd.Context(), id)
			if err != nil {
				return err
			}
			variance, err := a.projects.EcartTemps(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(map[string]any{"avancement": progress, "ecart": variance})
		},
	}
}
