// Command projectctl runs project and user use cases directly against the configured storage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/application/project"
	"github.com/amirhosseinghanipour/gestproj/internal/application/user"
	"github.com/amirhosseinghanipour/gestproj/internal/config"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/persistence/memory"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/persistence/postgres"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/webhook"
)

var version = "dev"

// app is what every subcommand runs against. Tests build one over memory storage.
type app struct {
	projects    ports.ProjectUseCases
	users       ports.UserUseCases
	projectRepo ports.ProjectRepository
	emitter     ports.EventEmitter
	migrate     func(ctx context.Context) error
	out         io.Writer
	now         func() time.Time
	log         zerolog.Logger
	close       func()
}

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. With a nil app, storage is opened from config on first use.
func newRootCmd(a *app) *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:          "projectctl",
		Short:        "Manage projects, templates and users",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a != nil {
				return nil
			}
			if cfgFile != "" {
				if err := os.Setenv("CONFIG_FILE", cfgFile); err != nil {
					return err
				}
			}
			built, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			a = built
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil && a.close != nil {
				a.close()
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (overrides CONFIG_FILE)")

	get := func() *app { return a }
	root.AddCommand(newMigrateCmd(get), newProjectCmd(get), newUserCmd(get), newOverdueScanCmd(get))
	return root
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(cfg.LogLevel())

	var emitter ports.EventEmitter = webhook.NewNoopEmitter()
	if cfg.Webhook.URL != "" {
		emitter = webhook.NewHTTPEmitter(cfg.Webhook.URL, webhook.WithSecret(cfg.Webhook.Secret))
	}

	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn().Msg("memory storage: nothing outlives this command")
		return newApp(memory.NewProjectRepository(), memory.NewUserRepository(), memory.NewTxManager(), emitter, log), nil
	}
	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	a := newApp(postgres.NewProjectRepository(pool), postgres.NewUserRepository(pool), postgres.NewTxManager(pool), emitter, log)
	a.migrate = func(ctx context.Context) error { return postgres.Migrate(ctx, pool) }
	a.close = pool.Close
	return a, nil
}

func newApp(projects ports.ProjectRepository, users ports.UserRepository, tx ports.Transactor, emitter ports.EventEmitter, log zerolog.Logger) *app {
	return &app{
		projects:    project.NewService(projects, tx, nil),
		users:       user.NewService(users, tx, nil),
		projectRepo: projects,
		emitter:     emitter,
		out:         os.Stdout,
		now:         time.Now,
		log:         log,
	}
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emitEvent publishes event after a successful mutation. Delivery failures are logged, not returned.
func (a *app) emitEvent(cmd *cobra.Command, event ports.DomainEvent) {
	event.ID = uuid.NewString()
	event.OccurredAt = a.now().UTC()
	if err := a.emitter.Emit(cmd.Context(), event); err != nil {
		a.log.Warn().Err(err).Str("event", event.Type).Int64("entity_id", event.EntityID).Msg("event delivery failed")
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newMigrateCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if a.migrate == nil {
				return fmt.Errorf("migrate needs STORAGE_DRIVER=postgres")
			}
			if err := a.migrate(cmd.Context()); err != nil {
				return err
			}
			return a.print(map[string]string{"status": "migrated"})
		},
	}
}
