package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
	"github.com/amirhosseinghanipour/gestproj/internal/application/project"
	"github.com/amirhosseinghanipour/gestproj/internal/application/user"
	"github.com/amirhosseinghanipour/gestproj/internal/config"
	httprouter "github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/http/middleware"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/lockout"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/persistence/memory"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/persistence/postgres"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/queue"
	"github.com/amirhosseinghanipour/gestproj/internal/infrastructure/webhook"
)

type storage struct {
	projects ports.ProjectRepository
	users    ports.UserRepository
	tx       ports.Transactor
	db       handlers.Pinger
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &storage{
			projects: memory.NewProjectRepository(),
			users:    memory.NewUserRepository(),
			tx:       memory.NewTxManager(),
			close:    func() {},
		}, nil
	}
	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("schema applied")
	}
	return &storage{
		projects: postgres.NewProjectRepository(pool),
		users:    postgres.NewUserRepository(pool),
		tx:       postgres.NewTxManager(pool),
		db:       pool,
		close:    pool.Close,
	}, nil
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = log.Level(cfg.LogLevel())

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer store.close()

	var redisClient *redis.Client
	var asynqOpt asynq.RedisClientOpt
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
		asynqOpt = asynq.RedisClientOpt{Addr: opt.Addr, Username: opt.Username, Password: opt.Password, DB: opt.DB, TLSConfig: opt.TLSConfig}
	}

	var sink ports.EventEmitter = webhook.NewNoopEmitter()
	if cfg.Webhook.URL != "" {
		sink = webhook.NewHTTPEmitter(cfg.Webhook.URL, webhook.WithSecret(cfg.Webhook.Secret))
		log.Info().Str("url", cfg.Webhook.URL).Msg("webhook delivery enabled")
	}

	emitter := sink
	var worker *queue.Worker
	var scheduler *queue.Scheduler
	if redisClient != nil {
		enq := queue.NewAsynqEnqueuer(asynqOpt, log)
		defer enq.Close()
		emitter = queue.NewEmitter(enq)

		worker = queue.NewWorker(asynqOpt, sink, store.projects, log)
		go func() {
			if err := worker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()

		if cfg.Overdue.Cron != "" {
			scheduler, err = queue.NewScheduler(asynqOpt, cfg.Overdue.Cron, log)
			if err != nil {
				log.Fatal().Err(err).Msg("create scheduler")
			}
			if err := scheduler.Start(); err != nil {
				log.Fatal().Err(err).Msg("start scheduler")
			}
		}
	}

	projectSvc := project.NewService(store.projects, store.tx, nil)
	userSvc := user.NewService(store.users, store.tx, nil)
	audit := handlers.NewAuditor(log, emitter)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP, middleware.WithRedisStore(redisClient))
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	actorLimit, err := middleware.NewActorRateLimiter(cfg.RateLimit.RatePerActor, middleware.WithRedisStore(redisClient))
	if err != nil {
		log.Fatal().Err(err).Msg("create actor rate limiter")
	}
	var attempts ports.AttemptLimiter = lockout.NewMemoryStore(cfg.PasswordChange.MaxAttempts, cfg.PasswordChange.CooldownSecs)
	if redisClient != nil {
		attempts = lockout.NewRedisStore(redisClient, cfg.PasswordChange.MaxAttempts, cfg.PasswordChange.CooldownSecs, log)
	}
	if cfg.Permissions.Enforced {
		log.Info().Msg("role permissions enforced on mutations")
	}

	router := httprouter.NewRouter(httprouter.RouterConfig{
		HealthHandler:   handlers.NewHealthHandler(store.db, redisClient, cfg.Storage.Driver),
		ProjectsHandler: handlers.NewProjectsHandler(projectSvc, audit, log, nil),
		UsersHandler:    handlers.NewUsersHandler(userSvc, attempts, audit, log),
		Actors:          middleware.NewActorResolver(userSvc, cfg.Permissions.Enforced, log),
		Log:             log,
		APIVersion:      cfg.Server.APIVersion,
		Secure:          middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment)),
		CORS:            middleware.CORS(cfg.CORS.AllowedOrigins, nil, nil),
		IPRateLimit:     ipLimit,
		ActorRateLimit:  actorLimit,
		Metrics:         true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if scheduler != nil {
		scheduler.Shutdown()
	}
	if worker != nil {
		worker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
