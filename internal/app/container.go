package app

import (
	"context"
	"fmt"
	"time"

	"parttime-match/internal/config"
	"parttime-match/internal/database"
	"parttime-match/internal/database/migration"
	dbpostgres "parttime-match/internal/database/postgres"
	"parttime-match/internal/domain/matching"
	"parttime-match/internal/domain/user"
	"parttime-match/internal/infrastructure/cache"
	"parttime-match/internal/infrastructure/persistence/postgres"
	"parttime-match/internal/logger"
	"parttime-match/internal/pkg/jwt"
	"parttime-match/internal/repository"
	"parttime-match/internal/repository/memory"
	"parttime-match/internal/usecase"
	"parttime-match/internal/worker"
	"parttime-match/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Container owns every long-lived dependency of the service. The storage
// driver decides whether repositories are Postgres-backed or in memory.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Redis  *cache.Redis
	JWT    jwt.Service

	Users        user.Repository
	Seekers      repository.SeekerRepository
	Shops        repository.ShopRepository
	Posts        repository.PostRepository
	Matches      repository.MatchRepository
	Applications repository.ApplicationRepository
	storePinger  usecase.Pinger
	closeUsers   func() error

	Engine      *matching.Engine
	Hub         *ws.Hub
	Dispatcher  *worker.Dispatcher
	Broadcaster *worker.Broadcaster
	Sweeper     *worker.Sweeper
	Subscriber  *worker.Subscriber

	Recompute       *usecase.Recompute
	Recommendations *usecase.Recommendation
	MatchStatus     *usecase.MatchStatus
	Profiles        *usecase.Profile
	Apps            *usecase.Application
	Auth            *usecase.Auth
	UserUC          *usecase.User
	Health          *usecase.Health
}

func NewContainer(ctx context.Context, cfg config.Config, log *zap.Logger) (*Container, error) {
	log = logger.OrNop(log)
	c := &Container{Config: cfg, Logger: log}

	if err := c.openStorage(ctx); err != nil {
		return nil, err
	}

	params, err := matching.LoadParams(cfg.Matching.WeightsFile)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("load scoring weights: %w", err)
	}
	if cfg.Matching.RadiusKm > 0 {
		params.RadiusKm = cfg.Matching.RadiusKm
	}
	c.Engine, err = matching.NewEngine(params)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("scoring engine: %w", err)
	}

	c.Redis = cache.NewRedis(ctx, cfg.Redis.URL, log)
	c.JWT = jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	c.Hub = ws.NewHub(log)
	notifier := ws.NewNotifier(c.Hub)

	c.Recompute = usecase.NewRecomputeUsecase(c.Seekers, c.Posts, c.Matches, c.Engine, notifier, usecase.RecomputeParams{
		Workers:     cfg.Matching.Workers,
		PairTimeout: cfg.Matching.PairTimeout,
		PageSize:    cfg.Matching.BatchSize,
	}, log)

	c.Dispatcher = worker.NewDispatcher(worker.RecomputeHandler(c.Recompute, log), c.Redis, worker.DispatcherParams{
		Workers:         cfg.Matching.Workers,
		InitialCapacity: cfg.Matching.QueueSize,
		LockTTL:         cfg.Redis.LockTTL,
	}, log)

	origin := uuid.NewString()
	c.Broadcaster = worker.NewBroadcaster(c.Dispatcher, c.Redis, origin, log)
	c.Subscriber = worker.NewSubscriber(c.Redis, c.Dispatcher, origin, log)
	c.Sweeper = worker.NewSweeper(c.Recompute, c.Dispatcher, c.Redis, worker.SweepParams{
		Spec: cfg.Matching.SweepSpec,
		RPS:  cfg.Matching.SweepRPS,
	}, log)

	c.Recommendations = usecase.NewRecommendationUsecase(c.Seekers, c.Posts, c.Matches)
	c.MatchStatus = usecase.NewMatchStatusUsecase(c.Posts, c.Matches, notifier, c.Broadcaster, log)
	c.Profiles = usecase.NewProfileUsecase(c.Seekers, c.Shops, c.Posts, c.Broadcaster)
	c.Apps = usecase.NewApplicationUsecase(c.Posts, c.Applications)
	c.Auth = usecase.NewAuthUsecase(c.Users, c.JWT)
	c.UserUC = usecase.NewUserUsecase(c.Users)

	var redisPinger usecase.Pinger
	if c.Redis.Available() {
		redisPinger = c.Redis
	}
	c.Health = usecase.NewHealthUsecase(c.storePinger, redisPinger, c.Dispatcher)

	return c, nil
}

func (c *Container) openStorage(ctx context.Context) error {
	switch c.Config.Database.Driver {
	case config.DriverMemory:
		store := memory.New()
		c.Users, c.Seekers, c.Shops, c.Posts, c.Matches, c.Applications = store, store, store, store, store, store
		c.storePinger = store
		c.Logger.Warn("using in-memory storage, data is lost on exit")
		return nil

	case config.DriverPostgres:
		connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := dbpostgres.Connect(connCtx, c.Config.Database, c.Logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.DB = db
		c.storePinger = db

		// Prepared statements need the schema in place.
		if err := migrate(ctx, db, c.Config.Database, c.Logger); err != nil {
			_ = db.Close()
			return err
		}

		users, err := postgres.NewUserRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("prepare user repository: %w", err)
		}
		c.Users = users
		c.closeUsers = users.Close
		c.Seekers = repository.NewPostgresSeekerRepository(db)
		c.Shops = repository.NewPostgresShopRepository(db)
		c.Posts = repository.NewPostgresPostRepository(db)
		c.Matches = repository.NewPostgresMatchRepository(db)
		c.Applications = repository.NewPostgresApplicationRepository(db)
		return nil
	}
	return fmt.Errorf("unsupported storage driver %q", c.Config.Database.Driver)
}

// RunMigrations connects, applies pending migrations and disconnects. The
// memory driver has no schema.
func RunMigrations(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need STORAGE_DRIVER=%s", config.DriverPostgres)
	}
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connCtx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	return migrate(ctx, db, cfg.Database, log)
}

func migrate(ctx context.Context, db database.DB, cfg config.DatabaseConfig, log *zap.Logger) error {
	r := migration.Runner{Dir: cfg.MigrationsDir, Logger: log}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.closeUsers != nil {
		_ = c.closeUsers()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
