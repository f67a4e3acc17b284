// Package container builds the application's infrastructure and services once at
// startup and hands them to the router and binaries explicitly.
package container

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blogilista/config"
	"github.com/oksasatya/blogilista/internal/application"
	repo "github.com/oksasatya/blogilista/internal/domain/repository"
	pginfra "github.com/oksasatya/blogilista/internal/infrastructure/postgres"
	"github.com/oksasatya/blogilista/internal/infrastructure/search"
	"github.com/oksasatya/blogilista/pkg/helpers"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool      *pgxpool.Pool
	DB        *sql.DB
	Redis     *redis.Client            // nil when REDIS_ADDR is empty
	ES        *elasticsearch.Client    // nil when search is not configured
	Publisher *helpers.RabbitPublisher // nil when events are disabled

	JWT    *helpers.JWTManager
	Hasher *helpers.PasswordHasher

	UserRepo repo.UserRepository
	BlogRepo repo.BlogRepository
	Users    *application.UserService
	Blogs    *application.BlogService

	closers []func()
}

// New connects every configured backend, applies migrations and builds the services.
// Optional backends that fail to connect are logged and left disabled.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.Pool = pool
	c.closers = append(c.closers, pool.Close)

	if err := pginfra.RunMigrations(pginfra.OpenDB(pool), cfg.MigrationsDir, logger); err != nil {
		c.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	c.DB = pginfra.OpenDB(pool)
	c.closers = append(c.closers, func() { _ = c.DB.Close() })

	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, rate limiting disabled")
	} else if rdb != nil {
		c.Redis = rdb
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable, search disabled")
	}
	c.ES = es

	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, events disabled")
		} else {
			c.Publisher = pub
			c.closers = append(c.closers, pub.Close)
		}
	}

	c.JWT = helpers.NewJWTManager(cfg.Secret, cfg.TokenTTL)
	c.Hasher = helpers.NewPasswordHasher(cfg.BcryptCost)

	var index repo.BlogIndex
	if c.ES != nil {
		index = search.NewBlogIndex(c.ES, cfg.ESBlogsIndex)
	}
	var events repo.EventPublisher
	if c.Publisher != nil {
		events = c.Publisher
	}
	c.Wire(pginfra.NewUserRepository(c.DB), pginfra.NewBlogRepository(c.DB), index, events)
	return c, nil
}

// Wire builds the application services on the given repositories.
// index and events may be nil.
func (c *Container) Wire(users repo.UserRepository, blogs repo.BlogRepository, index repo.BlogIndex, events repo.EventPublisher) {
	if c.JWT == nil {
		c.JWT = helpers.NewJWTManager(c.Config.Secret, c.Config.TokenTTL)
	}
	if c.Hasher == nil {
		c.Hasher = helpers.NewPasswordHasher(c.Config.BcryptCost)
	}
	c.UserRepo, c.BlogRepo = users, blogs
	c.Users = application.NewUserService(users, blogs, c.Hasher, c.JWT, events, c.Logger)
	c.Blogs = application.NewBlogService(blogs, users, index, events, c.Logger)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
