package container

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/config"
	"github.com/oksasatya/blood-donor-registry/internal/application"
	repo "github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/internal/infrastructure/cache"
	"github.com/oksasatya/blood-donor-registry/internal/infrastructure/memory"
	"github.com/oksasatya/blood-donor-registry/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/blood-donor-registry/internal/infrastructure/postgres"
	"github.com/oksasatya/blood-donor-registry/internal/infrastructure/search"
	"github.com/oksasatya/blood-donor-registry/pkg/helpers"
	"github.com/oksasatya/blood-donor-registry/pkg/metrics"
)

// Container holds the components built at startup. It is constructed once
// in main and handed to the router; nothing in it is global.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
	JWT     *helpers.JWTManager

	// Optional infrastructure; nil when disabled by config.
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher

	Users  repo.UserRepository
	Donors repo.DonorRepository
	Tx     repo.Transactor

	AuthSvc    *application.AuthService
	ProfileSvc *application.ProfileService
	DonorSvc   *application.DonorService

	closers []func()
}

// Stores groups the repositories of one backing store.
type Stores struct {
	Users  repo.UserRepository
	Donors repo.DonorRepository
	Tx     repo.Transactor
}

// New connects the store selected by cfg.StoreDriver and the optional
// side-effect backends, then builds the services. Optional backends that
// cannot be reached are logged and left disabled.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Metrics: metrics.New()}

	stores, err := c.openStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	hooks := application.Hooks{
		Cache:    c.openCache(ctx),
		Indexer:  c.openIndexer(ctx),
		Notifier: c.openNotifier(),
	}
	c.wire(stores, hooks)
	return c, nil
}

// NewWithStores builds a container over already constructed stores and
// hooks, without touching any network backend.
func NewWithStores(cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics, stores Stores, hooks application.Hooks) *Container {
	c := &Container{Config: cfg, Logger: logger, Metrics: m}
	c.wire(stores, hooks)
	return c
}

// NewInMemory builds a self-contained container on the memory store.
func NewInMemory(cfg *config.Config, logger *logrus.Logger) *Container {
	st := memory.NewStore()
	return NewWithStores(cfg, logger, metrics.New(), Stores{Users: st.Users(), Donors: st.Donors(), Tx: st}, application.Hooks{})
}

func (c *Container) wire(stores Stores, hooks application.Hooks) {
	c.Users, c.Donors, c.Tx = stores.Users, stores.Donors, stores.Tx
	c.JWT = helpers.NewJWTManager(c.Config.JWTSecret, c.Config.TokenTTL)
	c.AuthSvc = application.NewAuthService(c.Users, c.Donors, c.Tx, c.JWT, hooks, c.Logger, c.Metrics)
	c.ProfileSvc = application.NewProfileService(c.Users, c.Donors, c.Tx, hooks, c.Logger, c.Metrics)
	c.DonorSvc = application.NewDonorService(c.Donors, hooks.Cache, c.Logger, c.Metrics)
}

func (c *Container) openStore(ctx context.Context) (Stores, error) {
	switch c.Config.StoreDriver {
	case config.StoreMemory:
		c.Logger.Warn("using in-memory store; data is lost on restart")
		st := memory.NewStore()
		return Stores{Users: st.Users(), Donors: st.Donors(), Tx: st}, nil
	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         c.Config.PostgresDSN(),
			MaxConns:    c.Config.DBMaxConns,
			MinConns:    c.Config.DBMinConns,
			MaxConnLife: c.Config.DBMaxConnLife,
		})
		if err != nil {
			return Stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		c.Pool = pool
		c.closers = append(c.closers, pool.Close)
		return Stores{
			Users:  pginfra.NewUserRepository(pool),
			Donors: pginfra.NewDonorRepository(pool),
			Tx:     pginfra.NewTransactor(pool),
		}, nil
	default:
		return Stores{}, fmt.Errorf("unknown store driver %q", c.Config.StoreDriver)
	}
}

func (c *Container) openCache(ctx context.Context) application.SearchCache {
	if c.Config.RedisAddr == "" {
		return nil
	}
	rdb := helpers.NewRedisClient(helpers.RedisOptions{
		Addr:     c.Config.RedisAddr,
		Password: c.Config.RedisPassword,
		DB:       c.Config.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		helpers.LogWarn(c.Logger, "redis unavailable, donor search cache disabled", err, logrus.Fields{"addr": c.Config.RedisAddr})
		_ = rdb.Close()
		return nil
	}
	c.Redis = rdb
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return cache.NewDonorSearchCache(rdb, c.Config.DonorCacheTTL)
}

func (c *Container) openIndexer(ctx context.Context) application.DonorIndexer {
	addrs := c.Config.ESAddrs()
	if len(addrs) == 0 {
		return nil
	}
	es, err := helpers.NewESClient(helpers.ESOptions{
		Addrs:    addrs,
		Username: c.Config.ElasticsearchUser,
		Password: c.Config.ElasticsearchPass,
	})
	if err != nil {
		helpers.LogWarn(c.Logger, "elasticsearch client init failed, donor index disabled", err, nil)
		return nil
	}
	idx := search.NewDonorIndexer(es, c.Config.ESDonorsIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		// documents can still be indexed once the cluster is back
		helpers.LogWarn(c.Logger, "ensure donor index failed", err, logrus.Fields{"index": c.Config.ESDonorsIndex})
	}
	c.ES = es
	return idx
}

func (c *Container) openNotifier() application.Notifier {
	if !c.Config.MailSendEnabled {
		return nil
	}
	pub, err := helpers.NewRabbitPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQEmailQueue)
	if err != nil {
		helpers.LogWarn(c.Logger, "rabbitmq unavailable, account emails disabled", err, logrus.Fields{"queue": c.Config.RabbitMQEmailQueue})
		return nil
	}
	c.Rabbit = pub
	c.closers = append(c.closers, pub.Close)
	return notify.NewEmailNotifier(pub, c.Config)
}

// Close releases connections in reverse order of opening.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
