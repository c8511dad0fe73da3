package di

import (
	"context"
	"time"

	"chain-chat-relay/backend/internal/chat"
	"chain-chat-relay/backend/internal/ledger"
	"chain-chat-relay/backend/internal/ws"
	"chain-chat-relay/backend/pkg/cache"
	"chain-chat-relay/backend/pkg/config"
	"chain-chat-relay/backend/pkg/health"
	"chain-chat-relay/backend/pkg/logger"
	"chain-chat-relay/backend/pkg/resilience"
	"chain-chat-relay/backend/pkg/secrets"
	"chain-chat-relay/backend/shared/redis"
)

// Container holds all the dependencies for the application
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	LedgerClient *ledger.Client
	Enricher     *ledger.Enricher
	Hub          *ws.Hub
	Relay        *chat.Relay
	Health       *health.Checker
	Redis        *redis.RedisClient // nil unless configured
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	if cfg == nil {
		cfg = config.Get()
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	// The API key comes from the secrets manager when the environment
	// does not provide it directly.
	if cfg.Ledger.APIKey == "" {
		cfg.Ledger.APIKey = secrets.GetSecretWithDefault(context.Background(), "ledger_api_key", "")
	}

	ledgerClient := ledger.NewClient(cfg.LedgerEndpoint(), cfg.Ledger.RequestTimeout, log)

	breaker := resilience.New(resilience.Config{
		Name:             "ledger",
		FailureThreshold: cfg.Ledger.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Ledger.Breaker.SuccessThreshold,
		RetryTimeout:     cfg.Ledger.Breaker.RetryTimeout,
	}, log)
	reader := ledger.NewBreakerReader(ledgerClient, breaker)

	// Enrichment cache backend: redis when configured, otherwise an
	// in-process TTL cache.
	var (
		resultCache ledger.ResultCache
		redisClient *redis.RedisClient
	)
	switch {
	case cfg.Redis.Addr != "":
		redisClient = redis.NewRedisClient(cfg.Redis.Addr)
		resultCache = ledger.NewRedisCache(redisClient, cfg.Cache.TTL)
	case cfg.Cache.Enabled:
		resultCache = ledger.NewMemoryCache(cache.NewCache(cache.Options{
			DefaultExpiration: cfg.Cache.TTL,
			CleanupInterval:   cfg.Cache.PurgeWindow,
			MaxItems:          cfg.Cache.MaxSize,
		}))
	}

	enricher := ledger.NewEnricher(reader, resultCache, cfg.Ledger.LookupTimeout, log)

	// Hub and relay reference each other; the hub is the relay's
	// outbound sender.
	hub := ws.NewHub(log)
	relay := chat.NewRelay(ledger.ExtractTxIDs, enricher, hub, log)
	hub.SetRelay(relay)

	checker := health.NewChecker(log, 30*time.Second)
	checker.RegisterLedgerCheck(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := ledgerClient.BlockByNumber(ctx, "latest")
		return err
	})
	if redisClient != nil {
		checker.RegisterRedisCheck(redisClient.Ping)
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		LedgerClient: ledgerClient,
		Enricher:     enricher,
		Hub:          hub,
		Relay:        relay,
		Health:       checker,
		Redis:        redisClient,
	}, nil
}
