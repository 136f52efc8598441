package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"truthchain/internal/api"
	"truthchain/internal/attest"
	"truthchain/internal/config"
	"truthchain/internal/feed"
	"truthchain/internal/identity"
	"truthchain/internal/ledger/provider"
	"truthchain/internal/lexical"
	"truthchain/internal/notify"
	"truthchain/internal/observability/metrics"
	"truthchain/internal/sentiment"
	"truthchain/internal/session"
	"truthchain/internal/verdict"
	"truthchain/pkg/logger"
)

// main is the entry point of the truthchain daemon.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("truthchaind failed: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("TRUTHCHAIN_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "truthchain.json")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
		Audit: logger.AuditConfig{
			Enabled: cfg.Logging.AuditPath != "",
			Path:    cfg.Logging.AuditPath,
		},
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Assemble the scoring pipeline.
	vocab := lexical.DefaultVocabulary()
	if cfg.Analysis.VocabularyPath != "" {
		vocab, err = lexical.LoadVocabulary(cfg.Analysis.VocabularyPath)
		if err != nil {
			return err
		}
	}
	extractor := lexical.NewExtractor(vocab, sentiment.NewAFINNAnalyzer())
	engine := verdict.NewEngine()

	var seed []feed.Entry
	if cfg.Feed.SeedEnabled() {
		seed = feed.SeedEntries()
	}

	var feedStore feed.Store
	switch cfg.Feed.Driver {
	case "", "memory":
		feedStore = feed.NewMemoryStore(cfg.Feed.Capacity, seed)
	case "redis":
		store, err := feed.NewRedisStore(feed.RedisStoreConfig{
			Address:  cfg.Feed.Redis.Address,
			Password: cfg.Feed.Redis.Password,
			DB:       cfg.Feed.Redis.DB,
			Key:      cfg.Feed.Redis.Key,
			Capacity: cfg.Feed.Capacity,
		}, seed)
		if err != nil {
			return err
		}
		feedStore = store
	default:
		return fmt.Errorf("unknown feed driver: %s", cfg.Feed.Driver)
	}
	defer func() {
		_ = feedStore.Close()
	}()

	var publisher feed.Publisher
	switch cfg.Feed.Publisher.Driver {
	case "", "none":
		publisher = feed.NopPublisher{}
	case "rabbitmq":
		pub, err := feed.NewRabbitMQPublisher(feed.RabbitMQConfig{
			URL:        cfg.Feed.Publisher.RabbitMQ.URL,
			Exchange:   cfg.Feed.Publisher.RabbitMQ.Exchange,
			Durable:    cfg.Feed.Publisher.RabbitMQ.Durable,
			AutoDelete: cfg.Feed.Publisher.RabbitMQ.AutoDelete,
		})
		if err != nil {
			return err
		}
		publisher = pub
		defer func() {
			_ = pub.Close()
		}()
	default:
		return fmt.Errorf("unknown feed publisher driver: %s", cfg.Feed.Publisher.Driver)
	}

	var recordStore attest.Store
	switch cfg.Attestation.Store.Driver {
	case "", "memory":
		recordStore = attest.NewMemoryStore()
	case "mysql":
		store, err := attest.NewMySQLStore(cfg.Attestation.Store.DSN)
		if err != nil {
			return err
		}
		recordStore = store
	default:
		return fmt.Errorf("unknown attestation store driver: %s", cfg.Attestation.Store.Driver)
	}
	defer func() {
		_ = recordStore.Close()
	}()

	chainRegistry, err := provider.NewRegistry(ctx, cfg.Ledger)
	if err != nil {
		return err
	}
	defer chainRegistry.Close()

	ledgerClient, err := chainRegistry.DefaultClient()
	if err != nil {
		return err
	}

	idProvider, err := identity.NewLocalKeyProvider(identity.LocalKeyConfig{
		PrivateKeyEnv: cfg.Identity.PrivateKeyEnv,
		KeyFile:       cfg.Identity.KeyFile,
		ChainID:       cfg.Identity.ChainID,
	})
	if err != nil {
		return err
	}

	submitter := attest.NewSubmitter(ledgerClient, recordStore, feedStore,
		attest.WithPublisher(publisher),
		attest.WithConfirmTimeout(cfg.Attestation.ConfirmTimeout()),
	)

	sessions := session.NewManager(ctx, extractor, engine, submitter, idProvider,
		session.WithAnalysisDelay(cfg.Analysis.Delay()),
		session.WithNoticeDispatcher(notify.NewFanout(notify.NewLogNotifier(logger.Named("notify")))),
	)

	if cfg.Server.MetricsAddress != "" {
		go func() {
			if err := metrics.StartServer(ctx, cfg.Server.MetricsAddress); err != nil && !errors.Is(err, context.Canceled) {
				logger.L().Error("metrics server exited", "error", err)
			}
		}()
	}

	logger.L().Info("truthchaind starting",
		"address", cfg.Server.Address,
		"feed_driver", cfg.Feed.Driver,
		"store_driver", cfg.Attestation.Store.Driver,
		"chains", chainRegistry.Chains(),
	)

	server := api.NewServer(cfg.Server.Address, sessions, feedStore, recordStore, submitter)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
