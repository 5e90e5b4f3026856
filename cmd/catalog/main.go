package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductLogs/internal/catalog"
	"ProductLogs/internal/config"
	"ProductLogs/internal/events"
	"ProductLogs/internal/logsink"
	"ProductLogs/pkg/kit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	stdLog, err := kit.NewLogger(kit.LogConfig{Service: cfg.Service, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = stdLog.Sync() }()

	log := stdLog
	var onShutdown []func(context.Context) error

	if len(cfg.ElasticsearchURLs) > 0 {
		sink, err := logsink.NewElastic(logsink.ElasticConfig{
			Addresses:     cfg.ElasticsearchURLs,
			IndexPrefix:   cfg.ElasticsearchIndex,
			FlushInterval: cfg.ElasticsearchFlushInterval,
		}, stdLog)
		if err != nil {
			return err
		}
		if log, err = kit.NewLogger(kit.LogConfig{Service: cfg.Service, Level: cfg.LogLevel, Sink: sink}); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		onShutdown = append(onShutdown, sink.Close)
		stdLog.Info("shipping logs to elasticsearch",
			zap.Strings("addresses", cfg.ElasticsearchURLs),
			zap.String("index", cfg.ElasticsearchIndex),
		)
	}
	defer func() { _ = log.Sync() }()

	s := &catalog.Server{
		Store: catalog.NewStore(),
		Log:   log,
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Service)
		if err != nil {
			return err
		}
		s.Events = pub
		onShutdown = append(onShutdown, func(context.Context) error { return pub.Close() })
		log.Info("publishing product events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	if cfg.RateLimitPerMin > 0 {
		s.Limiter = kit.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.Metrics = catalog.NewStoreMetrics(reg, s.Store)

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        cfg.Service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		DocsEnabled:    cfg.DocsEnabled,
	})

	err = kit.RunHTTPServer(context.Background(), kit.ServerConfig{
		Addr:            cfg.Addr(),
		ShutdownTimeout: cfg.ShutdownTimeout,
		OnShutdown:      onShutdown,
	}, h, log)
	if err != nil {
		stdLog.Error("http server stopped", zap.Error(err))
		return err
	}
	stdLog.Info("http server stopped")
	return nil
}
