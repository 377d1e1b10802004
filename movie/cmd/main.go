package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"topmovies/movie/configs"
	"topmovies/movie/internal/controller/movie"
	metadatagateway "topmovies/movie/internal/gateway/metadata/http"
	moviehttphandler "topmovies/movie/internal/handler/http"
	"topmovies/movie/internal/publisher/kafka"
	"topmovies/movie/internal/repository"
	"topmovies/movie/internal/repository/memory"
	"topmovies/movie/internal/repository/mysql"
	"topmovies/movie/internal/repository/sqlite"
	"topmovies/pkg/discovery"
	"topmovies/pkg/discovery/consul"
	"topmovies/pkg/dns"
	"topmovies/pkg/limiter"
	"topmovies/pkg/logging"
	"topmovies/pkg/metrics"
	"topmovies/pkg/tracing"

	"go.uber.org/zap"
)

const serviceName = "movie"

func main() {
	configPath := flag.String("config", "defaults.yaml", "path to the service configuration")
	flag.Parse()

	cfg, err := configs.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	log = log.With(zap.String(logging.FieldService, serviceName))
	defer func() { _ = log.Sync() }()

	log.Info("Starting the service", zap.Int(logging.FieldPort, cfg.API.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.NewProvider(ctx, cfg.Tracing.URL, serviceName)
	if err != nil {
		log.Fatal("Failed to initialize tracing provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shutdown tracing provider", zap.Error(err))
		}
	}()
	tracing.Install(tp)

	repo, closeRepo, err := openRepository(cfg.DatabaseConfig, log)
	if err != nil {
		log.Fatal("Failed to open movie repository", zap.Error(err))
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Warn("Failed to close movie repository", zap.Error(err))
		}
	}()

	if cfg.Catalog.APIKey == "" {
		log.Warn("No catalog credential configured, set " + configs.APIKeyEnv)
	}
	metadataGateway := metadatagateway.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, log,
		metadatagateway.WithLanguage(cfg.Catalog.Language),
		metadatagateway.WithTimeout(cfg.Catalog.Timeout),
	)

	var svc *movie.Controller
	if addr := cfg.MessengerConfig.Kafka.Address; addr != "" {
		publisher, err := kafka.NewPublisher(addr, cfg.MessengerConfig.Kafka.Topic, log)
		if err != nil {
			log.Fatal("Failed to create rating event publisher", zap.Error(err))
		}
		defer publisher.Close()
		svc = movie.New(repo, metadataGateway, publisher, cfg.Catalog.ImageBaseURL, log)
	} else {
		svc = movie.New(repo, metadataGateway, nil, cfg.Catalog.ImageBaseURL, log)
	}

	reporter := metrics.NewReporter(serviceName)
	defer func() {
		if err := reporter.Close(); err != nil {
			log.Warn("Failed to close Prometheus reporter scope", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	moviehttphandler.New(svc, log, reporter.Scope).Register(mux)
	l := limiter.New(log, cfg.Limiter.Limit, cfg.Limiter.Burst)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           l.Middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", reporter.Handler)
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Prometheus.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Serving metrics", zap.Int(logging.FieldPort, cfg.Prometheus.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("Metrics server stopped", zap.Error(err))
		}
	}()

	if addr := cfg.ServiceDiscovery.Consul.Address; addr != "" {
		registry, err := consul.NewRegistry(addr, log, consul.WithHTTPCheck("/healthz"))
		if err != nil {
			log.Fatal("Failed to create consul registry", zap.Error(err))
		}
		hostPort, err := dns.AdvertiseAddress("", cfg.API.Port)
		if err != nil {
			log.Fatal("Failed to resolve advertise address", zap.Error(err))
		}
		instanceID := discovery.GenerateInstanceID(serviceName)
		if err := registry.Register(ctx, instanceID, serviceName, hostPort); err != nil {
			log.Fatal("Failed to register service", zap.Error(err))
		}
		go discovery.Heartbeat(ctx, registry, instanceID, serviceName, time.Second, func(err error) {
			log.Warn("Failed to report healthy state", zap.Error(err))
		})
		defer func() {
			if err := registry.Deregister(context.Background(), instanceID, serviceName); err != nil {
				log.Warn("Failed to deregister service", zap.Error(err))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-sigChan
		cancel()
		log.Info("Got signal, attempting graceful shutdown", zap.Stringer(logging.FieldSignal, s))
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shutdown HTTP server", zap.Error(err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shutdown metrics server", zap.Error(err))
		}
		log.Info("Gracefully stopped the HTTP server")
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("HTTP server failed", zap.Error(err))
		signal.Stop(sigChan)
		return
	}
	wg.Wait()
}

func openRepository(cfg configs.DatabaseConfig, log *zap.Logger) (repository.Repository, func() error, error) {
	switch cfg.Driver {
	case configs.DriverMemory:
		return memory.New(log), func() error { return nil }, nil
	case configs.DriverMySQL:
		r, err := mysql.New(cfg.Mysql, log)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		r, err := sqlite.New(cfg.Sqlite.Path, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using sqlite database", zap.String("path", cfg.Sqlite.Path))
		return r, r.Close, nil
	}
}
