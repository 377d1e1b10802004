package main

import (
	"fmt"
	"strings"
	"sync"

	"topmovies/movie/configs"
	"topmovies/movie/internal/controller/movie"
	metadatagateway "topmovies/movie/internal/gateway/metadata/http"
	"topmovies/movie/internal/repository/sqlite"
	"topmovies/pkg/logging"

	"go.uber.org/zap"
)

type commandContext struct {
	configFlag *string
	dbFlag     *string

	configOnce sync.Once
	config     *configs.ServiceConfig
	configErr  error
}

func newCommandContext(configFlag, dbFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		dbFlag:     dbFlag,
	}
}

func (c *commandContext) ensureConfig() (*configs.ServiceConfig, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := configs.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
			cfg.DatabaseConfig.Sqlite.Path = strings.TrimSpace(*c.dbFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withController opens the local database and the catalog gateway for the
// duration of fn.
func (c *commandContext) withController(fn func(*movie.Controller) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	// Informational service logs would clutter command output.
	level := cfg.Log.Level
	if level == "" || level == "info" {
		level = "warn"
	}
	logger, err := logging.New(level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	repo, err := sqlite.New(cfg.DatabaseConfig.Sqlite.Path, logger)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DatabaseConfig.Sqlite.Path, err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	gw := metadatagateway.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, logger,
		metadatagateway.WithLanguage(cfg.Catalog.Language),
		metadatagateway.WithTimeout(cfg.Catalog.Timeout),
	)
	return fn(movie.New(repo, gw, nil, cfg.Catalog.ImageBaseURL, logger))
}
