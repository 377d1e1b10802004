package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"

	"topmovies/movie/configs"
	"topmovies/movie/internal/repository/migrations"
	"topmovies/movie/internal/repository/sqlstore"

	driver "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// DSN builds a driver connection string from the configuration.
// Found rows are reported on update so that rewriting a review with
// identical values is not mistaken for a missing movie.
func DSN(config configs.MysqlConfig) string {
	c := driver.NewConfig()
	c.User = config.User
	c.Passwd = config.Pass
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	c.DBName = config.Name
	c.ClientFoundRows = true
	c.MultiStatements = true
	return c.FormatDSN()
}

// New connects to MySQL, applies migrations and returns a movie repository.
func New(config configs.MysqlConfig, logger *zap.Logger) (*sqlstore.Repository, error) {
	return Open(DSN(config), logger)
}

// Open connects to MySQL using a raw DSN. Options the repository depends on
// are forced on regardless of the DSN.
func Open(dsn string, logger *zap.Logger) (*sqlstore.Repository, error) {
	c, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	c.ClientFoundRows = true
	c.MultiStatements = true
	logger.Info("Connecting to mysql", zap.String("addr", c.Addr), zap.String("db", c.DBName))
	db, err := sql.Open("mysql", c.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql db: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqlstore.New(db, "mysql", logger), nil
}

func runMigrations(db *sql.DB) error {
	drv, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("init migrate driver: %w", err)
	}
	source, err := iofs.New(migrations.Files, "mysql")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "mysql", drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
