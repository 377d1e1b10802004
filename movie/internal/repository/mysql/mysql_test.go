package mysql

import (
	"context"
	"os"
	"strings"
	"testing"

	"topmovies/movie/configs"
	"topmovies/movie/internal/repository/repositorytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDSN(t *testing.T) {
	dsn := DSN(configs.MysqlConfig{
		Host: "db",
		Port: 3306,
		User: "movie",
		Pass: "secret",
		Name: "movies",
	})
	assert.True(t, strings.HasPrefix(dsn, "movie:secret@tcp(db:3306)/movies?"), dsn)
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "multiStatements=true")
}

// skipIfNoMySQL skips the test unless MYSQL_TEST_DSN points at a scratch database.
func skipIfNoMySQL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping: MYSQL_TEST_DSN not set")
	}
	return dsn
}

func TestRepository(t *testing.T) {
	dsn := skipIfNoMySQL(t)
	repositorytest.Run(t, func(t *testing.T) repositorytest.Repository {
		r, err := Open(dsn, zap.NewNop())
		require.NoError(t, err)
		_, err = r.DB().ExecContext(context.Background(), "DELETE FROM movies")
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })
		return r
	})
}
