package testutil

import (
	"context"
	"fmt"
	"net/http"

	"topmovies/movie/internal/controller/movie"
	metadatagateway "topmovies/movie/internal/gateway/metadata/http"
	moviehttphandler "topmovies/movie/internal/handler/http"
	"topmovies/movie/internal/repository/memory"
	"topmovies/pkg/discovery"

	"github.com/uber-go/tally/v6"
	"go.uber.org/zap"
)

// CatalogServiceName is the registry name the test catalog is resolved by.
const CatalogServiceName = "catalog"

// NewTestMovieHTTPServer returns the movie HTTP API backed by an in-memory
// repository and the catalog instance found in registry.
func NewTestMovieHTTPServer(ctx context.Context, registry discovery.Registry, credential, imageBase string, logger *zap.Logger) (http.Handler, error) {
	addrs, err := registry.ServiceAddresses(ctx, CatalogServiceName)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}
	m := metadatagateway.New("http://"+addrs[0], credential, logger)
	ctrl := movie.New(memory.New(logger), m, nil, imageBase, logger)
	mux := http.NewServeMux()
	moviehttphandler.New(ctrl, logger, tally.NoopScope).Register(mux)
	return mux, nil
}
