package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"topmovies/movie/internal/gateway"
	"topmovies/movie/pkg/model"
	"topmovies/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerID = "movie-gateway-metadata-http"

// Gateway defines a movie catalog HTTP gateway.
type Gateway struct {
	baseURL    string
	credential string
	language   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithLanguage overrides the catalog language.
func WithLanguage(language string) Option {
	return func(g *Gateway) {
		if language != "" {
			g.language = language
		}
	}
}

// WithTimeout sets the timeout of the HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		if timeout > 0 {
			c := *g.httpClient
			c.Timeout = timeout
			g.httpClient = &c
		}
	}
}

// New creates a new HTTP gateway for the movie catalog at baseURL. The
// credential is sent verbatim in the Authorization header; the catalog
// itself rejects a missing or wrong one.
func New(baseURL, credential string, logger *zap.Logger, opts ...Option) *Gateway {
	logger = logger.With(
		zap.String(logging.FieldComponent, "metadata-gateway"),
		zap.String(logging.FieldType, "http"),
	)
	g := &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		language:   "en-US",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type searchResponse struct {
	Page    int            `json:"page"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
}

type detailsResponse struct {
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
}

// Search returns catalog candidates matching a free-text title.
func (g *Gateway) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "true")
	params.Set("language", g.language)
	params.Set("page", "1")

	var payload searchResponse
	if err := g.get(ctx, "Search", "/search/movie", params, &payload); err != nil {
		// A search never refers to a record, so a 404 means the endpoint
		// itself is missing.
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, fmt.Errorf("%w: /search/movie returned 404", gateway.ErrUnavailable)
		}
		return nil, err
	}
	res := make([]model.Candidate, 0, len(payload.Results))
	for i, r := range payload.Results {
		if r.ID == 0 || r.Title == "" {
			return nil, fmt.Errorf("%w: search result %d lacks id or title", gateway.ErrMalformedMetadata, i)
		}
		res = append(res, model.Candidate{
			ID:          r.ID,
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			PosterPath:  r.PosterPath,
			Overview:    r.Overview,
		})
	}
	return res, nil
}

// Details returns the catalog details of a movie by its catalog id.
func (g *Gateway) Details(ctx context.Context, catalogID int64) (*model.Details, error) {
	params := url.Values{}
	params.Set("language", g.language)

	var payload detailsResponse
	path := "/movie/" + strconv.FormatInt(catalogID, 10)
	if err := g.get(ctx, "Details", path, params, &payload); err != nil {
		return nil, err
	}
	if payload.Title == "" {
		return nil, fmt.Errorf("%w: movie %d has no title", gateway.ErrMalformedMetadata, catalogID)
	}
	return &model.Details{
		Title:       payload.Title,
		ReleaseDate: payload.ReleaseDate,
		PosterPath:  payload.PosterPath,
		Overview:    payload.Overview,
	}, nil
}

func (g *Gateway) get(ctx context.Context, op, path string, params url.Values, v any) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/"+op)
	defer span.End()

	endpoint := g.baseURL + path + "?" + params.Encode()
	span.SetAttributes(attribute.String("http.path", path))
	g.logger.Debug("Calling movie catalog",
		zap.String("path", path),
		zap.String("method", http.MethodGet),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", g.credential)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("%w: execute request (latency=%v): %w", gateway.ErrUnavailable, latency, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode == http.StatusNotFound {
		return gateway.ErrNotFound
	} else if resp.StatusCode/100 != 2 {
		span.SetStatus(codes.Error, resp.Status)
		g.logger.Warn("Movie catalog returned non-2xx status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", latency),
		)
		return fmt.Errorf("%w: %s returned %d (latency=%v)", gateway.ErrUnavailable, path, resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: decode response: %w", gateway.ErrUnavailable, err)
	}
	return nil
}
