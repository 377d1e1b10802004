package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"topmovies/movie/internal/controller/movie"
	"topmovies/movie/pkg/model"
	"topmovies/pkg/logging"
	"topmovies/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/uber-go/tally/v6"
	"go.uber.org/zap"
)

// Handler defines a movie HTTP handler.
type Handler struct {
	ctrl     *movie.Controller
	logger   *zap.Logger
	validate *validator.Validate

	listMetrics   *metrics.EndpointMetrics
	getMetrics    *metrics.EndpointMetrics
	addMetrics    *metrics.EndpointMetrics
	rateMetrics   *metrics.EndpointMetrics
	deleteMetrics *metrics.EndpointMetrics
	searchMetrics *metrics.EndpointMetrics
}

// New creates a new movie HTTP handler.
func New(ctrl *movie.Controller, logger *zap.Logger, scope tally.Scope) *Handler {
	logger = logger.With(
		zap.String(logging.FieldComponent, "handler"),
		zap.String(logging.FieldType, "http"),
	)
	return &Handler{
		ctrl:          ctrl,
		logger:        logger,
		validate:      validator.New(),
		listMetrics:   metrics.NewEndpointMetrics(scope, "ListMovies"),
		getMetrics:    metrics.NewEndpointMetrics(scope, "GetMovie"),
		addMetrics:    metrics.NewEndpointMetrics(scope, "AddMovie"),
		rateMetrics:   metrics.NewEndpointMetrics(scope, "RateMovie"),
		deleteMetrics: metrics.NewEndpointMetrics(scope, "DeleteMovie"),
		searchMetrics: metrics.NewEndpointMetrics(scope, "SearchMovies"),
	}
}

// Register attaches the movie routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /movies", h.ListMovies)
	mux.HandleFunc("GET /movies/{id}", h.GetMovie)
	mux.HandleFunc("POST /movies", h.AddMovie)
	mux.HandleFunc("PUT /movies/{id}/review", h.RateMovie)
	mux.HandleFunc("DELETE /movies/{id}", h.DeleteMovie)
	mux.HandleFunc("GET /search", h.SearchMovies)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// AddMovieRequest is the body of POST /movies.
type AddMovieRequest struct {
	CatalogID int64 `json:"catalogId" validate:"required,gt=0"`
}

// RateMovieRequest is the body of PUT /movies/{id}/review. Both fields must
// be present; an empty review is allowed.
type RateMovieRequest struct {
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=10"`
	Review *string  `json:"review" validate:"required,max=250"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListMovies handles GET /movies requests.
func (h *Handler) ListMovies(w http.ResponseWriter, req *http.Request) {
	m := h.listMetrics
	m.Calls.Inc(1)
	defer m.Latency.Start().Stop()
	movies, err := h.ctrl.List(req.Context())
	if err != nil {
		h.fail(w, m, err)
		return
	}
	m.Successes.Inc(1)
	h.writeJSON(w, http.StatusOK, movies)
}

// GetMovie handles GET /movies/{id} requests.
func (h *Handler) GetMovie(w http.ResponseWriter, req *http.Request) {
	m := h.getMetrics
	m.Calls.Inc(1)
	defer m.Latency.Start().Stop()
	id, err := model.ParseMovieID(req.PathValue("id"))
	if err != nil {
		h.invalid(w, m, err.Error())
		return
	}
	mv, err := h.ctrl.Get(req.Context(), id)
	if err != nil {
		h.fail(w, m, err)
		return
	}
	m.Successes.Inc(1)
	h.writeJSON(w, http.StatusOK, mv)
}

// AddMovie handles POST /movies requests.
func (h *Handler) AddMovie(w http.ResponseWriter, req *http.Request) {
	m := h.addMetrics
	m.Calls.Inc(1)
	defer m.Latency.Start().Stop()
	var body AddMovieRequest
	if !h.decode(w, req, m, &body) {
		return
	}
	mv, err := h.ctrl.Add(req.Context(), body.CatalogID)
	if err != nil {
		h.fail(w, m, err)
		return
	}
	m.Successes.Inc(1)
	w.Header().Set("Location", "/movies/"+mv.ID.String())
	h.writeJSON(w, http.StatusCreated, mv)
}

// RateMovie handles PUT /movies/{id}/review requests.
func (h *Handler) RateMovie(w http.ResponseWriter, req *http.Request) {
	m := h.rateMetrics
	m.Calls.Inc(1)
	defer m.Latency.Start().Stop()
	id, err := model.ParseMovieID(req.PathValue("id"))
	if err != nil {
		h.invalid(w, m, err.Error())
		return
	}
	var body RateMovieRequest
	if !h.decode(w, req, m, &body) {
		return
	}
	if err := h.ctrl.UpdateRating(req.Context(), id, *body.Rating, *body.Review); err != nil {
		h.fail(w, m, err)
		return
	}
	m.Successes.Inc(1)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMovie handles DELETE /movies/{id} requests.
func (h *Handler) DeleteMovie(w http.ResponseWriter, req *http.Request) {
	m := h.deleteMetrics
	m.Calls.Inc(1)
	defer m.Latency.Start().Stop()
	id, err := model.ParseMovieID(req.PathValue("id"))
	if err != nil {
		h.invalid(w, m, err.Error())
		return
	}
	if err := h.ctrl.Delete(req.Context(), id); err != nil {
		h.fail(w, m, err)
		return
	}
	m.Successes.Inc(1)
	w.WriteHeader(http.StatusNoContent)
}

// SearchMovies handles GET /search?title= requests.
func (h *Handler) SearchMovies(w http.ResponseWriter, req *http.Request) {
	m := h.searchMetrics
	m.Calls.Inc(1)
	defer m.Latency.Start().Stop()
	title := strings.TrimSpace(req.FormValue("title"))
	if title == "" {
		h.invalid(w, m, "empty title")
		return
	}
	candidates, err := h.ctrl.Search(req.Context(), title)
	if err != nil {
		h.fail(w, m, err)
		return
	}
	m.Successes.Inc(1)
	h.writeJSON(w, http.StatusOK, candidates)
}

func (h *Handler) decode(w http.ResponseWriter, req *http.Request, m *metrics.EndpointMetrics, dst any) bool {
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.invalid(w, m, "malformed body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.invalid(w, m, err.Error())
		return false
	}
	return true
}

func (h *Handler) invalid(w http.ResponseWriter, m *metrics.EndpointMetrics, msg string) {
	m.InvalidArgumentErrors.Inc(1)
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (h *Handler) fail(w http.ResponseWriter, m *metrics.EndpointMetrics, err error) {
	switch {
	case errors.Is(err, movie.ErrNotFound):
		m.NotFoundErrors.Inc(1)
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, movie.ErrInvalidRating):
		h.invalid(w, m, err.Error())
	case errors.Is(err, movie.ErrGateway), errors.Is(err, movie.ErrMalformedMetadata):
		m.UpstreamErrors.Inc(1)
		h.logger.Warn("Movie catalog error", zap.Error(err))
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "movie catalog unavailable"})
	default:
		m.InternalErrors.Inc(1)
		h.logger.Error("Movie request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Response encode error", zap.Error(err))
	}
}
