package memory

import (
	"context"
	"sort"
	"sync"

	"topmovies/movie/internal/repository"
	"topmovies/movie/pkg/model"
	"topmovies/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const tracerID = "movie-repository-memory"

// Repository defines a memory movie repository.
type Repository struct {
	sync.RWMutex
	data   map[model.MovieID]*model.Movie
	nextID model.MovieID
	logger *zap.Logger
}

// New creates a new memory repository.
func New(logger *zap.Logger) *Repository {
	logger = logger.With(
		zap.String(logging.FieldComponent, "repository"),
		zap.String(logging.FieldType, "memory"),
	)
	return &Repository{data: map[model.MovieID]*model.Movie{}, nextID: 1, logger: logger}
}

// List returns every stored movie in id order.
func (r *Repository) List(ctx context.Context) ([]*model.Movie, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/List")
	defer span.End()
	r.RLock()
	defer r.RUnlock()
	res := make([]*model.Movie, 0, len(r.data))
	for _, m := range r.data {
		res = append(res, clone(m))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// Get retrieves a movie by id.
func (r *Repository) Get(ctx context.Context, id model.MovieID) (*model.Movie, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Get")
	defer span.End()
	r.RLock()
	defer r.RUnlock()
	m, ok := r.data[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(m), nil
}

// Create stores a new movie and returns its assigned id.
func (r *Repository) Create(ctx context.Context, m *model.Movie) (model.MovieID, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Create")
	defer span.End()
	r.Lock()
	defer r.Unlock()
	id := r.nextID
	r.nextID++
	stored := clone(m)
	stored.ID = id
	stored.Rank = 0
	r.data[id] = stored
	r.logger.Debug("Created movie", zap.Int64(logging.FieldMovieID, int64(id)))
	return id, nil
}

// UpdateReview overwrites the rating and review of a movie.
func (r *Repository) UpdateReview(ctx context.Context, id model.MovieID, rating float64, review string) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/UpdateReview")
	defer span.End()
	r.Lock()
	defer r.Unlock()
	m, ok := r.data[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Rating = &rating
	m.Review = &review
	return nil
}

// Delete removes a movie.
func (r *Repository) Delete(ctx context.Context, id model.MovieID) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Delete")
	defer span.End()
	r.Lock()
	defer r.Unlock()
	if _, ok := r.data[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func clone(m *model.Movie) *model.Movie {
	c := *m
	if m.Rating != nil {
		v := *m.Rating
		c.Rating = &v
	}
	if m.Review != nil {
		v := *m.Review
		c.Review = &v
	}
	return &c
}
