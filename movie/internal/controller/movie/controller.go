package movie

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"topmovies/movie/internal/gateway"
	"topmovies/movie/internal/repository"
	"topmovies/movie/pkg/model"
	"topmovies/pkg/logging"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a movie does not exist in the list
	// or the catalog has no entry for the requested id.
	ErrNotFound = errors.New("movie not found")
	// ErrStorage is returned when the persistence layer fails.
	ErrStorage = errors.New("movie storage failure")
	// ErrGateway is returned when the movie catalog cannot be reached or
	// answers with an error.
	ErrGateway = errors.New("movie catalog failure")
	// ErrMalformedMetadata is returned when catalog data lacks fields
	// needed to build a movie.
	ErrMalformedMetadata = errors.New("malformed movie metadata")
	// ErrInvalidRating is returned for ratings that are not a finite
	// number between 0 and MaxRating.
	ErrInvalidRating = errors.New("invalid rating")
)

// MaxRating is the highest rating a movie can get.
const MaxRating = 10

// publishTimeout bounds how long a stored change waits for its event.
const publishTimeout = 5 * time.Second

type movieRepository interface {
	List(ctx context.Context) ([]*model.Movie, error)
	Get(ctx context.Context, id model.MovieID) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) (model.MovieID, error)
	UpdateReview(ctx context.Context, id model.MovieID, rating float64, review string) error
	Delete(ctx context.Context, id model.MovieID) error
}

type metadataGateway interface {
	Search(ctx context.Context, query string) ([]model.Candidate, error)
	Details(ctx context.Context, catalogID int64) (*model.Details, error)
}

type ratingPublisher interface {
	Publish(ctx context.Context, event *model.RatingEvent) error
}

// Controller defines a movie list service controller.
type Controller struct {
	repo      movieRepository
	metadata  metadataGateway
	publisher ratingPublisher
	imageBase string
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a movie list controller. Poster URLs of added movies are
// built on imageBase. publisher may be nil.
func New(repo movieRepository, metadata metadataGateway, publisher ratingPublisher, imageBase string, logger *zap.Logger) *Controller {
	logger = logger.With(zap.String(logging.FieldComponent, "controller"))
	return &Controller{
		repo:      repo,
		metadata:  metadata,
		publisher: publisher,
		imageBase: imageBase,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns every movie ordered by ascending rating with ranks assigned,
// so the best rated movie has rank N and the worst (or unrated) rank 1.
// Ranks are derived on every call and never stored.
func (c *Controller) List(ctx context.Context) ([]*model.Movie, error) {
	movies, err := c.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	Rank(movies)
	return movies, nil
}

// Rank sorts movies by ascending rating, unrated first and ties by id, and
// numbers them from 1 so the last (highest rated) movie gets rank N.
func Rank(movies []*model.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := movies[i], movies[j]
		switch {
		case a.Rating == nil && b.Rating == nil:
			return a.ID < b.ID
		case a.Rating == nil:
			return true
		case b.Rating == nil:
			return false
		case *a.Rating != *b.Rating:
			return *a.Rating < *b.Rating
		default:
			return a.ID < b.ID
		}
	})
	for i, m := range movies {
		m.Rank = i + 1
	}
}

// Get returns a single movie by id.
func (c *Controller) Get(ctx context.Context, id model.MovieID) (*model.Movie, error) {
	m, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, c.storageErr(err)
	}
	return m, nil
}

// Create stores a new unrated movie and returns its id.
func (c *Controller) Create(ctx context.Context, title string, year int, description, posterURL string) (model.MovieID, error) {
	id, err := c.repo.Create(ctx, &model.Movie{
		Title:       title,
		Year:        year,
		Description: description,
		PosterURL:   posterURL,
	})
	if err != nil {
		c.logger.Warn("Failed to create movie", zap.String("title", title), zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return id, nil
}

// Search returns catalog candidates for a free-text title.
func (c *Controller) Search(ctx context.Context, title string) ([]model.Candidate, error) {
	res, err := c.metadata.Search(ctx, title)
	if err != nil {
		return nil, gatewayErr(err)
	}
	return res, nil
}

// Add fetches catalog details for catalogID and stores them as a new
// unrated movie.
func (c *Controller) Add(ctx context.Context, catalogID int64) (*model.Movie, error) {
	details, err := c.metadata.Details(ctx, catalogID)
	if err != nil {
		c.logger.Warn("Failed to fetch movie details", zap.Int64(logging.FieldCatalogID, catalogID), zap.Error(err))
		return nil, gatewayErr(err)
	}
	m, err := model.NewMovie(details, c.imageBase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMetadata, err)
	}
	id, err := c.Create(ctx, m.Title, m.Year, m.Description, m.PosterURL)
	if err != nil {
		return nil, err
	}
	m.ID = id
	c.logger.Info("Added movie",
		zap.Int64(logging.FieldMovieID, int64(id)),
		zap.Int64(logging.FieldCatalogID, catalogID),
		zap.String("title", m.Title),
	)
	return m, nil
}

// UpdateRating overwrites both the rating and the review of a movie.
func (c *Controller) UpdateRating(ctx context.Context, id model.MovieID, rating float64, review string) error {
	if math.IsNaN(rating) || math.IsInf(rating, 0) || rating < 0 || rating > MaxRating {
		return fmt.Errorf("%w: %v", ErrInvalidRating, rating)
	}
	if err := c.repo.UpdateReview(ctx, id, rating, review); err != nil {
		return c.storageErr(err)
	}
	var title string
	if c.publisher != nil {
		if m, err := c.repo.Get(ctx, id); err == nil {
			title = m.Title
		}
	}
	c.publish(ctx, &model.RatingEvent{
		MovieID:   id,
		Title:     title,
		Rating:    &rating,
		Review:    &review,
		EventType: model.RatingEventTypePut,
	})
	return nil
}

// Delete removes a movie. Deleting a missing movie returns ErrNotFound.
func (c *Controller) Delete(ctx context.Context, id model.MovieID) error {
	var title string
	if c.publisher != nil {
		if m, err := c.repo.Get(ctx, id); err == nil {
			title = m.Title
		}
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		return c.storageErr(err)
	}
	c.publish(ctx, &model.RatingEvent{
		MovieID:   id,
		Title:     title,
		EventType: model.RatingEventTypeDelete,
	})
	return nil
}

// publish is best effort: the change is already stored.
func (c *Controller) publish(ctx context.Context, ev *model.RatingEvent) {
	if c.publisher == nil {
		return
	}
	ev.Timestamp = c.now().UTC()
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := c.publisher.Publish(ctx, ev); err != nil {
		c.logger.Warn("Failed to publish rating event", zap.Stringer("event", ev), zap.Error(err))
	}
}

func (c *Controller) storageErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	c.logger.Warn("Movie repository error", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func gatewayErr(err error) error {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gateway.ErrMalformedMetadata):
		return fmt.Errorf("%w: %w", ErrMalformedMetadata, err)
	default:
		return fmt.Errorf("%w: %w", ErrGateway, err)
	}
}
