package repository

import (
	"context"
	"errors"

	"topmovies/movie/pkg/model"
)

// ErrNotFound is returned when a requested movie does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the storage of the movie list. Every backend returns
// ErrNotFound for ids it does not hold, including after a delete.
type Repository interface {
	List(ctx context.Context) ([]*model.Movie, error)
	Get(ctx context.Context, id model.MovieID) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) (model.MovieID, error)
	UpdateReview(ctx context.Context, id model.MovieID, rating float64, review string) error
	Delete(ctx context.Context, id model.MovieID) error
}
