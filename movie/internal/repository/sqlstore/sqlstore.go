// Package sqlstore implements the movie repository over database/sql. The
// statements are shared by the SQLite and MySQL backends, which differ only
// in how the connection is opened and migrated.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"topmovies/movie/internal/repository"
	"topmovies/movie/pkg/model"
	"topmovies/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const movieColumns = "id, title, year, description, rating, review, poster_url"

// Repository defines a SQL-based movie repository.
type Repository struct {
	db       *sql.DB
	logger   *zap.Logger
	tracerID string
}

// New creates a repository on an already migrated database.
func New(db *sql.DB, dialect string, logger *zap.Logger) *Repository {
	logger = logger.With(
		zap.String(logging.FieldComponent, "repository"),
		zap.String(logging.FieldType, dialect),
	)
	return &Repository{db: db, logger: logger, tracerID: "movie-repository-" + dialect}
}

// DB returns the underlying connection pool.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the underlying connection pool.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) start(ctx context.Context, name string, id model.MovieID) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(r.tracerID).Start(ctx, "Repository/"+name)
	if id != 0 {
		span.SetAttributes(attribute.Int64(logging.FieldMovieID, int64(id)))
	}
	return ctx, span
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(row scanner) (*model.Movie, error) {
	var (
		m      model.Movie
		rating sql.NullFloat64
		review sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Title, &m.Year, &m.Description, &rating, &review, &m.PosterURL); err != nil {
		return nil, err
	}
	if rating.Valid {
		v := rating.Float64
		m.Rating = &v
	}
	if review.Valid {
		v := review.String
		m.Review = &v
	}
	return &m, nil
}

// List returns every stored movie in id order.
func (r *Repository) List(ctx context.Context) ([]*model.Movie, error) {
	ctx, span := r.start(ctx, "List", 0)
	defer span.End()
	rows, err := r.db.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id")
	if err != nil {
		r.logger.Warn("Failed to list movies", zap.Error(err))
		return nil, fail(span, fmt.Errorf("list movies: %w", err))
	}
	defer rows.Close()
	res := []*model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fail(span, fmt.Errorf("scan movie: %w", err))
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("iterate movies: %w", err))
	}
	return res, nil
}

// Get retrieves a movie by id.
func (r *Repository) Get(ctx context.Context, id model.MovieID) (*model.Movie, error) {
	ctx, span := r.start(ctx, "Get", id)
	defer span.End()
	row := r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		r.logger.Warn("Failed to get movie", zap.Int64(logging.FieldMovieID, int64(id)), zap.Error(err))
		return nil, fail(span, fmt.Errorf("get movie: %w", err))
	}
	return m, nil
}

// Create stores a new unrated movie and returns its assigned id.
func (r *Repository) Create(ctx context.Context, m *model.Movie) (model.MovieID, error) {
	ctx, span := r.start(ctx, "Create", 0)
	defer span.End()
	if m == nil {
		return 0, fail(span, errors.New("movie is nil"))
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movies (title, year, description, poster_url) VALUES (?, ?, ?, ?)",
		m.Title, m.Year, m.Description, m.PosterURL,
	)
	if err != nil {
		r.logger.Warn("Failed to insert movie", zap.String("title", m.Title), zap.Error(err))
		return 0, fail(span, fmt.Errorf("insert movie: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fail(span, fmt.Errorf("last insert id: %w", err))
	}
	r.logger.Debug("Created movie", zap.Int64(logging.FieldMovieID, id))
	return model.MovieID(id), nil
}

// UpdateReview overwrites the rating and review of a movie.
func (r *Repository) UpdateReview(ctx context.Context, id model.MovieID, rating float64, review string) error {
	ctx, span := r.start(ctx, "UpdateReview", id)
	defer span.End()
	res, err := r.db.ExecContext(ctx, "UPDATE movies SET rating = ?, review = ? WHERE id = ?", rating, review, id)
	if err != nil {
		r.logger.Warn("Failed to update movie review", zap.Int64(logging.FieldMovieID, int64(id)), zap.Error(err))
		return fail(span, fmt.Errorf("update movie: %w", err))
	}
	return r.checkAffected(span, res)
}

// Delete removes a movie.
func (r *Repository) Delete(ctx context.Context, id model.MovieID) error {
	ctx, span := r.start(ctx, "Delete", id)
	defer span.End()
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		r.logger.Warn("Failed to delete movie", zap.Int64(logging.FieldMovieID, int64(id)), zap.Error(err))
		return fail(span, fmt.Errorf("delete movie: %w", err))
	}
	return r.checkAffected(span, res)
}

func (r *Repository) checkAffected(span trace.Span, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fail(span, fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
