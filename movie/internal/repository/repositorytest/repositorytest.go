// Package repositorytest holds the behaviour checks shared by every movie
// repository backend.
package repositorytest

import (
	"context"
	"testing"

	"topmovies/movie/internal/repository"
	"topmovies/movie/pkg/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Repository is the movie repository contract under test.
type Repository = repository.Repository

// Run exercises a fresh repository returned by newRepo for each subtest.
func Run(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("create and get", func(t *testing.T) {
		testCreateAndGet(t, newRepo(t))
	})
	t.Run("update review", func(t *testing.T) {
		testUpdateReview(t, newRepo(t))
	})
	t.Run("delete", func(t *testing.T) {
		testDelete(t, newRepo(t))
	})
	t.Run("list", func(t *testing.T) {
		testList(t, newRepo(t))
	})
}

func sample(title string) *model.Movie {
	return &model.Movie{
		Title:       title,
		Year:        2002,
		Description: "A mysterious caller.",
		PosterURL:   "https://image.tmdb.org/t/p/w500/booth.jpg",
	}
}

func testCreateAndGet(t *testing.T, r Repository) {
	ctx := context.Background()
	id1, err := r.Create(ctx, sample("Phone Booth"))
	require.NoError(t, err)
	id2, err := r.Create(ctx, sample("Avatar"))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	got, err := r.Get(ctx, id1)
	require.NoError(t, err)
	want := sample("Phone Booth")
	want.ID = id1
	assert.Equal(t, "", cmp.Diff(want, got))
	assert.Nil(t, got.Rating)
	assert.Nil(t, got.Review)

	_, err = r.Get(ctx, id2+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testUpdateReview(t *testing.T, r Repository) {
	ctx := context.Background()
	id, err := r.Create(ctx, sample("Phone Booth"))
	require.NoError(t, err)

	require.NoError(t, r.UpdateReview(ctx, id, 7.3, "Great twist"))
	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	require.NotNil(t, got.Review)
	assert.Equal(t, 7.3, *got.Rating)
	assert.Equal(t, "Great twist", *got.Review)

	// Same values again must still succeed.
	require.NoError(t, r.UpdateReview(ctx, id, 7.3, "Great twist"))

	require.NoError(t, r.UpdateReview(ctx, id, 0, ""))
	got, err = r.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	require.NotNil(t, got.Review)
	assert.Equal(t, 0.0, *got.Rating)
	assert.Equal(t, "", *got.Review)

	assert.ErrorIs(t, r.UpdateReview(ctx, id+100, 5, "x"), repository.ErrNotFound)
}

func testDelete(t *testing.T, r Repository) {
	ctx := context.Background()
	id, err := r.Create(ctx, sample("Phone Booth"))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, id))
	_, err = r.Get(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, id), repository.ErrNotFound)
	assert.ErrorIs(t, r.UpdateReview(ctx, id, 1, "x"), repository.ErrNotFound)

	next, err := r.Create(ctx, sample("Avatar"))
	require.NoError(t, err)
	assert.NotEqual(t, id, next)
}

func testList(t *testing.T, r Repository) {
	ctx := context.Background()
	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	var ids []model.MovieID
	for _, title := range []string{"A", "B", "C"} {
		id, err := r.Create(ctx, sample(title))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, r.UpdateReview(ctx, ids[1], 8, "good"))

	all, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, m := range all {
		assert.Equal(t, ids[i], m.ID)
		assert.Zero(t, m.Rank)
	}
	assert.Nil(t, all[0].Rating)
	require.NotNil(t, all[1].Rating)
	assert.Equal(t, 8.0, *all[1].Rating)
}
