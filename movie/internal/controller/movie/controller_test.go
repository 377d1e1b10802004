package movie

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"topmovies/movie/internal/gateway"
	"topmovies/movie/internal/repository"
	"topmovies/movie/pkg/model"

	gen "topmovies/gen/mock/movie/repository"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const imageBase = "https://image.tmdb.org/t/p/w500"

func ptr[T any](v T) *T { return &v }

type mocks struct {
	repo      *gen.MockmovieRepository
	metadata  *gen.MockmetadataGateway
	publisher *gen.MockratingPublisher
}

func newController(t *testing.T, withPublisher bool) (*Controller, mocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks{
		repo:      gen.NewMockmovieRepository(ctrl),
		metadata:  gen.NewMockmetadataGateway(ctrl),
		publisher: gen.NewMockratingPublisher(ctrl),
	}
	var publisher ratingPublisher
	if withPublisher {
		publisher = m.publisher
	}
	c := New(m.repo, m.metadata, publisher, imageBase, zap.NewNop())
	c.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return c, m
}

func TestRank(t *testing.T) {
	tests := []struct {
		name      string
		movies    []*model.Movie
		wantOrder []model.MovieID
		wantRanks []int
	}{
		{
			name:   "empty",
			movies: []*model.Movie{},
		},
		{
			name: "unrated sorts lowest",
			movies: []*model.Movie{
				{ID: 1, Rating: ptr(5.0)},
				{ID: 2, Rating: ptr(8.0)},
				{ID: 3},
			},
			wantOrder: []model.MovieID{3, 1, 2},
			wantRanks: []int{1, 2, 3},
		},
		{
			name: "ties keep id order",
			movies: []*model.Movie{
				{ID: 4, Rating: ptr(7.0)},
				{ID: 2, Rating: ptr(7.0)},
				{ID: 9},
				{ID: 5},
				{ID: 1, Rating: ptr(9.5)},
			},
			wantOrder: []model.MovieID{5, 9, 2, 4, 1},
			wantRanks: []int{1, 2, 3, 4, 5},
		},
		{
			name: "zero rating is not unrated",
			movies: []*model.Movie{
				{ID: 1, Rating: ptr(0.0)},
				{ID: 2},
			},
			wantOrder: []model.MovieID{2, 1},
			wantRanks: []int{1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Rank(tt.movies)
			var order []model.MovieID
			var ranks []int
			for _, m := range tt.movies {
				order = append(order, m.ID)
				ranks = append(ranks, m.Rank)
			}
			assert.Equal(t, tt.wantOrder, order)
			assert.Equal(t, tt.wantRanks, ranks)
		})
	}
}

func TestRankIsPermutation(t *testing.T) {
	ratings := []*float64{nil, ptr(3.0), ptr(9.0), nil, ptr(3.0), ptr(10.0), ptr(0.5)}
	movies := make([]*model.Movie, 0, len(ratings))
	for i, r := range ratings {
		movies = append(movies, &model.Movie{ID: model.MovieID(i + 1), Rating: r})
	}
	Rank(movies)

	seen := map[int]bool{}
	for i, m := range movies {
		assert.False(t, seen[m.Rank], "duplicate rank %d", m.Rank)
		seen[m.Rank] = true
		if i > 0 && movies[i-1].Rating != nil {
			require.NotNil(t, m.Rating)
			assert.LessOrEqual(t, *movies[i-1].Rating, *m.Rating)
		}
	}
	for r := 1; r <= len(movies); r++ {
		assert.True(t, seen[r], "missing rank %d", r)
	}
	top := movies[len(movies)-1]
	assert.Equal(t, len(movies), top.Rank)
	assert.Equal(t, 10.0, *top.Rating)
	assert.Nil(t, movies[0].Rating)
	assert.Equal(t, 1, movies[0].Rank)
}

func TestList(t *testing.T) {
	tests := []struct {
		name      string
		repoRes   []*model.Movie
		repoErr   error
		wantRanks map[model.MovieID]int
		wantErr   error
	}{
		{
			name: "scenario",
			repoRes: []*model.Movie{
				{ID: 1, Title: "five", Rating: ptr(5.0)},
				{ID: 2, Title: "eight", Rating: ptr(8.0)},
				{ID: 3, Title: "unrated"},
			},
			wantRanks: map[model.MovieID]int{1: 2, 2: 3, 3: 1},
		},
		{
			name:    "storage error",
			repoErr: errors.New("disk full"),
			wantErr: ErrStorage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newController(t, false)
			ctx := context.Background()
			m.repo.EXPECT().List(ctx).Return(tt.repoRes, tt.repoErr)
			res, err := c.List(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got := map[model.MovieID]int{}
			for _, mv := range res {
				got[mv.ID] = mv.Rank
			}
			assert.Equal(t, tt.wantRanks, got)
			assert.Equal(t, model.MovieID(3), res[0].ID)
			assert.Equal(t, model.MovieID(2), res[len(res)-1].ID)
		})
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		repoRes *model.Movie
		repoErr error
		wantRes *model.Movie
		wantErr error
	}{
		{
			name:    "not found",
			repoErr: repository.ErrNotFound,
			wantErr: ErrNotFound,
		},
		{
			name:    "unexpected error",
			repoErr: errors.New("unexpected error"),
			wantErr: ErrStorage,
		},
		{
			name:    "success",
			repoRes: &model.Movie{ID: 7, Title: "Avatar"},
			wantRes: &model.Movie{ID: 7, Title: "Avatar"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newController(t, false)
			ctx := context.Background()
			m.repo.EXPECT().Get(ctx, model.MovieID(7)).Return(tt.repoRes, tt.repoErr)
			res, err := c.Get(ctx, 7)
			assert.Equal(t, tt.wantRes, res, tt.name)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr, tt.name)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	c, m := newController(t, false)
	ctx := context.Background()
	want := &model.Movie{Title: "Avatar", Year: 2009, Description: "Blue.", PosterURL: imageBase + "/a.jpg"}
	m.repo.EXPECT().Create(ctx, want).Return(model.MovieID(11), nil)
	id, err := c.Create(ctx, "Avatar", 2009, "Blue.", imageBase+"/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, model.MovieID(11), id)

	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(model.MovieID(0), errors.New("locked"))
	_, err = c.Create(ctx, "Avatar", 2009, "Blue.", imageBase+"/a.jpg")
	assert.ErrorIs(t, err, ErrStorage)
}

func TestAdd(t *testing.T) {
	details := &model.Details{
		Title:       "Phone Booth",
		ReleaseDate: "2002-11-17",
		PosterPath:  "/booth.jpg",
		Overview:    "A caller.",
	}
	tests := []struct {
		name       string
		details    *model.Details
		detailsErr error
		createCall bool
		createErr  error
		want       *model.Movie
		wantErr    error
	}{
		{
			name:       "success",
			details:    details,
			createCall: true,
			want: &model.Movie{
				ID:          5,
				Title:       "Phone Booth",
				Year:        2002,
				Description: "A caller.",
				PosterURL:   imageBase + "/booth.jpg",
			},
		},
		{
			name:       "catalog id unknown",
			detailsErr: gateway.ErrNotFound,
			wantErr:    ErrNotFound,
		},
		{
			name:       "catalog down",
			detailsErr: gateway.ErrUnavailable,
			wantErr:    ErrGateway,
		},
		{
			name:       "catalog payload malformed",
			detailsErr: gateway.ErrMalformedMetadata,
			wantErr:    ErrMalformedMetadata,
		},
		{
			name:    "short release date",
			details: &model.Details{Title: "x", ReleaseDate: "19", PosterPath: "/p.jpg"},
			wantErr: ErrMalformedMetadata,
		},
		{
			name:    "missing poster",
			details: &model.Details{Title: "x", ReleaseDate: "1999-01-01"},
			wantErr: ErrMalformedMetadata,
		},
		{
			name:       "storage error",
			details:    details,
			createCall: true,
			createErr:  errors.New("readonly"),
			wantErr:    ErrStorage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newController(t, false)
			ctx := context.Background()
			m.metadata.EXPECT().Details(ctx, int64(1817)).Return(tt.details, tt.detailsErr)
			if tt.createCall {
				m.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
					func(_ context.Context, mv *model.Movie) (model.MovieID, error) {
						assert.Nil(t, mv.Rating)
						assert.Nil(t, mv.Review)
						if tt.createErr != nil {
							return 0, tt.createErr
						}
						return 5, nil
					})
			}
			got, err := c.Add(ctx, 1817)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "", cmp.Diff(tt.want, got))
		})
	}
}

func TestSearch(t *testing.T) {
	c, m := newController(t, false)
	ctx := context.Background()
	candidates := []model.Candidate{{ID: 1, Title: "Avatar"}}
	m.metadata.EXPECT().Search(ctx, "avatar").Return(candidates, nil)
	res, err := c.Search(ctx, "avatar")
	require.NoError(t, err)
	assert.Equal(t, candidates, res)

	m.metadata.EXPECT().Search(ctx, "avatar").Return(nil, gateway.ErrUnavailable)
	_, err = c.Search(ctx, "avatar")
	assert.ErrorIs(t, err, ErrGateway)
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestUpdateRating(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		publish    bool
		publishErr error
		wantErr    error
	}{
		{name: "success", publish: true},
		{name: "publish failure is not fatal", publish: true, publishErr: errors.New("broker down")},
		{name: "not found", repoErr: repository.ErrNotFound, wantErr: ErrNotFound},
		{name: "storage error", repoErr: errors.New("io"), wantErr: ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newController(t, true)
			ctx := context.Background()
			m.repo.EXPECT().UpdateReview(ctx, model.MovieID(3), 7.5, "Tense").Return(tt.repoErr)
			if tt.publish {
				m.repo.EXPECT().Get(ctx, model.MovieID(3)).Return(&model.Movie{ID: 3, Title: "Heat"}, nil)
				m.publisher.EXPECT().Publish(gomock.Any(), &model.RatingEvent{
					MovieID:   3,
					Title:     "Heat",
					Rating:    ptr(7.5),
					Review:    ptr("Tense"),
					EventType: model.RatingEventTypePut,
					Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
				}).Return(tt.publishErr)
			}
			err := c.UpdateRating(ctx, 3, 7.5, "Tense")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateRatingRejectsInvalidRating(t *testing.T) {
	for _, rating := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.5, 10.5} {
		t.Run(strconv.FormatFloat(rating, 'f', -1, 64), func(t *testing.T) {
			// No repository or publisher calls are expected.
			c, _ := newController(t, true)
			err := c.UpdateRating(context.Background(), 3, rating, "weird")
			assert.ErrorIs(t, err, ErrInvalidRating)
		})
	}
}

func TestUpdateRatingBounds(t *testing.T) {
	for _, rating := range []float64{0, MaxRating} {
		c, m := newController(t, false)
		ctx := context.Background()
		m.repo.EXPECT().UpdateReview(ctx, model.MovieID(3), rating, "edge").Return(nil)
		assert.NoError(t, c.UpdateRating(ctx, 3, rating, "edge"))
	}
}

func TestUpdateRatingWithoutPublisher(t *testing.T) {
	c, m := newController(t, false)
	ctx := context.Background()
	m.repo.EXPECT().UpdateReview(ctx, model.MovieID(3), 1.0, "meh").Return(nil)
	assert.NoError(t, c.UpdateRating(ctx, 3, 1, "meh"))
}

func TestUpdateRatingTitleLookupFailure(t *testing.T) {
	c, m := newController(t, true)
	ctx := context.Background()
	m.repo.EXPECT().UpdateReview(ctx, model.MovieID(3), 4.0, "ok").Return(nil)
	m.repo.EXPECT().Get(ctx, model.MovieID(3)).Return(nil, errors.New("io"))
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ev *model.RatingEvent) error {
			assert.Empty(t, ev.Title)
			assert.Equal(t, model.MovieID(3), ev.MovieID)
			return nil
		})
	assert.NoError(t, c.UpdateRating(ctx, 3, 4, "ok"))
}

func TestPublishIsBounded(t *testing.T) {
	c, m := newController(t, true)
	ctx := context.Background()
	m.repo.EXPECT().UpdateReview(ctx, model.MovieID(3), 6.0, "slow broker").Return(nil)
	m.repo.EXPECT().Get(ctx, model.MovieID(3)).Return(&model.Movie{ID: 3, Title: "Heat"}, nil)
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *model.RatingEvent) error {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.LessOrEqual(t, time.Until(deadline), publishTimeout)
			return ctx.Err()
		})
	assert.NoError(t, c.UpdateRating(ctx, 3, 6, "slow broker"))
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "success"},
		{name: "not found", repoErr: repository.ErrNotFound, wantErr: ErrNotFound},
		{name: "storage error", repoErr: errors.New("io"), wantErr: ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newController(t, true)
			ctx := context.Background()
			if tt.repoErr == repository.ErrNotFound {
				m.repo.EXPECT().Get(ctx, model.MovieID(3)).Return(nil, repository.ErrNotFound)
			} else {
				m.repo.EXPECT().Get(ctx, model.MovieID(3)).Return(&model.Movie{ID: 3, Title: "Heat"}, nil)
			}
			m.repo.EXPECT().Delete(ctx, model.MovieID(3)).Return(tt.repoErr)
			if tt.repoErr == nil {
				m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, ev *model.RatingEvent) error {
						assert.Equal(t, model.RatingEventTypeDelete, ev.EventType)
						assert.Equal(t, model.MovieID(3), ev.MovieID)
						assert.Equal(t, "Heat", ev.Title)
						return nil
					})
			}
			err := c.Delete(ctx, 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
