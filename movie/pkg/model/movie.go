package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MovieID defines a movie record id assigned by the store.
type MovieID int64

// String returns the decimal form of the id.
func (id MovieID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseMovieID parses a positive decimal movie id.
func ParseMovieID(s string) (MovieID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", s)
	}
	return MovieID(v), nil
}

// Movie defines a movie tracked in the personal list.
// Rating and Review stay nil until the movie is reviewed.
// Rank is derived on listing and is zero elsewhere.
type Movie struct {
	ID          MovieID  `json:"id"`
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating,omitempty"`
	Review      *string  `json:"review,omitempty"`
	PosterURL   string   `json:"posterUrl"`
	Rank        int      `json:"rank,omitempty"`
}

// Candidate defines a catalog search match.
type Candidate struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	PosterPath  string `json:"posterPath,omitempty"`
	Overview    string `json:"overview,omitempty"`
}

// Details defines the catalog details of a single movie.
type Details struct {
	Title       string `json:"title"`
	ReleaseDate string `json:"releaseDate"`
	PosterPath  string `json:"posterPath"`
	Overview    string `json:"overview"`
}

// ErrMalformedDetails is returned when catalog details cannot be turned into a movie.
var ErrMalformedDetails = errors.New("malformed movie details")

// ReleaseYear returns the year encoded in the first four characters of a release date.
func ReleaseYear(releaseDate string) (int, error) {
	if len(releaseDate) < 4 {
		return 0, fmt.Errorf("%w: release date %q too short", ErrMalformedDetails, releaseDate)
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0, fmt.Errorf("%w: release date %q has no year", ErrMalformedDetails, releaseDate)
	}
	return year, nil
}

// PosterURL joins the image host base and a poster path with a single slash.
func PosterURL(imageBase, posterPath string) (string, error) {
	if posterPath == "" {
		return "", fmt.Errorf("%w: poster path missing", ErrMalformedDetails)
	}
	return strings.TrimRight(imageBase, "/") + "/" + strings.TrimLeft(posterPath, "/"), nil
}

// NewMovie builds an unrated movie from catalog details.
func NewMovie(d *Details, imageBase string) (*Movie, error) {
	if d == nil || strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("%w: title missing", ErrMalformedDetails)
	}
	year, err := ReleaseYear(d.ReleaseDate)
	if err != nil {
		return nil, err
	}
	poster, err := PosterURL(imageBase, d.PosterPath)
	if err != nil {
		return nil, err
	}
	return &Movie{
		Title:       d.Title,
		Year:        year,
		Description: d.Overview,
		PosterURL:   poster,
	}, nil
}

// RatingEventType defines the type of rating event.
type RatingEventType string

// Rating event types.
const (
	RatingEventTypePut    = RatingEventType("put")
	RatingEventTypeDelete = RatingEventType("delete")
)

// RatingEvent defines an event emitted when a movie review changes.
type RatingEvent struct {
	MovieID   MovieID         `json:"movieId"`
	Title     string          `json:"title,omitempty"`
	Rating    *float64        `json:"rating,omitempty"`
	Review    *string         `json:"review,omitempty"`
	EventType RatingEventType `json:"eventType"`
	Timestamp time.Time       `json:"timestamp"`
}

func (ev *RatingEvent) String() string {
	rating := "none"
	if ev.Rating != nil {
		rating = strconv.FormatFloat(*ev.Rating, 'f', -1, 64)
	}
	return fmt.Sprintf("RatingEvent{MovieID=%d, EventType=%s, Rating=%s}", ev.MovieID, ev.EventType, rating)
}
