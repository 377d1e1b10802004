package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"

	"topmovies/movie/pkg/model"
	movietest "topmovies/movie/pkg/testutil"
	"topmovies/pkg/discovery"
	"topmovies/pkg/discovery/memory"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
)

const (
	credential = "Bearer integration"
	imageBase  = "https://images.test/t/p/w500"
)

type catalogMovie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
}

var catalog = []catalogMovie{
	{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", PosterPath: "/heat.jpg", Overview: "A group of professional bank robbers."},
	{ID: 1817, Title: "Phone Booth", ReleaseDate: "2002-11-17", PosterPath: "/booth.jpg", Overview: "A publicist trapped in a phone booth."},
	{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", PosterPath: "/matrix.jpg", Overview: "A hacker learns the truth."},
}

func main() {
	log.Println("Starting the integration test")

	ctx := context.Background()
	logger := zap.NewNop()
	registry := memory.NewRegistry(logger)

	log.Println("Setting up the fake catalog and the movie service")

	catalogSrv := startCatalog()
	defer catalogSrv.Close()
	catalogAddr := strings.TrimPrefix(catalogSrv.URL, "http://")
	if err := registry.Register(ctx, discovery.GenerateInstanceID(movietest.CatalogServiceName), movietest.CatalogServiceName, catalogAddr); err != nil {
		log.Fatalf("register catalog: %v", err)
	}

	h, err := movietest.NewTestMovieHTTPServer(ctx, registry, credential, imageBase, logger)
	if err != nil {
		log.Fatalf("create movie service: %v", err)
	}
	movieSrv := httptest.NewServer(h)
	defer movieSrv.Close()
	c := &client{base: movieSrv.URL, http: movieSrv.Client()}

	log.Println("Searching the catalog via movie service")
	var candidates []model.Candidate
	c.mustDo(http.MethodGet, "/search?title="+url.QueryEscape("phone booth"), nil, http.StatusOK, &candidates)
	if len(candidates) != 1 || candidates[0].ID != 1817 {
		log.Fatalf("search mismatch: %+v", candidates)
	}

	log.Println("Adding movies from the catalog")
	ids := map[int64]model.MovieID{}
	for _, cm := range catalog {
		var added model.Movie
		c.mustDo(http.MethodPost, "/movies", map[string]any{"catalogId": cm.ID}, http.StatusCreated, &added)
		ids[cm.ID] = added.ID
	}

	log.Println("Retrieving an added movie")
	var heat model.Movie
	c.mustDo(http.MethodGet, "/movies/"+ids[949].String(), nil, http.StatusOK, &heat)
	wantHeat := model.Movie{
		ID:          ids[949],
		Title:       "Heat",
		Year:        1995,
		Description: "A group of professional bank robbers.",
		PosterURL:   imageBase + "/heat.jpg",
	}
	if diff := cmp.Diff(wantHeat, heat); diff != "" {
		log.Fatalf("get movie after add mismatch: %v", diff)
	}

	log.Println("Adding an unknown catalog id")
	c.mustDo(http.MethodPost, "/movies", map[string]any{"catalogId": 42}, http.StatusNotFound, nil)

	log.Println("Rating two of the movies")
	c.mustDo(http.MethodPut, "/movies/"+ids[949].String()+"/review", map[string]any{"rating": 5, "review": "Long."}, http.StatusNoContent, nil)
	c.mustDo(http.MethodPut, "/movies/"+ids[1817].String()+"/review", map[string]any{"rating": 8, "review": "Tense."}, http.StatusNoContent, nil)

	log.Println("Listing ranked movies")
	var listed []model.Movie
	c.mustDo(http.MethodGet, "/movies", nil, http.StatusOK, &listed)
	gotRanks := map[model.MovieID]int{}
	for _, m := range listed {
		gotRanks[m.ID] = m.Rank
	}
	wantRanks := map[model.MovieID]int{ids[603]: 1, ids[949]: 2, ids[1817]: 3}
	if diff := cmp.Diff(wantRanks, gotRanks); diff != "" {
		log.Fatalf("ranks mismatch: %v", diff)
	}
	if diff := cmp.Diff([]string{"The Matrix", "Heat", "Phone Booth"}, titles(listed), cmpopts.EquateEmpty()); diff != "" {
		log.Fatalf("list order mismatch: %v", diff)
	}

	log.Println("Deleting a movie")
	c.mustDo(http.MethodDelete, "/movies/"+ids[1817].String(), nil, http.StatusNoContent, nil)
	c.mustDo(http.MethodDelete, "/movies/"+ids[1817].String(), nil, http.StatusNotFound, nil)
	c.mustDo(http.MethodGet, "/movies/"+ids[1817].String(), nil, http.StatusNotFound, nil)

	c.mustDo(http.MethodGet, "/movies", nil, http.StatusOK, &listed)
	if len(listed) != 2 || listed[1].ID != ids[949] || listed[1].Rank != 2 {
		log.Fatalf("list after delete mismatch: %+v", listed)
	}

	log.Println("Integration test execution successful")
}

func titles(movies []model.Movie) []string {
	var res []string
	for _, m := range movies {
		res = append(res, m.Title)
	}
	return res
}

func startCatalog() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/movie", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != credential {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		query := strings.ToLower(req.URL.Query().Get("query"))
		results := []catalogMovie{}
		for _, m := range catalog {
			if strings.Contains(strings.ToLower(m.Title), query) {
				results = append(results, m)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"page": 1, "results": results})
	})
	mux.HandleFunc("GET /movie/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseInt(req.PathValue("id"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, m := range catalog {
			if m.ID == id {
				_ = json.NewEncoder(w).Encode(m)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) mustDo(method, path string, body any, wantStatus int, out any) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		log.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		log.Fatalf("%s %s: %v", method, path, fmt.Errorf("status %d, want %d", resp.StatusCode, wantStatus))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
}
