package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"topmovies/movie/configs"
	"topmovies/movie/internal/controller/movie"
	"topmovies/movie/internal/ingester/kafka"
	"topmovies/movie/pkg/model"
	"topmovies/pkg/logging"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search the movie catalog by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return errors.New("title must not be empty")
			}
			return ctx.withController(func(c *movie.Controller) error {
				candidates, err := c.Search(cmd.Context(), title)
				if err != nil {
					return describe(err)
				}
				if jsonOutput {
					return writeJSON(cmd, candidates)
				}
				if len(candidates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches")
					return nil
				}
				rows := make([][]string, 0, len(candidates))
				for _, m := range candidates {
					rows = append(rows, []string{strconv.FormatInt(m.ID, 10), m.Title, m.ReleaseDate})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Catalog ID", "Title", "Released"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <catalog-id>",
		Short: "Add a movie from the catalog to the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || catalogID <= 0 {
				return fmt.Errorf("invalid catalog id %q", args[0])
			}
			return ctx.withController(func(c *movie.Controller) error {
				m, err := c.Add(cmd.Context(), catalogID)
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d) as movie %s\n", m.Title, m.Year, m.ID)
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the ranked movie list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unknown format %q (use table or json)", format)
			}
			return ctx.withController(func(c *movie.Controller) error {
				movies, err := c.List(cmd.Context())
				if err != nil {
					return describe(err)
				}
				if format == "json" {
					return writeJSON(cmd, movies)
				}
				if len(movies) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No movies yet, add one with `topmovies add`")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMovies(movies))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}

func newRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <rating> <review>",
		Short: "Set the rating and review of a movie",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseMovieID(args[0])
			if err != nil {
				return err
			}
			rating, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
			if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) || rating < 0 || rating > movie.MaxRating {
				return fmt.Errorf("invalid rating %q (want a number from 0 to %d)", args[1], movie.MaxRating)
			}
			review := strings.Join(args[2:], " ")
			return ctx.withController(func(c *movie.Controller) error {
				if err := c.UpdateRating(cmd.Context(), id, rating, review); err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated movie %s %s\n", id, strconv.FormatFloat(rating, 'f', -1, 64))
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a movie from the list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseMovieID(args[0])
			if err != nil {
				return err
			}
			return ctx.withController(func(c *movie.Controller) error {
				if err := c.Delete(cmd.Context(), id); err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted movie %s\n", id)
				return nil
			})
		},
	}
}

func renderMovies(movies []*model.Movie) string {
	// Best first reads better in a terminal.
	rows := make([][]string, 0, len(movies))
	for i := len(movies) - 1; i >= 0; i-- {
		m := movies[i]
		rating, review := "-", ""
		if m.Rating != nil {
			rating = strconv.FormatFloat(*m.Rating, 'f', -1, 64)
		}
		if m.Review != nil {
			review = *m.Review
		}
		rows = append(rows, []string{
			strconv.Itoa(m.Rank),
			m.ID.String(),
			m.Title,
			strconv.Itoa(m.Year),
			rating,
			review,
		})
	}
	return renderTable(
		[]string{"Rank", "ID", "Title", "Year", "Rating", "Review"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func describe(err error) error {
	if errors.Is(err, movie.ErrGateway) {
		return fmt.Errorf("movie catalog unavailable (is %s set?): %w", configs.APIKeyEnv, err)
	}
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var broker string
	var group string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow rating events published by the movie service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if broker == "" {
				broker = cfg.MessengerConfig.Kafka.Address
			}
			if broker == "" {
				return errors.New("no Kafka broker configured (set messenger.kafka.address or --broker)")
			}
			logger, err := logging.New("warn")
			if err != nil {
				return err
			}
			ing, err := kafka.NewIngester(broker, group, cfg.MessengerConfig.Kafka.Topic, logger)
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			events, err := ing.Ingest(runCtx)
			if err != nil {
				return err
			}
			for ev := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ev.Timestamp.Local().Format(time.DateTime), ev.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&broker, "broker", "", "Kafka bootstrap servers (overrides the configuration)")
	cmd.Flags().StringVar(&group, "group", "topmovies-cli", "Kafka consumer group")
	return cmd
}
