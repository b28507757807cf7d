package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Glenn-2k/holidaze/internal/booking"
	"github.com/Glenn-2k/holidaze/internal/config"
)

func newVenueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venue",
		Short: "Browse venues",
	}
	cmd.AddCommand(newVenueSearchCmd())
	cmd.AddCommand(newVenueShowCmd())
	cmd.AddCommand(newVenueWatchCmd())
	return cmd
}

func newVenueSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search venues by name and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			client := newClient(cfg, newLogger())
			venues, err := client.SearchVenues(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, v := range venues {
				fmt.Fprintf(os.Stdout, "%s  %-30q  %.0f/night  max %d guests\n", v.ID, v.Name, v.Price, v.MaxGuests)
			}
			if len(venues) == 0 {
				fmt.Fprintln(os.Stdout, "no venues matched")
			}
			return nil
		},
	}
}

func newVenueShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <venue-id>",
		Short: "Show a venue and its booked date ranges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := newLogger()

			d, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			provider, _ := cliProvider(ctx, store)

			client := newClient(cfg, logger)
			venue, err := client.Venue(ctx, args[0], false)
			if err != nil {
				return err
			}

			fetcher := booking.NewFetcher(client, provider, fetchPolicy(cfg), logger)
			idx, err := fetcher.BuildIndex(ctx, venue.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%s (%s)\n", venue.Name, venue.ID)
			fmt.Fprintf(os.Stdout, "%s\n", venue.Description)
			fmt.Fprintf(os.Stdout, "price %.0f/night, max %d guests, rating %.1f\n", venue.Price, venue.MaxGuests, venue.Rating)
			if idx.Len() == 0 {
				fmt.Fprintln(os.Stdout, "no booked dates")
				return nil
			}
			fmt.Fprintln(os.Stdout, "booked:")
			for _, iv := range idx.ExcludedIntervals() {
				fmt.Fprintf(os.Stdout, "  %s\n", iv)
			}
			return nil
		},
	}
}

func newVenueWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <venue-id>",
		Short: "Poll a venue's availability until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			logger := newLogger()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			provider, _ := cliProvider(ctx, store)

			client := newClient(cfg, logger)
			venue, err := client.Venue(ctx, args[0], false)
			if err != nil {
				return err
			}

			form := booking.NewForm(
				booking.VenueConstraints{VenueID: venue.ID, MaxGuests: venue.MaxGuests},
				booking.Deps{
					Submitter: client,
					Fetcher:   booking.NewFetcher(client, provider, fetchPolicy(cfg), logger),
					Sessions:  provider,
					Logger:    logger,
				},
			)

			r := &booking.Refresher{
				Form:     form,
				Interval: cfg.RefreshInterval,
				Logger:   logger,
				OnUpdate: func(n int) {
					fmt.Fprintf(os.Stdout, "%s: %d booked range(s)\n", venue.Name, n)
					for _, iv := range form.ExcludedIntervals() {
						fmt.Fprintf(os.Stdout, "  %s\n", iv)
					}
				},
			}
			if err := r.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func fetchPolicy(cfg config.Config) booking.FetchPolicy {
	if cfg.FetchFailClosed {
		return booking.FailClosed
	}
	return booking.FailOpen
}
