package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Glenn-2k/holidaze/internal/booking"
	"github.com/Glenn-2k/holidaze/internal/config"
)

func newBookCmd() *cobra.Command {
	var venueID, from, to string
	var guests int

	c := &cobra.Command{
		Use:   "book",
		Short: "Book a venue for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := newLogger()

			dateFrom, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("invalid --from (want YYYY-MM-DD)")
			}
			dateTo, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fmt.Errorf("invalid --to (want YYYY-MM-DD)")
			}

			d, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			provider, rec := cliProvider(ctx, store)
			if provider.Token() == "" {
				return fmt.Errorf("not signed in, run `holidaze login` first")
			}

			client := newClient(cfg, logger)
			venue, err := client.Venue(ctx, venueID, false)
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
			if err := form.Load(ctx); err != nil {
				return err
			}

			for _, res := range []booking.ValidationResult{
				form.SetDateFrom(dateFrom),
				form.SetDateTo(dateTo),
				form.SetGuests(guests),
			} {
				if !res.Valid {
					return fmt.Errorf("%s", res.Message)
				}
			}

			booked, res := form.Submit(ctx)
			if !res.Valid {
				return fmt.Errorf("%s", res.Message)
			}
			fmt.Fprintf(os.Stdout, "booked %s for %s: %s to %s, %d guest(s), booking id %s\n",
				venue.Name, rec.ProfileName, from, to, guests, booked.ID)
			return nil
		},
	}

	c.Flags().StringVar(&venueID, "venue", "", "venue id")
	c.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	c.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")
	c.Flags().IntVar(&guests, "guests", 1, "number of guests")
	_ = c.MarkFlagRequired("venue")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}
