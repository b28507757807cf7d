package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Glenn-2k/holidaze/internal/config"
)

func newBookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			d, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			provider, rec := cliProvider(ctx, store)
			if provider.Token() == "" {
				return fmt.Errorf("not signed in, run `holidaze login` first")
			}

			client := newClient(cfg, newLogger())
			bookings, err := client.ProfileBookings(ctx, provider.Token(), rec.ProfileName)
			if err != nil {
				return err
			}
			if len(bookings) == 0 {
				fmt.Fprintln(os.Stdout, "no bookings")
				return nil
			}
			for _, b := range bookings {
				name := b.VenueName()
				if name == "" {
					name = b.ForVenue()
				}
				fmt.Fprintf(os.Stdout, "%s  %s..%s  %d guest(s)  %s\n", b.ID, short(b.DateFrom), short(b.DateTo), b.Guests, name)
			}
			return nil
		},
	}
}

func short(iso string) string {
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}
