// Package cmd wires the holidaze CLI: a self-hosted front-end for the
// Holidaze booking API with a web UI and terminal commands for venues and
// bookings.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	"github.com/Glenn-2k/holidaze/internal/config"
	"github.com/Glenn-2k/holidaze/internal/db"
	"github.com/Glenn-2k/holidaze/internal/holidaze"
	"github.com/Glenn-2k/holidaze/internal/migrate"
	"github.com/Glenn-2k/holidaze/internal/session"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "holidaze",
		Short: "Browse, list and book Holidaze venues from a self-hosted UI or the terminal",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newServerCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newRegisterCmd())
	root.AddCommand(newVenueCmd())
	root.AddCommand(newBookCmd())
	root.AddCommand(newBookingsCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() log.Logger {
	return log.With(log.NewLogfmtLogger(os.Stderr), "ts", log.DefaultTimestampUTC)
}

func newClient(cfg config.Config, logger log.Logger) *holidaze.Client {
	return holidaze.New(holidaze.Config{
		BaseURL: cfg.APIBaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.APITimeout,
		Logger:  logger,
	})
}

// openStore connects to postgres, applies the schema and returns the session
// store. The caller owns closing the db.
func openStore(ctx context.Context, cfg config.Config) (*db.DB, *session.Store, error) {
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	store, err := session.NewStore(d, cfg.TokenPassphrase)
	if err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, store, nil
}

// cliProvider loads the CLI session, degrading to an empty token when no one
// is signed in.
func cliProvider(ctx context.Context, store *session.Store) (*session.Memory, session.Record) {
	rec, err := store.Get(ctx, session.CLISessionID)
	if err != nil {
		return session.NewMemory(""), session.Record{}
	}
	return session.NewMemory(rec.AccessToken), rec
}
