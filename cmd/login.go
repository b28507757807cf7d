package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Glenn-2k/holidaze/internal/config"
	"github.com/Glenn-2k/holidaze/internal/holidaze"
	"github.com/Glenn-2k/holidaze/internal/session"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Holidaze and store the access token locally",
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

			client := newClient(cfg, newLogger())
			auth, err := client.Login(ctx, email, password)
			if err != nil {
				return err
			}

			rec := session.Record{
				ID:           session.CLISessionID,
				ProfileName:  auth.Name,
				Email:        auth.Email,
				AccessToken:  auth.AccessToken,
				VenueManager: auth.VenueManager,
			}
			if err := store.Save(ctx, rec); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "signed in as %s\n", auth.Name)
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "profile email")
	c.Flags().StringVar(&password, "password", "", "profile password")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored access token",
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

			if err := store.Delete(ctx, session.CLISessionID); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "signed out")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var name, email, password string
	var manager bool

	c := &cobra.Command{
		Use:   "register",
		Short: "Create a Holidaze profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			client := newClient(cfg, newLogger())
			auth, err := client.Register(cmd.Context(), holidaze.RegisterRequest{
				Name:         name,
				Email:        email,
				Password:     password,
				VenueManager: manager,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "registered %s, run `holidaze login` to sign in\n", auth.Name)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "profile name")
	c.Flags().StringVar(&email, "email", "", "stud.noroff.no email")
	c.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	c.Flags().BoolVar(&manager, "venue-manager", false, "register as venue manager")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
