package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Generate COOKIE_HASH_KEY, COOKIE_BLOCK_KEY and TOKEN_PASSPHRASE values",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([][]byte, 3)
			for i := range out {
				out[i] = make([]byte, 32)
				if _, err := rand.Read(out[i]); err != nil {
					return err
				}
			}
			fmt.Fprintf(os.Stdout, "export COOKIE_HASH_KEY=%s\n", base64.StdEncoding.EncodeToString(out[0]))
			fmt.Fprintf(os.Stdout, "export COOKIE_BLOCK_KEY=%s\n", base64.StdEncoding.EncodeToString(out[1]))
			fmt.Fprintf(os.Stdout, "export TOKEN_PASSPHRASE=%s\n", base64.StdEncoding.EncodeToString(out[2]))
			return nil
		},
	}
}
