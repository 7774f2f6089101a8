package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/popx/account-portal/internal/auth"
)

// ClientOptions holds flags for the client commands.
type ClientOptions struct {
	*RootOptions
	Secret string
	TTL    time.Duration
}

// NewClientCommand groups commands about browser client identities.
func NewClientCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage client identities",
	}

	token := &cobra.Command{
		Use:   "token [client-id]",
		Short: "Mint a client cookie value",
		Long: `Mint the signed cookie value that binds a browser to a client id.
Without an argument a fresh client id is generated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := auth.NewClientID()
			if len(args) == 1 {
				clientID = args[0]
			}
			if opts.Secret == "" {
				return fmt.Errorf("--secret or AUTH_CLIENT_TOKEN_SECRET is required")
			}

			signed, expiresAt, err := auth.NewClientTokens(opts.Secret, opts.TTL).Issue(clientID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "client:  %s\nexpires: %s\ntoken:   %s\n",
				clientID, expiresAt.UTC().Format(time.RFC3339), signed)
			return err
		},
	}
	token.Flags().StringVar(&opts.Secret, "secret", os.Getenv("AUTH_CLIENT_TOKEN_SECRET"), "token signing secret")
	token.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")

	cmd.AddCommand(token)
	return cmd
}
