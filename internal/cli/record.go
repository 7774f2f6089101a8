package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/popx/account-portal/internal/storage"
)

// NewRecordCommand groups the commands that act on one client's user record.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Show or clear a client's persisted user record",
	}
	cmd.AddCommand(newRecordShowCommand(rootOpts))
	cmd.AddCommand(newRecordClearCommand(rootOpts))
	return cmd
}

func newRecordShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <client-id>",
		Short: "Print the stored user as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, closeFn, err := openStore(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := storage.NewUserRecord(kv, args[0]).Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load record: %w", err)
			}
			if user == nil {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "no record for client %s\n", args[0])
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		},
	}
}

func newRecordClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <client-id>",
		Short: "Remove the stored user, signing the client out on next restore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, closeFn, err := openStore(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := storage.NewUserRecord(kv, args[0]).Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear record: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared record for client %s\n", args[0])
			return err
		},
	}
}
