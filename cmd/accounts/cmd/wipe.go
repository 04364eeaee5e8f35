package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var wipeConfirmed bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every account",
	Long:  `wipe irreversibly deletes every account. It needs ADMIN_WIPE_ENABLED=true and --yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wipeConfirmed {
			return errors.New("refusing to delete every account without --yes")
		}

		ctx := cmd.Context()
		repo, closeStore, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer closeStore()

		n, err := newAccountService(repo, nil, nil).WipeAccounts(ctx, "cli")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d accounts\n", n)
		return err
	},
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeConfirmed, "yes", false, "confirm the deletion")
	rootCmd.AddCommand(wipeCmd)
}
