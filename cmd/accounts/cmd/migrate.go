package cmd

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the credential store schema and exit",
	Long: `migrate applies the embedded goose migrations when STORE_BACKEND=postgres,
or creates the unique indexes when STORE_BACKEND=mongo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeStore, err := openStore(cmd.Context(), true)
		if err != nil {
			return err
		}
		closeStore()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
