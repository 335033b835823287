package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <store>",
	Short: "Create a store file with the filesystem schema",
	Long: `Create the SQLite file at the given path and install the schema:
entries, files and extended_attributes, plus the root directory row.
Running it against an existing store is harmless; the schema statements
are idempotent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := withRetry(ctx, func() error {
			return fsStore.Create(ctx, args[0])
		}); err != nil {
			return err
		}
		fmt.Printf("Created store %s\n", args[0])
		return nil
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy <store>",
	Short: "Delete a store file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := fsStore.Destroy(args[0]); err != nil {
			return err
		}
		fmt.Printf("Destroyed store %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(destroyCmd)
}
