package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
)

var truncateCmd = &cobra.Command{
	Use:   "truncate <store> <entries|files|attributes|all>",
	Short: "Empty one table, or all of them",
	Long: `Empty the named table. Truncating entries keeps the root directory
row, so the tree stays mountable. 'all' truncates files, attributes and
entries in that order.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		target := args[1]

		var fns []func(context.Context, string) error
		switch target {
		case "entries":
			fns = append(fns, fsStore.TruncateEntries)
		case "files":
			fns = append(fns, fsStore.TruncateFiles)
		case "attributes":
			fns = append(fns, fsStore.TruncateAttributes)
		case "all":
			fns = append(fns, fsStore.TruncateFiles, fsStore.TruncateAttributes, fsStore.TruncateEntries)
		default:
			return fmt.Errorf("%w: unknown truncate target %q", common.ErrValidation, target)
		}

		for _, fn := range fns {
			if err := withRetry(ctx, func() error { return fn(ctx, path) }); err != nil {
				return err
			}
		}
		fmt.Printf("Truncated %s in %s\n", target, path)
		return nil
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <store> <statement>",
	Short: "Run a raw SQL statement against a store",
	Long: `Run one SQL statement verbatim against the store, for repairs and
migrations the structured commands do not cover. No safety net beyond the
location check.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := withRetry(ctx, func() error {
			return fsStore.Exec(ctx, args[0], args[1])
		}); err != nil {
			return err
		}
		fmt.Println("Statement applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(truncateCmd)
	rootCmd.AddCommand(execCmd)
}
