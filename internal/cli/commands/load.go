package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
	"github.com/silverdaz/pg-sqlite-fs/internal/store"
)

var loadFlags struct {
	source string
	query  string
}

var loadEntriesCmd = &cobra.Command{
	Use:   "load-entries <store>",
	Short: "Bulk load entries from another SQLite database",
	Long: `Run --query against the --source database and replay every produced
row into the entries table, upserting by inode. The query must yield exactly
nine columns: inode, name, parent_inode, decrypted_size, ctime, mtime,
nlink, size, is_dir — matched by position, not by name. The load is
all-or-nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoad(cmd.Context(), args[0], fsStore.LoadEntries)
	},
}

var loadFilesCmd = &cobra.Command{
	Use:   "load-files <store>",
	Short: "Bulk load payload records from another SQLite database",
	Long: `Run --query against the --source database and replay every produced
row into the files table, upserting by inode. The query must yield exactly
seven columns: inode, mountpoint, rel_path, header, payload_size, prepend,
append — matched by position. The load is all-or-nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoad(cmd.Context(), args[0], fsStore.LoadFiles)
	},
}

type loadFunc func(ctx context.Context, path string, src store.RowSource, query string) (int64, error)

func runLoad(ctx context.Context, path string, load loadFunc) error {
	if _, err := os.Stat(loadFlags.source); err != nil {
		return fmt.Errorf("%w: source database %s: %v", common.ErrValidation, loadFlags.source, err)
	}

	srcDB, err := sql.Open("libsql", "file:"+loadFlags.source)
	if err != nil {
		return fmt.Errorf("%w: cannot open source database: %v", common.ErrStoreOpen, err)
	}
	defer srcDB.Close()

	var count int64
	if err := withRetry(ctx, func() error {
		count, err = load(ctx, path, store.NewSQLRowSource(srcDB), loadFlags.query)
		return err
	}); err != nil {
		return err
	}
	fmt.Printf("Loaded %d rows into %s\n", count, path)
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{loadEntriesCmd, loadFilesCmd} {
		cmd.Flags().StringVar(&loadFlags.source, "source", "", "SQLite database to read rows from (required)")
		cmd.Flags().StringVar(&loadFlags.query, "query", "", "query producing the rows to load (required)")
		_ = cmd.MarkFlagRequired("source")
		_ = cmd.MarkFlagRequired("query")
		rootCmd.AddCommand(cmd)
	}
}
