package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silverdaz/pg-sqlite-fs/internal/store"
)

var insertEntryFlags struct {
	inode         int64
	name          string
	parent        int64
	ctime         int64
	mtime         int64
	nlink         int
	size          int64
	isDir         bool
	decryptedSize string
}

var insertEntryCmd = &cobra.Command{
	Use:   "insert-entry <store>",
	Short: "Insert or replace a directory-tree entry",
	Long: `Insert or replace the entry identified by --inode. The row is replaced
wholesale, so a rename or move is expressed by supplying every field again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry := &store.Entry{
			Inode:       insertEntryFlags.inode,
			Name:        insertEntryFlags.name,
			ParentInode: insertEntryFlags.parent,
			Ctime:       insertEntryFlags.ctime,
			Mtime:       insertEntryFlags.mtime,
			Nlink:       insertEntryFlags.nlink,
			Size:        insertEntryFlags.size,
			IsDir:       insertEntryFlags.isDir,
		}
		if cmd.Flags().Changed("decrypted-size") {
			entry.DecryptedSize = &insertEntryFlags.decryptedSize
		}

		ctx := cmd.Context()
		if err := withRetry(ctx, func() error {
			return fsStore.UpsertEntry(ctx, args[0], entry)
		}); err != nil {
			return err
		}
		fmt.Printf("Upserted entry %d (%s)\n", entry.Inode, entry.Name)
		return nil
	},
}

var deleteEntryCmd = &cobra.Command{
	Use:   "delete-entry <store> <inode>",
	Short: "Delete an entry and its direct children",
	Long: `Delete the entry with the given inode together with its immediate
children. Deeper descendants are not touched; remove a whole subtree by
deleting bottom-up.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inode, err := parseInode(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := withRetry(ctx, func() error {
			return fsStore.DeleteEntrySubtree(ctx, args[0], inode)
		}); err != nil {
			return err
		}
		fmt.Printf("Deleted entry %d and its direct children\n", inode)
		return nil
	},
}

func init() {
	f := insertEntryCmd.Flags()
	f.Int64Var(&insertEntryFlags.inode, "inode", 0, "inode number (required)")
	f.StringVar(&insertEntryFlags.name, "name", "", "entry name (required)")
	f.Int64Var(&insertEntryFlags.parent, "parent", 0, "parent inode (required)")
	f.Int64Var(&insertEntryFlags.ctime, "ctime", 0, "creation time, seconds since epoch")
	f.Int64Var(&insertEntryFlags.mtime, "mtime", 0, "modification time, seconds since epoch")
	f.IntVar(&insertEntryFlags.nlink, "nlink", 1, "link count")
	f.Int64Var(&insertEntryFlags.size, "size", 0, "apparent size in bytes")
	f.BoolVar(&insertEntryFlags.isDir, "dir", false, "entry is a directory")
	f.StringVar(&insertEntryFlags.decryptedSize, "decrypted-size", "", "decrypted size expression")
	_ = insertEntryCmd.MarkFlagRequired("inode")
	_ = insertEntryCmd.MarkFlagRequired("name")
	_ = insertEntryCmd.MarkFlagRequired("parent")

	rootCmd.AddCommand(insertEntryCmd)
	rootCmd.AddCommand(deleteEntryCmd)
}
