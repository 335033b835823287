package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setAttrCmd = &cobra.Command{
	Use:   "set-attr <store> <inode> <name> <value>",
	Short: "Set an extended attribute",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		inode, err := parseInode(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := withRetry(ctx, func() error {
			return fsStore.UpsertAttribute(ctx, args[0], inode, args[2], args[3])
		}); err != nil {
			return err
		}
		fmt.Printf("Set attribute %s on inode %d\n", args[2], inode)
		return nil
	},
}

var delAttrCmd = &cobra.Command{
	Use:   "del-attr <store> <inode> <name>",
	Short: "Delete an extended attribute",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		inode, err := parseInode(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := withRetry(ctx, func() error {
			return fsStore.DeleteAttribute(ctx, args[0], inode, args[2])
		}); err != nil {
			return err
		}
		fmt.Printf("Deleted attribute %s from inode %d\n", args[2], inode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setAttrCmd)
	rootCmd.AddCommand(delAttrCmd)
}
