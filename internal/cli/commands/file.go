package commands

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
	"github.com/silverdaz/pg-sqlite-fs/internal/store"
)

var insertFileFlags struct {
	inode       int64
	mountpoint  string
	relPath     string
	header      string
	payloadSize int64
	prepend     string
	appendData  string
}

var insertFileCmd = &cobra.Command{
	Use:   "insert-file <store>",
	Short: "Insert or replace a payload record",
	Long: `Insert or replace the payload record for --inode: where the encrypted
payload lives (--mountpoint, --rel-path) and the opaque blobs served around
it. Blob flags take base64.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := &store.File{
			Inode:       insertFileFlags.inode,
			PayloadSize: insertFileFlags.payloadSize,
		}
		if cmd.Flags().Changed("mountpoint") {
			file.Mountpoint = &insertFileFlags.mountpoint
		}
		if cmd.Flags().Changed("rel-path") {
			file.RelPath = &insertFileFlags.relPath
		}

		var err error
		if file.Header, err = decodeBlobFlag("header", insertFileFlags.header); err != nil {
			return err
		}
		if file.Prepend, err = decodeBlobFlag("prepend", insertFileFlags.prepend); err != nil {
			return err
		}
		if file.Append, err = decodeBlobFlag("append", insertFileFlags.appendData); err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := withRetry(ctx, func() error {
			return fsStore.UpsertFile(ctx, args[0], file)
		}); err != nil {
			return err
		}
		fmt.Printf("Upserted file record %d\n", file.Inode)
		return nil
	},
}

var deleteFileCmd = &cobra.Command{
	Use:   "delete-file <store> <inode>",
	Short: "Delete a payload record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inode, err := parseInode(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := withRetry(ctx, func() error {
			return fsStore.DeleteFile(ctx, args[0], inode)
		}); err != nil {
			return err
		}
		fmt.Printf("Deleted file record %d\n", inode)
		return nil
	},
}

func decodeBlobFlag(name, value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s is not valid base64: %v", common.ErrValidation, name, err)
	}
	return data, nil
}

func parseInode(arg string) (int64, error) {
	inode, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || inode <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid inode", common.ErrValidation, arg)
	}
	return inode, nil
}

func init() {
	f := insertFileCmd.Flags()
	f.Int64Var(&insertFileFlags.inode, "inode", 0, "inode number (required)")
	f.StringVar(&insertFileFlags.mountpoint, "mountpoint", "", "mountpoint holding the payload")
	f.StringVar(&insertFileFlags.relPath, "rel-path", "", "payload path relative to the mountpoint")
	f.StringVar(&insertFileFlags.header, "header", "", "encryption header, base64")
	f.Int64Var(&insertFileFlags.payloadSize, "payload-size", 0, "payload size in bytes")
	f.StringVar(&insertFileFlags.prepend, "prepend", "", "bytes served before the payload, base64")
	f.StringVar(&insertFileFlags.appendData, "append", "", "bytes served after the payload, base64")
	_ = insertFileCmd.MarkFlagRequired("inode")

	rootCmd.AddCommand(insertFileCmd)
	rootCmd.AddCommand(deleteFileCmd)
}
