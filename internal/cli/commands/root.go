// Package commands wires the sqlitefs command-line surface on top of the
// store API. The CLI owns the retry policy and the exit status; the store
// itself does neither.
package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/silverdaz/pg-sqlite-fs/internal/config"
	"github.com/silverdaz/pg-sqlite-fs/internal/store"
	"github.com/silverdaz/pg-sqlite-fs/internal/util"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	buildDate := formatBuildDate(date)
	if strings.HasSuffix(version, "-dev") {
		return fmt.Sprintf("%s (%s, epoch: %s, commit: %s)", version, buildDate, date, commit)
	}
	return fmt.Sprintf("%s (%s)", version, buildDate)
}

func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).Format("2006-01-02")
}

var (
	flagConfig      string
	flagLocation    string
	flagBusyTimeout int
	flagRetries     uint
	flagVerbose     bool

	fsStore *store.Store
)

var rootCmd = &cobra.Command{
	Use:   "sqlitefs",
	Short: "Manage SQLite filesystem index files",
	Long: `sqlitefs creates and maintains SQLite files describing a virtual
filesystem tree: entries, encrypted payload locations, and extended
attributes. Every store file must live under the configured location.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}

		cfg, err := buildConfig()
		if err != nil {
			return err
		}

		fsStore, err = store.New(cfg)
		return err
	},
}

// buildConfig assembles the effective configuration: the config file first,
// then flag overrides on top.
func buildConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flagLocation != "" {
		cfg.Location = flagLocation
	}
	if flagBusyTimeout > 0 {
		cfg.BusyTimeout = flagBusyTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withRetry runs a store operation with the CLI retry policy. With
// --retries=1 (the default) the operation runs exactly once.
func withRetry(ctx context.Context, fn func() error) error {
	return util.Retry(ctx, fn, util.StoreRetryOptions(ctx, flagRetries)...)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("sqlitefs version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&flagLocation, "location", "l", "", "directory that confines store files (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagBusyTimeout, "busy-timeout", 0, "SQLite busy timeout in milliseconds (overrides config)")
	rootCmd.PersistentFlags().UintVar(&flagRetries, "retries", 1, "attempts per operation when the store is locked")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
