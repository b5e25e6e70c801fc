package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/relationalize/relationalize/cmd/flatten"
	"github.com/relationalize/relationalize/cmd/schema"
	"github.com/relationalize/relationalize/internal/logger"
	"github.com/relationalize/relationalize/internal/version"
	"github.com/spf13/cobra"
)

var Debug bool

// Build-time variables set via ldflags
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var RootCmd = &cobra.Command{
	Use:   "relationalize",
	Short: "Flatten JSON documents into relational tables and infer SQL schemas",
	Long: fmt.Sprintf(`relationalize flattens nested JSON documents into a set of
relational tables linked by generated join keys, and infers a polymorphic
SQL schema from the resulting flat rows.

Version: %s@%s %s %s

Commands:
  flatten  Flatten newline-delimited JSON documents into relational tables
  schema   Infer a SQL schema from flattened rows and emit DDL

Use "relationalize [command] --help" for more information about a command.`,
		version.Version(), GitCommit, platform(), BuildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(flatten.Cmd)
	RootCmd.AddCommand(schema.Cmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	level := slog.LevelWarn
	if Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger.SetGlobal(slog.New(handler), Debug)
}

// platform returns the OS/architecture combination
func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
