package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           "qasummary",
		Short:         "Parse interview transcripts and summarize candidates",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return loadDotEnv(".env")
		},
	}

	command.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	command.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	command.AddCommand(
		newParseCommand(),
		newFormatCommand(),
		newSummarizeCommand(),
		newWatchCommand(),
		newValidateCommand(),
		newMigrateCommand(),
	)
	return command
}

func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
	slog.SetDefault(logger)
}

// loadDotEnv reads environment variables from path when it exists.
// Variables that are already set win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	slog.Default().Debug("loaded environment file", "path", path)
	return nil
}
