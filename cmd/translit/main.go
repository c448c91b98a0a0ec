package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"translit/internal"
	"translit/internal/di"
	"translit/internal/structures"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	debugMode  bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:           "translit",
	Short:         "Browse and manage your translation history",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "mirror the app log to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(historyCmd, listCmd, deleteCmd, copyCmd)
}

// withApp builds the application, runs fn with a context cancelled on
// SIGINT/SIGTERM and releases the app afterwards.
func withApp(fn func(ctx context.Context, app *internal.App) error) error {
	app, err := di.InitApp(&structures.CliFlags{
		ConfigPath: configPath,
		DebugMode:  debugMode,
		NoColor:    noColor,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fn(ctx, app)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
