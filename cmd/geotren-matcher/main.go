package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/geotren-matcher/config"
	"github.com/theoremus-urban-solutions/geotren-matcher/internal"
)

var (
	logger     zerolog.Logger
	cfg        *config.AppConfig
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "geotren-matcher",
	Short:         "Correlate live FGC train positions with the published timetable",
	Long:          "geotren-matcher polls the live train position feed, binds every train to the scheduled run it is operating and estimates its delay.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path (default config.yml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMatchCommand())
	rootCmd.AddCommand(newItineraryCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and sets up logging on stdout.
func loadConfig() error {
	return loadConfigTo(os.Stdout)
}

func loadConfigTo(w *os.File) error {
	if configPath != "" {
		if err := config.LoadAppConfigFrom(configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else if err := config.LoadAppConfig(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = &config.Config
	logger = internal.SetupLoggingWithWriter(cfg.Server.Environment, cfg.Server.LogLevel, w)
	return nil
}
