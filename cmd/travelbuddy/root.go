package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avvvet/travelbuddy-intent/internal/config"
	"github.com/avvvet/travelbuddy-intent/internal/logger"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
)

var (
	offersDir    string
	outputFormat string
	verbose      bool
	version      = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "travelbuddy",
	Short: "Inspect the TravelBuddy NLU and offer retrieval offline",
	Long: `Run the TravelBuddy chatbot core from the command line.

Every command works on the offer documents in --offers (or OFFERS_DIR) and
needs no NATS, Redis or model access.

Quick Start:
  travelbuddy analyze "عايز فندق 5 نجوم في الغردقة"
  travelbuddy search "visa for istanbul"
  travelbuddy hotels hurghada --stars 5 --format yaml
  travelbuddy validate email someone@gmial.com`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if offersDir == "" {
			offersDir = config.Load().OffersDir
		}
		switch outputFormat {
		case formatText, formatJSON, formatYAML:
			return nil
		}
		return fmt.Errorf("unsupported format %q (use text, json or yaml)", outputFormat)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&offersDir, "offers", "", "Directory with offer JSON documents (default $OFFERS_DIR or ./offers)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", formatText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write structured logs to stdout and the log file")
}

func newLogger() logger.Logger {
	if !verbose {
		return logger.NewNop()
	}
	cfg := config.Load()
	return logger.NewZapLogger(cfg.LogFilePath, cfg.IsProduction())
}

func loadOffers() (*rag.Service, error) {
	svc := rag.NewService(offersDir, newLogger())
	if err := svc.LoadAll(); err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	return svc, nil
}
