// Package cmd implements the CLI commands for blockpipe using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/blockpipe/core/config"
	"github.com/gaurav-prasanna/blockpipe/core/parser"
	"github.com/gaurav-prasanna/blockpipe/core/registry"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "blockpipe",
	Short: "blockpipe: parse, validate and re-serialize block documents",
	Long: `blockpipe reads documents made of comment-delimited blocks, validates every
block against its registered definition, migrates blocks written by older
definitions, and writes the result as serialized markup, JSON, Markdown or a
PDF validation report.

Usage:
  blockpipe convert <file|url> [flags]
  blockpipe validate <file|url>`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration file (default: ./"+config.ConfigFileName+" if present)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config, or blockpipe.yaml from the working directory
// when it exists.
func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.LoadFile(flagConfig)
	}
	cfg, err := config.Load(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// newParser builds the pipeline from configuration.
func newParser() (*parser.Parser, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	log := cfg.Logger()

	reg := registry.New()
	if err := registry.RegisterCore(reg, cfg.FreeformBlock, cfg.UnregisteredBlock); err != nil {
		return nil, nil, fmt.Errorf("registering block types: %w", err)
	}

	p := parser.New(reg, parser.Options{
		FreeformName:     cfg.FreeformBlock,
		UnregisteredName: cfg.UnregisteredBlock,
		DefaultNamespace: cfg.DefaultNamespace,
		SkipAutop:        cfg.SkipAutop,
		Strict:           cfg.Strict,
		Logger:           log,
	})
	return p, log, nil
}
