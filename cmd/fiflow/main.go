// Package main provides the fiflow command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is configured by the root command before any subcommand runs.
var logger = zap.NewNop()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logFile string
		quiet   bool
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "fiflow",
		Short: "ReactomeFI cancer cohort comparison workflow",
		Long: `fiflow drives the Cytoscape ReactomeFI app to cluster cancer-mutation
data into gene modules, computes the statistical overlap between two
cohorts' modules, runs Reactome pathway enrichment on the shared and
unshared gene groups, and exports pathway diagrams.

Cytoscape with the ReactomeFI app must be running and reachable through
its REST port before starting a run.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			level := zapcore.InfoLevel
			if quiet {
				level = zapcore.ErrorLevel
			}
			if debug {
				level = zapcore.DebugLevel
			}
			l, err := newLogger(level, logFile)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVarP(&logFile, "log", "l", "", "log file (default stderr)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log error messages")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log debug messages")
	cmd.MarkFlagsMutuallyExclusive("quiet", "debug")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.fiflow.yaml if present.
func initConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.SetConfigName(".fiflow")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// newLogger builds the CLI logger at the given level, writing to the log
// file when one is set.
func newLogger(level zapcore.Level, logFile string) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.StacktraceKey = ""
	config.EncoderConfig = encoderConfig
	if logFile != "" {
		config.OutputPaths = []string{logFile}
		config.ErrorOutputPaths = []string{logFile}
	}
	return config.Build()
}
