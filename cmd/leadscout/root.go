package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/FranksOps/leadscout/internal/config"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Server
}

type rootFlags struct {
	configPath  string
	logLevel    string
	metricsPort int
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	a := &app{}

	root := &cobra.Command{
		Use:           "leadscout",
		Short:         "Find companies in a business category and collect their contact emails",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default leadscout.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().IntVar(&flags.metricsPort, "metrics-port", 0, "serve Prometheus metrics on this port")

	root.AddCommand(
		newSearchCmd(a),
		newLeadsCmd(a),
		newDraftCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, flags rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if cmd.Flags().Changed("metrics-port") {
		cfg.Metrics.Port = flags.metricsPort
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
	}

	logger, err := newLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	if cfg.Metrics.Port > 0 {
		a.metrics = metrics.Start(cfg.Metrics.Port, logger)
		logger.Info("serving metrics", zap.Int("port", cfg.Metrics.Port))
	}
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return a.metrics.Stop(context.WithoutCancel(ctx))
}

func newLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
