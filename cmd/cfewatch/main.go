package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rmedina/cfewatch/internal/ai"
	"github.com/rmedina/cfewatch/internal/config"
	"github.com/rmedina/cfewatch/internal/notify"
	"github.com/rmedina/cfewatch/internal/portal"
	"github.com/rmedina/cfewatch/internal/run"
	"github.com/rmedina/cfewatch/internal/snapshot"
)

var (
	flagStateFile string
	flagCodes     []string
	flagHeadful   bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cfewatch",
		Short:         "Monitor CFE procurement procedures and notify changes via Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&flagStateFile, "state-file", "", "snapshot file path (overrides CFEWATCH_STATE_FILE)")
	cmd.Flags().StringSliceVar(&flagCodes, "codes", nil, "tracked procedure codes (overrides CFEWATCH_CODES)")
	cmd.Flags().BoolVar(&flagHeadful, "headful", false, "run Chrome with a visible window")

	return cmd
}

func newLogger() (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

func runOnce(ctx context.Context) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if flagStateFile != "" {
		cfg.StateFile = flagStateFile
	}
	if len(flagCodes) > 0 {
		cfg.Codes = flagCodes
	}
	if flagHeadful {
		cfg.Headful = true
	}

	extractor := portal.NewExtractor(logger, cfg.Headful)
	if err := extractor.Start(ctx); err != nil {
		return fmt.Errorf("start extractor: %w", err)
	}
	defer extractor.Close()

	driver := run.NewDriver(
		cfg.Codes,
		snapshot.NewStore(cfg.StateFile),
		extractor,
		notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, logger),
		ai.NewAnnotator(cfg.GeminiAPIKey, cfg.GeminiModel),
		logger,
	)

	report, err := driver.Run(ctx)
	if err != nil {
		return err
	}
	if len(report.ExtraRemoved) > 0 {
		return fmt.Errorf("integrity defect: %d observed identifiers were missing from the snapshot", len(report.ExtraRemoved))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
