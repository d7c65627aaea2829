package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/sink"
	"github.com/sells-group/fgo-harvest/internal/snapshot"
)

var importCmd = &cobra.Command{
	Use:       "import [servants|skills|all]",
	Short:     "Upsert clean snapshots into the configured sink",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: entityArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		servants, skills, err := cleanRecords(snapshot.NewStore(cfg.DataDir), cfg, entityArg(args), false)
		if err != nil {
			return err
		}

		s, err := sink.Open(ctx, cfg.Sink)
		if err != nil {
			return eris.Wrap(err, "import: open sink")
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Close(closeCtx); err != nil {
				zap.L().Warn("close sink", zap.Error(err))
			}
		}()

		var total sink.ImportResult
		if servants != nil {
			r := sink.ImportServants(ctx, s, servants)
			total.Succeeded += r.Succeeded
			total.Failed += r.Failed
		}
		if skills != nil {
			r := sink.ImportSkills(ctx, s, skills)
			total.Succeeded += r.Succeeded
			total.Failed += r.Failed
		}

		zap.L().Info("import complete",
			zap.String("driver", cfg.Sink.Driver),
			zap.Int("succeeded", total.Succeeded),
			zap.Int("failed", total.Failed),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
