package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	harvestServantsVersion string
	harvestSkillsVersion   string
)

var harvestCmd = &cobra.Command{
	Use:       "harvest [servants|skills|all]",
	Short:     "Scrape servants and skills into stage snapshots",
	Long:      "Fetches list and detail data, combs failed records until they converge, and writes a snapshot after every stage. Existing snapshots are reused.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: entityArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if harvestServantsVersion != "" {
			cfg.Servants.Version = harvestServantsVersion
		}
		if harvestSkillsVersion != "" {
			cfg.Skills.Version = harvestSkillsVersion
		}
		if err := cfg.Validate("harvest"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		entity := entityArg(args)
		start := time.Now()
		if err := p.Run(ctx, entity); err != nil {
			return err
		}
		zap.L().Info("harvest complete",
			zap.String("entity", entity),
			zap.String("data_dir", cfg.DataDir),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	},
}

func init() {
	harvestCmd.Flags().StringVar(&harvestServantsVersion, "servants-version", "", "servant list version token (default from config)")
	harvestCmd.Flags().StringVar(&harvestSkillsVersion, "skills-version", "", "skill list version token (default from config)")
	rootCmd.AddCommand(harvestCmd)
}
