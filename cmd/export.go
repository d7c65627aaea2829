package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/export"
	"github.com/sells-group/fgo-harvest/internal/harvest"
	"github.com/sells-group/fgo-harvest/internal/snapshot"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write clean snapshots to an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		servants, skills, err := cleanRecords(snapshot.NewStore(cfg.DataDir), cfg, harvest.EntityAll, true)
		if err != nil {
			return err
		}
		if err := export.WriteWorkbook(exportOut, servants, skills); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("servants", len(servants)),
			zap.Int("skills", len(skills)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "fgo.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
