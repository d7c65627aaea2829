package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/fgo-harvest/internal/snapshot"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stage snapshots in the data directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		infos, err := snapshot.NewStore(cfg.DataDir).List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintf(out, "no snapshots in %s\n", cfg.DataDir)
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ENTITY\tVERSION\tSTAGE\tSIZE\tMODIFIED")
		for _, i := range infos {
			version := i.Version
			if version == "" {
				version = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", i.Entity, version, i.Tag, i.Size, i.ModTime.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
