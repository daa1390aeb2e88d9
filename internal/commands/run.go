package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proliance-rcm/phil/internal/config"
	"github.com/proliance-rcm/phil/internal/pipeline"
)

func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reconciliation pipeline over the configured input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			res, err := pipeline.Run(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("Run %s complete for payer %s\n", res.RunID, res.Payer)
			fmt.Printf("  files: %d, rows: %d (scrubbed to %d)\n",
				res.CombineStats.FilesRead, res.CombineStats.TotalRows, res.ScrubStats.RowsOut)
			fmt.Printf("  EFTs: %d (%d excluded)\n",
				len(res.Hierarchy.Order), len(res.Hierarchy.Excluded))
			for _, path := range res.ReportPaths {
				fmt.Printf("  report: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "phil.yaml", "path to phil.yaml")

	return cmd
}
