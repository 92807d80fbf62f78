package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/placeimages/internal/report"
)

func newReportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <run.yaml>",
		Short: "Print a saved run record",
		Example: `  # Human readable summary
  placeimages report runs/2025-03-14_09-00-00-1a2b3c4d.yaml

  # Locations needing curation as CSV
  placeimages report runs/2025-03-14_09-00-00-1a2b3c4d.yaml --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := report.LoadYAML(args[0])
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), record, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, or csv")

	return cmd
}
