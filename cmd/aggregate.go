package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/aggregate"
	"github.com/sells-group/residents-cli/internal/parcel"
	"github.com/sells-group/residents-cli/internal/report"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Collapse parcels that share a footprint into one row",
	Long: `Joins the parcel table with a resident mask on Roll Number and groups the
parcels by identical geometry, summing residents, dwelling units and living
area. Writes the aggregated CSV and, when asked, an aggregation report.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stringFlag(cmd, "parcels", &cfg.Input.Parcels)
		out, _ := cmd.Flags().GetString("out")
		reportPath, _ := cmd.Flags().GetString("report")
		residentsPath, _ := cmd.Flags().GetString("mask")
		if err := cfg.Validate("aggregate"); err != nil {
			return err
		}

		parcels, _, err := parcel.ReadFile(cfg.Input.Parcels)
		if err != nil {
			return err
		}
		counts, err := parcel.ReadResidentsFile(residentsPath)
		if err != nil {
			return err
		}
		joined, dropped := parcel.JoinResidents(parcels, counts)
		zap.L().Info("residents joined",
			zap.String("mask", residentsPath),
			zap.Int("kept", len(joined)),
			zap.Int("dropped", dropped),
		)

		before := 0
		for _, p := range joined {
			before += p.Residents
		}

		groups, stats := aggregate.ByGeometry(joined)
		if err := aggregate.WriteCSVFile(out, groups); err != nil {
			return err
		}
		if reportPath != "" {
			err := writeReport(reportPath, func(w io.Writer) error {
				return report.WriteAggregation(w, reportHeader(cfg.Input.Parcels), groups, stats, before)
			})
			if err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d parcels -> %d locations -> %s\n", stats.Parcels, len(groups), out)
		return nil
	},
}

func init() {
	f := aggregateCmd.Flags()
	f.String("parcels", "", "parcel table CSV (overrides input.parcels)")
	f.String("mask", "", "resident mask CSV produced by allocate (required)")
	f.String("out", "residential_parcels_aggregated.csv", "aggregated CSV output path")
	f.String("report", "", "optional aggregation report output path")
	_ = aggregateCmd.MarkFlagRequired("mask")
	rootCmd.AddCommand(aggregateCmd)
}
