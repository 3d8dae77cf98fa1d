package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/parcel"
	"github.com/sells-group/residents-cli/internal/report"
	"github.com/sells-group/residents-cli/internal/tenure"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Report the tenure of every residential property use code",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stringFlag(cmd, "parcels", &cfg.Input.Parcels)
		stringFlag(cmd, "tenure-table", &cfg.Tenure.TablePath)
		out, _ := cmd.Flags().GetString("out")

		if err := cfg.Validate("classify"); err != nil {
			return err
		}

		parcels, stats, err := parcel.ReadFile(cfg.Input.Parcels)
		if err != nil {
			return err
		}
		zap.L().Info("parcels loaded", zap.String("path", cfg.Input.Parcels), zap.Int("parcels", stats.Parcels))

		table := tenure.DefaultTable()
		if cfg.Tenure.TablePath != "" {
			table, err = tenure.LoadTable(cfg.Tenure.TablePath)
			if err != nil {
				return err
			}
		}

		c := report.Classify(parcels, tenure.NewClassifier(table))
		h := reportHeader(cfg.Input.Parcels)
		if out == "" {
			return report.WriteClassification(cmd.OutOrStdout(), h, c)
		}
		if err := writeReport(out, func(w io.Writer) error {
			return report.WriteClassification(w, h, c)
		}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d property use codes -> %s\n", len(c.Codes), out)
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("parcels", "", "parcel table CSV (overrides input.parcels)")
	classifyCmd.Flags().String("tenure-table", "", "owned/rented property use code table, YAML (overrides tenure.table_path)")
	classifyCmd.Flags().String("out", "", "report output path (default stdout)")
	rootCmd.AddCommand(classifyCmd)
}
