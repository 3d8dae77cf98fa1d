package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/allocate"
	"github.com/sells-group/residents-cli/internal/household"
	"github.com/sells-group/residents-cli/internal/parcel"
	"github.com/sells-group/residents-cli/internal/report"
	"github.com/sells-group/residents-cli/internal/tenure"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate neighbourhood populations to parcels",
	Long: `Reads the parcel table, optionally joins a neighbourhood mask, and assigns
residents to every parcel with either the household pool method (pool) or the
dwelling quota method (quota). Writes the resident mask CSV and, when asked, a
point shapefile and an audit report.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stringFlag(cmd, "parcels", &cfg.Input.Parcels)
		stringFlag(cmd, "mask", &cfg.Input.Mask)
		stringFlag(cmd, "households", &cfg.Input.Households)
		stringFlag(cmd, "tenure-table", &cfg.Tenure.TablePath)
		stringFlag(cmd, "method", &cfg.Allocation.Method)
		stringFlag(cmd, "quota-mode", &cfg.Allocation.QuotaMode)
		stringFlag(cmd, "out", &cfg.Output.Path)
		stringFlag(cmd, "shapefile", &cfg.Output.Shapefile)
		stringFlag(cmd, "report", &cfg.Output.Report)
		if cmd.Flags().Changed("seed") {
			cfg.Allocation.Seed, _ = cmd.Flags().GetUint64("seed")
		}

		if err := cfg.Validate("allocate"); err != nil {
			return err
		}
		return runAllocate(cmd.OutOrStdout())
	},
}

func runAllocate(out io.Writer) error {
	log := zap.L().With(zap.String("parcels", cfg.Input.Parcels))

	parcels, stats, err := parcel.ReadFile(cfg.Input.Parcels)
	if err != nil {
		return err
	}
	log.Info("parcels loaded",
		zap.Int("rows", stats.Rows),
		zap.Int("parcels", stats.Parcels),
		zap.Int("defaulted_units", stats.DefaultedUnits),
		zap.Int("missing_neighbourhood", stats.MissingNeighbour),
		zap.Int("ragged_rows", stats.RaggedRows),
	)

	if cfg.Input.Mask != "" {
		mask, err := parcel.ReadMaskFile(cfg.Input.Mask)
		if err != nil {
			return err
		}
		var dropped int
		parcels, dropped = parcel.Join(parcels, mask)
		log.Info("mask joined", zap.String("mask", cfg.Input.Mask), zap.Int("kept", len(parcels)), zap.Int("dropped", dropped))
	}

	table := tenure.DefaultTable()
	if cfg.Tenure.TablePath != "" {
		table, err = tenure.LoadTable(cfg.Tenure.TablePath)
		if err != nil {
			return err
		}
	}

	method, err := allocate.ParseMethod(cfg.Allocation.Method)
	if err != nil {
		return err
	}
	mode, err := allocate.ParseQuotaMode(cfg.Allocation.QuotaMode)
	if err != nil {
		return err
	}

	opts := allocate.Options{
		Method:     method,
		Seed:       cfg.Allocation.Seed,
		QuotaMode:  mode,
		Classifier: tenure.NewClassifier(table),
	}
	if method == allocate.MethodPool {
		opts.Distribution, err = household.LoadDistribution(cfg.Input.Households)
		if err != nil {
			return err
		}
	}

	engine, err := allocate.New(opts)
	if err != nil {
		return err
	}
	res, err := engine.Run(parcels)
	if err != nil {
		return eris.Wrap(err, "allocate")
	}

	if err := parcel.WriteCSVFile(cfg.Output.Path, res.Parcels); err != nil {
		return err
	}
	if cfg.Output.Shapefile != "" {
		written, skipped, err := parcel.WriteShapefile(cfg.Output.Shapefile, res.Parcels)
		if err != nil {
			return err
		}
		log.Info("shapefile written", zap.String("path", cfg.Output.Shapefile), zap.Int("points", written), zap.Int("skipped", skipped))
	}
	if cfg.Output.Report != "" {
		err := writeReport(cfg.Output.Report, func(w io.Writer) error {
			return report.WriteAudit(w, reportHeader(cfg.Input.Parcels), res)
		})
		if err != nil {
			return err
		}
	}

	pop, assigned := res.Totals()
	fmt.Fprintf(out, "run %s: %d parcels, %d neighbourhoods, population %d, assigned %d -> %s\n",
		res.RunID, len(res.Parcels), len(res.Summaries), pop, assigned, cfg.Output.Path)
	return nil
}

func init() {
	f := allocateCmd.Flags()
	f.String("parcels", "", "parcel table CSV (overrides input.parcels)")
	f.String("mask", "", "neighbourhood mask CSV joined on Roll Number (overrides input.mask)")
	f.String("households", "", "household size distribution, CSV or XLSX (overrides input.households)")
	f.String("tenure-table", "", "owned/rented property use code table, YAML (overrides tenure.table_path)")
	f.String("method", "pool", "allocation method: pool or quota")
	f.Uint64("seed", 42, "random seed for the pool method")
	f.String("quota-mode", "faithful", "quota rounding: faithful or strict")
	f.String("out", "parcel_residents_mask.csv", "resident mask CSV output path")
	f.String("shapefile", "", "optional point shapefile output path")
	f.String("report", "", "optional audit report output path")
	rootCmd.AddCommand(allocateCmd)
}
