package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gexatlas/gexatlas/internal/consolidate"
	"github.com/gexatlas/gexatlas/internal/store"
)

func newConsolidateCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "consolidate <dataset>...",
		Short: "Merge datasets into one sparse matrix over the union of genes",
		Long: `Consolidate loads each named dataset, reports a per-dataset outcome, and
merges the ones that loaded into a single sparse matrix covering the
union of their gene sets. Genes a dataset never measured are stored as
structurally absent for its samples. The output file embeds per-pair
gene-overlap and sparsity statistics.`,
		Example: `  gexatlas consolidate gtex hpa tcga -o merged.duckdb`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFile == "" {
				return fmt.Errorf("--output is required")
			}

			_, reg, logger := newEngine()
			defer logger.Sync()

			// Per-item outcome; proceed with whatever loads.
			outcomes := reg.LoadAll(args)
			var inputs []consolidate.Input
			for _, name := range args {
				if err := outcomes[name]; err != nil {
					fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", name, err)
					continue
				}
				d, _ := reg.Get(name)
				inputs = append(inputs, consolidate.Input{Name: name, M: d.Matrix})
				fmt.Fprintf(os.Stderr, "Loaded %s: %d samples, %d genes\n",
					name, d.Matrix.NumSamples(), d.Matrix.NumGenes())
			}

			merged, stats, err := consolidate.Consolidate(inputs)
			if err != nil {
				return err
			}

			if err := store.Save(outputFile, merged); err != nil {
				return fmt.Errorf("writing consolidated matrix: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Consolidated %d datasets: %d samples x %d genes (sparsity %.1f%%)\n",
				len(inputs), stats.TotalSamples, stats.TotalGenes, 100*stats.Sparsity)
			for _, ov := range stats.Overlaps {
				fmt.Fprintf(os.Stderr, "  %s/%s: %d common genes (%.1f%% of %s, %.1f%% of %s)\n",
					ov.A, ov.B, ov.Common, ov.PctOfA, ov.A, ov.PctOfB, ov.B)
			}
			fmt.Printf("Wrote %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .duckdb file")

	return cmd
}
