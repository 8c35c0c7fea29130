package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gexatlas/gexatlas/internal/index"
	"github.com/gexatlas/gexatlas/internal/query"
)

func newMatrixCmd() *cobra.Command {
	var (
		genes      []string
		donors     []string
		tissues    []string
		outputFile string
		allSamples bool
	)

	cmd := &cobra.Command{
		Use:   "matrix <dataset>",
		Short: "Expression matrix for many genes over filtered samples",
		Long: `Matrix resolves each gene independently (unresolved genes are skipped)
and writes a samples-by-genes TSV. With both --donors and --tissues, rows
are the concatenation of per-pair filter results over the Cartesian
product of the two lists.`,
		Example: `  gexatlas matrix gtex --genes TP53,KRAS,EGFR
  gexatlas matrix gtex --genes TP53 --tissues Lung,Liver -o expr.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(genes) == 0 {
				return fmt.Errorf("--genes is required")
			}

			eng, _, _ := newEngine()
			if allSamples {
				eng.SetPolicy(index.All{})
			}

			res, err := eng.ExpressionMatrix(args[0], genes, donors, tissues)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outputFile != "" {
				out, err = os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer out.Close()
			}
			return writeTSV(out, res)
		},
	}

	cmd.Flags().StringSliceVar(&genes, "genes", nil, "Gene symbols or identifiers (comma-separated)")
	cmd.Flags().StringSliceVar(&donors, "donors", nil, "Donor identifiers (comma-separated)")
	cmd.Flags().StringSliceVar(&tissues, "tissues", nil, "Tissue labels (comma-separated)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&allSamples, "all-samples", false, "Keep all replicate samples per donor/tissue pair")

	return cmd
}

// writeTSV writes a matrix result with a sample column and one column per
// resolved gene.
func writeTSV(f *os.File, res *query.MatrixResult) error {
	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(w, "sample\t"+strings.Join(res.GeneIDs, "\t")); err != nil {
		return err
	}
	for i, sample := range res.SampleIDs {
		fields := make([]string, 0, len(res.GeneIDs)+1)
		fields = append(fields, sample)
		for j := range res.GeneIDs {
			fields = append(fields, strconv.FormatFloat(res.Values.At(i, j), 'g', -1, 64))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}
