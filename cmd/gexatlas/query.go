package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gexatlas/gexatlas/internal/index"
	"github.com/gexatlas/gexatlas/internal/registry"
)

func newQueryCmd() *cobra.Command {
	var (
		donor      string
		tissue     string
		allSamples bool
		listAxis   string
	)

	cmd := &cobra.Command{
		Use:   "query <dataset> <gene>",
		Short: "Summary expression statistics for one gene",
		Long: `Query resolves the gene token (symbol or Ensembl identifier, optionally
versioned) against the dataset and prints summary statistics over the
matching samples. With both --donor and --tissue, replicates collapse to
the first matching sample unless --all-samples aggregates across them.`,
		Example: `  gexatlas query gtex TP53
  gexatlas query gtex ENSG00000141510 --tissue lung
  gexatlas query gtex TP53 --donor GTEX-1117F --tissue Lung --all-samples
  gexatlas query gtex --list tissues`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, reg, _ := newEngine()

			if listAxis != "" {
				return runList(reg, args[0], listAxis)
			}
			if len(args) < 2 {
				return fmt.Errorf("gene argument required")
			}

			if allSamples {
				eng.SetPolicy(index.All{})
			}

			stats, err := eng.GeneExpression(args[0], args[1], donor, tissue)
			if err != nil {
				return err
			}
			if stats == nil {
				fmt.Fprintf(os.Stderr, "No result for %q in %q (unresolved gene or no matching samples).\n", args[1], args[0])
				fmt.Fprintf(os.Stderr, "Hint: gexatlas query %s --list tissues\n", args[0])
				return nil
			}

			fmt.Printf("gene\t%s\n", stats.ID)
			fmt.Printf("samples\t%d\n", stats.SampleCount)
			fmt.Printf("mean\t%g\n", stats.Mean)
			fmt.Printf("median\t%g\n", stats.Median)
			fmt.Printf("min\t%g\n", stats.Min)
			fmt.Printf("max\t%g\n", stats.Max)
			fmt.Printf("std\t%g\n", stats.Std)
			return nil
		},
	}

	cmd.Flags().StringVar(&donor, "donor", "", "Restrict to one donor identifier")
	cmd.Flags().StringVar(&tissue, "tissue", "", "Restrict to a tissue (exact, case-insensitive, then substring match)")
	cmd.Flags().BoolVar(&allSamples, "all-samples", false, "Aggregate over all replicate samples instead of one representative")
	cmd.Flags().StringVar(&listAxis, "list", "", "List an axis instead of querying: tissues or donors")

	return cmd
}

func runList(reg *registry.Registry, dataset, axis string) error {
	var values []string
	var err error
	switch strings.ToLower(axis) {
	case "tissues":
		values, err = reg.ListTissues(dataset)
	case "donors":
		values, err = reg.ListDonors(dataset)
	default:
		return fmt.Errorf("unknown axis %q (use tissues or donors)", axis)
	}
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Println(v)
	}
	return nil
}
