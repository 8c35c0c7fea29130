package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets [name...]",
		Short: "List discoverable datasets, or load and describe the named ones",
		Example: `  gexatlas datasets                  # list dataset files in the data directory
  gexatlas datasets gtex hpa         # load and describe two datasets`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, _ := newEngine()

			if len(args) == 0 {
				stems, err := discoverStems(dataDir())
				if err != nil {
					return err
				}
				if len(stems) == 0 {
					fmt.Printf("No dataset files in %s\n", dataDir())
					return nil
				}
				for _, stem := range stems {
					fmt.Println(stem)
				}
				return nil
			}

			// Batch load with a per-item outcome; one failure never aborts
			// the rest.
			outcomes := reg.LoadAll(args)
			failed := 0
			for _, name := range args {
				if err := outcomes[name]; err != nil {
					failed++
					fmt.Printf("%s\tFAILED\t%v\n", name, err)
					continue
				}
				d, _ := reg.Get(name)
				fmt.Printf("%s\t%d samples\t%d genes\t%d tissues\t%d donors\n",
					name, d.Matrix.NumSamples(), d.Matrix.NumGenes(),
					len(d.Index.Tissues()), len(d.Index.Donors()))
			}
			if failed == len(args) {
				return fmt.Errorf("no datasets loaded")
			}
			return nil
		},
	}
}

// discoverStems lists the dataset name stems of the .duckdb files in a
// directory.
func discoverStems(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.duckdb"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	stems := make([]string, 0, len(matches))
	for _, m := range matches {
		stems = append(stems, strings.TrimSuffix(filepath.Base(m), ".duckdb"))
	}
	sort.Strings(stems)
	return stems, nil
}
