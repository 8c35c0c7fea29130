package consolidate

// PairOverlap reports the gene overlap between one unordered pair of input
// datasets: the common-gene count and that count as a percentage of each
// side's gene set.
type PairOverlap struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Common int     `json:"common_genes"`
	PctOfA float64 `json:"pct_of_a"`
	PctOfB float64 `json:"pct_of_b"`
}

// Stats summarizes one consolidation run.
type Stats struct {
	InputDatasets []string       `json:"input_datasets"`
	InputSamples  map[string]int `json:"input_samples"`
	InputGenes    map[string]int `json:"input_genes"`
	TotalSamples  int            `json:"total_samples"`
	TotalGenes    int            `json:"total_genes"`
	Overlaps      []PairOverlap  `json:"overlaps"`
	// Sparsity is the fraction of zero or structurally absent cells in the
	// consolidated matrix.
	Sparsity float64 `json:"sparsity"`
}

func computeStats(inputs []Input, totalRows, totalGenes, stored int) *Stats {
	s := &Stats{
		InputSamples: make(map[string]int, len(inputs)),
		InputGenes:   make(map[string]int, len(inputs)),
		TotalSamples: totalRows,
		TotalGenes:   totalGenes,
	}

	geneSets := make([]map[string]struct{}, len(inputs))
	for i, in := range inputs {
		s.InputDatasets = append(s.InputDatasets, in.Name)
		s.InputSamples[in.Name] = in.M.NumSamples()
		s.InputGenes[in.Name] = in.M.NumGenes()

		geneSets[i] = make(map[string]struct{}, in.M.NumGenes())
		for _, id := range in.M.GeneIDs() {
			geneSets[i][id] = struct{}{}
		}
	}

	for i := 0; i < len(inputs); i++ {
		for j := i + 1; j < len(inputs); j++ {
			common := 0
			for id := range geneSets[i] {
				if _, ok := geneSets[j][id]; ok {
					common++
				}
			}
			s.Overlaps = append(s.Overlaps, PairOverlap{
				A:      inputs[i].Name,
				B:      inputs[j].Name,
				Common: common,
				PctOfA: pct(common, len(geneSets[i])),
				PctOfB: pct(common, len(geneSets[j])),
			})
		}
	}

	if cells := totalRows * totalGenes; cells > 0 {
		s.Sparsity = 1 - float64(stored)/float64(cells)
	}
	return s
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
