package index

import (
	"sort"
	"strings"
)

// FilterSamples returns the row positions matching the given constraints.
// Empty constraints match all rows. A donor must hit the donor index exactly.
// A tissue is matched in tiers: exact, then case-insensitive, then
// case-insensitive substring of an indexed tissue label; the first tier with
// any match wins and tiers are never unioned.
//
// When both constraints are given and more than one row matches, policy picks
// the representative rows; nil means First.
func (ix *Index) FilterSamples(donor, tissue string, policy RepresentativePolicy) []int {
	if donor == "" && tissue == "" {
		return ix.allRows()
	}

	var donorRows []int
	if donor != "" {
		if ix.donorRows == nil {
			return nil
		}
		donorRows = ix.donorRows[donor]
		if len(donorRows) == 0 {
			return nil
		}
	}

	var tissueRows []int
	if tissue != "" {
		tissueRows = ix.matchTissue(tissue)
		if len(tissueRows) == 0 {
			return nil
		}
	}

	var rows []int
	switch {
	case donor == "":
		rows = tissueRows
	case tissue == "":
		rows = donorRows
	default:
		rows = intersect(donorRows, tissueRows)
		if len(rows) > 1 {
			if policy == nil {
				policy = First{}
			}
			rows = policy.Pick(rows)
		}
	}
	return rows
}

// matchTissue applies the three tissue-matching tiers in order.
func (ix *Index) matchTissue(tissue string) []int {
	if ix.tissueRows == nil {
		return nil
	}
	if rows, ok := ix.tissueRows[tissue]; ok {
		return rows
	}
	lower := strings.ToLower(tissue)
	if rows, ok := ix.tissueLower[lower]; ok {
		return rows
	}
	var rows []int
	for _, indexed := range ix.Tissues() {
		if strings.Contains(strings.ToLower(indexed), lower) {
			rows = append(rows, ix.tissueRows[indexed]...)
		}
	}
	sort.Ints(rows)
	return rows
}

func (ix *Index) allRows() []int {
	rows := make([]int, ix.m.NumSamples())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// intersect merges two ascending row lists, keeping row-position order.
func intersect(a, b []int) []int {
	inB := make(map[int]struct{}, len(b))
	for _, r := range b {
		inB[r] = struct{}{}
	}
	var out []int
	for _, r := range a {
		if _, ok := inB[r]; ok {
			out = append(out, r)
		}
	}
	return out
}
