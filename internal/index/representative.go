package index

import (
	"math/rand"
	"strconv"
)

// RepresentativePolicy decides which rows stand for a donor/tissue group when
// replicates exist. Policies collapse a group to representatives; All keeps
// every replicate so callers can aggregate across them.
type RepresentativePolicy interface {
	// Name identifies the policy in cache keys and logs.
	Name() string
	// Pick selects representative rows from an ascending group of row
	// positions. Called only for groups of two or more rows.
	Pick(rows []int) []int
}

// First keeps the row with the smallest row position. This is the default:
// deterministic, but it undercounts sample depth for replicated pairs.
type First struct{}

// Name implements RepresentativePolicy.
func (First) Name() string { return "first" }

// Pick implements RepresentativePolicy.
func (First) Pick(rows []int) []int { return rows[:1] }

// RandomSeeded keeps one row chosen by a seeded generator, so repeat runs
// with the same seed pick the same representative.
type RandomSeeded struct {
	Seed int64
}

// Name implements RepresentativePolicy. The seed is part of the name: two
// differently seeded policies can pick different representatives, so anything
// keyed by policy (memoization included) must tell them apart.
func (p RandomSeeded) Name() string { return "random:" + strconv.FormatInt(p.Seed, 10) }

// Pick implements RepresentativePolicy.
func (p RandomSeeded) Pick(rows []int) []int {
	r := rand.New(rand.NewSource(p.Seed))
	i := r.Intn(len(rows))
	return rows[i : i+1]
}

// All keeps every replicate. Use it when statistics should aggregate across
// the whole donor/tissue group instead of a single representative.
type All struct{}

// Name implements RepresentativePolicy.
func (All) Name() string { return "all" }

// Pick implements RepresentativePolicy.
func (All) Pick(rows []int) []int { return rows }
