// Package selector reduces an aggregation pool for display, either grouped
// by keyword or as a uniform random sample.
package selector

import (
	"math/rand/v2"

	"github.com/ppiankov/newsdesk/internal/aggregate"
)

// Display modes.
const (
	ModeFull   = "full"
	ModeSample = "sample"
)

// Group is the pooled entries fetched under one keyword.
type Group struct {
	Keyword string
	Entries []aggregate.Entry
}

// Partition groups pool entries by keyword. Groups appear in the order their
// keyword first appears in the pool and keep the pool's order within each
// group, so the total number of entries is unchanged.
func Partition(pool aggregate.Pool) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, e := range pool {
		i, ok := index[e.Keyword]
		if !ok {
			i = len(groups)
			index[e.Keyword] = i
			groups = append(groups, Group{Keyword: e.Keyword})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// Sampler draws uniform samples without replacement. It is not safe for
// concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a Sampler using rng, or a randomly seeded generator
// when rng is nil.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{rng: rng}
}

// NewSeededSampler returns a deterministic Sampler for reproducible draws.
func NewSeededSampler(seed1, seed2 uint64) *Sampler {
	return NewSampler(rand.New(rand.NewPCG(seed1, seed2)))
}

// Sample returns min(len(pool), k) distinct entries chosen uniformly at
// random; every entry is included with probability k/len(pool). The result
// is in draw order. pool is not modified. k <= 0 yields an empty sample.
func (s *Sampler) Sample(pool aggregate.Pool, k int) aggregate.Pool {
	if k <= 0 || len(pool) == 0 {
		return aggregate.Pool{}
	}
	if k > len(pool) {
		k = len(pool)
	}

	// Partial Fisher-Yates over a copy: after step i, work[:i+1] is a
	// uniform draw of i+1 entries.
	work := make(aggregate.Pool, len(pool))
	copy(work, pool)
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k:k]
}
