package selector

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppiankov/newsdesk/internal/aggregate"
	"github.com/ppiankov/newsdesk/internal/source"
)

func makePool(counts map[string]int, order []string) aggregate.Pool {
	var pool aggregate.Pool
	for _, kw := range order {
		for i := range counts[kw] {
			pool = append(pool, aggregate.Entry{
				Keyword: kw,
				Item:    source.Item{Title: fmt.Sprintf("%s-%d", kw, i), Link: fmt.Sprintf("https://example.com/%s/%d", kw, i)},
			})
		}
	}
	return pool
}

func TestPartition(t *testing.T) {
	pool := makePool(map[string]int{"해운": 3, "물류": 2, "항만": 1}, []string{"해운", "물류", "항만"})

	groups := Partition(pool)

	require.Len(t, groups, 3)
	require.Equal(t, "해운", groups[0].Keyword)
	require.Equal(t, "물류", groups[1].Keyword)
	require.Equal(t, "항만", groups[2].Keyword)

	total := 0
	for _, g := range groups {
		total += len(g.Entries)
		for i, e := range g.Entries {
			require.Equal(t, g.Keyword, e.Keyword)
			require.Equal(t, fmt.Sprintf("%s-%d", g.Keyword, i), e.Title, "order within group")
		}
	}
	require.Equal(t, len(pool), total)
}

func TestPartition_Empty(t *testing.T) {
	require.Empty(t, Partition(nil))
}

func TestPartition_InterleavedKeywords(t *testing.T) {
	pool := aggregate.Pool{
		{Keyword: "a", Item: source.Item{Title: "a1"}},
		{Keyword: "b", Item: source.Item{Title: "b1"}},
		{Keyword: "a", Item: source.Item{Title: "a2"}},
	}
	groups := Partition(pool)
	require.Len(t, groups, 2)
	require.Equal(t, []string{"a1", "a2"}, []string{groups[0].Entries[0].Title, groups[0].Entries[1].Title})
	require.Equal(t, "b1", groups[1].Entries[0].Title)
}

func TestSample_SizeBound(t *testing.T) {
	s := NewSeededSampler(1, 2)
	for _, p := range []int{0, 1, 5, 20, 21, 100} {
		for _, k := range []int{0, 1, 5, 20, 50} {
			pool := makePool(map[string]int{"k": p}, []string{"k"})
			got := s.Sample(pool, k)
			require.Len(t, got, min(p, k), "P=%d K=%d", p, k)
		}
	}
}

func TestSample_NegativeK(t *testing.T) {
	pool := makePool(map[string]int{"k": 4}, []string{"k"})
	require.Empty(t, NewSeededSampler(1, 1).Sample(pool, -3))
}

func TestSample_DistinctAndUnmodified(t *testing.T) {
	pool := makePool(map[string]int{"a": 10, "b": 10}, []string{"a", "b"})
	before := make(aggregate.Pool, len(pool))
	copy(before, pool)

	got := NewSeededSampler(7, 7).Sample(pool, 8)

	seen := make(map[string]bool)
	for _, e := range got {
		require.False(t, seen[e.Link], "duplicate entry %s", e.Link)
		seen[e.Link] = true
	}
	require.Equal(t, before, pool, "input pool must not be reordered")
}

func TestSample_WholePoolWhenSmall(t *testing.T) {
	pool := makePool(map[string]int{"a": 3}, []string{"a"})
	got := NewSeededSampler(3, 4).Sample(pool, 20)
	require.ElementsMatch(t, pool, got)
}

func TestSample_Deterministic(t *testing.T) {
	pool := makePool(map[string]int{"a": 30}, []string{"a"})
	first := NewSeededSampler(42, 42).Sample(pool, 5)
	second := NewSeededSampler(42, 42).Sample(pool, 5)
	require.Equal(t, first, second)
}

func TestSample_Uniform(t *testing.T) {
	const (
		p      = 40
		k      = 10
		trials = 20000
	)
	pool := makePool(map[string]int{"u": p}, []string{"u"})
	s := NewSeededSampler(2024, 10)

	counts := make(map[string]int, p)
	for range trials {
		for _, e := range s.Sample(pool, k) {
			counts[e.Link]++
		}
	}

	// Each item is a Bernoulli(k/p) per trial; allow 5 standard deviations.
	want := float64(k) / float64(p)
	sd := math.Sqrt(want * (1 - want) / trials)
	require.Len(t, counts, p, "every item should be drawn at least once")
	for link, c := range counts {
		freq := float64(c) / trials
		require.InDelta(t, want, freq, 5*sd, "item %s frequency %.4f", link, freq)
	}
}

func TestNewSampler_RandomSeed(t *testing.T) {
	s := NewSampler(nil)
	require.NotNil(t, s.rng)
	pool := makePool(map[string]int{"a": 5}, []string{"a"})
	require.Len(t, s.Sample(pool, 2), 2)
}
