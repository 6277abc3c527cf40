package loto6

import (
	"fmt"
	"sort"
)

// LowNumberMax is the highest number counted as "low" by the high/low balance.
const LowNumberMax = 21

// PatternCount is how many draws fall into one pattern of a distribution.
type PatternCount struct {
	Label      string
	Count      int
	Percentage float64
}

type Distribution struct {
	Patterns []PatternCount
	// MaxIndex is the index of the most frequent pattern, the first one on ties.
	MaxIndex int
}

type SumDistribution struct {
	Ranges  []PatternCount
	Average float64
	Median  float64
	Min     int
	Max     int
}

type Statistics struct {
	Draws       int
	EvenOdd     Distribution
	HighLow     Distribution
	Sums        SumDistribution
	Consecutive Distribution
}

// sumRanges cover every possible sum of 6 distinct numbers out of 1-43.
var sumRanges = [][2]int{
	{21, 50}, {51, 80}, {81, 110}, {111, 140},
	{141, 170}, {171, 200}, {201, 230}, {231, 258},
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func newDistribution(counts []int, total int, label func(i int) string) Distribution {
	dist := Distribution{Patterns: make([]PatternCount, len(counts))}
	for i, c := range counts {
		dist.Patterns[i] = PatternCount{
			Label:      label(i),
			Count:      c,
			Percentage: percentage(c, total),
		}
		if c > counts[dist.MaxIndex] {
			dist.MaxIndex = i
		}
	}
	return dist
}

// AnalyzeEvenOdd counts draws by how many of their primary numbers are even.
func AnalyzeEvenOdd(records []DrawRecord) Distribution {
	counts := make([]int, 7)
	for _, r := range records {
		even := 0
		for _, n := range r.Numbers {
			if n%2 == 0 {
				even++
			}
		}
		counts[even]++
	}
	return newDistribution(counts, len(records), func(i int) string {
		return fmt.Sprintf("even %d : odd %d", i, 6-i)
	})
}

// AnalyzeHighLow counts draws by how many of their primary numbers are at
// most LowNumberMax.
func AnalyzeHighLow(records []DrawRecord) Distribution {
	counts := make([]int, 7)
	for _, r := range records {
		low := 0
		for _, n := range r.Numbers {
			if n <= LowNumberMax {
				low++
			}
		}
		counts[low]++
	}
	return newDistribution(counts, len(records), func(i int) string {
		return fmt.Sprintf("low %d : high %d", i, 6-i)
	})
}

// AnalyzeSums buckets the sum of the primary numbers of each draw.
func AnalyzeSums(records []DrawRecord) SumDistribution {
	counts := make([]int, len(sumRanges))
	sums := make([]int, 0, len(records))
	for _, r := range records {
		sum := 0
		for _, n := range r.Numbers {
			sum += n
		}
		sums = append(sums, sum)

		for i, rng := range sumRanges {
			if sum >= rng[0] && sum <= rng[1] {
				counts[i]++
				break
			}
		}
	}

	out := SumDistribution{Ranges: make([]PatternCount, len(sumRanges))}
	for i, rng := range sumRanges {
		out.Ranges[i] = PatternCount{
			Label:      fmt.Sprintf("%d-%d", rng[0], rng[1]),
			Count:      counts[i],
			Percentage: percentage(counts[i], len(records)),
		}
	}
	if len(sums) == 0 {
		return out
	}

	sort.Ints(sums)
	total := 0
	for _, s := range sums {
		total += s
	}
	out.Average = float64(total) / float64(len(sums))
	out.Min = sums[0]
	out.Max = sums[len(sums)-1]

	mid := len(sums) / 2
	if len(sums)%2 == 1 {
		out.Median = float64(sums[mid])
	} else {
		out.Median = float64(sums[mid-1]+sums[mid]) / 2
	}
	return out
}

// AnalyzeConsecutive counts draws by how many pairs of consecutive numbers
// their sorted primary numbers contain.
func AnalyzeConsecutive(records []DrawRecord) Distribution {
	counts := make([]int, 6)
	for _, r := range records {
		sorted := r.Numbers
		sort.Ints(sorted[:])

		pairs := 0
		for i := 1; i < len(sorted); i++ {
			if sorted[i]-sorted[i-1] == 1 {
				pairs++
			}
		}
		counts[pairs]++
	}
	return newDistribution(counts, len(records), func(i int) string {
		return fmt.Sprintf("%d pairs", i)
	})
}

func Analyze(records []DrawRecord) Statistics {
	return Statistics{
		Draws:       len(records),
		EvenOdd:     AnalyzeEvenOdd(records),
		HighLow:     AnalyzeHighLow(records),
		Sums:        AnalyzeSums(records),
		Consecutive: AnalyzeConsecutive(records),
	}
}
