package hey

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// PairRatios is one pair's consensus ratio array for one organism, tagged
// with the pair's display label.
type PairRatios struct {
	Label  string
	Ratios []float64
}

// RatioSummary is the per-organism, per-pair descriptive-statistics row of
// the QC report.
type RatioSummary struct {
	Organism Organism `csv:"organism"`
	Pair     string   `csv:"pair"`
	N        int      `csv:"n"`
	Median   float64  `csv:"median_log2"`
	Mean     float64  `csv:"mean_log2"`
	StdDev   float64  `csv:"stddev_log2"`
	Q1       float64  `csv:"q1_log2"`
	Q3       float64  `csv:"q3_log2"`
}

// ComparisonResult holds the full ratio analysis over a sample set.
// Organisms or pairs with no consensus data are simply absent, never
// reported as zero rows.
type ComparisonResult struct {
	// ByOrganism preserves the fixed organism order; organisms without
	// data carry an empty slice.
	ByOrganism map[Organism][]PairRatios
	Pairs      []Pair
	Singlets   []string
}

// Compare pairs the samples and computes every organism's consensus ratio
// arrays. It fails only when pairing itself is impossible; per-organism
// "no data" outcomes leave the other organisms' results intact.
func Compare(samples []*Sample) (*ComparisonResult, error) {
	pairs, singlets, err := PairSamples(samples)
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{
		ByOrganism: make(map[Organism][]PairRatios, len(Organisms)),
		Pairs:      pairs,
		Singlets:   singlets,
	}
	for _, pair := range pairs {
		for _, organism := range Organisms {
			ratios := ConsensusRatios(pair.Low, pair.High, organism)
			if ratios == nil {
				continue
			}
			result.ByOrganism[organism] = append(result.ByOrganism[organism], PairRatios{
				Label:  pair.Label(),
				Ratios: ratios,
			})
		}
	}

	return result, nil
}

// Summaries flattens the result into report rows, ordered by organism then
// pair.
func (r *ComparisonResult) Summaries() []RatioSummary {
	var rows []RatioSummary
	for _, organism := range Organisms {
		for _, pr := range r.ByOrganism[organism] {
			rows = append(rows, Summarize(organism, pr.Label, pr.Ratios))
		}
	}

	return rows
}

// Summarize computes the descriptive statistics of one ratio array.
func Summarize(organism Organism, pairLabel string, ratios []float64) RatioSummary {
	row := RatioSummary{
		Organism: organism,
		Pair:     pairLabel,
		N:        len(ratios),
	}
	if len(ratios) == 0 {
		return row
	}

	row.Median = median(ratios)
	row.Mean, _ = stats.Mean(ratios)
	row.StdDev, _ = stats.StandardDeviation(ratios)

	sorted := append([]float64(nil), ratios...)
	sort.Float64s(sorted)
	row.Q1 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	row.Q3 = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	return row
}

// CountRow is one sample's protein identification counts by organism.
type CountRow struct {
	Sample string
	Counts map[Organism]int
}

// CountProteinIDs tallies identifications per sample per organism,
// including Unknown, ordered by sample name.
func CountProteinIDs(samples []*Sample) []CountRow {
	rows := make([]CountRow, 0, len(samples))
	for _, s := range samples {
		row := CountRow{Sample: s.Name, Counts: make(map[Organism]int)}
		for _, rec := range s.Records {
			row.Counts[rec.Organism]++
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Sample < rows[j].Sample })

	return rows
}

// OverlapCounts compares one organism's identifier sets between two
// samples.
type OverlapCounts struct {
	Shared int
	OnlyA  int
	OnlyB  int
}

// OverlapSummary reports shared and unique protein identifications between
// two samples, overall and per organism.
type OverlapSummary struct {
	SampleA     string
	SampleB     string
	Total       OverlapCounts
	PerOrganism map[Organism]OverlapCounts
}

// CompareIdentifications intersects the identifier sets of two samples. It
// considers every record with a non-empty identifier, regardless of
// intensity.
func CompareIdentifications(a, b *Sample) OverlapSummary {
	idsA := identifierSets(a)
	idsB := identifierSets(b)

	summary := OverlapSummary{
		SampleA:     a.Name,
		SampleB:     b.Name,
		PerOrganism: make(map[Organism]OverlapCounts, len(Organisms)),
	}
	summary.Total = overlap(idsA[""], idsB[""])
	for _, organism := range Organisms {
		summary.PerOrganism[organism] = overlap(idsA[string(organism)], idsB[string(organism)])
	}

	return summary
}

// identifierSets keys the overall set under "" and each organism's set
// under its label.
func identifierSets(s *Sample) map[string]map[string]bool {
	sets := map[string]map[string]bool{"": {}}
	for _, rec := range s.Records {
		if rec.ProteinID == "" {
			continue
		}
		sets[""][rec.ProteinID] = true
		orgSet, ok := sets[string(rec.Organism)]
		if !ok {
			orgSet = make(map[string]bool)
			sets[string(rec.Organism)] = orgSet
		}
		orgSet[rec.ProteinID] = true
	}

	return sets
}

func overlap(a, b map[string]bool) OverlapCounts {
	var counts OverlapCounts
	for id := range a {
		if b[id] {
			counts.Shared++
		} else {
			counts.OnlyA++
		}
	}
	for id := range b {
		if !a[id] {
			counts.OnlyB++
		}
	}

	return counts
}

func median(vals []float64) float64 {
	m, err := stats.Median(vals)
	if err != nil {
		return math.NaN()
	}

	return m
}
