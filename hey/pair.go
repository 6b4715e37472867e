package hey

import (
	"errors"
	"regexp"
	"sort"
)

// ErrNotEnoughSamples is returned when fewer than two samples are given to
// pair.
var ErrNotEnoughSamples = errors.New("hey: need at least two samples to form a pair")

// errNamesUnrecognized signals that explicit-naming inference does not
// apply to the given sample set; callers fall back to intensity ranking.
var errNamesUnrecognized = errors.New("hey: sample names do not follow the dose-token convention")

// Pair is one (low-dose, high-dose) sample comparison. Pairs are derived
// per analysis run, never stored.
type Pair struct {
	Low  *Sample
	High *Sample
}

// Label names the pair in reports and chart axes.
func (p Pair) Label() string {
	return p.Low.Name + " vs " + p.High.Name
}

// PairStrategy infers (low, high) sample pairs from a sample set. Samples
// that cannot be paired are returned as singlets by name, never silently
// dropped.
type PairStrategy interface {
	InferPairs(samples []*Sample) (pairs []Pair, singlets []string, err error)
}

// Dose tokens from the HEY mix naming convention: E25/Y150 mark the
// low-E.coli mix, E100/Y75 the high. An optional separator may sit between
// the letter and the digits.
var (
	lowDoseRe   = regexp.MustCompile(`(?i)E[-_]?25|Y[-_]?150`)
	highDoseRe  = regexp.MustCompile(`(?i)E[-_]?100|Y[-_]?75`)
	mixSuffixRe = regexp.MustCompile(`(?i)(?:E[-_]?(?:25|100)|Y[-_]?(?:150|75))[-_](.*)`)
)

// ExplicitNamingStrategy pairs samples whose names carry dose tokens. When
// every sample classifies as low or high dose, same-mix replicates are
// paired by the suffix following the dose token; a sample with a missing or
// already-claimed suffix becomes a singlet. If no suffix pairing succeeds
// at all, the two groups are zipped in sorted order instead.
type ExplicitNamingStrategy struct{}

func (ExplicitNamingStrategy) InferPairs(samples []*Sample) ([]Pair, []string, error) {
	if len(samples) < 2 {
		return nil, nil, ErrNotEnoughSamples
	}

	byName := make(map[string]*Sample, len(samples))
	var lows, highs []string
	for _, s := range samples {
		byName[s.Name] = s
		switch {
		case lowDoseRe.MatchString(s.Name):
			lows = append(lows, s.Name)
		case highDoseRe.MatchString(s.Name):
			highs = append(highs, s.Name)
		default:
			return nil, nil, errNamesUnrecognized
		}
	}
	sort.Strings(lows)
	sort.Strings(highs)

	type mixSlot struct{ low, high string }
	slots := make(map[string]*mixSlot)
	var suffixOrder []string
	var singlets []string

	claim := func(name string, high bool) {
		m := mixSuffixRe.FindStringSubmatch(name)
		if m == nil || m[1] == "" {
			singlets = append(singlets, name)
			return
		}
		suffix := m[1]
		slot, ok := slots[suffix]
		if !ok {
			slot = &mixSlot{}
			slots[suffix] = slot
			suffixOrder = append(suffixOrder, suffix)
		}
		if high {
			if slot.high != "" {
				singlets = append(singlets, name)
				return
			}
			slot.high = name
		} else {
			if slot.low != "" {
				singlets = append(singlets, name)
				return
			}
			slot.low = name
		}
	}

	for _, name := range lows {
		claim(name, false)
	}
	for _, name := range highs {
		claim(name, true)
	}

	var pairs []Pair
	for _, suffix := range suffixOrder {
		slot := slots[suffix]
		if slot.low != "" && slot.high != "" {
			pairs = append(pairs, Pair{Low: byName[slot.low], High: byName[slot.high]})
			continue
		}
		if slot.low != "" {
			singlets = append(singlets, slot.low)
		}
		if slot.high != "" {
			singlets = append(singlets, slot.high)
		}
	}

	if len(pairs) > 0 {
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Low.Name < pairs[j].Low.Name })
		sort.Strings(singlets)
		return pairs, singlets, nil
	}

	// No suffix matched anywhere; zip the sorted groups index-by-index and
	// surface the leftovers.
	singlets = singlets[:0]
	n := len(lows)
	if len(highs) < n {
		n = len(highs)
	}
	pairs = make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, Pair{Low: byName[lows[i]], High: byName[highs[i]]})
	}
	for _, name := range lows[n:] {
		singlets = append(singlets, name)
	}
	for _, name := range highs[n:] {
		singlets = append(singlets, name)
	}
	sort.Strings(singlets)

	return pairs, singlets, nil
}

// MedianIntensityStrategy ranks samples by their median positive intensity,
// ignoring the stable organism, and pairs them in sorted low→high order.
// It is the fallback when filenames carry no dose tokens.
type MedianIntensityStrategy struct {
	// Stable is the organism excluded from the ranking because its
	// concentration does not vary across runs. Defaults to HeLa.
	Stable Organism
}

func (st MedianIntensityStrategy) InferPairs(samples []*Sample) ([]Pair, []string, error) {
	if len(samples) < 2 {
		return nil, nil, ErrNotEnoughSamples
	}

	stable := st.Stable
	if stable == "" {
		stable = HeLa
	}

	type ranked struct {
		sample *Sample
		median float64
	}

	var rankable []ranked
	var singlets []string
	for _, s := range samples {
		m, ok := s.MedianPositiveIntensity(stable)
		if !ok {
			singlets = append(singlets, s.Name)
			continue
		}
		rankable = append(rankable, ranked{s, m})
	}

	sort.Slice(rankable, func(i, j int) bool {
		if rankable[i].median != rankable[j].median {
			return rankable[i].median < rankable[j].median
		}
		return rankable[i].sample.Name < rankable[j].sample.Name
	})

	pairs := make([]Pair, 0, len(rankable)/2)
	for i := 0; i+1 < len(rankable); i += 2 {
		pairs = append(pairs, Pair{Low: rankable[i].sample, High: rankable[i+1].sample})
	}
	if len(rankable)%2 == 1 {
		singlets = append(singlets, rankable[len(rankable)-1].sample.Name)
	}
	sort.Strings(singlets)

	return pairs, singlets, nil
}

// PairSamples applies the explicit-naming strategy and, when the sample
// names do not follow the dose-token convention, falls back to
// median-intensity ranking. The two strategies are never merged within one
// run.
func PairSamples(samples []*Sample) ([]Pair, []string, error) {
	pairs, singlets, err := ExplicitNamingStrategy{}.InferPairs(samples)
	if err == nil {
		return pairs, singlets, nil
	}
	if !errors.Is(err, errNamesUnrecognized) {
		return nil, nil, err
	}

	return MedianIntensityStrategy{Stable: HeLa}.InferPairs(samples)
}
