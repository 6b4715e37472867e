package hey

import "math"

// ConsensusRatios computes log2(low/high) for every consensus protein of
// one organism: identifiers present with finite, strictly positive
// intensity in both samples of a pair. Records failing the intensity check
// are excluded before the sets are intersected, so the division can never
// see a zero, negative, or missing denominator. Any residual non-finite
// ratio is dropped from the result.
//
// A nil return means "no data" for this organism and pair; it is a
// legitimate empty result, not an error.
func ConsensusRatios(low, high *Sample, organism Organism) []float64 {
	lowIntensities := validIntensityIndex(low, organism)
	if len(lowIntensities) == 0 {
		return nil
	}
	highIntensities := validIntensityIndex(high, organism)
	if len(highIntensities) == 0 {
		return nil
	}

	// Iterate the low sample's records in table order so repeated runs
	// produce identically ordered output.
	ratios := make([]float64, 0, len(lowIntensities))
	seen := make(map[string]bool, len(lowIntensities))
	for _, rec := range low.Records {
		if rec.Organism != organism || !rec.HasValidIntensity() || seen[rec.ProteinID] {
			continue
		}
		seen[rec.ProteinID] = true

		hv, ok := highIntensities[rec.ProteinID]
		if !ok {
			continue
		}

		ratio := math.Log2(rec.Intensity / hv)
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			continue
		}
		ratios = append(ratios, ratio)
	}

	if len(ratios) == 0 {
		return nil
	}

	return ratios
}

// validIntensityIndex maps protein identifier to intensity for the
// organism's records with valid positive intensity. The first occurrence of
// a duplicated identifier wins.
func validIntensityIndex(s *Sample, organism Organism) map[string]float64 {
	index := make(map[string]float64)
	for _, rec := range s.Records {
		if rec.Organism != organism || !rec.HasValidIntensity() {
			continue
		}
		if _, ok := index[rec.ProteinID]; ok {
			continue
		}
		index[rec.ProteinID] = rec.Intensity
	}

	return index
}
