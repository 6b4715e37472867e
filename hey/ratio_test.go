package hey

import (
	"math"
	"testing"
)

func TestConsensusRatiosSingleProtein(t *testing.T) {
	low := namedSample("report_E25_mix1", ecoliRecord("P1", 25))
	high := namedSample("report_E100_mix1", ecoliRecord("P1", 100))

	ratios := ConsensusRatios(low, high, Ecoli)
	if len(ratios) != 1 {
		t.Fatalf("expected one ratio, got %d", len(ratios))
	}
	if expected := math.Log2(25.0 / 100.0); math.Abs(ratios[0]-expected) > 1e-12 {
		t.Fatalf("expected %v, got %v", expected, ratios[0])
	}
}

func TestConsensusRatiosExcludesInvalidIntensities(t *testing.T) {
	low := namedSample("low",
		ecoliRecord("P1", 10),
		ecoliRecord("P2", 0),
		ecoliRecord("P3", -4),
		ecoliRecord("P4", math.NaN()),
	)
	high := namedSample("high",
		ecoliRecord("P1", 5),
		ecoliRecord("P2", 7),
		ecoliRecord("P3", 9),
		ecoliRecord("P4", 11),
	)

	ratios := ConsensusRatios(low, high, Ecoli)
	if len(ratios) != 1 {
		t.Fatalf("expected only P1 to survive, got %d ratios", len(ratios))
	}
	if expected := math.Log2(2); ratios[0] != expected {
		t.Fatalf("expected %v, got %v", expected, ratios[0])
	}
}

func TestConsensusRatiosOutputIsFinite(t *testing.T) {
	low := namedSample("low",
		ecoliRecord("P1", 1e300),
		ecoliRecord("P2", 3),
	)
	high := namedSample("high",
		ecoliRecord("P1", 1e-300),
		ecoliRecord("P2", 3),
	)

	for _, r := range ConsensusRatios(low, high, Ecoli) {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			t.Fatalf("non-finite ratio in output: %v", r)
		}
	}
}

func TestConsensusRatiosReciprocal(t *testing.T) {
	a := namedSample("a",
		ecoliRecord("P1", 12),
		ecoliRecord("P2", 7),
		ecoliRecord("P3", 100),
	)
	b := namedSample("b",
		ecoliRecord("P1", 3),
		ecoliRecord("P2", 14),
		ecoliRecord("P3", 50),
	)

	forward := ConsensusRatios(a, b, Ecoli)
	backward := ConsensusRatios(b, a, Ecoli)
	if len(forward) != len(backward) {
		t.Fatalf("expected equal lengths, got %d and %d", len(forward), len(backward))
	}
	for i := range forward {
		if math.Abs(forward[i]+backward[i]) > 1e-12 {
			t.Fatalf("ratio %d not reciprocal: %v vs %v", i, forward[i], backward[i])
		}
	}
}

func TestConsensusRatiosNoOverlapIsNoData(t *testing.T) {
	low := namedSample("low",
		ecoliRecord("P1", 10),
		Record{ProteinID: "Y1_YEAST", Intensity: 4, Organism: Yeast},
	)
	high := namedSample("high",
		ecoliRecord("P2", 10),
		Record{ProteinID: "Y1_YEAST", Intensity: 8, Organism: Yeast},
	)

	if got := ConsensusRatios(low, high, Ecoli); got != nil {
		t.Fatalf("expected no data for E.coli, got %v", got)
	}

	// The empty E.coli result must not affect the other organism.
	yeast := ConsensusRatios(low, high, Yeast)
	if len(yeast) != 1 || yeast[0] != -1 {
		t.Fatalf("expected yeast ratio [-1], got %v", yeast)
	}
}

func TestConsensusRatiosWrongOrganismEmpty(t *testing.T) {
	low := namedSample("low", ecoliRecord("P1", 10))
	high := namedSample("high", ecoliRecord("P1", 10))

	if got := ConsensusRatios(low, high, HeLa); got != nil {
		t.Fatalf("expected nil for HeLa, got %v", got)
	}
}

func TestConsensusRatiosDuplicateIdentifierFirstWins(t *testing.T) {
	low := namedSample("low",
		ecoliRecord("P1", 8),
		ecoliRecord("P1", 1000),
	)
	high := namedSample("high", ecoliRecord("P1", 4))

	ratios := ConsensusRatios(low, high, Ecoli)
	if len(ratios) != 1 || ratios[0] != 1 {
		t.Fatalf("expected [1], got %v", ratios)
	}
}
