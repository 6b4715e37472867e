// Package hey implements the analytical pipeline for three-proteome HEY
// (HeLa, E. coli, Yeast) spike-in QC runs: loading search-engine report
// tables, labeling proteins by organism, pairing low/high-dose samples,
// and computing consensus-protein log2 intensity ratios.
package hey

import "strings"

// Organism is the categorical label assigned to each protein record at load
// time, derived from its identifier.
type Organism string

const (
	HeLa    Organism = "HeLa"
	Ecoli   Organism = "E.coli"
	Yeast   Organism = "Yeast"
	Unknown Organism = "Unknown"
)

// Organisms lists the three spike-in proteomes in their fixed reporting
// order. Unknown is excluded.
var Organisms = []Organism{HeLa, Ecoli, Yeast}

// organismPatterns is checked in order; the first group with a matching
// pattern wins, so identifiers that would match more than one group are
// labeled by the earliest.
var organismPatterns = []struct {
	organism Organism
	patterns []string
}{
	{HeLa, []string{"_HUMAN", "HOMO_SAPIENS"}},
	{Ecoli, []string{
		"_ECOLI", "_ECOL", "_ECO2", "_ECO5", "_ECO7",
		"_SHIF", "_SHIB", "_SHIS", "ESCHERICHIA",
	}},
	{Yeast, []string{"_YEAST", "SACCHAROMYCES", "CEREVISIAE"}},
}

// Classify labels a protein identifier by case-insensitive substring
// matching. An empty identifier, or one matching no pattern group, is
// Unknown.
func Classify(proteinID string) Organism {
	if proteinID == "" {
		return Unknown
	}

	upper := strings.ToUpper(proteinID)
	for _, group := range organismPatterns {
		for _, pattern := range group.patterns {
			if strings.Contains(upper, pattern) {
				return group.organism
			}
		}
	}

	return Unknown
}

// ClassifyAll labels a whole identifier column at once.
func ClassifyAll(proteinIDs []string) []Organism {
	out := make([]Organism, len(proteinIDs))
	for i, id := range proteinIDs {
		out[i] = Classify(id)
	}

	return out
}
