// Package mspp provides shared helpers for reading the delimited tables
// produced by mass-spec search engines (DIA-NN pg_matrix reports and
// similar), plus the core HEY QC pipeline under hey/.
package mspp

import (
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit
// the values in the reader, assuming a CSV-like file. Search-engine reports
// are tab-separated, so tab is the fallback when detection is inconclusive.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return '\t'
}
