package hey

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"

	"github.com/msproteomics/mspp"
)

// preferredProteinColumns are tried as exact header matches before falling
// back to any header containing "protein".
var preferredProteinColumns = []string{"Protein.Names", "Protein.Group", "Protein.Ids"}

// Record is one protein-level row from a report table. Intensity is NaN
// when the cell was empty or unparseable; such records never participate in
// ratio math.
type Record struct {
	ProteinID string
	Intensity float64
	Organism  Organism
}

// HasValidIntensity reports whether the record's intensity is finite and
// strictly positive.
func (r Record) HasValidIntensity() bool {
	return !math.IsNaN(r.Intensity) && !math.IsInf(r.Intensity, 0) && r.Intensity > 0
}

// Sample is one loaded report table: its name (the filename stem), the
// header of the column its intensities came from, and its protein records.
// Organism labels are assigned once at load and not modified afterward.
type Sample struct {
	Name            string
	IntensityColumn string
	Records         []Record
}

// LoadSample reads one delimited report table. The protein-identifier
// column is the first exact match among Protein.Names, Protein.Group, and
// Protein.Ids, else the first header containing "protein"
// (case-insensitive). The intensity column is the first header containing
// ".raw" (case-insensitive). A table with no recognizable protein column
// still loads; every record is labeled Unknown.
func LoadSample(path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	rc, err := mspp.MaybeDecompressReadCloserFromFile(f)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, pfx.Err(err)
	}

	delim := mspp.DetermineDelimiter(bytes.NewReader(raw))
	if !bytes.ContainsRune(firstLine(raw), delim) {
		delim = '\t'
	}

	csvReader := csv.NewReader(bytes.NewReader(raw))
	csvReader.Comma = delim
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(rows) < 1 {
		return nil, pfx.Err(fmt.Errorf("%s: empty table", path))
	}

	header := rows[0]
	protCol := findProteinColumn(header)
	intCol := findIntensityColumn(header)

	sample := &Sample{
		Name:    fileStem(path),
		Records: make([]Record, 0, len(rows)-1),
	}
	if intCol >= 0 {
		sample.IntensityColumn = header[intCol]
	}

	for _, row := range rows[1:] {
		rec := Record{Intensity: math.NaN(), Organism: Unknown}

		if protCol >= 0 && protCol < len(row) {
			rec.ProteinID = row[protCol]
			rec.Organism = Classify(rec.ProteinID)
		}
		if intCol >= 0 && intCol < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[intCol]), 64); err == nil {
				rec.Intensity = v
			}
		}

		sample.Records = append(sample.Records, rec)
	}

	return sample, nil
}

// LoadSamples loads every path in order. At least one path is required.
func LoadSamples(paths []string) ([]*Sample, error) {
	if len(paths) == 0 {
		return nil, pfx.Err(fmt.Errorf("no files provided"))
	}

	samples := make([]*Sample, 0, len(paths))
	for _, path := range paths {
		sample, err := LoadSample(path)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// OrganismRecords returns the sample's records for one organism.
func (s *Sample) OrganismRecords(organism Organism) []Record {
	out := make([]Record, 0, len(s.Records))
	for _, rec := range s.Records {
		if rec.Organism == organism {
			out = append(out, rec)
		}
	}

	return out
}

// MedianPositiveIntensity is the median over the sample's valid positive
// intensities, skipping the excluded organism. It underpins the
// intensity-based pairing fallback, where HeLa is excluded because it is
// held constant across HEY runs. The second return is false when the sample
// has no usable intensities.
func (s *Sample) MedianPositiveIntensity(exclude Organism) (float64, bool) {
	vals := make([]float64, 0, len(s.Records))
	for _, rec := range s.Records {
		if rec.Organism == exclude {
			continue
		}
		if rec.HasValidIntensity() {
			vals = append(vals, rec.Intensity)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}

	return median(vals), true
}

func findProteinColumn(header []string) int {
	for _, want := range preferredProteinColumns {
		for i, col := range header {
			if col == want {
				return i
			}
		}
	}
	for i, col := range header {
		if strings.Contains(strings.ToLower(col), "protein") {
			return i
		}
	}

	return -1
}

func findIntensityColumn(header []string) int {
	for i, col := range header {
		if strings.Contains(strings.ToLower(col), ".raw") {
			return i
		}
	}

	return -1
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i]
	}
	return b
}
