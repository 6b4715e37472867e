package main

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/msproteomics/mspp/hey"
)

var errNoPairData = errors.New("No valid sample pairs found")

func init() {
	// Summary reports are tab-delimited like the input tables.
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		w := csv.NewWriter(out)
		w.Comma = '\t'
		return gocsv.NewSafeCSVWriter(w)
	})
}

func countChartPNG(samples []*hey.Sample) ([]byte, error) {
	var buf bytes.Buffer
	if err := hey.RenderCountChart(hey.CountProteinIDs(samples), &buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// comparisonPNGs runs the pairing and ratio pipeline and renders one chart
// per organism that has consensus data. Organisms without data are absent
// from the map; the request only fails when no organism has any.
func comparisonPNGs(samples []*hey.Sample) (*hey.ComparisonResult, map[hey.Organism][]byte, error) {
	result, err := hey.Compare(samples)
	if err != nil {
		return nil, nil, err
	}

	images := make(map[hey.Organism][]byte)
	for _, organism := range hey.Organisms {
		prs := result.ByOrganism[organism]
		if len(prs) == 0 {
			continue
		}
		var buf bytes.Buffer
		if err := hey.RenderRatioChart(organism, prs, &buf); err != nil {
			return nil, nil, err
		}
		images[organism] = buf.Bytes()
	}
	if len(images) == 0 {
		return nil, nil, errNoPairData
	}

	return result, images, nil
}

func summaryTSV(result *hey.ComparisonResult) ([]byte, error) {
	rows := result.Summaries()
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func comparisonZip(result *hey.ComparisonResult, images map[hey.Organism][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, organism := range hey.Organisms {
		png, ok := images[organism]
		if !ok {
			continue
		}
		if err := addZipFile(zw, fmt.Sprintf("ratio_%s.png", organism), png); err != nil {
			return nil, err
		}
	}

	tsv, err := summaryTSV(result)
	if err != nil {
		return nil, err
	}
	if err := addZipFile(zw, "ratio_summary.tsv", tsv); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// bundleZip packages every chart plus the summary table in one download.
func bundleZip(samples []*hey.Sample) ([]byte, error) {
	countPNG, err := countChartPNG(samples)
	if err != nil {
		return nil, err
	}

	result, images, err := comparisonPNGs(samples)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := addZipFile(zw, "protein_id_bar_chart.png", countPNG); err != nil {
		return nil, err
	}
	for _, organism := range hey.Organisms {
		png, ok := images[organism]
		if !ok {
			continue
		}
		if err := addZipFile(zw, fmt.Sprintf("ratio_%s.png", organism), png); err != nil {
			return nil, err
		}
	}

	tsv, err := summaryTSV(result)
	if err != nil {
		return nil, err
	}
	if err := addZipFile(zw, "ratio_summary.tsv", tsv); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func addZipFile(zw *zip.Writer, name string, body []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = f.Write(body)

	return err
}
