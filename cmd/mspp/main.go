// mspp is the batch QC reporter: given HEY report tables, it writes the
// protein ID count chart, per-organism ratio charts, and a tab-delimited
// summary of the consensus log2 ratios.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/msproteomics/mspp/hey"
)

func init() {
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		w := csv.NewWriter(out)
		w.Comma = '\t'
		return gocsv.NewSafeCSVWriter(w)
	})
}

func main() {
	var files, outDir string

	flag.StringVar(&files, "files", "", "Comma-delimited report tables (.tsv/.txt, optionally compressed). Positional arguments are also accepted.")
	flag.StringVar(&outDir, "out", "qc_results", "Output directory for charts and the summary table")
	flag.Parse()

	paths := flag.Args()
	if files != "" {
		for _, f := range strings.Split(files, ",") {
			if f = strings.TrimSpace(f); f != "" {
				paths = append(paths, f)
			}
		}
	}
	if len(paths) == 0 {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(paths, outDir); err != nil {
		log.Fatalln(err)
	}
}

func run(paths []string, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	samples, err := hey.LoadSamples(paths)
	if err != nil {
		return err
	}
	for _, s := range samples {
		log.Printf("Loaded %d entries from %s\n", len(s.Records), s.Name)
	}

	counts := hey.CountProteinIDs(samples)
	if err := renderToFile(filepath.Join(outDir, "protein_id_bar_chart.png"), func(w io.Writer) error {
		return hey.RenderCountChart(counts, w)
	}); err != nil {
		return err
	}

	result, err := hey.Compare(samples)
	if err != nil {
		return err
	}
	if len(result.Singlets) > 0 {
		log.Printf("Excluded %d unpaired samples: %s\n", len(result.Singlets), strings.Join(result.Singlets, ", "))
	}

	for _, organism := range hey.Organisms {
		prs := result.ByOrganism[organism]
		if len(prs) == 0 {
			log.Printf("%s: no consensus data\n", organism)
			continue
		}
		name := fmt.Sprintf("ratio_%s.png", organism)
		if err := renderToFile(filepath.Join(outDir, name), func(w io.Writer) error {
			return hey.RenderRatioChart(organism, prs, w)
		}); err != nil {
			return err
		}
	}

	rows := result.Summaries()
	for _, row := range rows {
		log.Printf("%s %s: median=%.3f mean=%.3f sd=%.3f n=%d\n",
			row.Organism, row.Pair, row.Median, row.Mean, row.StdDev, row.N)
	}

	summaryFile, err := os.Create(filepath.Join(outDir, "ratio_summary.tsv"))
	if err != nil {
		return err
	}
	defer summaryFile.Close()
	if err := gocsv.Marshal(&rows, summaryFile); err != nil {
		return err
	}

	// With exactly two inputs, also report the identification overlap
	// between the two mixes.
	if len(samples) == 2 {
		if err := writeOverlapReport(filepath.Join(outDir, "protein_comparison.txt"), samples[0], samples[1]); err != nil {
			return err
		}
	}

	log.Println("Results written to", outDir)

	return nil
}

func renderToFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return render(f)
}

func writeOverlapReport(path string, a, b *hey.Sample) error {
	summary := hey.CompareIdentifications(a, b)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "Protein comparison: %s vs %s\n\n", summary.SampleA, summary.SampleB)
	fmt.Fprintf(f, "Total shared: %d\n", summary.Total.Shared)
	fmt.Fprintf(f, "%s only: %d\n", summary.SampleA, summary.Total.OnlyA)
	fmt.Fprintf(f, "%s only: %d\n\n", summary.SampleB, summary.Total.OnlyB)
	fmt.Fprintf(f, "%-12s %10s %10s %10s\n", "Organism", "Shared", "OnlyA", "OnlyB")
	for _, organism := range hey.Organisms {
		c := summary.PerOrganism[organism]
		fmt.Fprintf(f, "%-12s %10d %10d %10d\n", organism, c.Shared, c.OnlyA, c.OnlyB)
	}

	return nil
}
