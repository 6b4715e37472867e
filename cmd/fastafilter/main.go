// fastafilter filters FASTA entries by header pattern, or merges several
// FASTA files into one with optional deduplication.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/msproteomics/mspp/fasta"
)

func main() {
	var (
		mode      string
		input     string
		output    string
		patterns  string
		useRegex  bool
		caseSense bool
		report    bool
		dedupe    string
		prefix    bool
	)

	flag.StringVar(&mode, "mode", "filter", "filter or merge")
	flag.StringVar(&input, "in", "", "Input FASTA (filter mode). Merge mode takes inputs as positional arguments.")
	flag.StringVar(&output, "out", "", "Output FASTA")
	flag.StringVar(&patterns, "patterns", "", "Comma-separated header patterns to remove (filter mode)")
	flag.BoolVar(&useRegex, "regex", false, "Treat patterns as regular expressions")
	flag.BoolVar(&caseSense, "case", false, "Case-sensitive matching")
	flag.BoolVar(&report, "report", false, "Write a report next to the output")
	flag.StringVar(&dedupe, "dedupe", "none", "Merge deduplication: none, header, or sequence")
	flag.BoolVar(&prefix, "prefix", false, "Merge mode: prefix headers with the source file stem")
	flag.Parse()

	if output == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	var err error
	switch mode {
	case "filter":
		err = runFilter(input, output, patterns, useRegex, caseSense, report)
	case "merge":
		err = runMerge(flag.Args(), output, fasta.DedupeMode(dedupe), prefix, report)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func runFilter(input, output, rawPatterns string, useRegex, caseSense, report bool) error {
	if input == "" || rawPatterns == "" {
		return fmt.Errorf("filter mode requires -in and -patterns")
	}

	var patterns []string
	for _, p := range strings.Split(rawPatterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}

	match, err := fasta.NewMatcher(patterns, useRegex, caseSense)
	if err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	rep, err := fasta.Filter(in, out, match)
	if err != nil {
		return err
	}

	log.Printf("Kept entries: %d\n", rep.Kept)
	log.Printf("Removed entries: %d\n", rep.Removed)

	if report {
		f, err := os.Create(output + ".removed.txt")
		if err != nil {
			return err
		}
		defer f.Close()
		if err := rep.WriteReport(f, patterns, useRegex, caseSense); err != nil {
			return err
		}
		log.Println("Report saved to", f.Name())
	}

	return nil
}

func runMerge(inputs []string, output string, dedupe fasta.DedupeMode, prefix, report bool) error {
	if len(inputs) == 0 {
		return fmt.Errorf("merge mode requires at least one input file")
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	opt := fasta.MergeOptions{Dedupe: dedupe, AddPrefix: prefix}
	rep, err := fasta.Merge(inputs, out, opt)
	if err != nil {
		return err
	}

	log.Printf("Total entries written: %d\n", rep.Written)
	if rep.Skipped > 0 {
		log.Printf("Duplicate entries skipped: %d\n", rep.Skipped)
	}

	if report {
		f, err := os.Create(output + ".merge_report.txt")
		if err != nil {
			return err
		}
		defer f.Close()
		if err := rep.WriteReport(f, opt); err != nil {
			return err
		}
		log.Println("Report saved to", f.Name())
	}

	return nil
}
