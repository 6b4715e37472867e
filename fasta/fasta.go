// Package fasta filters and merges FASTA databases by header. Kept entries
// are written back byte-for-byte as read; only whole entries are ever
// removed.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/carbocation/pfx"
)

// Record is one FASTA entry: the header text without its leading '>' and
// the sequence lines exactly as read.
type Record struct {
	Header   string
	Sequence []string
}

// Parse reads every entry from r. Sequence lines appearing before any
// header are skipped.
func Parse(r io.Reader) ([]Record, error) {
	var records []Record
	var current *Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			records = append(records, Record{Header: strings.TrimPrefix(line, ">")})
			current = &records[len(records)-1]
			continue
		}
		if current != nil {
			current.Sequence = append(current.Sequence, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return records, nil
}

// Matcher reports whether a header matches the user's patterns.
type Matcher func(header string) bool

// NewMatcher compiles a header matcher. Patterns are substrings unless
// useRegex is set; matching is case-insensitive unless caseSensitive is
// set. At least one pattern is required. An invalid regular expression is
// reported with the underlying parser's message.
func NewMatcher(patterns []string, useRegex, caseSensitive bool) (Matcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("fasta: provide at least one pattern to match")
	}

	if useRegex {
		regexes := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			if !caseSensitive {
				p = "(?i)" + p
			}
			rx, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("fasta: invalid regular expression: %w", err)
			}
			regexes = append(regexes, rx)
		}

		return func(header string) bool {
			for _, rx := range regexes {
				if rx.MatchString(header) {
					return true
				}
			}
			return false
		}, nil
	}

	pats := make([]string, len(patterns))
	copy(pats, patterns)
	if !caseSensitive {
		for i := range pats {
			pats[i] = strings.ToLower(pats[i])
		}
	}

	return func(header string) bool {
		h := header
		if !caseSensitive {
			h = strings.ToLower(h)
		}
		for _, p := range pats {
			if strings.Contains(h, p) {
				return true
			}
		}
		return false
	}, nil
}

// FilterReport summarizes one filtering run.
type FilterReport struct {
	Kept           int
	Removed        int
	RemovedHeaders []string
}

// Filter copies every entry whose header does NOT match to w and reports
// what was removed.
func Filter(r io.Reader, w io.Writer, match Matcher) (FilterReport, error) {
	var report FilterReport

	records, err := Parse(r)
	if err != nil {
		return report, err
	}

	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if match(rec.Header) {
			report.Removed++
			report.RemovedHeaders = append(report.RemovedHeaders, ">"+rec.Header)
			continue
		}
		report.Kept++
		if err := writeRecord(bw, ">"+rec.Header, rec.Sequence); err != nil {
			return report, pfx.Err(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return report, pfx.Err(err)
	}

	return report, nil
}

func writeRecord(w io.Writer, header string, sequence []string) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, line := range sequence {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

// WriteReport writes the human-readable removal report that accompanies a
// filtered database.
func (rep FilterReport) WriteReport(w io.Writer, patterns []string, useRegex, caseSensitive bool) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Patterns: %s\n", strings.Join(patterns, ", "))
	fmt.Fprintf(bw, "Regex: %v\n", useRegex)
	fmt.Fprintf(bw, "Case sensitive: %v\n\n", caseSensitive)
	fmt.Fprintf(bw, "Kept entries:    %d\n", rep.Kept)
	fmt.Fprintf(bw, "Removed entries: %d\n\n", rep.Removed)
	if len(rep.RemovedHeaders) > 0 {
		fmt.Fprintln(bw, "Removed headers:")
		for _, h := range rep.RemovedHeaders {
			fmt.Fprintln(bw, h)
		}
	}

	return bw.Flush()
}
