// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary maintains results_summary.csv, the append-only log of
// every result a session has seen, whether or not it was retrieved.
package summary

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/grey-lit-search/internal/session"
	"github.com/pdiddy/grey-lit-search/pkg/types"
)

const (
	// FileName is the summary log name inside a session directory.
	FileName = "results_summary.csv"
	// Header is written once, when the log is created.
	Header = "search number, title, link\n"
)

// Log appends summary rows for one session directory. Each Append opens
// the file in append mode, so rows survive a crash mid-run and two runs
// against the same directory accumulate in call order.
type Log struct {
	path   string
	format types.SummaryFormat
}

// Open creates baseDir if needed and writes the header when the summary
// file does not exist yet. An existing file is never truncated.
func Open(baseDir string, format types.SummaryFormat) (*Log, error) {
	switch format {
	case "":
		format = types.SummaryLegacy
	case types.SummaryLegacy, types.SummaryQuoted:
	default:
		return nil, fmt.Errorf("unknown summary format %q", format)
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating summary directory: %w", err)
	}

	path := filepath.Join(baseDir, FileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case err == nil:
		_, werr := f.WriteString(Header)
		cerr := f.Close()
		if werr != nil {
			return nil, fmt.Errorf("writing summary header: %w", werr)
		}
		if cerr != nil {
			return nil, fmt.Errorf("closing summary file: %w", cerr)
		}
	case os.IsExist(err):
	default:
		return nil, fmt.Errorf("creating summary file: %w", err)
	}

	return &Log{path: path, format: format}, nil
}

// Path returns the location of the summary file.
func (l *Log) Path() string {
	return l.path
}

// Append writes one row for the result at index.
func (l *Log) Append(index int, title, link string) error {
	row, err := l.row(index, title, link)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening summary file: %w", err)
	}
	if _, err := f.Write(row); err != nil {
		f.Close()
		return fmt.Errorf("appending summary row %s: %w", session.FormatIndex(index), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing summary file: %w", err)
	}
	return nil
}

func (l *Log) row(index int, title, link string) ([]byte, error) {
	num := session.FormatIndex(index)
	if l.format == types.SummaryLegacy {
		return []byte(fmt.Sprintf("%s, %s, %s\n", num, title, link)), nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{num, title, link}); err != nil {
		return nil, fmt.Errorf("encoding summary row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encoding summary row: %w", err)
	}
	return buf.Bytes(), nil
}
