// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the output directory of a single search run and the
// naming of per-result subdirectories inside it.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IDLayout formats the default, time-derived session identifier.
const IDLayout = "20060102_150405"

// Session is one end-to-end run of query, results and retrieval. All of its
// artifacts live under BaseDir.
type Session struct {
	ID      string
	BaseDir string
}

// NewID returns the default session identifier for a run started at t.
// Identifiers have second granularity, so two runs started in the same
// second share a directory.
func NewID(t time.Time) string {
	return t.UTC().Format(IDLayout)
}

// New returns the session named id under outputDir. An empty outputDir
// means the working directory.
func New(outputDir, id string) (Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Session{}, fmt.Errorf("session id is empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return Session{}, fmt.Errorf("invalid session id %q", id)
	}
	if outputDir == "" {
		outputDir = "."
	}
	return Session{ID: id, BaseDir: filepath.Join(outputDir, id)}, nil
}

// Ensure creates the session directory if needed. Calling it repeatedly is
// safe and leaves existing files untouched.
func (s Session) Ensure() error {
	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return fmt.Errorf("creating session directory %s: %w", s.BaseDir, err)
	}
	return nil
}

// Path joins name onto the session directory.
func (s Session) Path(name string) string {
	return filepath.Join(s.BaseDir, name)
}

// FormatIndex renders a result index zero-padded to three digits. Indices
// past 999 widen instead of wrapping, so "1000" never collides with "100".
func FormatIndex(index int) string {
	return fmt.Sprintf("%03d", index)
}

// ResultDir returns the subdirectory for the result at index.
func ResultDir(baseDir string, index int) string {
	return filepath.Join(baseDir, FormatIndex(index))
}

// EnsureResultDir creates the subdirectory for the result at index and
// returns its path. Existing directories are not an error.
func EnsureResultDir(baseDir string, index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("negative result index %d", index)
	}
	dir := ResultDir(baseDir, index)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating result directory %s: %w", dir, err)
	}
	return dir, nil
}
