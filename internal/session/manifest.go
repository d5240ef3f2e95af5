// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"
)

// ManifestFile is the name of the run manifest inside a session directory.
const ManifestFile = "session.yaml"

// Manifest records what a run asked for and what it got, so a reviewer can
// reconcile a session directory without the command line that produced it.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	SessionID string    `yaml:"session_id"`
	Engine    string    `yaml:"engine"`
	QueryURL  string    `yaml:"query_url"`
	Requested int       `yaml:"results_requested"`
	Effective int       `yaml:"results_effective"`
	StartedAt time.Time `yaml:"started_at"`
	Finished  time.Time `yaml:"finished_at,omitempty"`
	Outcomes  Counts    `yaml:"outcomes"`
	Error     string    `yaml:"error,omitempty"`
}

// Counts tallies per-result outcomes.
type Counts struct {
	Saved    int `yaml:"saved"`
	NotFound int `yaml:"not_found"`
	TimedOut int `yaml:"timed_out"`
	Failed   int `yaml:"failed"`
	Linked   int `yaml:"linked"`
}

// Total returns the number of results processed.
func (c Counts) Total() int {
	return c.Saved + c.NotFound + c.TimedOut + c.Failed + c.Linked
}

// NewManifest starts a manifest for s with a fresh run id.
func NewManifest(s Session, started time.Time) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		SessionID: s.ID,
		StartedAt: started.UTC(),
	}
}

// WriteManifest writes m to the session directory, replacing any previous
// manifest. A session directory reused by several runs keeps the last one.
func (s Session) WriteManifest(m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := s.Path(ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads the manifest from the session directory.
func (s Session) ReadManifest() (*Manifest, error) {
	data, err := os.ReadFile(s.Path(ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
