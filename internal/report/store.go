package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store persists run summaries alongside the downloaded report artifacts.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// SaveSummary writes the run summary as indented JSON under the reports dir.
func (s *Store) SaveSummary(id string, summary any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	path := filepath.Join(s.dir, "summary-"+id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

// LoadSummary returns the raw summary JSON for a run id.
func (s *Store) LoadSummary(id string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, "summary-"+id+".json"))
}

// Artifact is one report file the guest agent produced.
type Artifact struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified"`
}

// Artifacts lists the report-*.json files collected from the guest, newest
// first.
func (s *Store) Artifacts() ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "report-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:      name,
			SizeBytes: info.Size(),
			Modified:  info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Modified.After(artifacts[j].Modified)
	})
	return artifacts, nil
}
