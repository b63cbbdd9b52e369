// internal/run/artifacts.go
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ArtifactStore persists one JSON file per sealed run. Filenames carry the
// completion epoch plus a uuid fragment; bare epoch seconds collide when two
// runs seal within the same second.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Save writes the record atomically (tmp + rename) and returns the artifact
// path.
func (s *ArtifactStore) Save(rec *Record) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	token := fmt.Sprintf("%d_%s", int64(rec.EndedAt()), uuid.NewString()[:8])
	path := filepath.Join(s.dir, fmt.Sprintf("parallel_run_%s.json", token))

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a persisted run artifact back.
func (s *ArtifactStore) Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
