// Package metadata keeps a manifest.json in every board folder describing
// where each saved image came from.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"pinscraper/pkg/models"
)

// ManifestFile is the manifest's name inside a board folder
const ManifestFile = "manifest.json"

// Entry describes one saved image
type Entry struct {
	FileName     string    `json:"file_name"`
	SourceURL    string    `json:"source_url"`
	DownloadURL  string    `json:"download_url"`
	Tier         string    `json:"tier"`
	Bytes        int64     `json:"bytes"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Manifest is the record of a board folder
type Manifest struct {
	BoardURL  string               `json:"board_url"`
	BoardName string               `json:"board_name"`
	UpdatedAt time.Time            `json:"updated_at"`
	Files     map[string]Entry     `json:"files"`
	Failed    []models.FailedAsset `json:"failed,omitempty"`

	mu sync.Mutex
}

// New creates an empty manifest
func New(boardURL, boardName string) *Manifest {
	return &Manifest{
		BoardURL:  boardURL,
		BoardName: boardName,
		Files:     make(map[string]Entry),
	}
}

// Load reads the manifest in folder. A missing file yields an empty manifest.
func Load(folder string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(folder, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return New("", filepath.Base(folder)), nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	if m.Files == nil {
		m.Files = make(map[string]Entry)
	}
	return &m, nil
}

// Record adds or replaces the entry for e.FileName
func (m *Manifest) Record(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.DownloadedAt.IsZero() {
		e.DownloadedAt = time.Now()
	}
	m.Files[e.FileName] = e
}

// Has reports whether fileName is recorded
func (m *Manifest) Has(fileName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Files[fileName]
	return ok
}

// Len returns the number of recorded files
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Files)
}

// SetFailures replaces the failure list with the latest run's
func (m *Manifest) SetFailures(failed []models.FailedAsset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed = append([]models.FailedAsset(nil), failed...)
}

// FileNames returns the recorded names in sorted order
func (m *Manifest) FileNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.Files))
	for name := range m.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the manifest into folder via a temporary file
func (m *Manifest) Save(folder string) error {
	m.mu.Lock()
	m.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(folder, ManifestFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

// CleanOrphaned drops entries whose image file no longer exists in folder
func (m *Manifest) CleanOrphaned(folder string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for name := range m.Files {
		if _, err := os.Stat(filepath.Join(folder, name)); os.IsNotExist(err) {
			delete(m.Files, name)
			removed++
		}
	}
	return removed
}
