package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CurrentVersion is the current state file format version.
const CurrentVersion = 1

// State is the serializable form of a Store.
type State struct {
	Version      int                `json:"version"`
	WindowNanos  int64              `json:"windowNanos"`
	Fingerprints map[string]*Record `json:"fingerprints"`
	Metadata     StateMetadata      `json:"metadata"`
}

// StateMetadata contains aggregate statistics about the state.
type StateMetadata struct {
	LastUpdated       time.Time `json:"lastUpdated"`
	TotalFingerprints int       `json:"totalFingerprints"`
}

// Snapshot captures the store's records for persistence.
func (s *Store) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	fingerprints := make(map[string]*Record, len(s.records))
	for fp, record := range s.records {
		copied := *record
		fingerprints[fp] = &copied
	}

	return &State{
		Version:      CurrentVersion,
		WindowNanos:  int64(s.window),
		Fingerprints: fingerprints,
		Metadata: StateMetadata{
			LastUpdated:       time.Now(),
			TotalFingerprints: len(fingerprints),
		},
	}
}

// NewStoreFromState rebuilds a store from a loaded state.
func NewStoreFromState(state *State) (*Store, error) {
	if state == nil {
		return nil, fmt.Errorf("state cannot be nil")
	}
	if state.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported state version %d (current version: %d)", state.Version, CurrentVersion)
	}

	store := NewStore(time.Duration(state.WindowNanos))
	for fp, record := range state.Fingerprints {
		copied := *record
		store.records[fp] = &copied
	}
	return store, nil
}

// LoadState loads a state file from disk.
// Returns os.IsNotExist error if file doesn't exist (caller should handle).
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err // Preserve os.IsNotExist for caller
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported state file version %d (current version: %d)", state.Version, CurrentVersion)
	}

	if state.Fingerprints == nil {
		state.Fingerprints = make(map[string]*Record)
	}

	return &state, nil
}

// SaveState atomically writes the state to disk.
// Uses atomic write pattern: write to temp file, then rename.
// Ensures parent directory exists.
func SaveState(state *State, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	state.Metadata.LastUpdated = time.Now()
	state.Metadata.TotalFingerprints = len(state.Fingerprints)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tempFile := filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
