/*
Package snapshot persists the last-known field values for every tender the
monitor has seen, keyed by the portal's procedure number.
*/
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Entry holds the diffed fields for one procedure. The JSON keys mirror the
// portal's column headers so the state file stays readable next to the site.
type Entry struct {
	Status  string `json:"Estado"`
	Awardee string `json:"Adjudicado a"`
	Amount  string `json:"Monto Adjudicado"`
}

// UnmarshalJSON accepts the legacy "Monto" key for the awarded amount. Early
// state files wrote the amount under that name; reads fall back to it when
// the modern key is absent, writes always use the modern key.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status       string  `json:"Estado"`
		Awardee      string  `json:"Adjudicado a"`
		Amount       *string `json:"Monto Adjudicado"`
		LegacyAmount string  `json:"Monto"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Status = raw.Status
	e.Awardee = raw.Awardee
	if raw.Amount != nil {
		e.Amount = *raw.Amount
	} else {
		e.Amount = raw.LegacyAmount
	}
	return nil
}

// Snapshot maps a procedure number to its last-known entry. Procedure numbers
// are unique across all tracked codes, so a single flat map is enough.
type Snapshot map[string]Entry

// Store reads and writes the snapshot at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot file. A missing file is a fresh start, not an error.
func (s *Store) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", s.path, err)
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

// Save replaces the snapshot file atomically. Writing to a temp file in the
// same directory and renaming over the target keeps a crash mid-write from
// leaving a truncated file for the next run to load.
func (s *Store) Save(snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}
