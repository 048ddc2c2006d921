package config

import "fmt"

// SnapshotConfig controls where day snapshots are written and how often
// the coordinator autosaves.
type SnapshotConfig struct {
	// Dir is the snapshot directory, created on first save.
	Dir string `json:"dir"`
	// Prefix names the snapshot files: <prefix>-<date>.json.
	Prefix string `json:"prefix"`
	// AutosaveSeconds is the interval between automatic saves. Zero
	// disables autosaving; shutdown still writes a final snapshot.
	AutosaveSeconds int `json:"autosave_seconds"`
}

// SetDefaults applies sane defaults.
func (c *SnapshotConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "data"
	}
	if c.AutosaveSeconds == 0 {
		c.AutosaveSeconds = 300
	}
}

// Validate checks mandatory fields.
func (c SnapshotConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if c.AutosaveSeconds < 0 {
		return fmt.Errorf("autosave_seconds cannot be negative")
	}
	return nil
}
