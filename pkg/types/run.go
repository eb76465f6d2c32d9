// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunRecord is one conversion as kept in the history table.
type RunRecord struct {
	ID       string           `json:"id" yaml:"id"`
	Inputs   []string         `json:"inputs" yaml:"inputs"`
	Output   string           `json:"output" yaml:"output"`
	Key      string           `json:"key,omitempty" yaml:"key,omitempty"`
	Started  time.Time        `json:"started" yaml:"started"`
	Finished time.Time        `json:"finished" yaml:"finished"`
	Status   ConversionStatus `json:"status" yaml:"status"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`

	// Paragraphs is the number of paragraphs emitted (0 on a cache hit).
	Paragraphs int  `json:"paragraphs" yaml:"paragraphs"`
	CacheHit   bool `json:"cache_hit" yaml:"cache_hit"`
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
