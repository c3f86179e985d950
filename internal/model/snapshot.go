package model

import "time"

// Snapshot is a point-in-time copy of the whole live tree.
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Tree      []Node    `json:"tree"`
}

// Result is what a full restructuring run reports back to its caller.
type Result struct {
	Success    bool        `json:"success"`
	SnapshotID string      `json:"snapshotId,omitempty"`
	Message    string      `json:"message"`
	Operations []Operation `json:"operations,omitempty"`
	Error      string      `json:"error,omitempty"`
}
