package model

import (
	"strings"

	"github.com/google/uuid"
)

// TempIDPrefix marks planner-generated placeholder ids.
const TempIDPrefix = "temp_"

// IDGenerator produces unique string identifiers.
type IDGenerator func() string

// NewSnapshotID creates a time-sortable snapshot id.
func NewSnapshotID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewTempID creates a placeholder id for a folder that does not exist yet.
func NewTempID() string {
	return TempIDPrefix + uuid.New().String()
}

// IsTempID reports whether id is a planner placeholder.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}
