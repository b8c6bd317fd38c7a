package domain

import "time"

// PresenceRecord is one person's current or completed stay inside the campus.
// A record is created at entry and mutated exactly once, at exit; closed
// records are immutable history.
type PresenceRecord struct {
	ID              string
	PersonID        string
	PersonName      string
	FacultyCode     string
	SchoolCode      string
	EnteredAt       time.Time
	ExitedAt        *time.Time // nil while inside
	EntryCheckpoint string
	ExitCheckpoint  string
	EntryGuard      string
	ExitGuard       string
	Inside          bool
	// DwellDuration is exit time minus entry time, set only at exit.
	DwellDuration time.Duration
}

// Direction of a person's most recent applied transition.
type Direction string

const (
	DirectionEntry Direction = "entry"
	DirectionExit  Direction = "exit"
)
