package domain

import "time"

// GuardSession represents one guard's claim of a checkpoint. The session ID
// doubles as the opaque token handed to the client.
type GuardSession struct {
	ID             string
	GuardID        string
	GuardName      string
	CheckpointID   string
	DeviceInfo     string // opaque client payload (platform, device id, app version)
	StartedAt      time.Time
	LastActivityAt time.Time
	Active         bool
	EndedAt        *time.Time // nil while active
}
