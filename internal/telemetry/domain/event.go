package domain

import "time"

// AccessEvent is a single checkpoint access decision emitted to the event
// pipeline. It is serialized as JSON on the Kafka topic and forwarded to Loki
// by the worker.
type AccessEvent struct {
	PersonID     string    `json:"personId,omitempty"`
	GuardID      string    `json:"guardId,omitempty"`
	CheckpointID string    `json:"checkpointId,omitempty"`
	Direction    string    `json:"direction,omitempty"`
	EventType    string    `json:"eventType"`
	Outcome      string    `json:"outcome,omitempty"`
	Metadata     string    `json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
