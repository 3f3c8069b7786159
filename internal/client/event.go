package client

import (
	"time"

	"github.com/jwtly10/go-reqbench/internal/proto"
	"github.com/jwtly10/go-reqbench/internal/state"
)

type EventType string

const (
	EventTypeSnapshot EventType = "snapshot"
	EventTypeError    EventType = "error"
)

// SnapshotEvent carries the latest record of the watched store. Only one of Request / Response is set.
type SnapshotEvent struct {
	Store     proto.StoreKind
	Request   *state.Request
	Response  *state.Response
	Timestamp time.Time
}

type ErrorEvent struct {
	Store proto.StoreKind
	Error string

	// ConnectionFailed is set to true if the watcher lost connection to the server
	ConnectionFailed bool
}

type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

type EventHandler func(event Event)
