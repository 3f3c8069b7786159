package proto

type MessageType string

const (
	MessageTypePing MessageType = "ping"
	MessageTypePong MessageType = "pong"

	// MessageTypeSnapshot carries the full record of a store, sent on connect and after every change
	MessageTypeSnapshot MessageType = "snapshot"
	// MessageTypeUpdate asks the server to set one field of the subscribed store
	MessageTypeUpdate MessageType = "update"

	MessageTypeError MessageType = "error"
)

// StoreKind names one of the observable records exposed by the server
type StoreKind string

const (
	StoreRequest  StoreKind = "request"
	StoreResponse StoreKind = "response"
)

type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}
