// Package transport implements the remote-serving surface of the
// simulation kernel's inject boundary (spec.md §4.5, §6): a WebSocket
// server exposing inject(port_name, values, e), and the client/hub
// machinery that pushes it along with a broadcast of cycle events.
package transport

import "encoding/json"

// MessageType identifies a wire message's shape, mirroring the
// teacher's protocol package (packages/protocol/messages.go).
type MessageType string

const (
	// MsgInject is a client -> server request to inject values onto a
	// port (spec.md §4.3).
	MsgInject MessageType = "inject"
	// MsgInjectResult is the server -> client reply to MsgInject.
	MsgInjectResult MessageType = "inject_result"
	// MsgEvent pushes a kernel.Event (spec.md §7) to every connected
	// client; it is not a request/response pair.
	MsgEvent MessageType = "event"
	// MsgError reports a malformed request.
	MsgError MessageType = "error"
)

// BaseMessage is the common envelope every wire message starts with;
// handlers decode it first to dispatch on Type before decoding the
// full payload.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// InjectRequest carries one inject(port_name, values, e) call
// (spec.md §4.3, §6 "Remote injection wire contract"). RequestID lets
// the caller correlate the matching InjectResponse; Values holds one
// opaque blob per injected value, decoded by a Codec.
type InjectRequest struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId"`
	Port      string      `json:"port"`
	Values    [][]byte    `json:"values"`
	E         float64     `json:"e"`
}

// InjectResponse is the reply to an InjectRequest.
type InjectResponse struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId"`
	Accepted  bool        `json:"accepted"`
	Error     string      `json:"error,omitempty"`
}

// EventMessage pushes a single kernel.Event to connected clients.
type EventMessage struct {
	Type    MessageType `json:"type"`
	Level   string      `json:"level"`
	Message string      `json:"message"`
}

// ErrorMessage reports a malformed or unroutable request.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// ParseType reads just the Type discriminator out of a raw message.
func ParseType(data []byte) (MessageType, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return "", err
	}
	return base.Type, nil
}

// ParseInjectRequest decodes data as an InjectRequest.
func ParseInjectRequest(data []byte) (*InjectRequest, error) {
	var req InjectRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// NewInjectResponse builds a reply message correlated to requestID.
func NewInjectResponse(requestID string, accepted bool, err error) *InjectResponse {
	resp := &InjectResponse{Type: MsgInjectResult, RequestID: requestID, Accepted: accepted}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// NewEventMessage wraps level/message as a wire EventMessage.
func NewEventMessage(level, message string) *EventMessage {
	return &EventMessage{Type: MsgEvent, Level: level, Message: message}
}

// Encode serializes any wire message to JSON.
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
