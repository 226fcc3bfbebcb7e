// Package hub fans websocket messages out to every connected dashboard client.
package hub

import "github.com/gofiber/websocket/v2"

// MessageType is the payload kind of a broadcast
type MessageType int

const (
	// JSONMessage carries an encoded JSON document (status, age updates)
	JSONMessage MessageType = iota
	// BinaryMessage carries one JPEG preview frame
	BinaryMessage
)

// Message is one payload queued for every client
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps a binary frame
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

// frameType maps the message onto a websocket opcode.
func (m Message) frameType() int {
	if m.Type == BinaryMessage {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
