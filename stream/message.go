package stream

import "encoding/json"

// Message is the closed set of events a namespace client delivers on its
// Messages channel: Opened, Data, Closed and Error.
type Message interface {
	isMessage()
}

// Opened is delivered once after the connection and the optional handshake
// have been established.
type Opened struct{}

// Data carries a single inbound message. Payload is the JSON-decoded value
// or, for clients configured with WithRawMessages (and for payloads that
// are not valid JSON), the raw message text.
type Data struct {
	Payload interface{}
}

// Closed is delivered when the connection ends without a transport error
// (server close or consumer cancellation).
type Closed struct{}

// Error is delivered when the connection ends due to a transport failure.
type Error struct {
	Cause error
}

func (Opened) isMessage() {}
func (Data) isMessage()   {}
func (Closed) isMessage() {}
func (Error) isMessage()  {}

// tryJSON decodes data as JSON, falling back to the raw text when decoding
// fails or raw delivery was requested.
func tryJSON(data []byte, raw bool) interface{} {
	if raw {
		return string(data)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}
