// Package bridge implements native.Host over a websocket held open by the
// headless browser page that runs the real room. Events flow page to Go,
// calls and notifications flow Go to page, all as JSON frames.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame types.
const (
	// TypeEvent is a host event sent by the page. An event with a non-zero
	// ID expects a TypeResult reply.
	TypeEvent = "event"
	// TypeCall asks the page to run a room method and reply with a result.
	TypeCall = "call"
	// TypeNotify asks the page to run a room method without replying.
	TypeNotify = "notify"
	// TypeResult answers a call or an event.
	TypeResult = "result"
)

var (
	// ErrNotConnected is returned by calls made while no page is connected.
	ErrNotConnected = errors.New("bridge: no host page connected")
	// ErrCallTimeout is returned when the page does not answer a call in time.
	ErrCallTimeout = errors.New("bridge: call timed out")
	// ErrDisconnected is returned to calls pending when the page goes away.
	ErrDisconnected = errors.New("bridge: host page disconnected")
)

// Frame is one websocket message in either direction.
type Frame struct {
	Type   string            `json:"type"`
	ID     uint64            `json:"id,omitempty"`
	Name   string            `json:"name,omitempty"`
	Args   []json.RawMessage `json:"args,omitempty"`
	Result json.RawMessage   `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// NewFrame encodes args into a frame.
func NewFrame(typ string, id uint64, name string, args ...any) (Frame, error) {
	f := Frame{Type: typ, ID: id, Name: name}
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return Frame{}, fmt.Errorf("encoding arg %d of %s: %w", i, name, err)
		}
		f.Args = append(f.Args, b)
	}
	return f, nil
}

// Arg decodes argument i into v. A missing or null argument leaves v at its
// zero value.
func (f Frame) Arg(i int, v any) error {
	if i >= len(f.Args) || string(f.Args[i]) == "null" {
		return nil
	}
	if err := json.Unmarshal(f.Args[i], v); err != nil {
		return fmt.Errorf("decoding arg %d of %s: %w", i, f.Name, err)
	}
	return nil
}

// Decode decodes every argument into vs in order.
func (f Frame) Decode(vs ...any) error {
	for i, v := range vs {
		if err := f.Arg(i, v); err != nil {
			return err
		}
	}
	return nil
}
