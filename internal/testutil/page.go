package testutil

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// PageFrame is the wire form of a bridge frame as the host page sees it.
type PageFrame struct {
	Type   string            `json:"type"`
	ID     uint64            `json:"id,omitempty"`
	Name   string            `json:"name,omitempty"`
	Args   []json.RawMessage `json:"args,omitempty"`
	Result json.RawMessage   `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// PageClient plays the part of the browser page on the other end of the bridge.
type PageClient struct {
	conn *websocket.Conn
	t    *testing.T
}

// DialPage connects to a bridge served at url (an http:// test server URL).
//
// Postcondition: Returns a connected PageClient or fails the test.
func DialPage(t *testing.T, url string) *PageClient {
	t.Helper()
	conn, resp, err := DialPageRaw(url)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dialing %s: %v (status %d)", url, err, status)
	}
	t.Cleanup(func() { conn.Close() })
	return &PageClient{conn: conn, t: t}
}

// DialPageRaw dials without failing the test, for asserting refusals.
func DialPageRaw(url string) (*websocket.Conn, *http.Response, error) {
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	return websocket.DefaultDialer.Dial(wsURL, nil)
}

// Event sends an event frame. A non-zero id asks for a result.
func (c *PageClient) Event(id uint64, name string, args ...any) {
	c.t.Helper()
	f := PageFrame{Type: "event", ID: id, Name: name}
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			c.t.Fatalf("encoding %s arg: %v", name, err)
		}
		f.Args = append(f.Args, b)
	}
	c.write(f)
}

// Reply answers the call with the given id.
func (c *PageClient) Reply(id uint64, result any) {
	c.t.Helper()
	b, err := json.Marshal(result)
	if err != nil {
		c.t.Fatalf("encoding result: %v", err)
	}
	c.write(PageFrame{Type: "result", ID: id, Result: b})
}

// ReplyError fails the call with the given id.
func (c *PageClient) ReplyError(id uint64, msg string) {
	c.t.Helper()
	c.write(PageFrame{Type: "result", ID: id, Error: msg})
}

// Read returns the next frame or fails the test after timeout.
func (c *PageClient) Read(timeout time.Duration) PageFrame {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	var f PageFrame
	if err := c.conn.ReadJSON(&f); err != nil {
		c.t.Fatalf("reading frame: %v", err)
	}
	return f
}

// Close ends the page connection.
func (c *PageClient) Close() {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

func (c *PageClient) write(f PageFrame) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteJSON(f); err != nil {
		c.t.Fatalf("writing %s frame: %v", f.Type, err)
	}
}
