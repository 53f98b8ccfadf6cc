package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/config"
	"github.com/cory-johannsen/haxroom/internal/native"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	eventQueue = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The page is served from the headless browser, not from this origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Host is a native.Host backed by one page connection at a time.
type Host struct {
	cfg    config.BridgeConfig
	logger *zap.Logger

	handler atomic.Pointer[handlerBox]
	events  chan Frame
	nextID  atomic.Uint64

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	pending map[uint64]chan Frame

	server     *http.Server
	dispatched chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

type handlerBox struct{ h native.Handler }

// New creates a Host. Nothing listens until Start.
//
// Precondition: logger must be non-nil; cfg.CallTimeout must be positive.
func New(cfg config.BridgeConfig, logger *zap.Logger) *Host {
	ctx, cancel := context.WithCancel(context.Background())
	return &Host{
		cfg:     cfg,
		logger:  logger,
		events:  make(chan Frame, eventQueue),
		pending: make(map[uint64]chan Frame),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Bind sets the handler that receives page events.
func (b *Host) Bind(h native.Handler) {
	b.handler.Store(&handlerBox{h: h})
}

// Connected reports whether a page is attached.
func (b *Host) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// Start dispatches events and serves the websocket endpoint on cfg.Addr()
// until Stop.
func (b *Host) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/", b)
	b.mu.Lock()
	b.server = &http.Server{Addr: b.cfg.Addr(), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	srv := b.server
	done := make(chan struct{})
	b.dispatched = done
	b.mu.Unlock()

	go func() {
		defer close(done)
		b.Dispatch(b.ctx)
	}()
	b.logger.Info("bridge listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("bridge: serving: %w", err)
	}
	return nil
}

// Stop closes the page connection and the listener.
//
// Postcondition: When Start ran the event loop, no handler callback is in
// progress or will start once Stop returns.
func (b *Host) Stop() {
	b.cancel()
	b.mu.Lock()
	srv, conn, dispatched := b.server, b.conn, b.dispatched
	b.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	if dispatched != nil {
		<-dispatched
	}
}

// ServeHTTP upgrades the page connection and reads frames until it closes.
// A second page is refused while one is connected.
func (b *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if b.Connected() {
		http.Error(w, "a host page is already connected", http.StatusConflict)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("bridge: upgrade failed", zap.Error(err))
		return
	}

	b.mu.Lock()
	if b.conn != nil {
		b.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "already connected"))
		_ = conn.Close()
		return
	}
	b.conn = conn
	b.mu.Unlock()

	b.logger.Info("bridge: host page connected", zap.String("remote", r.RemoteAddr))
	done := make(chan struct{})
	go b.ping(conn, done)
	b.read(conn)
	close(done)
	b.disconnect(conn)
}

func (b *Host) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			b.writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			b.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (b *Host) read(conn *websocket.Conn) {
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.logger.Warn("bridge: read failed", zap.Error(err))
			}
			return
		}
		switch f.Type {
		case TypeEvent:
			select {
			case b.events <- f:
			case <-b.ctx.Done():
				return
			}
		case TypeResult:
			b.mu.Lock()
			ch, ok := b.pending[f.ID]
			delete(b.pending, f.ID)
			b.mu.Unlock()
			if ok {
				ch <- f
			}
		default:
			b.logger.Warn("bridge: unexpected frame", zap.String("type", f.Type), zap.String("name", f.Name))
		}
	}
}

func (b *Host) disconnect(conn *websocket.Conn) {
	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
	}
	pending := b.pending
	b.pending = make(map[uint64]chan Frame)
	b.mu.Unlock()
	_ = conn.Close()

	for id, ch := range pending {
		ch <- Frame{Type: TypeResult, ID: id, Error: ErrDisconnected.Error()}
	}
	b.logger.Info("bridge: host page disconnected")
}

// Dispatch delivers queued events to the bound handler on the calling
// goroutine until ctx is done. It is the room's event loop.
func (b *Host) Dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-b.events:
			if ctx.Err() != nil {
				return
			}
			b.dispatch(f)
		}
	}
}

func (b *Host) dispatch(f Frame) {
	box := b.handler.Load()
	if box == nil {
		b.logger.Warn("bridge: event before bind", zap.String("event", f.Name))
		return
	}
	result, err := deliver(box.h, f)
	if err != nil {
		b.logger.Warn("bridge: bad event", zap.String("event", f.Name), zap.Error(err))
	}
	if f.ID == 0 {
		return
	}
	reply := Frame{Type: TypeResult, ID: f.ID}
	if err != nil {
		reply.Error = err.Error()
	} else if result != nil {
		reply.Result, _ = json.Marshal(result)
	}
	if err := b.write(reply); err != nil {
		b.logger.Warn("bridge: replying to event", zap.String("event", f.Name), zap.Error(err))
	}
}

func (b *Host) write(f Frame) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}

// Call runs name on the page and decodes its result into out, which may be nil.
//
// Postcondition: Returns ErrNotConnected, ErrCallTimeout, ErrDisconnected or
// the page's error when the call did not succeed.
func (b *Host) Call(name string, out any, args ...any) error {
	id := b.nextID.Add(1)
	f, err := NewFrame(TypeCall, id, name, args...)
	if err != nil {
		return err
	}
	ch := make(chan Frame, 1)
	b.mu.Lock()
	if b.conn == nil {
		b.mu.Unlock()
		return ErrNotConnected
	}
	b.pending[id] = ch
	b.mu.Unlock()

	if err := b.write(f); err != nil {
		b.forget(id)
		return fmt.Errorf("bridge: sending %s: %w", name, err)
	}

	timer := time.NewTimer(b.cfg.CallTimeout)
	defer timer.Stop()
	select {
	case reply := <-ch:
		if reply.Error != "" {
			if reply.Error == ErrDisconnected.Error() {
				return ErrDisconnected
			}
			return fmt.Errorf("bridge: %s: %s", name, reply.Error)
		}
		if out == nil || len(reply.Result) == 0 {
			return nil
		}
		return json.Unmarshal(reply.Result, out)
	case <-timer.C:
		b.forget(id)
		return fmt.Errorf("%w: %s", ErrCallTimeout, name)
	}
}

func (b *Host) forget(id uint64) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

// Notify runs name on the page without waiting.
func (b *Host) Notify(name string, args ...any) {
	f, err := NewFrame(TypeNotify, 0, name, args...)
	if err == nil {
		err = b.write(f)
	}
	if err != nil {
		b.logger.Warn("bridge: notify failed", zap.String("name", name), zap.Error(err))
	}
}

func (b *Host) get(name string, out any, args ...any) bool {
	if err := b.Call(name, out, args...); err != nil {
		b.logger.Warn("bridge: call failed", zap.String("name", name), zap.Error(err))
		return false
	}
	return true
}

var _ native.Host = (*Host)(nil)
