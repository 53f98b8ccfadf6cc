// Package history records which players joined from which IP address.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/haxroom/internal/geo"
)

// ErrNotFound is returned when no record exists for an IP.
var ErrNotFound = errors.New("history record not found")

// Entry is one join from an IP.
type Entry struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Auth     string    `json:"auth,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
	// Session identifies the room session the join happened in.
	Session uuid.UUID `json:"session"`
}

// Record is an IP's connection history.
type Record struct {
	IP      string        `json:"ip"`
	Geo     *geo.Location `json:"geo"`
	Players []Entry       `json:"players"`
}

// Store persists records keyed by IP.
type Store interface {
	// Get returns ErrNotFound (possibly wrapped) when ip has no record.
	Get(ctx context.Context, ip string) (Record, error)
	Set(ctx context.Context, r Record) error
	Remove(ctx context.Context, ip string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

// Pinger is implemented by stores backed by a server that can be checked for
// reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Append adds e to the record for ip, creating it with loc when absent.
// An existing record keeps its original location.
//
// Postcondition: Returns the record as written.
func Append(ctx context.Context, store Store, ip string, loc *geo.Location, e Entry) (Record, error) {
	rec, err := store.Get(ctx, ip)
	switch {
	case errors.Is(err, ErrNotFound):
		rec = Record{IP: ip, Geo: loc}
	case err != nil:
		return Record{}, fmt.Errorf("reading history for %s: %w", ip, err)
	}
	if rec.Geo == nil {
		rec.Geo = loc
	}
	rec.Players = append(rec.Players, e)
	if err := store.Set(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("writing history for %s: %w", ip, err)
	}
	return rec, nil
}

// MemoryStore is an in-process Store. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func clone(r Record) Record {
	out := r
	out.Players = append([]Entry(nil), r.Players...)
	if r.Geo != nil {
		g := *r.Geo
		out.Geo = &g
	}
	return out
}

func (m *MemoryStore) Get(_ context.Context, ip string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[ip]
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", ip, ErrNotFound)
	}
	return clone(r), nil
}

func (m *MemoryStore) Set(_ context.Context, r Record) error {
	if r.IP == "" {
		return errors.New("history record has no ip")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.IP] = clone(r)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, ip)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]Record)
	return nil
}

func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
