package event

// Emitter delivers room-wide custom events by name.
// Not safe for concurrent use.
type Emitter struct {
	handlers map[string][]customEntry
}

type customEntry struct {
	sub *Subscription
	fn  func(args ...any)
}

// NewEmitter returns an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[string][]customEntry)}
}

// On subscribes fn to name.
func (e *Emitter) On(name string, fn func(args ...any)) *Subscription {
	if e.handlers == nil {
		e.handlers = make(map[string][]customEntry)
	}
	sub := &Subscription{name: name}
	e.handlers[name] = append(e.handlers[name], customEntry{sub: sub, fn: fn})
	return sub
}

// Off removes the registration sub.
//
// Postcondition: Returns false if sub was not registered.
func (e *Emitter) Off(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	entries := e.handlers[sub.name]
	for i, c := range entries {
		if c.sub == sub {
			e.handlers[sub.name] = append(entries[:i:i], entries[i+1:]...)
			if len(e.handlers[sub.name]) == 0 {
				delete(e.handlers, sub.name)
			}
			return true
		}
	}
	return false
}

// Emit calls every handler of name in subscription order.
//
// Postcondition: Returns the number of handlers called.
func (e *Emitter) Emit(name string, args ...any) int {
	snapshot := append([]customEntry(nil), e.handlers[name]...)
	for _, c := range snapshot {
		c.fn(args...)
	}
	return len(snapshot)
}

// Count returns the number of handlers subscribed to name.
func (e *Emitter) Count(name string) int {
	return len(e.handlers[name])
}
