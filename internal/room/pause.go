package room

import (
	"slices"
	"time"
)

// PauseHold keeps the game paused until it is released. The game unpauses
// when the last hold is released.
type PauseHold struct {
	room     *Room
	callback func(unpaused bool)
	timer    *time.Timer
	released bool
}

// HoldPause pauses the game and returns a hold on it. callback, if non-nil,
// runs on release with whether the release unpaused the game. A positive
// wait releases the hold automatically.
func (r *Room) HoldPause(callback func(unpaused bool), wait time.Duration) *PauseHold {
	h := &PauseHold{room: r, callback: callback}
	r.pauses = append(r.pauses, h)
	r.host.PauseGame(true)
	if wait > 0 {
		h.timer = time.AfterFunc(wait, func() {
			r.Do(func() { h.release(true) })
		})
	}
	return h
}

// Holds returns the number of unreleased pause holds.
func (r *Room) Holds() int {
	return len(r.pauses)
}

// Release drops the hold and runs its callback.
//
// Postcondition: Returns true if the game was unpaused.
func (h *PauseHold) Release() bool {
	return h.release(true)
}

// ReleaseAfter releases the hold after d on a timer. The callback runs then.
func (h *PauseHold) ReleaseAfter(d time.Duration) {
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(d, func() {
		h.room.Do(func() { h.release(true) })
	})
}

// Released reports whether the hold has been released.
func (h *PauseHold) Released() bool {
	return h.released
}

func (h *PauseHold) release(runCallback bool) bool {
	if h.released {
		return false
	}
	h.released = true
	if h.timer != nil {
		h.timer.Stop()
	}
	r := h.room
	r.pauses = slices.DeleteFunc(r.pauses, func(other *PauseHold) bool { return other == h })
	unpaused := len(r.pauses) == 0
	if unpaused {
		r.host.PauseGame(false)
	}
	if runCallback && h.callback != nil {
		h.callback(unpaused)
	}
	return unpaused
}

// dropPauses forgets every hold without unpausing or running callbacks.
func (r *Room) dropPauses() {
	for _, h := range r.pauses {
		h.released = true
		if h.timer != nil {
			h.timer.Stop()
		}
	}
	r.pauses = nil
}
