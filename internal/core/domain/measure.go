package domain

import (
	"time"

	"github.com/google/uuid"
)

type MeasureState string

const (
	MeasureCreated MeasureState = "CREATED"
	MeasureOpen    MeasureState = "OPEN"
	MeasureClosed  MeasureState = "CLOSED"
)

type Measure struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	State       MeasureState `json:"state"`
	CreatedAt   time.Time    `json:"created_at"`
	OpensAt     *time.Time   `json:"opens_at,omitempty"`
	ClosesAt    *time.Time   `json:"closes_at,omitempty"`
	ClosedAt    *time.Time   `json:"closed_at,omitempty"`
}

// Window is the [OpensAt, ClosesAt) interval during which ballots are admitted.
type Window struct {
	OpensAt  time.Time
	ClosesAt time.Time
}

func NewWindow(now time.Time, d time.Duration) Window {
	return Window{OpensAt: now, ClosesAt: now.Add(d)}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.OpensAt) && t.Before(w.ClosesAt)
}

// Window returns the measure's voting window, or false if it was never opened.
func (m *Measure) Window() (Window, bool) {
	if m.OpensAt == nil || m.ClosesAt == nil {
		return Window{}, false
	}
	return Window{OpensAt: *m.OpensAt, ClosesAt: *m.ClosesAt}, true
}

// AcceptsBallotsAt is time-derived: a measure flagged OPEN whose window has
// elapsed does not accept ballots even before the sweeper closes it.
func (m *Measure) AcceptsBallotsAt(now time.Time) bool {
	if m.State != MeasureOpen {
		return false
	}
	w, ok := m.Window()
	return ok && now.Before(w.ClosesAt)
}

// ExpiredAt reports whether an open measure's window has elapsed at now.
func (m *Measure) ExpiredAt(now time.Time) bool {
	if m.State != MeasureOpen {
		return false
	}
	w, ok := m.Window()
	return ok && !now.Before(w.ClosesAt)
}

// CanTransition lists the only edges of the session state machine.
func CanTransition(from, to MeasureState) bool {
	switch {
	case from == MeasureCreated && to == MeasureOpen:
		return true
	case from == MeasureOpen && to == MeasureClosed:
		return true
	}
	return false
}
