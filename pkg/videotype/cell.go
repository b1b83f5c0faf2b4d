// Package videotype provides the shared current-value cell for the type of
// the currently playing video. It replaces the usual volatile-static-field
// pattern with an explicit publish/subscribe primitive.
package videotype

import "sync"

// Kind classifies how the current video is delivered.
type Kind int

const (
	Unknown Kind = iota
	OnDemand
	LiveStream
	// Premiere is a scheduled video that only has a trailer so far.
	Premiere
)

func (k Kind) String() string {
	switch k {
	case OnDemand:
		return "onDemand"
	case LiveStream:
		return "liveStream"
	case Premiere:
		return "premiere"
	default:
		return "unknown"
	}
}

// Observer is invoked after the cell's value changed.
type Observer func(previous, current Kind)

// Cell holds the current video type. It's meant to be written by a single
// resolver and read by any number of goroutines. Observers are invoked
// synchronously on the Set caller's goroutine, outside the cell's lock, so
// they may call Get or Set themselves without deadlocking.
type Cell struct {
	mu        sync.RWMutex
	current   Kind
	observers []Observer
}

func NewCell() *Cell {
	return &Cell{}
}

// Get returns the current video type.
func (c *Cell) Get() Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set updates the current video type. Observers are only notified when the
// value actually changed.
func (c *Cell) Set(k Kind) {
	c.mu.Lock()
	previous := c.current
	if previous == k {
		c.mu.Unlock()
		return
	}
	c.current = k
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, observe := range observers {
		observe(previous, k)
	}
}

// Subscribe registers an observer for future changes. There is no way to
// unsubscribe, the cell is expected to live as long as the process.
func (c *Cell) Subscribe(observer Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, observer)
}
