package session

import (
	"sync"
	"time"
)

const (
	DefaultGestureTaps   = 15
	DefaultGestureWindow = 3 * time.Second
)

// Gesture counts taps; reaching the threshold before the window of
// inactivity elapses reveals the login prompt. Every tap re-arms the reset
// timer, stopping the pending one first.
type Gesture struct {
	threshold int
	window    time.Duration

	mu    sync.Mutex
	count int
	gen   uint64
	timer *time.Timer
}

func NewGesture(threshold int, window time.Duration) *Gesture {
	if threshold <= 0 {
		threshold = DefaultGestureTaps
	}
	if window <= 0 {
		window = DefaultGestureWindow
	}
	return &Gesture{threshold: threshold, window: window}
}

// Tap records one tap and reports whether the prompt should open.
func (g *Gesture) Tap() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timer != nil {
		g.timer.Stop()
	}
	g.count++
	g.gen++

	if g.count >= g.threshold {
		g.count = 0
		g.timer = nil
		return true
	}

	gen := g.gen
	g.timer = time.AfterFunc(g.window, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		// a later tap superseded this timer
		if g.gen == gen {
			g.count = 0
		}
	})
	return false
}

// Count is the number of taps in the current run.
func (g *Gesture) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// Stop cancels the pending reset timer.
func (g *Gesture) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
