package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGesture_FifteenQuickTapsReveal(t *testing.T) {
	g := NewGesture(0, 0)
	defer g.Stop()

	for i := 1; i < DefaultGestureTaps; i++ {
		assert.False(t, g.Tap(), "tap %d", i)
	}
	assert.Equal(t, DefaultGestureTaps-1, g.Count())

	assert.True(t, g.Tap())
	assert.Equal(t, 0, g.Count())
}

func TestGesture_ResetsAfterWindow(t *testing.T) {
	g := NewGesture(3, 30*time.Millisecond)
	defer g.Stop()

	assert.False(t, g.Tap())
	assert.False(t, g.Tap())

	assert.Eventually(t, func() bool { return g.Count() == 0 }, time.Second, 5*time.Millisecond)

	assert.False(t, g.Tap())
	assert.Equal(t, 1, g.Count())
}

func TestGesture_TapRearmsTimer(t *testing.T) {
	g := NewGesture(100, 250*time.Millisecond)
	defer g.Stop()

	// taps spaced below the window keep the run alive well past one window
	for i := 0; i < 6; i++ {
		g.Tap()
		time.Sleep(30 * time.Millisecond)
	}
	assert.Equal(t, 6, g.Count())
}

func TestGesture_StopCancelsReset(t *testing.T) {
	g := NewGesture(5, 20*time.Millisecond)
	g.Tap()
	g.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, g.Count())
}
