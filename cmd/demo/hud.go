package main

import (
	"fmt"
	"strings"
	"time"
)

// DebugOverlay collects status fields shown in the window title.
type DebugOverlay struct {
	lines []string
}

func (do *DebugOverlay) AddLine(format string, args ...any) {
	do.lines = append(do.lines, fmt.Sprintf(format, args...))
}

func (do *DebugOverlay) Clear() {
	do.lines = do.lines[:0]
}

func (do *DebugOverlay) GetText() string {
	return strings.Join(do.lines, " | ")
}

// fpsCounter counts frames over one second windows.
type fpsCounter struct {
	start  time.Time
	frames int
	fps    int
}

// Frame records a frame finished at now and reports whether a new rate is
// available.
func (c *fpsCounter) Frame(now time.Time) bool {
	if c.start.IsZero() {
		c.start = now
	}
	c.frames++
	if now.Sub(c.start) < time.Second {
		return false
	}
	c.fps = c.frames
	c.frames = 0
	c.start = now
	return true
}

func (c *fpsCounter) FPS() int { return c.fps }
