package core

import "github.com/go-gl/glfw/v3.3/glfw"

// Key is a keyboard key.
type Key int

const (
	KeyW      = Key(glfw.KeyW)
	KeyA      = Key(glfw.KeyA)
	KeyS      = Key(glfw.KeyS)
	KeyD      = Key(glfw.KeyD)
	KeyT      = Key(glfw.KeyT)
	KeyN      = Key(glfw.KeyN)
	KeyEscape = Key(glfw.KeyEscape)
	KeyEnter  = Key(glfw.KeyEnter)
	KeyUp     = Key(glfw.KeyUp)
	KeyDown   = Key(glfw.KeyDown)
	KeyLeft   = Key(glfw.KeyLeft)
	KeyRight  = Key(glfw.KeyRight)
)

// MouseTracker turns absolute cursor positions into per-frame deltas.
type MouseTracker struct {
	lastX, lastY float64
	primed       bool
}

// Delta returns the movement since the previous call. The first call, and
// the first call after Reset, returns zero so the camera does not jump.
func (m *MouseTracker) Delta(x, y float64) (dx, dy float32) {
	if m.primed {
		dx, dy = float32(x-m.lastX), float32(y-m.lastY)
	}
	m.lastX, m.lastY = x, y
	m.primed = true
	return dx, dy
}

// Reset forgets the last position.
func (m *MouseTracker) Reset() { m.primed = false }
