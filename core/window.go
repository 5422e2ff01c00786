// Package core owns the GLFW window, its OpenGL context and input.
package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"res-errare/internal/config"
)

// GLFW and OpenGL calls must come from the main thread.
func init() {
	runtime.LockOSThread()
}

// Window is a GLFW window with a current OpenGL 4.1 core context.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	cursorLocked bool
}

// NewWindow initialises GLFW, opens a window and makes its context current.
func NewWindow(cfg config.WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(cfg.Resizable))

	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Title:  cfg.Title,
	}
	window.Width, window.Height = handle.GetFramebufferSize()
	return window, nil
}

// OnFramebufferResize registers cb for framebuffer size changes. Width and
// Height are updated before cb runs.
func (w *Window) OnFramebufferResize(cb func(width, height int)) {
	w.Handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width = width
		w.Height = height
		if cb != nil {
			cb(width, height)
		}
	})
}

// OnKeyPress registers cb for key presses. Repeats and releases are not
// reported.
func (w *Window) OnKeyPress(cb func(key Key)) {
	w.Handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press {
			cb(Key(key))
		}
	})
}

func (w *Window) ShouldClose() bool { return w.Handle.ShouldClose() }

func (w *Window) Close() { w.Handle.SetShouldClose(true) }

func (w *Window) PollEvents() { glfw.PollEvents() }

func (w *Window) SwapBuffers() { w.Handle.SwapBuffers() }

// Time returns seconds since GLFW was initialised.
func (w *Window) Time() float64 { return glfw.GetTime() }

func (w *Window) IsKeyPressed(key Key) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// SetCursorLocked hides the cursor and keeps it in the window for
// mouse look, or releases it.
func (w *Window) SetCursorLocked(locked bool) {
	mode := glfw.CursorNormal
	if locked {
		mode = glfw.CursorDisabled
	}
	w.Handle.SetInputMode(glfw.CursorMode, mode)
	w.cursorLocked = locked
}

func (w *Window) CursorLocked() bool { return w.cursorLocked }

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
