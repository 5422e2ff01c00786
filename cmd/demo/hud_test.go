package main

import (
	"testing"
	"time"
)

func TestDebugOverlay(t *testing.T) {
	var do DebugOverlay
	do.AddLine("FPS: %d", 60)
	do.AddLine("wire")
	if got := do.GetText(); got != "FPS: 60 | wire" {
		t.Errorf("GetText: expected %q, got %q", "FPS: 60 | wire", got)
	}
	do.Clear()
	if got := do.GetText(); got != "" {
		t.Errorf("Clear: expected empty text, got %q", got)
	}
}

func TestFPSCounter(t *testing.T) {
	var c fpsCounter
	start := time.Unix(100, 0)
	for i := 0; i < 30; i++ {
		if c.Frame(start.Add(time.Duration(i) * 10 * time.Millisecond)) {
			t.Fatalf("frame %d: rate reported before a second passed", i)
		}
	}
	if !c.Frame(start.Add(time.Second)) {
		t.Fatal("expected a rate after one second")
	}
	if c.FPS() != 31 {
		t.Errorf("FPS: expected 31, got %d", c.FPS())
	}
}
