package core

import "testing"

func TestMouseTrackerDelta(t *testing.T) {
	var m MouseTracker
	if dx, dy := m.Delta(100, 50); dx != 0 || dy != 0 {
		t.Errorf("first delta: expected 0,0, got %v,%v", dx, dy)
	}
	if dx, dy := m.Delta(110, 45); dx != 10 || dy != -5 {
		t.Errorf("delta: expected 10,-5, got %v,%v", dx, dy)
	}
	m.Reset()
	if dx, dy := m.Delta(500, 500); dx != 0 || dy != 0 {
		t.Errorf("after Reset: expected 0,0, got %v,%v", dx, dy)
	}
	if dx, dy := m.Delta(499, 502); dx != -1 || dy != 2 {
		t.Errorf("delta: expected -1,2, got %v,%v", dx, dy)
	}
}
