package main

import (
	"testing"

	"res-errare/graphics"
	"res-errare/internal/gpu/gputest"
)

func TestDayNightUpdateWraps(t *testing.T) {
	dn := NewDayNight()
	dn.Speed = 10
	dn.Update(12)
	if d := dn.Time - 0.2; d > 1e-5 || d < -1e-5 {
		t.Errorf("Time: expected 0.2, got %v", dn.Time)
	}
	dn.Active = false
	dn.Update(5)
	if d := dn.Time - 0.2; d > 1e-5 || d < -1e-5 {
		t.Errorf("paused: expected 0.2, got %v", dn.Time)
	}
}

func TestSamplePalette(t *testing.T) {
	if p := samplePalette(0); p.clear != palettes[0].clear {
		t.Errorf("noon: expected %v, got %v", palettes[0].clear, p.clear)
	}
	mid := samplePalette(0.11)
	want := palettes[0].clear.Add(palettes[1].clear).Mul(0.5)
	if !mid.clear.ApproxFuncEqual(want, near) {
		t.Errorf("halfway: expected %v, got %v", want, mid.clear)
	}
	// Between sunrise and the following noon.
	wrap := samplePalette(0.89)
	wantWrap := palettes[len(palettes)-1].clear.Add(palettes[0].clear).Mul(0.5)
	if !wrap.clear.ApproxFuncEqual(wantWrap, near) {
		t.Errorf("wrap: expected %v, got %v", wantWrap, wrap.clear)
	}
}

func TestDayNightSun(t *testing.T) {
	dn := NewDayNight()
	if dir := dn.SunDirection(); dir.Y() >= 0 {
		t.Errorf("noon: expected the sun to shine downwards, got %v", dir)
	}
	dn.Time = 0.5
	if dir := dn.SunDirection(); dir.Y() <= 0 {
		t.Errorf("midnight: expected the sun below the scene, got %v", dir)
	}
	if got := dn.TimeOfDayStr(); got != "12:00 AM" {
		t.Errorf("TimeOfDayStr: expected 12:00 AM, got %q", got)
	}
	dn.Time = 0
	if got := dn.TimeOfDayStr(); got != "12:00 PM" {
		t.Errorf("TimeOfDayStr: expected 12:00 PM, got %q", got)
	}
}

func TestDayNightApply(t *testing.T) {
	dev := gputest.New()
	shader, err := graphics.NewShaderProgram(dev,
		"#version 410 core\nvoid main() {}\n",
		"#version 410 core\nuniform vec3 lightDir;\nuniform float sunIntensity;\nvoid main() {}\n")
	if err != nil {
		t.Fatal(err)
	}
	dn := NewDayNight()
	dn.Apply(dev, shader)
	if v, _ := dev.Uniform(shader.Handle(), "lightDir"); v != dn.SunDirection() {
		t.Errorf("lightDir: expected %v, got %v", dn.SunDirection(), v)
	}
	if v, _ := dev.Uniform(shader.Handle(), "sunIntensity"); v != float32(1.2) {
		t.Errorf("sunIntensity: expected 1.2, got %v", v)
	}
}

func near(a, b float32) bool { return a-b < 1e-5 && b-a < 1e-5 }
