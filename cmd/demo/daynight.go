package main

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"res-errare/graphics"
	"res-errare/internal/gpu"
)

// dayPalette is the lighting at one key time of day.
type dayPalette struct {
	t            float32    // normalised time 0..1
	clear        mgl32.Vec3 // background where no skybox is drawn
	sunIntensity float32
}

// palettes are ordered by t and wrap from the last back to the first.
var palettes = []dayPalette{
	{t: 0.00, clear: mgl32.Vec3{0.58, 0.75, 0.95}, sunIntensity: 1.20}, // noon
	{t: 0.22, clear: mgl32.Vec3{0.90, 0.52, 0.18}, sunIntensity: 0.90}, // golden hour
	{t: 0.30, clear: mgl32.Vec3{0.50, 0.22, 0.28}, sunIntensity: 0.25}, // dusk
	{t: 0.50, clear: mgl32.Vec3{0.04, 0.04, 0.08}, sunIntensity: 0.12}, // midnight
	{t: 0.70, clear: mgl32.Vec3{0.40, 0.18, 0.24}, sunIntensity: 0.20}, // pre-dawn
	{t: 0.78, clear: mgl32.Vec3{0.88, 0.45, 0.22}, sunIntensity: 0.70}, // sunrise
}

// DayNight moves the sun around the scene.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool
}

func NewDayNight() *DayNight {
	return &DayNight{Speed: 120, Active: true}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active || dn.Speed <= 0 {
		return
	}
	dn.Time += dt / dn.Speed
	dn.Time -= float32(math.Floor(float64(dn.Time)))
}

// samplePalette interpolates the palettes around t.
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	for i := range palettes {
		a, b := palettes[i], palettes[(i+1)%n]
		end := b.t
		if i == n-1 {
			end = 1
		}
		if t < a.t || t >= end {
			continue
		}
		f := (t - a.t) / (end - a.t)
		return dayPalette{
			t:            t,
			clear:        a.clear.Add(b.clear.Sub(a.clear).Mul(f)),
			sunIntensity: a.sunIntensity + (b.sunIntensity-a.sunIntensity)*f,
		}
	}
	return palettes[0]
}

// SunDirection points from the sun towards the scene: straight down at noon,
// straight up at midnight.
func (dn *DayNight) SunDirection() mgl32.Vec3 {
	angle := float64(dn.Time) * 2 * math.Pi
	return mgl32.Vec3{
		float32(math.Sin(angle)),
		-float32(math.Cos(angle)),
		0.35,
	}.Normalize()
}

// Apply sets the clear colour and the sun uniforms of shader.
func (dn *DayNight) Apply(dev gpu.Device, shader *graphics.ShaderProgram) {
	p := samplePalette(dn.Time)
	dev.ClearColor(p.clear.X(), p.clear.Y(), p.clear.Z(), 1)
	shader.Use()
	shader.SetVec3("lightDir", dn.SunDirection())
	shader.SetFloat("sunIntensity", p.sunIntensity)
}

// TimeOfDayStr formats Time as a 12-hour clock, counting from noon.
func (dn *DayNight) TimeOfDayStr() string {
	minutes := (int(dn.Time*24*60) + 12*60) % (24 * 60)
	h, m := minutes/60, minutes%60
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	if h%12 == 0 {
		return fmt.Sprintf("12:%02d %s", m, period)
	}
	return fmt.Sprintf("%02d:%02d %s", h%12, m, period)
}
