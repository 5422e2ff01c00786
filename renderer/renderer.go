// Package renderer owns the per-frame state shared by every shader: the
// uniform buffer holding the projection and view matrices, and the skybox
// cube.
package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"res-errare/graphics"
	"res-errare/internal/gpu"
	"res-errare/internal/logger"
)

// Projection parameters.
const (
	FieldOfView = 75.0 // degrees, vertical
	NearPlane   = 0.1
	FarPlane    = 100.0
)

// Layout of the matrices uniform block.
const (
	mat4Size         = 16 * 4
	projectionOffset = 0
	viewOffset       = mat4Size
	matricesSize     = 2 * mat4Size
)

// GameRenderer holds the shared matrices buffer bound at
// graphics.MatricesBinding and the cube geometry skyboxes are drawn with.
type GameRenderer struct {
	dev        gpu.Device
	ubo        uint32
	projection mgl32.Mat4
	ortho      mgl32.Mat4
	skybox     *graphics.SkyboxGeometry
}

// NewGameRenderer allocates the matrices buffer and the skybox cube.
func NewGameRenderer(dev gpu.Device) (*GameRenderer, error) {
	r := &GameRenderer{
		dev:        dev,
		projection: mgl32.Ident4(),
		ortho:      mgl32.Ident4(),
	}
	if r.ubo = dev.GenBuffer(); r.ubo == 0 {
		return nil, &graphics.ResourceCreationError{Object: "matrices uniform buffer"}
	}
	dev.BindBuffer(gpu.UniformBuffer, r.ubo)
	dev.BufferData(gpu.UniformBuffer, matricesSize, nil, gpu.StaticDraw)
	dev.BindBuffer(gpu.UniformBuffer, 0)
	dev.BindBufferRange(gpu.UniformBuffer, graphics.MatricesBinding, r.ubo, 0, matricesSize)

	geom, err := graphics.NewSkyboxGeometry(dev)
	if err != nil {
		r.Delete()
		return nil, err
	}
	r.skybox = geom
	return r, nil
}

// SetupProjection sets the viewport and recomputes the perspective and
// orthographic projections for a framebuffer of w by h pixels. The
// perspective matrix is written to the shared buffer. Non-positive sizes,
// as reported for minimised windows, are ignored.
func (r *GameRenderer) SetupProjection(w, h int) {
	if w <= 0 || h <= 0 {
		logger.L().Debug("projection size ignored", zap.Int("width", w), zap.Int("height", h))
		return
	}
	r.dev.Viewport(0, 0, int32(w), int32(h))
	r.projection = mgl32.Perspective(mgl32.DegToRad(FieldOfView), float32(w)/float32(h), NearPlane, FarPlane)
	r.ortho = mgl32.Ortho(0, float32(w), float32(h), 0, 0, 1)
	r.write(projectionOffset, r.projection)
}

// UpdateView writes the view matrix to the shared buffer.
func (r *GameRenderer) UpdateView(view mgl32.Mat4) {
	r.write(viewOffset, view)
}

func (r *GameRenderer) write(offset int, m mgl32.Mat4) {
	r.dev.BindBuffer(gpu.UniformBuffer, r.ubo)
	r.dev.BufferSubData(gpu.UniformBuffer, offset, mat4Size, m[:])
	r.dev.BindBuffer(gpu.UniformBuffer, 0)
}

// Projection returns the last perspective projection.
func (r *GameRenderer) Projection() mgl32.Mat4 { return r.projection }

// Ortho returns the last orthographic projection, with the origin at the
// top-left corner of the window.
func (r *GameRenderer) Ortho() mgl32.Mat4 { return r.ortho }

// DrawSkybox draws s with the renderer's cube.
func (r *GameRenderer) DrawSkybox(s *graphics.Skybox) {
	s.Draw(r.skybox)
}

// Delete releases the buffer and the skybox cube. Calling it again is a
// no-op.
func (r *GameRenderer) Delete() {
	if r.ubo != 0 {
		r.dev.DeleteBuffer(r.ubo)
		r.ubo = 0
	}
	if r.skybox != nil {
		r.skybox.Delete()
		r.skybox = nil
	}
}
