package graphics

import (
	"res-errare/internal/gpu"
)

// skyboxVertices is a unit cube as 36 positions, wound to be seen from inside.
var skyboxVertices = []float32{
	-1, 1, -1, -1, -1, -1, 1, -1, -1,
	1, -1, -1, 1, 1, -1, -1, 1, -1,

	-1, -1, 1, -1, -1, -1, -1, 1, -1,
	-1, 1, -1, -1, 1, 1, -1, -1, 1,

	1, -1, -1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, -1, 1, -1, -1,

	-1, -1, 1, -1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, -1, 1, -1, -1, 1,

	-1, 1, -1, 1, 1, -1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, 1, -1,

	-1, -1, -1, -1, -1, 1, 1, -1, -1,
	1, -1, -1, -1, -1, 1, 1, -1, 1,
}

// SkyboxVertexCount is the number of vertices drawn for a skybox.
const SkyboxVertexCount = 36

// SkyboxGeometry is the cube vertex array shared by every skybox drawn
// through the same renderer.
type SkyboxGeometry struct {
	dev gpu.Device
	vao uint32
	vbo uint32
}

// NewSkyboxGeometry uploads the skybox cube.
func NewSkyboxGeometry(dev gpu.Device) (*SkyboxGeometry, error) {
	g := &SkyboxGeometry{dev: dev}
	if g.vao = dev.GenVertexArray(); g.vao == 0 {
		return nil, &ResourceCreationError{Object: "skybox vertex array"}
	}
	if g.vbo = dev.GenBuffer(); g.vbo == 0 {
		g.Delete()
		return nil, &ResourceCreationError{Object: "skybox vertex buffer"}
	}

	dev.BindVertexArray(g.vao)
	dev.BindBuffer(gpu.ArrayBuffer, g.vbo)
	dev.BufferData(gpu.ArrayBuffer, len(skyboxVertices)*4, skyboxVertices, gpu.StaticDraw)
	dev.EnableVertexAttribArray(0)
	dev.VertexAttribPointer(0, 3, gpu.Float, false, 3*4, 0)
	dev.BindVertexArray(0)
	return g, nil
}

// Bind binds the cube vertex array.
func (g *SkyboxGeometry) Bind() { g.dev.BindVertexArray(g.vao) }

// Delete releases the cube. Calling it again is a no-op.
func (g *SkyboxGeometry) Delete() {
	if g.vao != 0 {
		g.dev.DeleteVertexArray(g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		g.dev.DeleteBuffer(g.vbo)
		g.vbo = 0
	}
}

// Skybox pairs a cube map with the program that samples it.
type Skybox struct {
	CubeMap *CubeMapTexture
	Shader  *ShaderProgram
}

// NewSkybox points the "skybox" sampler at unit 0 and sets the scale to 1.
func NewSkybox(cubeMap *CubeMapTexture, shader *ShaderProgram) *Skybox {
	s := &Skybox{CubeMap: cubeMap, Shader: shader}
	shader.Use()
	shader.SetInt("skybox", 0)
	s.SetScale(1)
	return s
}

// SetScale sets the "scale" uniform of the skybox program.
func (s *Skybox) SetScale(scale float32) {
	s.Shader.Use()
	s.Shader.SetFloat("scale", scale)
}

// Draw renders the skybox behind everything already drawn. The depth test
// is relaxed to LEQUAL for the draw and restored to LESS.
func (s *Skybox) Draw(geom *SkyboxGeometry) {
	dev := s.Shader.dev
	dev.DepthFunc(gpu.Lequal)
	s.Shader.Use()
	geom.Bind()
	dev.ActiveTexture(0)
	s.CubeMap.Bind()
	dev.DrawArrays(gpu.Triangles, 0, SkyboxVertexCount)
	dev.BindVertexArray(0)
	dev.DepthFunc(gpu.Less)
}

// Delete releases the cube map and the program.
func (s *Skybox) Delete() {
	s.CubeMap.Delete()
	s.Shader.Delete()
}
