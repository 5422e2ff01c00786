package graphics

import (
	"fmt"
	"strconv"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"res-errare/internal/gpu"
)

// Vertex is the interleaved vertex record uploaded to the GPU as is.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
}

// VertexStride is the byte size of one Vertex.
const VertexStride = int32(unsafe.Sizeof(Vertex{}))

// VertexAttribute describes one float attribute of Vertex.
type VertexAttribute struct {
	Location   uint32
	Components int32
	Offset     int
}

// VertexAttributes is the attribute layout configured on every mesh VAO.
var VertexAttributes = []VertexAttribute{
	{Location: 0, Components: 3, Offset: 0},
	{Location: 1, Components: 3, Offset: 12},
	{Location: 2, Components: 2, Offset: 24},
}

func init() {
	if err := checkVertexLayout(); err != nil {
		panic(err)
	}
}

// checkVertexLayout compares VertexAttributes with the compiler's layout
// of Vertex.
func checkVertexLayout() error {
	var v Vertex
	offsets := []uintptr{
		unsafe.Offsetof(v.Position),
		unsafe.Offsetof(v.Normal),
		unsafe.Offsetof(v.TexCoords),
	}
	if len(offsets) != len(VertexAttributes) {
		return fmt.Errorf("vertex layout: %d fields, %d attributes", len(offsets), len(VertexAttributes))
	}
	for i, a := range VertexAttributes {
		if uintptr(a.Offset) != offsets[i] {
			return fmt.Errorf("vertex layout: attribute %d at offset %d, field at %d", a.Location, a.Offset, offsets[i])
		}
	}
	if VertexStride != 32 {
		return fmt.Errorf("vertex layout: stride %d, want 32", VertexStride)
	}
	return nil
}

// TextureType is the role of a texture on a mesh.
type TextureType int

const (
	TextureDiffuse TextureType = iota
	TextureSpecular
	TextureNormal
	TextureHeight
)

// String returns the sampler name prefix of the type.
func (t TextureType) String() string {
	switch t {
	case TextureDiffuse:
		return "texture_diffuse"
	case TextureSpecular:
		return "texture_specular"
	case TextureNormal:
		return "texture_normal"
	case TextureHeight:
		return "texture_height"
	}
	panic(fmt.Sprintf("graphics: unknown texture type %d", int(t)))
}

// MeshTexture is a texture attached to a mesh. The Texture may be shared
// between several entries and meshes.
type MeshTexture struct {
	Texture *Texture
	Type    TextureType
	Path    string
}

// Mesh owns one vertex array with its vertex and index buffers.
type Mesh struct {
	dev      gpu.Device
	vao      uint32
	vbo      uint32
	ebo      uint32
	vertices []Vertex
	indices  []uint32
	textures []*MeshTexture
}

// NewMesh uploads vertices and indices into new GPU buffers. It panics on
// an empty vertex list. Indices must form whole triangles over vertices.
func NewMesh(dev gpu.Device, vertices []Vertex, indices []uint32, textures []*MeshTexture) (*Mesh, error) {
	if len(vertices) == 0 {
		panic("graphics: mesh has no vertices")
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices do not form triangles", ErrInvalidMesh, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d at %d out of range for %d vertices", ErrInvalidMesh, idx, i, len(vertices))
		}
	}

	m := &Mesh{
		dev:      dev,
		vertices: vertices,
		indices:  indices,
		textures: textures,
	}
	if err := m.setup(); err != nil {
		m.Delete()
		return nil, err
	}
	return m, nil
}

func (m *Mesh) setup() error {
	if m.vao = m.dev.GenVertexArray(); m.vao == 0 {
		return &ResourceCreationError{Object: "vertex array"}
	}
	if m.vbo = m.dev.GenBuffer(); m.vbo == 0 {
		return &ResourceCreationError{Object: "vertex buffer"}
	}
	if m.ebo = m.dev.GenBuffer(); m.ebo == 0 {
		return &ResourceCreationError{Object: "index buffer"}
	}

	m.dev.BindVertexArray(m.vao)

	m.dev.BindBuffer(gpu.ArrayBuffer, m.vbo)
	m.dev.BufferData(gpu.ArrayBuffer, len(m.vertices)*int(VertexStride), m.vertices, gpu.StaticDraw)

	m.dev.BindBuffer(gpu.ElementArrayBuffer, m.ebo)
	var indexData any
	if len(m.indices) > 0 {
		indexData = m.indices
	}
	m.dev.BufferData(gpu.ElementArrayBuffer, len(m.indices)*4, indexData, gpu.StaticDraw)

	for _, a := range VertexAttributes {
		m.dev.EnableVertexAttribArray(a.Location)
		m.dev.VertexAttribPointer(a.Location, a.Components, gpu.Float, false, VertexStride, a.Offset)
	}

	m.dev.BindVertexArray(0)
	return nil
}

// Vertices returns the vertex data the mesh was built from.
func (m *Mesh) Vertices() []Vertex { return m.vertices }

// Indices returns the index data the mesh was built from.
func (m *Mesh) Indices() []uint32 { return m.indices }

// Textures returns the mesh textures in unit order.
func (m *Mesh) Textures() []*MeshTexture { return m.textures }

// SamplerNames returns the sampler uniform assigned to each texture by Draw:
// the type prefix followed by a 1-based count of that type on this mesh.
func (m *Mesh) SamplerNames() []string {
	var counts [TextureHeight + 1]int
	names := make([]string, len(m.textures))
	for i, tex := range m.textures {
		prefix := tex.Type.String()
		counts[tex.Type]++
		names[i] = prefix + strconv.Itoa(counts[tex.Type])
	}
	return names
}

// Draw binds texture i to unit i, points its sampler uniform at that unit
// and draws the indexed triangles. Unit 0 is active and no 2D texture is
// bound afterwards.
func (m *Mesh) Draw(shader *ShaderProgram) {
	shader.Use()
	for i, name := range m.SamplerNames() {
		m.dev.ActiveTexture(uint32(i))
		shader.SetInt(name, int32(i))
		m.textures[i].Texture.Bind()
	}

	m.dev.BindVertexArray(m.vao)
	m.dev.DrawElements(gpu.Triangles, int32(len(m.indices)), gpu.UnsignedInt, 0)
	m.dev.BindVertexArray(0)

	m.dev.ActiveTexture(0)
	UnbindTexture2D(m.dev)
}

// Delete releases the vertex array and buffers. Textures are owned by the
// caller. Calling it again is a no-op.
func (m *Mesh) Delete() {
	if m.vao != 0 {
		m.dev.DeleteVertexArray(m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		m.dev.DeleteBuffer(m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		m.dev.DeleteBuffer(m.ebo)
		m.ebo = 0
	}
}
