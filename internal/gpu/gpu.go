// Package gpu describes the slice of the OpenGL 4.1 core API the engine
// drives. Resources in graphics, scene and renderer talk to a Device instead
// of calling the C bindings directly so they can run against a recording
// fake in tests.
package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Device is an OpenGL context. Every method must be called from the goroutine
// that owns the context. Generated names are never 0 unless the driver failed
// to allocate the object.
type Device interface {
	// Shader stages
	CreateShader(stage uint32) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	// Programs
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ValidateProgram(program uint32)
	ProgramValidated(program uint32) bool
	ProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	// Uniforms
	UniformLocation(program uint32, name string) int32
	UniformBlockIndex(program uint32, name string) uint32
	UniformBlockBinding(program, block, binding uint32)
	Uniform1i(location, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	UniformMatrix4fv(location int32, m mgl32.Mat4)
	UniformMatrix4dv(location int32, m mgl64.Mat4)

	// Textures. ActiveTexture takes a unit index, not a TEXTURE0-based enum.
	GenTexture() uint32
	DeleteTexture(texture uint32)
	BindTexture(target, texture uint32)
	ActiveTexture(unit uint32)
	TexImage2D(target uint32, internalFormat int32, width, height int32, format uint32, pixels []byte)
	TexParameteri(target, pname uint32, param int32)
	GenerateMipmap(target uint32)
	PixelStorei(pname uint32, param int32)

	// Vertex arrays and buffers. data is nil or a non-empty slice.
	GenVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, size int, data any, usage uint32)
	BufferSubData(target uint32, offset, size int, data any)
	BindBufferRange(target, index, buffer uint32, offset, size int)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)

	// Drawing and fixed state
	DrawElements(mode uint32, count int32, xtype uint32, offset int)
	DrawArrays(mode uint32, first, count int32)
	Viewport(x, y, width, height int32)
	DepthFunc(fn uint32)
	Enable(capability uint32)
	PolygonMode(face, mode uint32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
}

// OpenGL enum values used by the engine.
const (
	False = 0
	True  = 1

	// Shader stages
	VertexShader   = 0x8b31
	FragmentShader = 0x8b30
	GeometryShader = 0x8dd9

	InvalidIndex = 0xffffffff

	// Depth
	Less   = 0x0201
	Lequal = 0x0203

	DepthTest      = 0x0b71
	CullFace       = 0x0b44
	FrontAndBack   = 0x0408
	Line           = 0x1b01
	Fill           = 0x1b02
	ColorBufferBit = 0x4000
	DepthBufferBit = 0x0100

	// Data types
	UnsignedByte = 0x1401
	UnsignedInt  = 0x1405
	Float        = 0x1406

	// Primitives
	Triangles = 0x0004

	// Buffers
	ArrayBuffer        = 0x8892
	ElementArrayBuffer = 0x8893
	UniformBuffer      = 0x8a11
	StaticDraw         = 0x88e4

	// Textures
	Texture2D               = 0x0de1
	TextureCubeMap          = 0x8513
	TextureCubeMapPositiveX = 0x8515
	TextureCubeMapNegativeX = 0x8516
	TextureCubeMapPositiveY = 0x8517
	TextureCubeMapNegativeY = 0x8518
	TextureCubeMapPositiveZ = 0x8519
	TextureCubeMapNegativeZ = 0x851a

	TextureMagFilter = 0x2800
	TextureMinFilter = 0x2801
	TextureWrapS     = 0x2802
	TextureWrapT     = 0x2803
	TextureWrapR     = 0x8072

	Nearest              = 0x2600
	Linear               = 0x2601
	NearestMipmapNearest = 0x2700
	LinearMipmapLinear   = 0x2703
	Repeat               = 0x2901
	ClampToEdge          = 0x812f

	UnpackAlignment = 0x0cf5

	// Pixel formats
	Red  = 0x1903
	RG   = 0x8227
	RGB  = 0x1907
	RGBA = 0x1908
)

// CubeMapFaces lists the cube map face targets in upload order.
var CubeMapFaces = [6]uint32{
	TextureCubeMapPositiveX,
	TextureCubeMapNegativeX,
	TextureCubeMapPositiveY,
	TextureCubeMapNegativeY,
	TextureCubeMapPositiveZ,
	TextureCubeMapNegativeZ,
}
