package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"res-errare/internal/gpu"
	"res-errare/internal/logger"
)

// Device forwards gpu.Device calls to the go-gl bindings.
type Device struct{}

var _ gpu.Device = Device{}

// Init loads the OpenGL function pointers and returns a Device.
// Must be called after the GLFW window context is made current.
func Init() (Device, error) {
	if err := gl.Init(); err != nil {
		return Device{}, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.L().Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("vendor", gl.GoStr(gl.GetString(gl.VENDOR))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	return Device{}, nil
}

// ── Shaders ───────────────────────────────────────────────────────────────────

func (Device) CreateShader(stage uint32) uint32 { return gl.CreateShader(stage) }

func (Device) ShaderSource(shader uint32, src string) {
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
}

func (Device) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Device) ShaderCompiled(shader uint32) bool {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (Device) ShaderInfoLog(shader uint32) string {
	var logLen int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

// ── Programs ──────────────────────────────────────────────────────────────────

func (Device) CreateProgram() uint32               { return gl.CreateProgram() }
func (Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (Device) LinkProgram(program uint32)          { gl.LinkProgram(program) }
func (Device) ValidateProgram(program uint32)      { gl.ValidateProgram(program) }
func (Device) UseProgram(program uint32)           { gl.UseProgram(program) }
func (Device) DeleteProgram(program uint32)        { gl.DeleteProgram(program) }

func (Device) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (Device) ProgramValidated(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.VALIDATE_STATUS, &status)
	return status != gl.FALSE
}

func (Device) ProgramInfoLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

// ── Uniforms ──────────────────────────────────────────────────────────────────

func (Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Device) UniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
}

func (Device) UniformBlockBinding(program, block, binding uint32) {
	gl.UniformBlockBinding(program, block, binding)
}

func (Device) Uniform1i(location, v int32)         { gl.Uniform1i(location, v) }
func (Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }
func (Device) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}
func (Device) Uniform3f(location int32, x, y, z float32) {
	gl.Uniform3f(location, x, y, z)
}
func (Device) Uniform4f(location int32, x, y, z, w float32) {
	gl.Uniform4f(location, x, y, z, w)
}

func (Device) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (Device) UniformMatrix4dv(location int32, m mgl64.Mat4) {
	gl.UniformMatrix4dv(location, 1, false, &m[0])
}

// ── Textures ──────────────────────────────────────────────────────────────────

func (Device) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (Device) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

func (Device) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

func (Device) ActiveTexture(unit uint32) { gl.ActiveTexture(gl.TEXTURE0 + unit) }

func (Device) TexImage2D(target uint32, internalFormat int32, width, height int32, format uint32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, 0, internalFormat, width, height, 0, format, gl.UNSIGNED_BYTE, ptr)
}

func (Device) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (Device) GenerateMipmap(target uint32)          { gl.GenerateMipmap(target) }
func (Device) PixelStorei(pname uint32, param int32) { gl.PixelStorei(pname, param) }

// ── Vertex arrays and buffers ─────────────────────────────────────────────────

func (Device) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }
func (Device) BindVertexArray(vao uint32)   { gl.BindVertexArray(vao) }

func (Device) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (Device) DeleteBuffer(buffer uint32)       { gl.DeleteBuffers(1, &buffer) }
func (Device) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (Device) BufferData(target uint32, size int, data any, usage uint32) {
	var ptr unsafe.Pointer
	if data != nil {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(target, size, ptr, usage)
}

func (Device) BufferSubData(target uint32, offset, size int, data any) {
	gl.BufferSubData(target, offset, size, gl.Ptr(data))
}

func (Device) BindBufferRange(target, index, buffer uint32, offset, size int) {
	gl.BindBufferRange(target, index, buffer, offset, size)
}

func (Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, xtype, normalized, stride, gl.PtrOffset(offset))
}

// ── Drawing ───────────────────────────────────────────────────────────────────

func (Device) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	gl.DrawElements(mode, count, xtype, gl.PtrOffset(offset))
}

func (Device) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (Device) DepthFunc(fn uint32)                { gl.DepthFunc(fn) }
func (Device) Enable(capability uint32)           { gl.Enable(capability) }
func (Device) PolygonMode(face, mode uint32)      { gl.PolygonMode(face, mode) }
func (Device) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }
func (Device) Clear(mask uint32)                  { gl.Clear(mask) }
