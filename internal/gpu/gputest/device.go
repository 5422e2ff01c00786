// Package gputest provides an in-memory gpu.Device that records what the
// engine asks of the GPU.
package gputest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"res-errare/internal/gpu"
)

// Object kinds tracked by the fake.
const (
	KindShader      = "shader"
	KindProgram     = "program"
	KindTexture     = "texture"
	KindVertexArray = "vertex array"
	KindBuffer      = "buffer"
)

var (
	uniformRe = regexp.MustCompile(`uniform\s+\w+\s+(\w+)\s*(?:\[[^\]]*\])?\s*;`)
	blockRe   = regexp.MustCompile(`uniform\s+(\w+)\s*\{`)
)

// Shader is a recorded shader stage.
type Shader struct {
	Stage    uint32
	Source   string
	Compiled bool
	Log      string
}

// Program is a recorded shader program.
type Program struct {
	Shaders   []uint32
	Linked    bool
	Validated bool
	Log       string
	Uniforms  []string          // index is the uniform location
	Blocks    []string          // index is the block index
	Bindings  map[string]uint32 // block name to binding point
	Values    map[string]any    // last value written per uniform name
	sources   []string
}

// Image is a recorded TexImage2D call.
type Image struct {
	InternalFormat int32
	Width, Height  int32
	Format         uint32
	Pixels         []byte
}

// Texture is a recorded texture object.
type Texture struct {
	Target  uint32
	Params  map[uint32]int32
	Images  map[uint32]Image // keyed by upload target
	Mipmaps bool
}

// Buffer is a recorded buffer object.
type Buffer struct {
	Target uint32
	Size   int
	Usage  uint32
	Floats []float32
	Uints  []uint32
	Writes []Write
}

// Write is a BufferSubData call.
type Write struct {
	Offset, Size int
	Floats       []float32
}

// Attrib is a configured vertex attribute.
type Attrib struct {
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     int
	Enabled    bool
	Buffer     uint32
}

// VertexArray is a recorded vertex array object.
type VertexArray struct {
	Attribs      map[uint32]*Attrib
	ElementArray uint32
}

// Draw is a recorded draw call with the state it saw.
type Draw struct {
	Mode        uint32
	First       int32
	Count       int32
	Indexed     bool
	Program     uint32
	VertexArray uint32
	DepthFunc   uint32
	// Textures maps texture unit to the texture bound there for each target.
	Textures map[uint32]map[uint32]uint32
}

// Device is a fake gpu.Device. The zero value is not usable; call New.
type Device struct {
	// Fail makes the named object kind allocation return 0.
	Fail map[string]bool
	// FailLink makes every link fail with LinkLog.
	FailLink bool
	LinkLog  string
	// FailValidate makes ValidateProgram report failure.
	FailValidate bool

	next uint32
	live map[uint32]string

	Shaders      map[uint32]*Shader
	Programs     map[uint32]*Program
	Textures     map[uint32]*Texture
	Buffers      map[uint32]*Buffer
	VertexArrays map[uint32]*VertexArray

	// BadDeletes counts deletes of names that are not live.
	BadDeletes int

	CurrentProgram uint32
	BoundVAO       uint32
	ActiveUnit     uint32
	Bound          map[uint32]map[uint32]uint32 // unit -> target -> texture
	BoundBuffers   map[uint32]uint32            // target -> buffer
	Ranges         map[uint32]uint32            // uniform binding point -> buffer
	PixelStore     map[uint32]int32
	Enabled        map[uint32]bool
	Polygon        uint32
	Depth          uint32
	ViewportRect   [4]int32

	Calls []string
	Draws []Draw
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty fake device with depth testing set to LESS.
func New() *Device {
	return &Device{
		Fail:         map[string]bool{},
		live:         map[uint32]string{},
		Shaders:      map[uint32]*Shader{},
		Programs:     map[uint32]*Program{},
		Textures:     map[uint32]*Texture{},
		Buffers:      map[uint32]*Buffer{},
		VertexArrays: map[uint32]*VertexArray{},
		Bound:        map[uint32]map[uint32]uint32{},
		BoundBuffers: map[uint32]uint32{},
		Ranges:       map[uint32]uint32{},
		PixelStore:   map[uint32]int32{},
		Enabled:      map[uint32]bool{},
		Polygon:      gpu.Fill,
		Depth:        gpu.Less,
	}
}

// ── Bookkeeping ───────────────────────────────────────────────────────────────

func (d *Device) call(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Device) alloc(kind string) uint32 {
	if d.Fail[kind] {
		return 0
	}
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *Device) free(kind string, name uint32) bool {
	if name == 0 {
		return false
	}
	if d.live[name] != kind {
		d.BadDeletes++
		return false
	}
	delete(d.live, name)
	return true
}

// Live returns the number of live objects of the given kind, or of every
// kind when kind is empty.
func (d *Device) Live(kind string) int {
	n := 0
	for _, k := range d.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

// IsLive reports whether name is a live object.
func (d *Device) IsLive(name uint32) bool {
	_, ok := d.live[name]
	return ok
}

// Reset forgets recorded calls and draws but keeps objects.
func (d *Device) Reset() {
	d.Calls = nil
	d.Draws = nil
}

// CallsWithPrefix returns the recorded calls starting with prefix.
func (d *Device) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range d.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Uniform returns the last value written to the named uniform of program.
func (d *Device) Uniform(program uint32, name string) (any, bool) {
	p, ok := d.Programs[program]
	if !ok {
		return nil, false
	}
	v, ok := p.Values[name]
	return v, ok
}

// ── Shaders ───────────────────────────────────────────────────────────────────

func (d *Device) CreateShader(stage uint32) uint32 {
	id := d.alloc(KindShader)
	if id != 0 {
		d.Shaders[id] = &Shader{Stage: stage}
	}
	d.call("CreateShader(%#x) = %d", stage, id)
	return id
}

func (d *Device) ShaderSource(shader uint32, src string) {
	if s, ok := d.Shaders[shader]; ok {
		s.Source = src
	}
}

// CompileShader fails when the source contains an "#error" directive or has
// no "void main" entry point.
func (d *Device) CompileShader(shader uint32) {
	s, ok := d.Shaders[shader]
	if !ok {
		return
	}
	d.call("CompileShader(%d)", shader)
	for i, line := range strings.Split(s.Source, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#error") {
			s.Log = fmt.Sprintf("0:%d(1): error: %s", i+1, strings.TrimSpace(line))
			return
		}
	}
	if !strings.Contains(s.Source, "void main") {
		s.Log = "0:1(1): error: missing entry point main"
		return
	}
	s.Compiled = true
}

func (d *Device) ShaderCompiled(shader uint32) bool {
	s, ok := d.Shaders[shader]
	return ok && s.Compiled
}

func (d *Device) ShaderInfoLog(shader uint32) string {
	if s, ok := d.Shaders[shader]; ok {
		return s.Log
	}
	return ""
}

func (d *Device) DeleteShader(shader uint32) {
	d.call("DeleteShader(%d)", shader)
	d.free(KindShader, shader)
}

// ── Programs ──────────────────────────────────────────────────────────────────

func (d *Device) CreateProgram() uint32 {
	id := d.alloc(KindProgram)
	if id != 0 {
		d.Programs[id] = &Program{
			Bindings: map[string]uint32{},
			Values:   map[string]any{},
		}
	}
	d.call("CreateProgram() = %d", id)
	return id
}

func (d *Device) AttachShader(program, shader uint32) {
	p, ok := d.Programs[program]
	if !ok {
		return
	}
	p.Shaders = append(p.Shaders, shader)
	if s, ok := d.Shaders[shader]; ok {
		p.sources = append(p.sources, s.Source)
	}
	d.call("AttachShader(%d, %d)", program, shader)
}

// LinkProgram collects uniforms and uniform blocks from the attached
// sources. Linking fails if any attached stage did not compile.
func (d *Device) LinkProgram(program uint32) {
	p, ok := d.Programs[program]
	if !ok {
		return
	}
	d.call("LinkProgram(%d)", program)
	if d.FailLink {
		p.Log = d.LinkLog
		return
	}
	for _, sh := range p.Shaders {
		if !d.ShaderCompiled(sh) {
			p.Log = fmt.Sprintf("error: shader %d not compiled", sh)
			return
		}
	}
	seen := map[string]bool{}
	for _, src := range p.sources {
		for _, m := range uniformRe.FindAllStringSubmatch(src, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				p.Uniforms = append(p.Uniforms, m[1])
			}
		}
		for _, m := range blockRe.FindAllStringSubmatch(src, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				p.Blocks = append(p.Blocks, m[1])
			}
		}
	}
	p.Linked = true
}

func (d *Device) ProgramLinked(program uint32) bool {
	p, ok := d.Programs[program]
	return ok && p.Linked
}

func (d *Device) ValidateProgram(program uint32) {
	p, ok := d.Programs[program]
	if !ok {
		return
	}
	p.Validated = p.Linked && !d.FailValidate
	if !p.Validated {
		p.Log = "validation failed"
	}
}

func (d *Device) ProgramValidated(program uint32) bool {
	p, ok := d.Programs[program]
	return ok && p.Validated
}

func (d *Device) ProgramInfoLog(program uint32) string {
	if p, ok := d.Programs[program]; ok {
		return p.Log
	}
	return ""
}

func (d *Device) UseProgram(program uint32) {
	d.CurrentProgram = program
	d.call("UseProgram(%d)", program)
}

func (d *Device) DeleteProgram(program uint32) {
	d.call("DeleteProgram(%d)", program)
	d.free(KindProgram, program)
}

// ── Uniforms ──────────────────────────────────────────────────────────────────

func (d *Device) UniformLocation(program uint32, name string) int32 {
	d.call("UniformLocation(%d, %s)", program, name)
	p, ok := d.Programs[program]
	if !ok || !p.Linked {
		return -1
	}
	for i, u := range p.Uniforms {
		if u == name {
			return int32(i)
		}
	}
	return -1
}

func (d *Device) UniformBlockIndex(program uint32, name string) uint32 {
	p, ok := d.Programs[program]
	if !ok || !p.Linked {
		return gpu.InvalidIndex
	}
	for i, b := range p.Blocks {
		if b == name {
			return uint32(i)
		}
	}
	return gpu.InvalidIndex
}

func (d *Device) UniformBlockBinding(program, block, binding uint32) {
	p, ok := d.Programs[program]
	if !ok || int(block) >= len(p.Blocks) {
		return
	}
	p.Bindings[p.Blocks[block]] = binding
	d.call("UniformBlockBinding(%d, %s, %d)", program, p.Blocks[block], binding)
}

func (d *Device) setUniform(location int32, v any) {
	p, ok := d.Programs[d.CurrentProgram]
	if !ok || location < 0 || int(location) >= len(p.Uniforms) {
		d.call("Uniform(%d) ignored", location)
		return
	}
	name := p.Uniforms[location]
	p.Values[name] = v
	d.call("Uniform(%s, %v)", name, v)
}

func (d *Device) Uniform1i(location, v int32)         { d.setUniform(location, v) }
func (d *Device) Uniform1f(location int32, v float32) { d.setUniform(location, v) }
func (d *Device) Uniform2f(location int32, x, y float32) {
	d.setUniform(location, mgl32.Vec2{x, y})
}
func (d *Device) Uniform3f(location int32, x, y, z float32) {
	d.setUniform(location, mgl32.Vec3{x, y, z})
}
func (d *Device) Uniform4f(location int32, x, y, z, w float32) {
	d.setUniform(location, mgl32.Vec4{x, y, z, w})
}
func (d *Device) UniformMatrix4fv(location int32, m mgl32.Mat4) { d.setUniform(location, m) }
func (d *Device) UniformMatrix4dv(location int32, m mgl64.Mat4) { d.setUniform(location, m) }

// ── Textures ──────────────────────────────────────────────────────────────────

func (d *Device) GenTexture() uint32 {
	id := d.alloc(KindTexture)
	if id != 0 {
		d.Textures[id] = &Texture{Params: map[uint32]int32{}, Images: map[uint32]Image{}}
	}
	d.call("GenTexture() = %d", id)
	return id
}

func (d *Device) DeleteTexture(texture uint32) {
	d.call("DeleteTexture(%d)", texture)
	if !d.free(KindTexture, texture) {
		return
	}
	for _, targets := range d.Bound {
		for target, id := range targets {
			if id == texture {
				targets[target] = 0
			}
		}
	}
}

func (d *Device) BindTexture(target, texture uint32) {
	if d.Bound[d.ActiveUnit] == nil {
		d.Bound[d.ActiveUnit] = map[uint32]uint32{}
	}
	d.Bound[d.ActiveUnit][target] = texture
	if t, ok := d.Textures[texture]; ok && t.Target == 0 {
		t.Target = target
	}
	d.call("BindTexture(%#x, %d)", target, texture)
}

// BoundTexture returns the texture bound to target on the given unit.
func (d *Device) BoundTexture(unit, target uint32) uint32 {
	return d.Bound[unit][target]
}

func (d *Device) ActiveTexture(unit uint32) {
	d.ActiveUnit = unit
	d.call("ActiveTexture(%d)", unit)
}

func (d *Device) bound(target uint32) *Texture {
	if target >= gpu.TextureCubeMapPositiveX && target <= gpu.TextureCubeMapNegativeZ {
		target = gpu.TextureCubeMap
	}
	return d.Textures[d.Bound[d.ActiveUnit][target]]
}

func (d *Device) TexImage2D(target uint32, internalFormat int32, width, height int32, format uint32, pixels []byte) {
	d.call("TexImage2D(%#x, %dx%d, %#x)", target, width, height, format)
	t := d.bound(target)
	if t == nil {
		return
	}
	t.Images[target] = Image{
		InternalFormat: internalFormat,
		Width:          width,
		Height:         height,
		Format:         format,
		Pixels:         append([]byte(nil), pixels...),
	}
}

func (d *Device) TexParameteri(target, pname uint32, param int32) {
	if t := d.bound(target); t != nil {
		t.Params[pname] = param
	}
}

func (d *Device) GenerateMipmap(target uint32) {
	if t := d.bound(target); t != nil {
		t.Mipmaps = true
	}
	d.call("GenerateMipmap(%#x)", target)
}

func (d *Device) PixelStorei(pname uint32, param int32) {
	d.PixelStore[pname] = param
}

// ── Vertex arrays and buffers ─────────────────────────────────────────────────

func (d *Device) GenVertexArray() uint32 {
	id := d.alloc(KindVertexArray)
	if id != 0 {
		d.VertexArrays[id] = &VertexArray{Attribs: map[uint32]*Attrib{}}
	}
	d.call("GenVertexArray() = %d", id)
	return id
}

func (d *Device) DeleteVertexArray(vao uint32) {
	d.call("DeleteVertexArray(%d)", vao)
	d.free(KindVertexArray, vao)
}

func (d *Device) BindVertexArray(vao uint32) {
	d.BoundVAO = vao
	d.call("BindVertexArray(%d)", vao)
}

func (d *Device) GenBuffer() uint32 {
	id := d.alloc(KindBuffer)
	if id != 0 {
		d.Buffers[id] = &Buffer{}
	}
	d.call("GenBuffer() = %d", id)
	return id
}

func (d *Device) DeleteBuffer(buffer uint32) {
	d.call("DeleteBuffer(%d)", buffer)
	d.free(KindBuffer, buffer)
}

func (d *Device) BindBuffer(target, buffer uint32) {
	d.BoundBuffers[target] = buffer
	if b, ok := d.Buffers[buffer]; ok && b.Target == 0 {
		b.Target = target
	}
	if target == gpu.ElementArrayBuffer {
		if vao, ok := d.VertexArrays[d.BoundVAO]; ok {
			vao.ElementArray = buffer
		}
	}
	d.call("BindBuffer(%#x, %d)", target, buffer)
}

func (d *Device) BufferData(target uint32, size int, data any, usage uint32) {
	d.call("BufferData(%#x, %d)", target, size)
	b, ok := d.Buffers[d.BoundBuffers[target]]
	if !ok {
		return
	}
	b.Size = size
	b.Usage = usage
	b.Floats, b.Uints = nil, nil
	switch v := data.(type) {
	case []float32:
		b.Floats = append([]float32(nil), v...)
	case []uint32:
		b.Uints = append([]uint32(nil), v...)
	}
}

func (d *Device) BufferSubData(target uint32, offset, size int, data any) {
	d.call("BufferSubData(%#x, %d, %d)", target, offset, size)
	b, ok := d.Buffers[d.BoundBuffers[target]]
	if !ok {
		return
	}
	w := Write{Offset: offset, Size: size}
	if v, ok := data.([]float32); ok {
		w.Floats = append([]float32(nil), v...)
	}
	b.Writes = append(b.Writes, w)
}

func (d *Device) BindBufferRange(target, index, buffer uint32, offset, size int) {
	if target == gpu.UniformBuffer {
		d.Ranges[index] = buffer
	}
	d.call("BindBufferRange(%#x, %d, %d, %d, %d)", target, index, buffer, offset, size)
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	vao, ok := d.VertexArrays[d.BoundVAO]
	if !ok {
		return
	}
	a := vao.Attribs[index]
	if a == nil {
		a = &Attrib{}
		vao.Attribs[index] = a
	}
	a.Enabled = true
}

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	vao, ok := d.VertexArrays[d.BoundVAO]
	if !ok {
		return
	}
	a := vao.Attribs[index]
	if a == nil {
		a = &Attrib{}
		vao.Attribs[index] = a
	}
	a.Size, a.Type, a.Normalized, a.Stride, a.Offset = size, xtype, normalized, stride, offset
	a.Buffer = d.BoundBuffers[gpu.ArrayBuffer]
}

// ── Drawing ───────────────────────────────────────────────────────────────────

func (d *Device) snapshot(mode uint32, first, count int32, indexed bool) {
	textures := map[uint32]map[uint32]uint32{}
	for unit, targets := range d.Bound {
		for target, id := range targets {
			if id == 0 {
				continue
			}
			if textures[unit] == nil {
				textures[unit] = map[uint32]uint32{}
			}
			textures[unit][target] = id
		}
	}
	d.Draws = append(d.Draws, Draw{
		Mode:        mode,
		First:       first,
		Count:       count,
		Indexed:     indexed,
		Program:     d.CurrentProgram,
		VertexArray: d.BoundVAO,
		DepthFunc:   d.Depth,
		Textures:    textures,
	})
}

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	d.call("DrawElements(%#x, %d)", mode, count)
	d.snapshot(mode, int32(offset), count, true)
}

func (d *Device) DrawArrays(mode uint32, first, count int32) {
	d.call("DrawArrays(%#x, %d, %d)", mode, first, count)
	d.snapshot(mode, first, count, false)
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.ViewportRect = [4]int32{x, y, width, height}
	d.call("Viewport(%d, %d, %d, %d)", x, y, width, height)
}

func (d *Device) DepthFunc(fn uint32) {
	d.Depth = fn
	d.call("DepthFunc(%#x)", fn)
}

func (d *Device) Enable(capability uint32) { d.Enabled[capability] = true }

func (d *Device) PolygonMode(face, mode uint32) { d.Polygon = mode }

func (d *Device) ClearColor(r, g, b, a float32) {}

func (d *Device) Clear(mask uint32) { d.call("Clear(%#x)", mask) }
