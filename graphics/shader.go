// Package graphics holds the GPU-backed resources of the engine: shader
// programs, textures, cube maps, meshes and the skybox.
package graphics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"res-errare/internal/gpu"
	"res-errare/internal/logger"
)

// MatricesBlock is the uniform block holding projection and view.
// It is always bound to MatricesBinding.
const (
	MatricesBlock   = "matrices"
	MatricesBinding = 0
)

// ShaderProgram is a linked GPU program with a lazily filled uniform
// location cache.
type ShaderProgram struct {
	dev      gpu.Device
	handle   uint32
	uniforms map[string]int32
}

func stageName(stage uint32) string {
	switch stage {
	case gpu.VertexShader:
		return "vertex"
	case gpu.FragmentShader:
		return "fragment"
	case gpu.GeometryShader:
		return "geometry"
	}
	return "unknown"
}

// compileStage compiles one shader stage. A failed stage object is deleted
// before returning.
func compileStage(dev gpu.Device, src string, stage uint32) (uint32, error) {
	shader := dev.CreateShader(stage)
	if shader == 0 {
		return 0, &ResourceCreationError{Object: stageName(stage) + " shader"}
	}
	dev.ShaderSource(shader, src)
	dev.CompileShader(shader)
	if !dev.ShaderCompiled(shader) {
		log := dev.ShaderInfoLog(shader)
		dev.DeleteShader(shader)
		return 0, &ShaderCompileError{Stage: stageName(stage), Log: log}
	}
	return shader, nil
}

// linkProgram links the given stages into a new program. The stage objects
// are deleted whether or not linking succeeds.
func linkProgram(dev gpu.Device, stages ...uint32) (uint32, error) {
	defer func() {
		for _, s := range stages {
			dev.DeleteShader(s)
		}
	}()

	prog := dev.CreateProgram()
	if prog == 0 {
		return 0, &ResourceCreationError{Object: "shader program"}
	}
	for _, s := range stages {
		dev.AttachShader(prog, s)
	}
	dev.LinkProgram(prog)
	if !dev.ProgramLinked(prog) {
		log := dev.ProgramInfoLog(prog)
		dev.DeleteProgram(prog)
		return 0, &ShaderLinkError{Log: log}
	}
	return prog, nil
}

// NewShaderProgram compiles and links a vertex and fragment stage, plus a
// geometry stage when geometrySrc is given and non-empty. If the program
// declares the "matrices" uniform block it is bound to binding point 0.
func NewShaderProgram(dev gpu.Device, vertexSrc, fragmentSrc string, geometrySrc ...string) (*ShaderProgram, error) {
	type source struct {
		src   string
		stage uint32
	}
	sources := []source{
		{vertexSrc, gpu.VertexShader},
		{fragmentSrc, gpu.FragmentShader},
	}
	if len(geometrySrc) > 0 && geometrySrc[0] != "" {
		sources = append(sources, source{geometrySrc[0], gpu.GeometryShader})
	}

	var stages []uint32
	for _, s := range sources {
		id, err := compileStage(dev, s.src, s.stage)
		if err != nil {
			for _, done := range stages {
				dev.DeleteShader(done)
			}
			return nil, err
		}
		stages = append(stages, id)
	}

	prog, err := linkProgram(dev, stages...)
	if err != nil {
		return nil, err
	}

	p := &ShaderProgram{
		dev:      dev,
		handle:   prog,
		uniforms: make(map[string]int32),
	}
	if idx := dev.UniformBlockIndex(prog, MatricesBlock); idx != gpu.InvalidIndex {
		dev.UniformBlockBinding(prog, idx, MatricesBinding)
	}
	return p, nil
}

// Handle returns the GPU program name, 0 after Delete.
func (p *ShaderProgram) Handle() uint32 { return p.handle }

// Use makes the program current.
func (p *ShaderProgram) Use() { p.dev.UseProgram(p.handle) }

// Validate asks the driver whether the program can run in the current state.
func (p *ShaderProgram) Validate() error {
	p.dev.ValidateProgram(p.handle)
	if !p.dev.ProgramValidated(p.handle) {
		return &ShaderValidateError{Log: p.dev.ProgramInfoLog(p.handle)}
	}
	return nil
}

// UniformLocation returns the cached location of name. A uniform the program
// does not have is reported once and cached as -1.
func (p *ShaderProgram) UniformLocation(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.handle, name)
	if loc < 0 {
		logger.L().Warn("uniform not found",
			zap.String("uniform", name),
			zap.Uint32("program", p.handle))
		loc = -1
	}
	p.uniforms[name] = loc
	return loc
}

// BindUniformBlock attaches the named uniform block to a binding point.
// It reports false when the program has no such block.
func (p *ShaderProgram) BindUniformBlock(name string, binding uint32) bool {
	idx := p.dev.UniformBlockIndex(p.handle, name)
	if idx == gpu.InvalidIndex {
		logger.L().Warn("uniform block not found",
			zap.String("block", name),
			zap.Uint32("program", p.handle))
		return false
	}
	p.dev.UniformBlockBinding(p.handle, idx, binding)
	return true
}

// ── Uniform setters ───────────────────────────────────────────────────────────
// Setters write to the current program; call Use first. Missing uniforms are
// skipped.

func (p *ShaderProgram) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	p.SetInt(name, i)
}

func (p *ShaderProgram) SetInt(name string, v int32) {
	if loc := p.UniformLocation(name); loc >= 0 {
		p.dev.Uniform1i(loc, v)
	}
}

func (p *ShaderProgram) SetFloat(name string, v float32) {
	if loc := p.UniformLocation(name); loc >= 0 {
		p.dev.Uniform1f(loc, v)
	}
}

func (p *ShaderProgram) SetVec2(name string, v mgl32.Vec2) {
	if loc := p.UniformLocation(name); loc >= 0 {
		p.dev.Uniform2f(loc, v[0], v[1])
	}
}

func (p *ShaderProgram) SetVec3(name string, v mgl32.Vec3) {
	if loc := p.UniformLocation(name); loc >= 0 {
		p.dev.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (p *ShaderProgram) SetVec4(name string, v mgl32.Vec4) {
	if loc := p.UniformLocation(name); loc >= 0 {
		p.dev.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (p *ShaderProgram) SetMat4(name string, m mgl32.Mat4) {
	if loc := p.UniformLocation(name); loc >= 0 {
		p.dev.UniformMatrix4fv(loc, m)
	}
}

func (p *ShaderProgram) SetMat4d(name string, m mgl64.Mat4) {
	if loc := p.UniformLocation(name); loc >= 0 {
		p.dev.UniformMatrix4dv(loc, m)
	}
}

// Delete releases the program. Calling it again is a no-op.
func (p *ShaderProgram) Delete() {
	if p.handle == 0 {
		return
	}
	p.dev.DeleteProgram(p.handle)
	p.handle = 0
	p.uniforms = make(map[string]int32)
}
