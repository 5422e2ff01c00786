package graphics

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"res-errare/internal/gpu"
	"res-errare/internal/gpu/gputest"
	"res-errare/internal/logger"
)

const testVertexSrc = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(std140) uniform matrices {
    mat4 projection;
    mat4 view;
};
uniform mat4 model;
uniform dmat4 precise;
void main() { gl_Position = projection * view * model * vec4(aPos, 1.0); }
`

const testFragmentSrc = `#version 410 core
out vec4 FragColor;
uniform sampler2D texture_diffuse1;
uniform sampler2D texture_diffuse2;
uniform sampler2D texture_specular1;
uniform vec3 tint;
uniform bool lit;
void main() { FragColor = texture(texture_diffuse1, vec2(0.0)); }
`

func newTestProgram(t *testing.T, dev *gputest.Device) *ShaderProgram {
	t.Helper()
	p, err := NewShaderProgram(dev, testVertexSrc, testFragmentSrc)
	if err != nil {
		t.Fatalf("NewShaderProgram: %v", err)
	}
	return p
}

func TestShaderProgramLinksAndBindsMatrices(t *testing.T) {
	dev := gputest.New()
	p := newTestProgram(t, dev)

	if p.Handle() == 0 {
		t.Fatal("Handle: expected non-zero program")
	}
	if n := dev.Live(gputest.KindShader); n != 0 {
		t.Errorf("stages: expected all deleted after link, %d live", n)
	}
	if b, ok := dev.Programs[p.Handle()].Bindings[MatricesBlock]; !ok || b != MatricesBinding {
		t.Errorf("matrices block: expected binding 0, got %d (bound=%v)", b, ok)
	}
}

func TestShaderProgramCompileErrorCarriesLog(t *testing.T) {
	dev := gputest.New()
	bad := "#version 410 core\n#error unexpected token near vec5\nvoid main() {}\n"

	_, err := NewShaderProgram(dev, testVertexSrc, bad)
	if err == nil {
		t.Fatal("NewShaderProgram: expected error")
	}
	var ce *ShaderCompileError
	if !errors.As(err, &ce) {
		t.Fatalf("NewShaderProgram: expected ShaderCompileError, got %T", err)
	}
	if ce.Stage != "fragment" {
		t.Errorf("Stage: expected fragment, got %q", ce.Stage)
	}
	if !strings.Contains(err.Error(), "unexpected token near vec5") {
		t.Errorf("Error: expected compiler diagnostic, got %q", err.Error())
	}
	if !errors.Is(err, ErrShader) {
		t.Error("Is: expected ErrShader")
	}
	if n := dev.Live(""); n != 0 {
		t.Errorf("Live: expected no orphaned objects, got %d", n)
	}
	if dev.BadDeletes != 0 {
		t.Errorf("BadDeletes: expected 0, got %d", dev.BadDeletes)
	}
}

func TestShaderProgramLinkErrorReleasesEverything(t *testing.T) {
	dev := gputest.New()
	dev.FailLink = true
	dev.LinkLog = "error: varying fragPos not written"

	_, err := NewShaderProgram(dev, testVertexSrc, testFragmentSrc)
	var le *ShaderLinkError
	if !errors.As(err, &le) {
		t.Fatalf("NewShaderProgram: expected ShaderLinkError, got %v", err)
	}
	if le.Log != dev.LinkLog {
		t.Errorf("Log: expected %q, got %q", dev.LinkLog, le.Log)
	}
	if n := dev.Live(""); n != 0 {
		t.Errorf("Live: expected no orphaned objects, got %d", n)
	}
}

func TestShaderProgramCreateFailure(t *testing.T) {
	dev := gputest.New()
	dev.Fail[gputest.KindProgram] = true

	_, err := NewShaderProgram(dev, testVertexSrc, testFragmentSrc)
	if !errors.Is(err, ErrResourceCreation) {
		t.Fatalf("NewShaderProgram: expected ErrResourceCreation, got %v", err)
	}
	if n := dev.Live(""); n != 0 {
		t.Errorf("Live: expected stages released, got %d", n)
	}
}

func TestShaderProgramGeometryStage(t *testing.T) {
	dev := gputest.New()
	geom := "#version 410 core\nlayout(triangles) in;\nvoid main() {}\n"

	p, err := NewShaderProgram(dev, testVertexSrc, testFragmentSrc, geom)
	if err != nil {
		t.Fatalf("NewShaderProgram: %v", err)
	}
	var stages []uint32
	for _, id := range dev.Programs[p.Handle()].Shaders {
		stages = append(stages, dev.Shaders[id].Stage)
	}
	want := []uint32{gpu.VertexShader, gpu.FragmentShader, gpu.GeometryShader}
	if len(stages) != len(want) {
		t.Fatalf("stages: expected %d, got %d", len(want), len(stages))
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d: expected %#x, got %#x", i, want[i], stages[i])
		}
	}
}

func TestMissingUniformIsSkippedAndLoggedOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	dev := gputest.New()
	p := newTestProgram(t, dev)
	p.Use()
	dev.Reset()

	p.SetFloat("fogDensity", 0.5)
	p.SetFloat("fogDensity", 0.7)

	if got := p.UniformLocation("fogDensity"); got != -1 {
		t.Errorf("UniformLocation: expected -1, got %d", got)
	}
	if logs.Len() != 1 {
		t.Errorf("warnings: expected 1, got %d", logs.Len())
	}
	if n := len(dev.CallsWithPrefix("UniformLocation(")); n != 1 {
		t.Errorf("lookups: expected 1 cached lookup, got %d", n)
	}
	if n := len(dev.CallsWithPrefix("Uniform(")); n != 0 {
		t.Errorf("writes: expected none, got %v", dev.CallsWithPrefix("Uniform("))
	}
}

func TestUniformSetters(t *testing.T) {
	dev := gputest.New()
	p := newTestProgram(t, dev)
	p.Use()

	model := mgl32.Translate3D(1, 2, 3)
	precise := mgl64.Scale3D(2, 2, 2)
	p.SetMat4("model", model)
	p.SetMat4d("precise", precise)
	p.SetVec3("tint", mgl32.Vec3{0.1, 0.2, 0.3})
	p.SetBool("lit", true)
	p.SetInt("texture_diffuse1", 3)

	checks := map[string]any{
		"model":            model,
		"precise":          precise,
		"tint":             mgl32.Vec3{0.1, 0.2, 0.3},
		"lit":              int32(1),
		"texture_diffuse1": int32(3),
	}
	for name, want := range checks {
		got, ok := dev.Uniform(p.Handle(), name)
		if !ok || got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
}

func TestBindUniformBlock(t *testing.T) {
	dev := gputest.New()
	p := newTestProgram(t, dev)

	if !p.BindUniformBlock(MatricesBlock, 2) {
		t.Error("BindUniformBlock: expected matrices to exist")
	}
	if got := dev.Programs[p.Handle()].Bindings[MatricesBlock]; got != 2 {
		t.Errorf("binding: expected 2, got %d", got)
	}
	if p.BindUniformBlock("lights", 1) {
		t.Error("BindUniformBlock: expected false for unknown block")
	}
}

func TestValidate(t *testing.T) {
	dev := gputest.New()
	p := newTestProgram(t, dev)
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	dev.FailValidate = true
	var ve *ShaderValidateError
	if err := p.Validate(); !errors.As(err, &ve) {
		t.Errorf("Validate: expected ShaderValidateError, got %v", err)
	}
}

func TestShaderProgramDeleteOnce(t *testing.T) {
	dev := gputest.New()
	p := newTestProgram(t, dev)
	p.Delete()
	p.Delete()
	if dev.Live(gputest.KindProgram) != 0 || dev.BadDeletes != 0 {
		t.Errorf("Delete: live=%d bad=%d", dev.Live(gputest.KindProgram), dev.BadDeletes)
	}
	if p.Handle() != 0 {
		t.Errorf("Handle: expected 0 after Delete, got %d", p.Handle())
	}
}
