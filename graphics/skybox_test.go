package graphics

import (
	"testing"

	"res-errare/internal/gpu"
	"res-errare/internal/gpu/gputest"
)

const testSkyboxVertexSrc = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(std140) uniform matrices { mat4 projection; mat4 view; };
uniform float scale;
out vec3 TexCoords;
void main() { TexCoords = aPos; gl_Position = (projection * mat4(mat3(view)) * vec4(aPos * scale, 1.0)).xyww; }
`

const testSkyboxFragmentSrc = `#version 410 core
in vec3 TexCoords;
out vec4 FragColor;
uniform samplerCube skybox;
void main() { FragColor = texture(skybox, TexCoords); }
`

func newTestSkybox(t *testing.T, dev *gputest.Device) *Skybox {
	t.Helper()
	cm, err := LoadCubeMapFromDirectory(dev, cubeFS(t), "sky", "png", false)
	if err != nil {
		t.Fatal(err)
	}
	sh, err := NewShaderProgram(dev, testSkyboxVertexSrc, testSkyboxFragmentSrc)
	if err != nil {
		t.Fatal(err)
	}
	return NewSkybox(cm, sh)
}

func TestNewSkyboxSetsSamplerAndScale(t *testing.T) {
	dev := gputest.New()
	sky := newTestSkybox(t, dev)

	if v, _ := dev.Uniform(sky.Shader.Handle(), "skybox"); v != int32(0) {
		t.Errorf("skybox sampler: expected 0, got %v", v)
	}
	if v, _ := dev.Uniform(sky.Shader.Handle(), "scale"); v != float32(1) {
		t.Errorf("scale: expected 1, got %v", v)
	}
	sky.SetScale(50)
	if v, _ := dev.Uniform(sky.Shader.Handle(), "scale"); v != float32(50) {
		t.Errorf("SetScale: expected 50, got %v", v)
	}
}

func TestSkyboxDraw(t *testing.T) {
	dev := gputest.New()
	sky := newTestSkybox(t, dev)
	geom, err := NewSkyboxGeometry(dev)
	if err != nil {
		t.Fatalf("NewSkyboxGeometry: %v", err)
	}
	if n := len(dev.Buffers[geom.vbo].Floats); n != 108 {
		t.Errorf("geometry: expected 108 floats, got %d", n)
	}

	sky.Draw(geom)
	if len(dev.Draws) != 1 {
		t.Fatalf("Draw: expected 1 draw, got %d", len(dev.Draws))
	}
	d := dev.Draws[0]
	if d.Indexed || d.Count != SkyboxVertexCount || d.DepthFunc != gpu.Lequal || d.VertexArray != geom.vao {
		t.Errorf("Draw: unexpected %+v", d)
	}
	if d.Textures[0][gpu.TextureCubeMap] != sky.CubeMap.ID() {
		t.Error("Draw: expected cube map on unit 0")
	}
	if dev.Depth != gpu.Less || dev.BoundVAO != 0 {
		t.Errorf("Draw: expected depth LESS and no vertex array, got %#x %d", dev.Depth, dev.BoundVAO)
	}

	geom.Delete()
	geom.Delete()
	sky.Delete()
	if dev.Live("") != 0 || dev.BadDeletes != 0 {
		t.Errorf("Delete: live=%d bad=%d", dev.Live(""), dev.BadDeletes)
	}
}
