package renderer

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"

	"res-errare/graphics"
	"res-errare/internal/gpu"
	"res-errare/internal/gpu/gputest"
)

func TestNewGameRendererBindsMatrices(t *testing.T) {
	dev := gputest.New()
	r, err := NewGameRenderer(dev)
	if err != nil {
		t.Fatal(err)
	}
	if got := dev.Ranges[graphics.MatricesBinding]; got != r.ubo {
		t.Errorf("binding: expected buffer %d, got %d", r.ubo, got)
	}
	buf := dev.Buffers[r.ubo]
	if buf.Size != 128 || buf.Usage != gpu.StaticDraw {
		t.Errorf("buffer: expected 128 bytes STATIC_DRAW, got %d bytes usage %#x", buf.Size, buf.Usage)
	}
	if n := dev.Live(gputest.KindVertexArray); n != 1 {
		t.Errorf("skybox cube: expected 1 vertex array, got %d", n)
	}
	if r.Projection() != mgl32.Ident4() || r.Ortho() != mgl32.Ident4() {
		t.Error("matrices: expected identity before SetupProjection")
	}
}

func TestNewGameRendererReleasesOnFailure(t *testing.T) {
	dev := gputest.New()
	dev.Fail[gputest.KindVertexArray] = true
	if _, err := NewGameRenderer(dev); err == nil {
		t.Fatal("expected error")
	}
	if dev.Live("") != 0 {
		t.Errorf("failure: %d objects left live", dev.Live(""))
	}
}

func TestSetupProjection(t *testing.T) {
	dev := gputest.New()
	r, err := NewGameRenderer(dev)
	if err != nil {
		t.Fatal(err)
	}
	r.SetupProjection(800, 600)

	if dev.ViewportRect != [4]int32{0, 0, 800, 600} {
		t.Errorf("viewport: expected 800x600, got %v", dev.ViewportRect)
	}

	p := r.Projection()
	f := float32(1 / math.Tan(float64(mgl32.DegToRad(75))/2))
	if !approx(p.At(1, 1), f) {
		t.Errorf("fov: expected %v, got %v", f, p.At(1, 1))
	}
	if aspect := p.At(1, 1) / p.At(0, 0); !approx(aspect, 800.0/600.0) {
		t.Errorf("aspect: expected %v, got %v", 800.0/600.0, aspect)
	}
	// Recover the planes from the depth terms.
	a, b := p.At(2, 2), p.At(2, 3)
	near, far := b/(a-1), b/(a+1)
	if !approx(near, 0.1) || math.Abs(float64(far-100)) > 0.01 {
		t.Errorf("planes: expected 0.1 and 100, got %v and %v", near, far)
	}

	o := r.Ortho()
	if got := o.Mul4x1(mgl32.Vec4{800, 600, 0, 1}); !got.ApproxFuncEqual(mgl32.Vec4{1, -1, got[2], 1}, approx) {
		t.Errorf("ortho: expected bottom-right at (1,-1), got %v", got)
	}

	writes := dev.Buffers[r.ubo].Writes
	if len(writes) != 1 || writes[0].Offset != 0 || writes[0].Size != 64 {
		t.Fatalf("writes: expected one 64 byte write at 0, got %+v", writes)
	}
	for i, v := range writes[0].Floats {
		if v != p[i] {
			t.Errorf("projection data: element %d expected %v, got %v", i, p[i], v)
			break
		}
	}
	if dev.BoundBuffers[gpu.UniformBuffer] != 0 {
		t.Error("uniform buffer left bound")
	}
}

func TestSetupProjectionIgnoresEmptySize(t *testing.T) {
	dev := gputest.New()
	r, err := NewGameRenderer(dev)
	if err != nil {
		t.Fatal(err)
	}
	r.SetupProjection(800, 0)
	r.SetupProjection(-1, 600)
	if len(dev.Buffers[r.ubo].Writes) != 0 || len(dev.CallsWithPrefix("Viewport")) != 0 {
		t.Error("non-positive size: expected no state change")
	}
	if r.Projection() != mgl32.Ident4() {
		t.Error("non-positive size: projection changed")
	}
}

func TestUpdateView(t *testing.T) {
	dev := gputest.New()
	r, err := NewGameRenderer(dev)
	if err != nil {
		t.Fatal(err)
	}
	view := mgl32.Translate3D(1, 2, 3)
	r.UpdateView(view)

	writes := dev.Buffers[r.ubo].Writes
	if len(writes) != 1 || writes[0].Offset != 64 || writes[0].Size != 64 {
		t.Fatalf("writes: expected one 64 byte write at 64, got %+v", writes)
	}
	if writes[0].Floats[12] != 1 || writes[0].Floats[13] != 2 || writes[0].Floats[14] != 3 {
		t.Errorf("view data: expected translation in column 3, got %v", writes[0].Floats[12:15])
	}
}

func TestDefaultShadersBuild(t *testing.T) {
	dev := gputest.New()
	model, err := NewDefaultModelShader(dev)
	if err != nil {
		t.Fatalf("model shader: %v", err)
	}
	if _, ok := dev.Programs[model.Handle()].Bindings[graphics.MatricesBlock]; !ok {
		t.Error("model shader: matrices block not bound")
	}
	if model.UniformLocation("texture_diffuse1") < 0 {
		t.Error("model shader: texture_diffuse1 missing")
	}
}

func TestDrawDefaultSkybox(t *testing.T) {
	dev := gputest.New()
	r, err := NewGameRenderer(dev)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}
	fsys := fstest.MapFS{}
	for _, face := range graphics.CubeMapFaceNames {
		fsys["sky/"+face+".png"] = &fstest.MapFile{Data: buf.Bytes()}
	}
	cube, err := graphics.LoadCubeMapFromDirectory(dev, fsys, "sky", "png", false)
	if err != nil {
		t.Fatal(err)
	}
	sky, err := NewDefaultSkybox(dev, cube)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := dev.Uniform(sky.Shader.Handle(), "skybox"); v != int32(0) {
		t.Errorf("skybox sampler: expected 0, got %v", v)
	}

	dev.Reset()
	r.DrawSkybox(sky)
	if len(dev.Draws) != 1 {
		t.Fatalf("draws: expected 1, got %d", len(dev.Draws))
	}
	d := dev.Draws[0]
	if d.Count != graphics.SkyboxVertexCount || d.DepthFunc != gpu.Lequal {
		t.Errorf("draw: expected 36 vertices at LEQUAL, got %d at %#x", d.Count, d.DepthFunc)
	}
	if d.Textures[0][gpu.TextureCubeMap] != cube.ID() {
		t.Error("draw: cube map not bound on unit 0")
	}
	if dev.Depth != gpu.Less {
		t.Error("depth function not restored")
	}

	sky.Delete()
	r.Delete()
	r.Delete()
	if dev.Live("") != 0 || dev.BadDeletes != 0 {
		t.Errorf("Delete: live=%d bad=%d", dev.Live(""), dev.BadDeletes)
	}
}

func approx(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }
