package io

import (
	"bytes"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"

	"res-errare/graphics"
	"res-errare/internal/gpu/gputest"
	"res-errare/scene"
)

func quadMesh(t *testing.T, dev *gputest.Device) *graphics.Mesh {
	t.Helper()
	n := mgl32.Vec3{0, 0, 1}
	vertices := []graphics.Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n, TexCoords: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: n, TexCoords: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, Normal: n, TexCoords: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{0, 1, 0}, Normal: n, TexCoords: mgl32.Vec2{0, 1}},
	}
	m, err := graphics.NewMesh(dev, vertices, []uint32{0, 1, 2, 0, 2, 3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestWriteOBJReloads(t *testing.T) {
	dev := gputest.New()
	quad := quadMesh(t, dev)
	tri, err := graphics.NewMesh(dev, quad.Vertices()[:3], nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, []*graphics.Mesh{quad, tri}); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}

	m, err := scene.LoadModel(dev, fstest.MapFS{"out.obj": {Data: buf.Bytes()}}, "out.obj", false)
	if err != nil {
		t.Fatalf("LoadModel: %v\n%s", err, buf.String())
	}
	defer m.Delete()

	meshes := m.Meshes()
	if len(meshes) != 2 {
		t.Fatalf("Meshes: expected 2, got %d", len(meshes))
	}
	if len(meshes[0].Indices()) != 6 || len(meshes[1].Indices()) != 3 {
		t.Errorf("indices: expected 6 and 3, got %d and %d", len(meshes[0].Indices()), len(meshes[1].Indices()))
	}
	for i, v := range meshes[0].Vertices() {
		if v != quad.Vertices()[i] {
			t.Errorf("vertex %d: expected %+v, got %+v", i, quad.Vertices()[i], v)
		}
	}
	if v := meshes[1].Vertices()[2]; v != quad.Vertices()[2] {
		t.Errorf("second mesh: expected %+v, got %+v", quad.Vertices()[2], v)
	}
}

func TestExportOBJ(t *testing.T) {
	dev := gputest.New()
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := ExportOBJ(path, []*graphics.Mesh{quadMesh(t, dev)}); err != nil {
		t.Fatalf("ExportOBJ: %v", err)
	}
	if err := ExportOBJ(filepath.Join(t.TempDir(), "missing", "quad.obj"), nil); err == nil {
		t.Error("bad directory: expected error")
	}
}
