package graphics

import (
	"errors"
	"testing"
	"testing/fstest"

	"res-errare/internal/gpu"
	"res-errare/internal/gpu/gputest"
)

func TestLoadTextureSamplingPolicy(t *testing.T) {
	dev := gputest.New()
	tex, err := LoadTexture(dev, pngBytes(t, 4, 2), true)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if tex.Width() != 4 || tex.Height() != 2 {
		t.Errorf("size: expected 4x2, got %dx%d", tex.Width(), tex.Height())
	}

	rec := dev.Textures[tex.ID()]
	want := map[uint32]int32{
		gpu.TextureWrapS:     gpu.Repeat,
		gpu.TextureWrapT:     gpu.Repeat,
		gpu.TextureMinFilter: gpu.NearestMipmapNearest,
		gpu.TextureMagFilter: gpu.Nearest,
	}
	for p, v := range want {
		if rec.Params[p] != v {
			t.Errorf("param %#x: expected %#x, got %#x", p, v, rec.Params[p])
		}
	}
	if !rec.Mipmaps {
		t.Error("mipmaps: expected generated")
	}
	if img := rec.Images[gpu.Texture2D]; img.Width != 4 || img.Height != 2 || img.Format != gpu.RGBA {
		t.Errorf("TexImage2D: unexpected upload %+v", img)
	}
	if dev.BoundTexture(0, gpu.Texture2D) != tex.ID() {
		t.Error("Upload: expected texture left bound")
	}
}

func TestTextureReupload(t *testing.T) {
	dev := gputest.New()
	tex, err := LoadTexture(dev, pngBytes(t, 2, 2), false)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	img, err := DecodeImage(pngBytes(t, 8, 16), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := tex.Upload(img); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if tex.Width() != 8 || tex.Height() != 16 {
		t.Errorf("Upload: expected 8x16, got %dx%d", tex.Width(), tex.Height())
	}
	if dev.Live(gputest.KindTexture) != 1 {
		t.Errorf("Upload: expected the same texture object, %d live", dev.Live(gputest.KindTexture))
	}
}

func TestTextureAllocationFailure(t *testing.T) {
	dev := gputest.New()
	dev.Fail[gputest.KindTexture] = true
	_, err := LoadTexture(dev, pngBytes(t, 1, 1), false)
	var re *ResourceCreationError
	if !errors.As(err, &re) {
		t.Errorf("LoadTexture: expected ResourceCreationError, got %v", err)
	}
}

func TestLoadTextureFileNamesPath(t *testing.T) {
	dev := gputest.New()
	fsys := fstest.MapFS{"bad.png": {Data: []byte("garbage")}}
	_, err := LoadTextureFile(dev, fsys, "bad.png", false)
	var de *ImageDecodeError
	if !errors.As(err, &de) || de.Path != "bad.png" {
		t.Errorf("LoadTextureFile: expected decode error naming bad.png, got %v", err)
	}
	if dev.Live("") != 0 {
		t.Errorf("LoadTextureFile: expected nothing allocated, %d live", dev.Live(""))
	}
}

func TestTextureDeleteOnce(t *testing.T) {
	dev := gputest.New()
	tex, err := LoadTexture(dev, pngBytes(t, 1, 1), false)
	if err != nil {
		t.Fatal(err)
	}
	tex.Delete()
	tex.Delete()
	if dev.Live(gputest.KindTexture) != 0 || dev.BadDeletes != 0 {
		t.Errorf("Delete: live=%d bad=%d", dev.Live(gputest.KindTexture), dev.BadDeletes)
	}
}

func cubeFS(t *testing.T) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, name := range CubeMapFaceNames {
		fsys["sky/"+name+".png"] = &fstest.MapFile{Data: pngBytes(t, 2, 2)}
	}
	return fsys
}

func TestLoadCubeMapFromDirectory(t *testing.T) {
	dev := gputest.New()
	cm, err := LoadCubeMapFromDirectory(dev, cubeFS(t), "sky", "png", false)
	if err != nil {
		t.Fatalf("LoadCubeMapFromDirectory: %v", err)
	}
	rec := dev.Textures[cm.ID()]
	if rec.Target != gpu.TextureCubeMap {
		t.Errorf("target: expected cube map, got %#x", rec.Target)
	}
	for _, face := range gpu.CubeMapFaces {
		if _, ok := rec.Images[face]; !ok {
			t.Errorf("face %#x: not uploaded", face)
		}
	}
	want := map[uint32]int32{
		gpu.TextureWrapS:     gpu.ClampToEdge,
		gpu.TextureWrapT:     gpu.ClampToEdge,
		gpu.TextureWrapR:     gpu.ClampToEdge,
		gpu.TextureMinFilter: gpu.Linear,
		gpu.TextureMagFilter: gpu.Linear,
	}
	for p, v := range want {
		if rec.Params[p] != v {
			t.Errorf("param %#x: expected %#x, got %#x", p, v, rec.Params[p])
		}
	}
	if rec.Mipmaps {
		t.Error("mipmaps: cube maps should not generate mipmaps")
	}
	if dev.BoundTexture(0, gpu.TextureCubeMap) != 0 {
		t.Error("cube map: expected unbound after construction")
	}
}

func TestLoadCubeMapIsAtomic(t *testing.T) {
	dev := gputest.New()
	fsys := cubeFS(t)
	fsys["sky/top.png"] = &fstest.MapFile{Data: []byte("corrupt")}

	_, err := LoadCubeMapFromDirectory(dev, fsys, "sky", "png", false)
	var de *ImageDecodeError
	if !errors.As(err, &de) || de.Path != "sky/top.png" {
		t.Fatalf("LoadCubeMapFromDirectory: expected decode error for top face, got %v", err)
	}
	if dev.Live("") != 0 {
		t.Errorf("atomic: expected no GPU objects, %d live", dev.Live(""))
	}

	delete(fsys, "sky/back.png")
	if _, err := LoadCubeMapFromDirectory(dev, fsys, "sky", "png", false); err == nil {
		t.Error("missing face: expected error")
	}
}
