package graphics

import (
	"errors"
	"io/fs"
	"path"

	"res-errare/internal/gpu"
)

// CubeMapFaceNames are the file stems of a cube map directory, in
// +X, -X, +Y, -Y, +Z, -Z order.
var CubeMapFaceNames = [6]string{"right", "left", "top", "bottom", "back", "front"}

// CubeMapTexture is a six-face cube map.
type CubeMapTexture struct {
	dev gpu.Device
	id  uint32
}

// NewCubeMapTexture uploads six decoded faces. Cube maps use linear
// filtering and clamp to edge on all three axes.
func NewCubeMapTexture(dev gpu.Device, faces [6]*Image) (*CubeMapTexture, error) {
	formats := [6]uint32{}
	for i, img := range faces {
		f, err := img.Format()
		if err != nil {
			return nil, err
		}
		formats[i] = f
	}

	id := dev.GenTexture()
	if id == 0 {
		return nil, &ResourceCreationError{Object: "cube map texture"}
	}
	dev.BindTexture(gpu.TextureCubeMap, id)
	dev.PixelStorei(gpu.UnpackAlignment, 1)
	for i, img := range faces {
		dev.TexImage2D(gpu.CubeMapFaces[i], int32(formats[i]), int32(img.Width), int32(img.Height), formats[i], img.Pix)
	}
	dev.TexParameteri(gpu.TextureCubeMap, gpu.TextureMinFilter, gpu.Linear)
	dev.TexParameteri(gpu.TextureCubeMap, gpu.TextureMagFilter, gpu.Linear)
	dev.TexParameteri(gpu.TextureCubeMap, gpu.TextureWrapS, gpu.ClampToEdge)
	dev.TexParameteri(gpu.TextureCubeMap, gpu.TextureWrapT, gpu.ClampToEdge)
	dev.TexParameteri(gpu.TextureCubeMap, gpu.TextureWrapR, gpu.ClampToEdge)
	dev.BindTexture(gpu.TextureCubeMap, 0)

	return &CubeMapTexture{dev: dev, id: id}, nil
}

// LoadCubeMap decodes the six face files before touching the GPU. The
// first failure aborts the load.
func LoadCubeMap(dev gpu.Device, fsys fs.FS, paths [6]string, flip bool) (*CubeMapTexture, error) {
	var faces [6]*Image
	for i, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		img, err := DecodeImage(data, flip)
		if err != nil {
			var de *ImageDecodeError
			if errors.As(err, &de) {
				de.Path = p
			}
			return nil, err
		}
		faces[i] = img
	}
	return NewCubeMapTexture(dev, faces)
}

// LoadCubeMapFromDirectory loads dir/{right,left,top,bottom,back,front}.ext.
func LoadCubeMapFromDirectory(dev gpu.Device, fsys fs.FS, dir, ext string, flip bool) (*CubeMapTexture, error) {
	var paths [6]string
	for i, name := range CubeMapFaceNames {
		paths[i] = path.Join(dir, name+"."+ext)
	}
	return LoadCubeMap(dev, fsys, paths, flip)
}

// Bind binds the cube map to the active unit.
func (c *CubeMapTexture) Bind() { c.dev.BindTexture(gpu.TextureCubeMap, c.id) }

func (c *CubeMapTexture) ID() uint32 { return c.id }

// Delete releases the cube map. Calling it again is a no-op.
func (c *CubeMapTexture) Delete() {
	if c.id == 0 {
		return
	}
	c.dev.DeleteTexture(c.id)
	c.id = 0
}
