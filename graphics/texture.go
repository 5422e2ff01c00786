package graphics

import (
	"errors"
	"io/fs"

	"res-errare/internal/gpu"
)

// Texture is a 2D GPU texture.
type Texture struct {
	dev    gpu.Device
	id     uint32
	width  int
	height int
}

// NewTexture allocates a texture and uploads img into it.
func NewTexture(dev gpu.Device, img *Image) (*Texture, error) {
	if _, err := img.Format(); err != nil {
		return nil, err
	}
	id := dev.GenTexture()
	if id == 0 {
		return nil, &ResourceCreationError{Object: "texture"}
	}
	t := &Texture{dev: dev, id: id}
	if err := t.Upload(img); err != nil {
		t.Delete()
		return nil, err
	}
	return t, nil
}

// LoadTexture decodes image data and uploads it into a new texture.
func LoadTexture(dev gpu.Device, data []byte, flip bool) (*Texture, error) {
	img, err := DecodeImage(data, flip)
	if err != nil {
		return nil, err
	}
	return NewTexture(dev, img)
}

// LoadTextureFile reads name from fsys and uploads it into a new texture.
func LoadTextureFile(dev gpu.Device, fsys fs.FS, name string, flip bool) (*Texture, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	t, err := LoadTexture(dev, data, flip)
	if err != nil {
		var de *ImageDecodeError
		if errors.As(err, &de) {
			de.Path = name
		}
		return nil, err
	}
	return t, nil
}

// Upload replaces the texture storage with img, generates mipmaps and
// applies the 2D sampling policy: repeat wrap, nearest-mipmap-nearest
// minification, nearest magnification. The texture is left bound.
func (t *Texture) Upload(img *Image) error {
	format, err := img.Format()
	if err != nil {
		return err
	}
	t.dev.BindTexture(gpu.Texture2D, t.id)
	t.dev.PixelStorei(gpu.UnpackAlignment, 1)
	t.dev.TexImage2D(gpu.Texture2D, int32(format), int32(img.Width), int32(img.Height), format, img.Pix)
	t.dev.GenerateMipmap(gpu.Texture2D)

	t.dev.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, gpu.Repeat)
	t.dev.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, gpu.Repeat)
	t.dev.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, gpu.NearestMipmapNearest)
	t.dev.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, gpu.Nearest)

	t.width, t.height = img.Width, img.Height
	return nil
}

// Bind binds the texture to the active unit.
func (t *Texture) Bind() { t.dev.BindTexture(gpu.Texture2D, t.id) }

func (t *Texture) ID() uint32  { return t.id }
func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Delete releases the texture. Calling it again is a no-op.
func (t *Texture) Delete() {
	if t.id == 0 {
		return
	}
	t.dev.DeleteTexture(t.id)
	t.id = 0
}

// UnbindTexture2D clears the 2D binding of the active unit.
func UnbindTexture2D(dev gpu.Device) { dev.BindTexture(gpu.Texture2D, 0) }
