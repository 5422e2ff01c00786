package graphics

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"res-errare/internal/gpu"
)

// Image is tightly packed 8-bit pixel data, rows top to bottom unless
// flipped on decode.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Format returns the GPU pixel format for the channel count.
func (img *Image) Format() (uint32, error) {
	switch img.Channels {
	case 1:
		return gpu.Red, nil
	case 2:
		return gpu.RG, nil
	case 3:
		return gpu.RGB, nil
	case 4:
		return gpu.RGBA, nil
	}
	return 0, fmt.Errorf("%w: %d channels", ErrUnsupportedImageFormat, img.Channels)
}

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP data. Grayscale
// images keep one channel, opaque color images three, everything else four.
// Images with 16-bit channels are rejected.
func DecodeImage(data []byte, flip bool) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Err: err}
	}

	var img *Image
	switch m := src.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64, *image.Alpha16:
		return nil, &ImageDecodeError{Err: fmt.Errorf("%w: 16-bit %s", ErrUnsupportedImageFormat, format)}
	case *image.Gray:
		img = packGray(m)
	case *image.YCbCr, *image.CMYK:
		img = packRGB(src)
	default:
		img = packRGBA(src)
	}
	if flip {
		flipRows(img)
	}
	return img, nil
}

func packGray(m *image.Gray) *Image {
	b := m.Bounds()
	img := &Image{Width: b.Dx(), Height: b.Dy(), Channels: 1, Pix: make([]byte, b.Dx()*b.Dy())}
	for y := 0; y < img.Height; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+img.Width]
		copy(img.Pix[y*img.Width:], row)
	}
	return img
}

func packRGB(src image.Image) *Image {
	b := src.Bounds()
	img := &Image{Width: b.Dx(), Height: b.Dy(), Channels: 3, Pix: make([]byte, 0, b.Dx()*b.Dy()*3)}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(src.At(x, y)).(color.RGBA)
			img.Pix = append(img.Pix, c.R, c.G, c.B)
		}
	}
	return img
}

func packRGBA(src image.Image) *Image {
	b := src.Bounds()
	dst, ok := src.(*image.NRGBA)
	if !ok || dst.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	}
	return &Image{Width: b.Dx(), Height: b.Dy(), Channels: 4, Pix: dst.Pix}
}

func flipRows(img *Image) {
	stride := img.Width * img.Channels
	tmp := make([]byte, stride)
	for top, bottom := 0, img.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pix[top*stride : (top+1)*stride]
		z := img.Pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, z)
		copy(z, tmp)
	}
}
