package graphics

import (
	"errors"
	"fmt"
)

var (
	// ErrShader matches every shader compile, link, validate and preprocess failure.
	ErrShader = errors.New("shader error")
	// ErrResourceCreation matches a GPU object allocation returning 0.
	ErrResourceCreation = errors.New("GPU resource creation failed")
	// ErrUnsupportedImageFormat is returned for images that do not decode to 8-bit channels.
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	// ErrInvalidMesh is returned for index data that does not describe triangles
	// over the given vertices.
	ErrInvalidMesh = errors.New("invalid mesh")
)

// ResourceCreationError reports which GPU object could not be allocated.
type ResourceCreationError struct {
	Object string
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("could not create %s", e.Object)
}

func (e *ResourceCreationError) Unwrap() error { return ErrResourceCreation }

// ShaderCompileError carries the driver log of a failed stage compile.
type ShaderCompileError struct {
	Stage string
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("%s shader compile failed: %s", e.Stage, e.Log)
}

func (e *ShaderCompileError) Unwrap() error { return ErrShader }

// ShaderLinkError carries the driver log of a failed program link.
type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return "shader link failed: " + e.Log
}

func (e *ShaderLinkError) Unwrap() error { return ErrShader }

// ShaderValidateError carries the driver log of a failed program validation.
type ShaderValidateError struct {
	Log string
}

func (e *ShaderValidateError) Error() string {
	return "shader validation failed: " + e.Log
}

func (e *ShaderValidateError) Unwrap() error { return ErrShader }

// ShaderPreprocessError reports a bad #include.
type ShaderPreprocessError struct {
	File string
	Line int
	Msg  string
}

func (e *ShaderPreprocessError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ShaderPreprocessError) Unwrap() error { return ErrShader }

// ImageDecodeError wraps a decoder failure for one image.
type ImageDecodeError struct {
	Path string
	Err  error
}

func (e *ImageDecodeError) Error() string {
	if e.Path == "" {
		return "decode image: " + e.Err.Error()
	}
	return fmt.Sprintf("decode image %s: %v", e.Path, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// AssetParseError wraps any failure while loading a model file.
type AssetParseError struct {
	Path string
	Err  error
}

func (e *AssetParseError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *AssetParseError) Unwrap() error { return e.Err }
