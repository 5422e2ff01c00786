package renderer

import (
	"embed"
	"fmt"
	"io/fs"

	"res-errare/graphics"
	"res-errare/internal/gpu"
)

// Names of the built-in shaders inside DefaultShaders.
const (
	ModelVertexShader    = "model.vsh"
	ModelFragmentShader  = "model.fsh"
	SkyboxVertexShader   = "skybox.vsh"
	SkyboxFragmentShader = "skybox.fsh"
)

//go:embed shaders
var shaderFiles embed.FS

// DefaultShaders returns the built-in shader sources. They include
// "include/matrices.glsl" and must be read through a graphics.ShaderLoader.
func DefaultShaders() fs.FS {
	sub, err := fs.Sub(shaderFiles, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewDefaultModelShader builds the built-in textured, directionally lit
// model program.
func NewDefaultModelShader(dev gpu.Device) (*graphics.ShaderProgram, error) {
	p, err := graphics.NewShaderLoader(DefaultShaders()).LoadProgram(dev, ModelVertexShader, ModelFragmentShader, "")
	if err != nil {
		return nil, fmt.Errorf("model shader: %w", err)
	}
	return p, nil
}

// NewDefaultSkybox builds the built-in skybox program around cubeMap. The
// skybox takes ownership of cubeMap.
func NewDefaultSkybox(dev gpu.Device, cubeMap *graphics.CubeMapTexture) (*graphics.Skybox, error) {
	p, err := graphics.NewShaderLoader(DefaultShaders()).LoadProgram(dev, SkyboxVertexShader, SkyboxFragmentShader, "")
	if err != nil {
		return nil, fmt.Errorf("skybox shader: %w", err)
	}
	return graphics.NewSkybox(cubeMap, p), nil
}
