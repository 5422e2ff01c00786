// Package io reads and writes the files the demo works with: JSON scene
// descriptions and Wavefront OBJ exports.
package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneVersion is written to every saved scene.
const SceneVersion = "1.0"

// SceneFile is the top-level structure of a scene description. Paths are
// relative to the assets root.
type SceneFile struct {
	Version string       `json:"version"`
	Name    string       `json:"name"`
	Shader  ShaderData   `json:"shader"`
	Skybox  *SkyboxData  `json:"skybox,omitempty"`
	Models  []ModelEntry `json:"models"`
}

// ShaderData names the program models are drawn with. Empty vertex and
// fragment paths select the built-in model shader.
type ShaderData struct {
	Vertex   string `json:"vertex,omitempty"`
	Fragment string `json:"fragment,omitempty"`
	Geometry string `json:"geometry,omitempty"`
}

// SkyboxData is a cube map directory holding right, left, top, bottom,
// back and front images with extension Ext.
type SkyboxData struct {
	Dir  string `json:"dir"`
	Ext  string `json:"ext"`
	Flip bool   `json:"flip,omitempty"`
}

// ModelEntry is one model file drawn once per instance.
type ModelEntry struct {
	Path      string         `json:"path"`
	Flip      bool           `json:"flip,omitempty"`
	Instances []InstanceData `json:"instances"`
}

// InstanceData places a model. A non-zero Axis spins it at
// DegreesPerSecond.
type InstanceData struct {
	Position         mgl32.Vec3 `json:"position"`
	Axis             mgl32.Vec3 `json:"axis,omitempty"`
	DegreesPerSecond float32    `json:"degrees_per_second,omitempty"`
}

// ModelMatrix returns the instance transform t seconds into the run.
func (in InstanceData) ModelMatrix(t float32) mgl32.Mat4 {
	m := mgl32.Translate3D(in.Position.X(), in.Position.Y(), in.Position.Z())
	if in.Axis.Len() == 0 || in.DegreesPerSecond == 0 {
		return m
	}
	angle := mgl32.DegToRad(in.DegreesPerSecond * t)
	return m.Mul4(mgl32.HomogRotate3D(angle, in.Axis.Normalize()))
}

// Validate checks that the scene can be built.
func (s *SceneFile) Validate() error {
	if (s.Shader.Vertex == "") != (s.Shader.Fragment == "") {
		return errors.New("shader: vertex and fragment must be set together")
	}
	if s.Shader.Geometry != "" && s.Shader.Vertex == "" {
		return errors.New("shader: geometry stage without vertex and fragment")
	}
	if s.Skybox != nil && (s.Skybox.Dir == "" || s.Skybox.Ext == "") {
		return errors.New("skybox: dir and ext are required")
	}
	for i, m := range s.Models {
		if m.Path == "" {
			return fmt.Errorf("model %d: empty path", i)
		}
	}
	return nil
}

// SaveScene writes scene as indented JSON.
func SaveScene(path string, scene *SceneFile) error {
	if scene.Version == "" {
		scene.Version = SceneVersion
	}
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScene reads a scene file from disk.
func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return ParseScene(data)
}

// ReadScene reads a scene file from fsys.
func ReadScene(fsys fs.FS, name string) (*SceneFile, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return ParseScene(data)
}

// ParseScene decodes and validates a scene description.
func ParseScene(data []byte) (*SceneFile, error) {
	scene := &SceneFile{}
	if err := json.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene file: %w", err)
	}
	return scene, nil
}

// NewDefaultSceneFile returns a scene drawing one model at the origin with
// the built-in shader.
func NewDefaultSceneFile(name, model string) *SceneFile {
	return &SceneFile{
		Version: SceneVersion,
		Name:    name,
		Models: []ModelEntry{{
			Path:      model,
			Flip:      true,
			Instances: []InstanceData{{Axis: mgl32.Vec3{0, 1, 0}, DegreesPerSecond: 20}},
		}},
	}
}
