package scene

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"

	"res-errare/graphics"
	"res-errare/internal/gpu"
	"res-errare/internal/logger"
)

// textureSource is a texture reference of a parsed mesh. Path is relative
// to the model file and doubles as the cache key; Data is set for images
// embedded in the asset.
type textureSource struct {
	Path string
	Data []byte
}

// meshData is one drawable surface of a parsed asset.
type meshData struct {
	name     string
	vertices []graphics.Vertex
	indices  []uint32
	textures map[graphics.TextureType]textureSource
}

// materialOrder is the order textures are attached to a mesh. Height maps
// are never loaded.
var materialOrder = []graphics.TextureType{
	graphics.TextureDiffuse,
	graphics.TextureSpecular,
	graphics.TextureNormal,
}

// Model is a set of meshes loaded from one asset file. Textures are shared
// between meshes by path.
type Model struct {
	dev    gpu.Device
	fsys   fs.FS
	dir    string
	flip   bool
	meshes []*graphics.Mesh
	bounds AABB

	loaded map[string]*graphics.MeshTexture
	order  []*graphics.MeshTexture
}

// LoadModel loads a Wavefront OBJ (.obj) or glTF (.gltf, .glb) file from
// fsys. Textures are read relative to the model file and flipped vertically
// when flip is set. Any failure releases what was created and is reported
// as an *graphics.AssetParseError naming name.
func LoadModel(dev gpu.Device, fsys fs.FS, name string, flip bool) (*Model, error) {
	m := &Model{
		dev:    dev,
		fsys:   fsys,
		dir:    path.Dir(name),
		flip:   flip,
		loaded: make(map[string]*graphics.MeshTexture),
	}
	if err := m.load(name); err != nil {
		m.Delete()
		return nil, &graphics.AssetParseError{Path: name, Err: err}
	}
	logger.L().Debug("model loaded",
		zap.String("path", name),
		zap.Int("meshes", len(m.meshes)),
		zap.Int("textures", len(m.order)))
	return m, nil
}

func (m *Model) load(name string) error {
	var (
		parts []meshData
		err   error
	)
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".obj":
		parts, err = parseOBJ(m.fsys, name)
	case ".gltf", ".glb":
		parts, err = parseGLTF(m.fsys, name)
	default:
		return fmt.Errorf("unsupported model format %q", ext)
	}
	if err != nil {
		return err
	}

	for _, part := range parts {
		var textures []*graphics.MeshTexture
		for _, typ := range materialOrder {
			src, ok := part.textures[typ]
			if !ok {
				continue
			}
			tex, err := m.loadMaterialTexture(src, typ)
			if err != nil {
				return err
			}
			textures = append(textures, tex)
		}
		if len(part.vertices) == 0 {
			return fmt.Errorf("%s: no vertices", part.name)
		}
		mesh, err := graphics.NewMesh(m.dev, part.vertices, part.indices, textures)
		if err != nil {
			return fmt.Errorf("%s: %w", part.name, err)
		}
		if len(m.meshes) == 0 {
			m.bounds = boundsOf(part.vertices)
		} else {
			m.bounds = m.bounds.Union(boundsOf(part.vertices))
		}
		m.meshes = append(m.meshes, mesh)
	}
	return nil
}

// loadMaterialTexture returns the cached entry for src.Path or loads it.
// The first type a path is loaded with sticks to the cached entry.
func (m *Model) loadMaterialTexture(src textureSource, typ graphics.TextureType) (*graphics.MeshTexture, error) {
	if tex, ok := m.loaded[src.Path]; ok {
		return tex, nil
	}

	var (
		t   *graphics.Texture
		err error
	)
	if src.Data != nil {
		t, err = graphics.LoadTexture(m.dev, src.Data, m.flip)
	} else {
		t, err = graphics.LoadTextureFile(m.dev, m.fsys, path.Join(m.dir, src.Path), m.flip)
	}
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", src.Path, err)
	}

	tex := &graphics.MeshTexture{Texture: t, Type: typ, Path: src.Path}
	m.loaded[src.Path] = tex
	m.order = append(m.order, tex)
	return tex, nil
}

// Draw draws every mesh in load order.
func (m *Model) Draw(shader *graphics.ShaderProgram) {
	for _, mesh := range m.meshes {
		mesh.Draw(shader)
	}
}

// Meshes returns the meshes in load order.
func (m *Model) Meshes() []*graphics.Mesh { return m.meshes }

// Bounds returns the model-space box around every mesh.
func (m *Model) Bounds() AABB { return m.bounds }

// LoadedTextures returns the cached textures in load order.
func (m *Model) LoadedTextures() []*graphics.MeshTexture { return m.order }

// Delete releases the meshes and every cached texture. Calling it again is
// a no-op.
func (m *Model) Delete() {
	for _, mesh := range m.meshes {
		mesh.Delete()
	}
	for _, tex := range m.order {
		tex.Texture.Delete()
	}
	m.meshes = nil
	m.order = nil
	m.loaded = make(map[string]*graphics.MeshTexture)
}
