package scene

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"res-errare/graphics"
)

// parseGLTF reads a .gltf or .glb file and returns one meshData per
// triangle primitive. External buffers and images are resolved relative to
// the file. Base colour textures become diffuse maps and normal textures
// normal maps.
func parseGLTF(fsys fs.FS, name string) ([]meshData, error) {
	dir := path.Dir(name)
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(f, sub).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf decode: %w", err)
	}

	var out []meshData
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			md, err := loadGLTFPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			md.name = fmt.Sprintf("%s_p%d", gm.Name, pi)
			if gm.Name == "" {
				md.name = fmt.Sprintf("mesh%d_p%d", mi, pi)
			}
			if prim.Material != nil && *prim.Material < len(doc.Materials) {
				if err := gltfMaterialTextures(doc, name, doc.Materials[*prim.Material], md.textures); err != nil {
					return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
				}
			}
			out = append(out, md)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}
	return out, nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into interleaved vertices.
// Every index taken from the file is range checked, so a malformed document
// yields an error rather than a panic.
func loadGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive) (md meshData, err error) {
	defer func() {
		// Sparse accessors are decoded by modeler without bounds checks.
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed accessor data: %v", r)
		}
	}()

	md = meshData{textures: map[graphics.TextureType]textureSource{}}
	if prim.Mode != gltf.PrimitiveTriangles {
		return md, fmt.Errorf("unsupported primitive mode %v", prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return md, fmt.Errorf("no POSITION attribute")
	}
	acr, err := gltfAccessor(doc, posIdx)
	if err != nil {
		return md, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return md, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err = gltfAccessor(doc, idx); err == nil {
			normals, err = modeler.ReadNormal(doc, acr, nil)
		}
		if err != nil {
			return md, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = gltfAccessor(doc, idx); err == nil {
			uvs, err = modeler.ReadTextureCoord(doc, acr, nil)
		}
		if err != nil {
			return md, fmt.Errorf("texcoords: %w", err)
		}
	}

	md.vertices = make([]graphics.Vertex, len(positions))
	for i, p := range positions {
		v := graphics.Vertex{Position: p}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.TexCoords = uvs[i]
		}
		md.vertices[i] = v
	}

	if prim.Indices != nil {
		if acr, err = gltfAccessor(doc, *prim.Indices); err == nil {
			md.indices, err = modeler.ReadIndices(doc, acr, nil)
		}
		if err != nil {
			return md, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range md.indices {
			if int(idx) >= len(positions) {
				return md, fmt.Errorf("indices: vertex %d out of range (%d vertices)", idx, len(positions))
			}
		}
	} else {
		md.indices = make([]uint32, len(positions))
		for i := range md.indices {
			md.indices[i] = uint32(i)
		}
	}
	if len(normals) == 0 {
		generateNormals(md.vertices, md.indices)
	}
	return md, nil
}

// gltfAccessor returns accessor idx after checking it and its buffer view
// against the document.
func gltfAccessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	acr := doc.Accessors[idx]
	if acr.BufferView == nil {
		return acr, nil
	}
	bv := *acr.BufferView
	if bv < 0 || bv >= len(doc.BufferViews) {
		return nil, fmt.Errorf("accessor %d: buffer view %d out of range", idx, bv)
	}
	if acr.ByteOffset < 0 || acr.ByteOffset > doc.BufferViews[bv].ByteLength {
		return nil, fmt.Errorf("accessor %d: byte offset %d past buffer view", idx, acr.ByteOffset)
	}
	return acr, nil
}

func gltfMaterialTextures(doc *gltf.Document, name string, gm *gltf.Material, into map[graphics.TextureType]textureSource) error {
	if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		src, err := gltfTextureSource(doc, name, pbr.BaseColorTexture.Index)
		if err != nil {
			return err
		}
		into[graphics.TextureDiffuse] = src
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		src, err := gltfTextureSource(doc, name, *gm.NormalTexture.Index)
		if err != nil {
			return err
		}
		into[graphics.TextureNormal] = src
	}
	return nil
}

// gltfTextureSource resolves a texture index to a file next to the model or
// to embedded image bytes. Embedded images get a synthetic path so the
// model texture cache still deduplicates them.
func gltfTextureSource(doc *gltf.Document, name string, texIdx int) (textureSource, error) {
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return textureSource{}, fmt.Errorf("texture %d has no image", texIdx)
	}
	imgIdx := *doc.Textures[texIdx].Source
	if imgIdx < 0 || imgIdx >= len(doc.Images) {
		return textureSource{}, fmt.Errorf("texture %d: image %d out of range", texIdx, imgIdx)
	}
	img := doc.Images[imgIdx]
	embedded := fmt.Sprintf("%s#image%d", name, imgIdx)

	switch {
	case img.BufferView != nil:
		if bv := *img.BufferView; bv < 0 || bv >= len(doc.BufferViews) {
			return textureSource{}, fmt.Errorf("image %d: buffer view %d out of range", imgIdx, bv)
		}
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return textureSource{}, fmt.Errorf("image %d: %w", imgIdx, err)
		}
		return textureSource{Path: embedded, Data: raw}, nil
	case img.IsEmbeddedResource():
		raw, err := img.MarshalData()
		if err != nil {
			return textureSource{}, fmt.Errorf("image %d: %w", imgIdx, err)
		}
		return textureSource{Path: embedded, Data: raw}, nil
	case img.URI != "":
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			return textureSource{}, fmt.Errorf("image %d: %w", imgIdx, err)
		}
		return textureSource{Path: uri}, nil
	}
	return textureSource{}, fmt.Errorf("image %d has no data", imgIdx)
}
