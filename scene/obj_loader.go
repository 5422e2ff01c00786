package scene

import (
	"bufio"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"res-errare/graphics"
)

// objMaterial holds the texture references of one MTL material, by type.
type objMaterial struct {
	name     string
	textures map[graphics.TextureType]string
}

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
}

// parseOBJ reads name from fsys and returns one meshData per "o"/"g"
// section. Material libraries are read relative to the OBJ file; a missing
// library is an error.
func parseOBJ(fsys fs.FS, name string) ([]meshData, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir := path.Dir(name)

	// Indexed OBJ data pools
	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	type section struct {
		name    string
		matName string
		faces   []objFace
	}
	var sections []section
	cur := &section{name: "default"}

	materials := map[string]*objMaterial{}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})

		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})

		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], v[1]})

		case "o", "g":
			if len(cur.faces) > 0 {
				sections = append(sections, *cur)
			}
			secName := "default"
			if len(fields) > 1 {
				secName = fields[1]
			}
			cur = &section{name: secName, matName: cur.matName}

		case "usemtl":
			if len(fields) < 2 || fields[1] == cur.matName {
				continue
			}
			// A material change splits the object into one mesh per material.
			if len(cur.faces) > 0 {
				sections = append(sections, *cur)
				cur = &section{name: cur.name}
			}
			cur.matName = fields[1]

		case "mtllib":
			for _, lib := range fields[1:] {
				mats, err := parseMTL(fsys, path.Join(dir, lib))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				for k, v := range mats {
					materials[k] = v
				}
			}

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			fverts := make([]faceVertex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fv, err := parseFaceVertex(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				fverts = append(fverts, fv)
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				cur.faces = append(cur.faces, objFace{
					vIdx:  [3]int{f0.v, f1.v, f2.v},
					vtIdx: [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx: [3]int{f0.vn, f1.vn, f2.vn},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	if len(cur.faces) > 0 {
		sections = append(sections, *cur)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}

	out := make([]meshData, 0, len(sections))
	for _, s := range sections {
		md := buildOBJMesh(s.faces, positions, normals, uvs)
		md.name = s.name
		if mat, ok := materials[s.matName]; ok {
			for typ, file := range mat.textures {
				md.textures[typ] = textureSource{Path: file}
			}
		}
		out = append(out, md)
	}
	return out, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

type faceVertex struct{ v, vt, vn int }

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// OBJ indices are 1-based, negative ones count back from the end of the
// pool. Returns 0-based indices, -1 for absent ones.
func parseFaceVertex(tok string, nv, nvt, nvn int) (faceVertex, error) {
	parseIdx := func(s string, n int, required bool) (int, error) {
		if s == "" {
			if required {
				return -1, fmt.Errorf("face vertex %q has no position", tok)
			}
			return -1, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return -1, fmt.Errorf("face vertex %q: %w", tok, err)
		}
		switch {
		case i > 0:
			i--
		case i < 0:
			i += n
		default:
			return -1, fmt.Errorf("face vertex %q: index 0", tok)
		}
		if i < 0 || i >= n {
			return -1, fmt.Errorf("face vertex %q out of range", tok)
		}
		return i, nil
	}

	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return faceVertex{}, fmt.Errorf("malformed face vertex %q", tok)
	}
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	var res faceVertex
	var err error
	if res.v, err = parseIdx(parts[0], nv, true); err != nil {
		return res, err
	}
	if res.vt, err = parseIdx(parts[1], nvt, false); err != nil {
		return res, err
	}
	if res.vn, err = parseIdx(parts[2], nvn, false); err != nil {
		return res, err
	}
	return res, nil
}

// buildOBJMesh converts parsed face data into deduplicated vertices.
func buildOBJMesh(faces []objFace, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) meshData {
	type key struct{ v, vt, vn int }
	vertMap := map[key]uint32{}
	obj := meshData{textures: map[graphics.TextureType]textureSource{}}
	missingNormals := false

	for _, face := range faces {
		for c := 0; c < 3; c++ {
			k := key{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
			if idx, ok := vertMap[k]; ok {
				obj.indices = append(obj.indices, idx)
				continue
			}
			v := graphics.Vertex{Position: positions[k.v]}
			if k.vn >= 0 {
				v.Normal = normals[k.vn]
			} else {
				missingNormals = true
			}
			if k.vt >= 0 {
				v.TexCoords = uvs[k.vt]
			}
			idx := uint32(len(obj.vertices))
			obj.vertices = append(obj.vertices, v)
			vertMap[k] = idx
			obj.indices = append(obj.indices, idx)
		}
	}

	if missingNormals {
		generateNormals(obj.vertices, obj.indices)
	}
	return obj
}

// generateNormals writes area-weighted vertex normals for vertices that
// have none.
func generateNormals(vertices []graphics.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(v0).Cross(vertices[i2].Position.Sub(v0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if vertices[i].Normal == (mgl32.Vec3{}) && accum[i].Len() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// ── MTL loader ───────────────────────────────────────────────────────────────

// mtlTextureKeys maps MTL map statements to texture types.
var mtlTextureKeys = map[string]graphics.TextureType{
	"map_Kd":   graphics.TextureDiffuse,
	"map_Ks":   graphics.TextureSpecular,
	"map_Bump": graphics.TextureNormal,
	"map_bump": graphics.TextureNormal,
	"bump":     graphics.TextureNormal,
	"norm":     graphics.TextureNormal,
	"map_Kn":   graphics.TextureNormal,
	"map_disp": graphics.TextureHeight,
	"disp":     graphics.TextureHeight,
}

func parseMTL(fsys fs.FS, name string) (map[string]*objMaterial, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("material library: %w", err)
	}
	defer f.Close()

	mats := map[string]*objMaterial{}
	var cur *objMaterial

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("%s: newmtl without a name", name)
			}
			cur = &objMaterial{name: fields[1], textures: map[graphics.TextureType]string{}}
			mats[cur.name] = cur
			continue
		}
		typ, ok := mtlTextureKeys[fields[0]]
		if !ok || cur == nil || len(fields) < 2 {
			continue
		}
		// Options such as "-bm 1.0" come before the file name.
		file := strings.ReplaceAll(fields[len(fields)-1], "\\", "/")
		cur.textures[typ] = file
	}
	return mats, scanner.Err()
}
