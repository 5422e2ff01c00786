package io

import (
	"bufio"
	"fmt"
	goio "io"
	"os"

	"res-errare/graphics"
)

// ExportOBJ writes meshes to a .obj file, one object per mesh.
func ExportOBJ(path string, meshes []*graphics.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create OBJ file: %w", err)
	}
	if err := WriteOBJ(f, meshes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteOBJ writes meshes as Wavefront OBJ. Every vertex gets a position,
// texture coordinate and normal with the same index, so faces are written
// as v/v/v. Meshes without indices are written as consecutive triangles.
func WriteOBJ(out goio.Writer, meshes []*graphics.Mesh) error {
	w := bufio.NewWriter(out)

	fmt.Fprintln(w, "# res errare")
	offset := uint32(1)
	for i, mesh := range meshes {
		fmt.Fprintf(w, "\no mesh%d\n", i)
		vertices := mesh.Vertices()
		for _, v := range vertices {
			fmt.Fprintf(w, "v %g %g %g\n", v.Position.X(), v.Position.Y(), v.Position.Z())
		}
		for _, v := range vertices {
			fmt.Fprintf(w, "vt %g %g\n", v.TexCoords.X(), v.TexCoords.Y())
		}
		for _, v := range vertices {
			fmt.Fprintf(w, "vn %g %g %g\n", v.Normal.X(), v.Normal.Y(), v.Normal.Z())
		}

		indices := mesh.Indices()
		if len(indices) == 0 {
			indices = make([]uint32, len(vertices)/3*3)
			for j := range indices {
				indices[j] = uint32(j)
			}
		}
		for j := 0; j+2 < len(indices); j += 3 {
			a, b, c := indices[j]+offset, indices[j+1]+offset, indices[j+2]+offset
			fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}
		offset += uint32(len(vertices))
	}
	return w.Flush()
}
