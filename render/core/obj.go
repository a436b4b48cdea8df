package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type objKey struct{ v, t, n int }

// ParseOBJ reads Wavefront OBJ geometry. Polygons are fan-triangulated,
// negative (relative) indices are resolved, and identical v/vt/vn triples
// share one vertex. Faces without normals get their geometric normal.
// Materials, groups and free-form statements are ignored.
func ParseOBJ(r io.Reader) (*MeshData, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
	)
	data := &MeshData{}
	seen := map[objKey]uint32{}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})

		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})

		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], 1 - v[1]})

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: face needs at least 3 vertices", lineNo)
			}
			keys := make([]objKey, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				k, err := parseFaceRef(ref, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
				}
				keys = append(keys, k)
			}
			for i := 1; i+1 < len(keys); i++ {
				tri := [3]objKey{keys[0], keys[i], keys[i+1]}
				faceNormal := triangleNormal(positions[tri[0].v], positions[tri[1].v], positions[tri[2].v])
				for _, k := range tri {
					idx, ok := seen[k]
					if !ok || k.n < 0 {
						idx = uint32(len(data.Vertices))
						vert := MeshVertex{Position: positions[k.v], Normal: faceNormal}
						if k.t >= 0 {
							vert.UV = uvs[k.t]
						}
						if k.n >= 0 {
							vert.Normal = normals[k.n]
							seen[k] = idx
						}
						data.Vertices = append(data.Vertices, vert)
					}
					data.Indices = append(data.Indices, idx)
				}
			}

		default:
			// o, g, s, usemtl, mtllib, l, p and friends
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obj: %w", err)
	}
	if len(data.Indices) == 0 {
		return nil, fmt.Errorf("obj: no faces")
	}
	return data, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceRef turns "v", "v/t", "v//n" or "v/t/n" into zero-based indices;
// absent components are -1.
func parseFaceRef(ref string, nv, nt, nn int) (objKey, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objKey{}, fmt.Errorf("bad face vertex %q", ref)
	}
	k := objKey{v: -1, t: -1, n: -1}
	var err error
	if k.v, err = resolveIndex(parts[0], nv); err != nil {
		return objKey{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if k.t, err = resolveIndex(parts[1], nt); err != nil {
			return objKey{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if k.n, err = resolveIndex(parts[2], nn); err != nil {
			return objKey{}, err
		}
	}
	return k, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("index %d out of range (%d defined)", i, count)
}

func triangleNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}
