package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type cubeFace struct {
	n, u, v mgl32.Vec3
}

// u x v == n so the corner order below winds counter-clockwise seen from outside.
var cubeFaces = [6]cubeFace{
	{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// Cube returns a unit cube centred on the origin with per-face normals.
func Cube() *MeshData {
	d := &MeshData{
		Vertices: make([]MeshVertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range cubeFaces {
		base := uint32(len(d.Vertices))
		for _, c := range corners {
			pos := f.n.Mul(0.5).Add(f.u.Mul(0.5 * c[0])).Add(f.v.Mul(0.5 * c[1]))
			d.Vertices = append(d.Vertices, MeshVertex{
				Position: pos,
				Normal:   f.n,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return d
}

// Sphere returns a UV sphere of radius 0.5.
func Sphere(rings, segments int) *MeshData {
	rings = max(rings, 2)
	segments = max(segments, 3)

	d := &MeshData{}
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			n := mgl32.Vec3{
				float32(math.Sin(phi) * math.Sin(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Cos(theta)),
			}
			d.Vertices = append(d.Vertices, MeshVertex{
				Position: n.Mul(0.5),
				Normal:   n,
				UV:       mgl32.Vec2{float32(s) / float32(segments), float32(r) / float32(rings)},
			})
		}
	}
	gridIndices(d, rings, segments)
	return d
}

// Helix sweeps a circular tube of radius tube along a helix of the given
// radius, rising radius units per turn and centred on the origin.
func Helix(turns float32, segments int, radius, tube float32) *MeshData {
	const sides = 12
	segments = max(segments, 3)

	sweep := float64(turns) * 2 * math.Pi
	rise := float64(radius) / (2 * math.Pi)
	height := float64(radius * turns)

	d := &MeshData{}
	for i := 0; i <= segments; i++ {
		theta := sweep * float64(i) / float64(segments)
		sin, cos := math.Sincos(theta)
		center := mgl32.Vec3{
			float32(float64(radius) * cos),
			float32(rise*theta - height/2),
			float32(float64(radius) * sin),
		}
		tangent := mgl32.Vec3{float32(-float64(radius) * sin), float32(rise), float32(float64(radius) * cos)}.Normalize()
		inward := mgl32.Vec3{float32(-cos), 0, float32(-sin)}
		binormal := tangent.Cross(inward)

		for j := 0; j <= sides; j++ {
			phi := 2 * math.Pi * float64(j) / sides
			n := inward.Mul(float32(math.Cos(phi))).Add(binormal.Mul(float32(math.Sin(phi))))
			d.Vertices = append(d.Vertices, MeshVertex{
				Position: center.Add(n.Mul(tube)),
				Normal:   n,
				UV:       mgl32.Vec2{float32(i) / float32(segments), float32(j) / sides},
			})
		}
	}

	stride := uint32(sides + 1)
	for i := uint32(0); i < uint32(segments); i++ {
		for j := uint32(0); j < sides; j++ {
			a := i*stride + j
			c := a + stride
			d.Indices = append(d.Indices, a, a+1, c, a+1, c+1, c)
		}
	}
	return d
}

// gridIndices triangulates a (rows+1) x (cols+1) vertex grid.
func gridIndices(d *MeshData, rows, cols int) {
	stride := uint32(cols + 1)
	for r := uint32(0); r < uint32(rows); r++ {
		for s := uint32(0); s < uint32(cols); s++ {
			a := r*stride + s
			b := a + stride
			d.Indices = append(d.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
}
