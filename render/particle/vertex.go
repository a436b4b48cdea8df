package particle

import (
	"unsafe"

	"github.com/gekko3d/ember/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches VertexInput in particle.wgsl.
type Vertex struct {
	Position [3]float32
	Corner   uint32
	Color    [4]float32
	UV       [2]float32
}

const (
	verticesPerParticle = 4
	indicesPerParticle  = 6
)

// quadUV is indexed by corner: top-left, top-right, bottom-left, bottom-right.
var quadUV = [verticesPerParticle][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// VertexLayout describes Vertex for the particle vertex shader.
func VertexLayout() *gfx.VertexLayout {
	var v Vertex
	return &gfx.VertexLayout{
		Stride: uint64(unsafe.Sizeof(v)),
		Attributes: []gfx.VertexAttribute{
			{Location: 0, Offset: uint64(unsafe.Offsetof(v.Position)), Format: gfx.FormatFloat32x3},
			{Location: 1, Offset: uint64(unsafe.Offsetof(v.Corner)), Format: gfx.FormatUint32},
			{Location: 2, Offset: uint64(unsafe.Offsetof(v.Color)), Format: gfx.FormatFloat32x4},
			{Location: 3, Offset: uint64(unsafe.Offsetof(v.UV)), Format: gfx.FormatFloat32x2},
		},
	}
}

// BuildVertices appends four camera-facing corner vertices per live particle
// of p to dst. The quad spans the camera's right/up axes taken from view.
func BuildVertices(dst []Vertex, p *Pool, view mgl32.Mat4) []Vertex {
	right := view.Row(0).Vec3()
	up := view.Row(1).Vec3()
	cfg := p.cfg

	p.ForEachAlive(func(pt Particle) bool {
		t := pt.NormalizedAge(cfg.Lifetime)
		size := cfg.SizeAt(t)
		color := cfg.ColorAt(t)
		center := pt.Position()

		for corner, uv := range quadUV {
			x := (uv[0] - 0.5) * size
			y := (0.5 - uv[1]) * size
			pos := center.Add(right.Mul(x)).Add(up.Mul(y))
			dst = append(dst, Vertex{
				Position: pos,
				Corner:   uint32(corner),
				Color:    color,
				UV:       uv,
			})
		}
		return true
	})
	return dst
}

// quadIndices returns two triangles per particle slot for n slots.
func quadIndices(n int) []uint32 {
	idx := make([]uint32, 0, n*indicesPerParticle)
	for i := 0; i < n; i++ {
		b := uint32(i * verticesPerParticle)
		idx = append(idx, b, b+1, b+2, b+2, b+1, b+3)
	}
	return idx
}
