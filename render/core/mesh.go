package core

import (
	"fmt"
	"unsafe"

	"github.com/gekko3d/ember/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshVertex matches VertexInput in mesh.wgsl.
type MeshVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// MeshData is CPU-side indexed triangle geometry.
type MeshData struct {
	Vertices []MeshVertex
	Indices  []uint32
}

func (d *MeshData) TriangleCount() int { return len(d.Indices) / 3 }

// Validate reports out-of-range indices and incomplete triangles.
func (d *MeshData) Validate() error {
	if len(d.Indices)%3 != 0 {
		return fmt.Errorf("mesh: %d indices is not a triangle list", len(d.Indices))
	}
	for i, idx := range d.Indices {
		if int(idx) >= len(d.Vertices) {
			return fmt.Errorf("mesh: index %d at %d out of range (%d vertices)", idx, i, len(d.Vertices))
		}
	}
	return nil
}

// MeshVertexLayout describes MeshVertex for the mesh vertex shader.
func MeshVertexLayout() *gfx.VertexLayout {
	var v MeshVertex
	return &gfx.VertexLayout{
		Stride: uint64(unsafe.Sizeof(v)),
		Attributes: []gfx.VertexAttribute{
			{Location: 0, Offset: uint64(unsafe.Offsetof(v.Position)), Format: gfx.FormatFloat32x3},
			{Location: 1, Offset: uint64(unsafe.Offsetof(v.Normal)), Format: gfx.FormatFloat32x3},
			{Location: 2, Offset: uint64(unsafe.Offsetof(v.UV)), Format: gfx.FormatFloat32x2},
		},
	}
}

// Mesh is geometry resident on the device.
type Mesh struct {
	Name       string
	VB         gfx.Buffer
	IB         gfx.Buffer
	IndexCount uint32
}

// UploadMesh creates immutable vertex and index buffers for data.
func UploadMesh(dev gfx.Device, name string, data *MeshData) (*Mesh, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if len(data.Indices) == 0 {
		return nil, fmt.Errorf("mesh %q: no triangles", name)
	}

	vb, err := dev.CreateBuffer(gfx.BufferDesc{
		Label:    name + "VertexBuffer",
		Kind:     gfx.VertexBuffer,
		Contents: gfx.Bytes(data.Vertices),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: mesh %q vertices: %w", gfx.ErrResourceCreation, name, err)
	}
	ib, err := dev.CreateBuffer(gfx.BufferDesc{
		Label:    name + "IndexBuffer",
		Kind:     gfx.IndexBuffer,
		Contents: gfx.Bytes(data.Indices),
	})
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("%w: mesh %q indices: %w", gfx.ErrResourceCreation, name, err)
	}

	return &Mesh{Name: name, VB: vb, IB: ib, IndexCount: uint32(len(data.Indices))}, nil
}

// Draw binds the mesh buffers and draws every index.
func (m *Mesh) Draw(ctx gfx.Context) error {
	ctx.SetVertexBuffer(m.VB)
	ctx.SetIndexBuffer(m.IB)
	return ctx.DrawIndexed(m.IndexCount, 0, 0)
}

func (m *Mesh) Release() {
	if m.VB != nil {
		m.VB.Release()
		m.VB = nil
	}
	if m.IB != nil {
		m.IB.Release()
		m.IB = nil
	}
}
