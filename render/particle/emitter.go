package particle

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gekko3d/ember/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera supplies the matrices Draw renders with.
type Camera interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
}

// Emitter owns a particle Pool and the GPU resources used to draw it.
type Emitter struct {
	*Pool

	vs, ps gfx.Shader
	tex    gfx.Texture
	smp    gfx.Sampler

	vertexBuf gfx.Buffer
	indexBuf  gfx.Buffer
	verts     []Vertex

	blend gfx.BlendState
	depth gfx.DepthState
}

// drawConstants matches Constants in particle.wgsl.
type drawConstants struct {
	ViewProj mgl32.Mat4
}

// New validates cfg and allocates GPU buffers sized for cfg.MaxParticles. Any
// device failure aborts construction with gfx.ErrResourceCreation and releases
// what was already created.
func New(cfg Config, dev gfx.Device, vs, ps gfx.Shader, tex gfx.Texture, smp gfx.Sampler, opts ...Option) (*Emitter, error) {
	if dev == nil || vs == nil || ps == nil {
		return nil, errors.New("particle: device and shaders are required")
	}
	pool, err := NewPool(cfg, opts...)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	n := cfg.MaxParticles
	vb, err := dev.CreateBuffer(gfx.BufferDesc{
		Label:   "ParticleVertexBuffer",
		Kind:    gfx.VertexBuffer,
		Size:    uint64(n*verticesPerParticle) * uint64(unsafe.Sizeof(Vertex{})),
		Dynamic: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: particle vertex buffer: %w", gfx.ErrResourceCreation, err)
	}

	ib, err := dev.CreateBuffer(gfx.BufferDesc{
		Label:    "ParticleIndexBuffer",
		Kind:     gfx.IndexBuffer,
		Contents: gfx.Bytes(quadIndices(n)),
	})
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("%w: particle index buffer: %w", gfx.ErrResourceCreation, err)
	}

	o.log.Debugf("particle emitter: %d slots, %.1f/s, %.2fs lifetime", n, cfg.SpawnRate, cfg.Lifetime)

	return &Emitter{
		Pool:      pool,
		vs:        vs,
		ps:        ps,
		tex:       tex,
		smp:       smp,
		vertexBuf: vb,
		indexBuf:  ib,
		verts:     make([]Vertex, 0, n*verticesPerParticle),
		blend:     o.blend,
		depth:     o.depth,
	}, nil
}

// Release frees the emitter's GPU buffers. Shaders, texture and sampler are
// borrowed and stay with the caller.
func (e *Emitter) Release() {
	if e.vertexBuf != nil {
		e.vertexBuf.Release()
		e.vertexBuf = nil
	}
	if e.indexBuf != nil {
		e.indexBuf.Release()
		e.indexBuf = nil
	}
}
