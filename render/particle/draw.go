package particle

import (
	"fmt"

	"github.com/gekko3d/ember/render/gfx"
)

// Draw rebuilds the vertex stream from the live particles, uploads it and
// issues a single indexed draw with additive blending and read-only depth.
// The previously bound blend/depth state is restored before returning.
func (e *Emitter) Draw(ctx gfx.Context, cam Camera) error {
	view := cam.View()

	e.verts = BuildVertices(e.verts[:0], e.Pool, view)
	if len(e.verts) > 0 {
		if err := ctx.WriteBuffer(e.vertexBuf, 0, gfx.Bytes(e.verts)); err != nil {
			return fmt.Errorf("particle: upload vertices: %w", err)
		}
	}

	restore := gfx.PushState(ctx, e.blend, e.depth)
	defer restore()

	consts := drawConstants{ViewProj: cam.Projection().Mul4(view)}
	ctx.SetShaders(e.vs, e.ps)
	if err := ctx.SetConstants(gfx.StructBytes(&consts)); err != nil {
		return fmt.Errorf("particle: constants: %w", err)
	}
	ctx.SetTexture(e.tex, e.smp)
	ctx.SetVertexBuffer(e.vertexBuf)
	ctx.SetIndexBuffer(e.indexBuf)

	quads := len(e.verts) / verticesPerParticle
	return ctx.DrawIndexed(uint32(quads*indicesPerParticle), 0, 0)
}
