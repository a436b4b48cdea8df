package core

import (
	"fmt"

	"github.com/gekko3d/ember/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Material pairs the mesh shaders with a surface texture. Shaders, texture and
// sampler are shared and owned by whoever created them.
type Material struct {
	Name    string
	VS, PS  gfx.Shader
	Texture gfx.Texture
	Sampler gfx.Sampler
}

// meshConstants matches Constants in mesh.wgsl.
type meshConstants struct {
	World    mgl32.Mat4
	ViewProj mgl32.Mat4
	Lights   [MaxLights]gpuLight
}

// Prepare binds the material and uploads the per-draw constants. Lights past
// MaxLights are ignored; missing ones contribute nothing.
func (m *Material) Prepare(ctx gfx.Context, world, view, proj mgl32.Mat4, lights []DirectionalLight) error {
	consts := meshConstants{
		World:    world,
		ViewProj: proj.Mul4(view),
	}
	for i := 0; i < len(lights) && i < MaxLights; i++ {
		consts.Lights[i] = lights[i].gpu()
	}

	ctx.SetShaders(m.VS, m.PS)
	if err := ctx.SetConstants(gfx.StructBytes(&consts)); err != nil {
		return fmt.Errorf("material %q: %w", m.Name, err)
	}
	ctx.SetTexture(m.Texture, m.Sampler)
	return nil
}
