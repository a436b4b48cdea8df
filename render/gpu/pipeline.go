package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/ember/render/gfx"
)

type pipelineKey struct {
	vs, ps *shader
	blend  gfx.BlendState
	depth  gfx.DepthState
}

type bindKey struct {
	tex *texture
	smp *sampler
}

// pipeline returns the render pipeline for the shader pair and fixed-function
// state, building it on first use.
func (r *Renderer) pipeline(key pipelineKey) (*wgpu.RenderPipeline, error) {
	if p, ok := r.pipelines[key]; ok {
		return p, nil
	}

	label := key.vs.desc.Name + "+" + key.ps.desc.Name
	p, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: r.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     key.vs.module,
			EntryPoint: key.vs.desc.EntryPoint,
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout(key.vs.desc.Layout)},
		},
		Fragment: &wgpu.FragmentState{
			Module:     key.ps.module,
			EntryPoint: key.ps.desc.EntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.config.Format,
					Blend:     blendState(key.blend),
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthStencilState(key.depth),
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", label, err)
	}

	r.log.Debugf("gpu: built pipeline %s (blend=%v depthWrite=%v)", label, key.blend.Enabled, key.depth.WriteEnabled)
	r.pipelines[key] = p
	return p, nil
}

// textureGroup returns the group 1 bind group for a texture/sampler pair.
// Nil members fall back to the white texture and the default sampler.
func (r *Renderer) textureGroup(tex *texture, smp *sampler) (*wgpu.BindGroup, error) {
	if tex == nil {
		tex = r.whiteTex
	}
	if smp == nil {
		smp = r.defaultSampler
	}
	key := bindKey{tex: tex, smp: smp}
	if bg, ok := r.bindGroups[key]; ok {
		return bg, nil
	}

	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "TextureBG",
		Layout: r.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: tex.view},
			{Binding: 1, Sampler: smp.smp},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("texture bind group: %w", err)
	}
	r.bindGroups[key] = bg
	return bg, nil
}
