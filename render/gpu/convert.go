package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/ember/render/gfx"
)

const depthFormat = wgpu.TextureFormatDepth32Float

func blendFactor(f gfx.BlendFactor) wgpu.BlendFactor {
	switch f {
	case gfx.BlendZero:
		return wgpu.BlendFactorZero
	case gfx.BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case gfx.BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	}
	return wgpu.BlendFactorOne
}

func blendComponent(c gfx.BlendComponent) wgpu.BlendComponent {
	op := wgpu.BlendOperationAdd
	if c.Op == gfx.BlendOpSubtract {
		op = wgpu.BlendOperationSubtract
	}
	return wgpu.BlendComponent{
		Operation: op,
		SrcFactor: blendFactor(c.Src),
		DstFactor: blendFactor(c.Dst),
	}
}

// blendState returns nil for a disabled state, which WebGPU treats as replace.
func blendState(b gfx.BlendState) *wgpu.BlendState {
	if !b.Enabled {
		return nil
	}
	return &wgpu.BlendState{
		Color: blendComponent(b.Color),
		Alpha: blendComponent(b.Alpha),
	}
}

func compareFunc(c gfx.CompareFunc) wgpu.CompareFunction {
	switch c {
	case gfx.CompareLessEqual:
		return wgpu.CompareFunctionLessEqual
	case gfx.CompareAlways:
		return wgpu.CompareFunctionAlways
	}
	return wgpu.CompareFunctionLess
}

// depthStencilState always targets the frame's depth attachment; a disabled
// test becomes Always so the pipeline stays compatible with the pass.
func depthStencilState(d gfx.DepthState) *wgpu.DepthStencilState {
	cmp := wgpu.CompareFunctionAlways
	if d.TestEnabled {
		cmp = compareFunc(d.Compare)
	}
	keep := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	return &wgpu.DepthStencilState{
		Format:            depthFormat,
		DepthWriteEnabled: d.WriteEnabled,
		DepthCompare:      cmp,
		StencilFront:      keep,
		StencilBack:       keep,
	}
}

func vertexFormat(f gfx.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gfx.FormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case gfx.FormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	case gfx.FormatUint32:
		return wgpu.VertexFormatUint32
	}
	return wgpu.VertexFormatFloat32x3
}

func vertexBufferLayout(l *gfx.VertexLayout) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = wgpu.VertexAttribute{
			Format:         vertexFormat(a.Format),
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: l.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

func addressMode(a gfx.AddressMode) wgpu.AddressMode {
	switch a {
	case gfx.AddressClamp:
		return wgpu.AddressModeClampToEdge
	case gfx.AddressMirror:
		return wgpu.AddressModeMirrorRepeat
	}
	return wgpu.AddressModeRepeat
}

// samplerDescriptor forces linear filtering whenever anisotropy is requested,
// as WebGPU rejects anisotropic samplers with nearest filters.
func samplerDescriptor(d gfx.SamplerDesc) *wgpu.SamplerDescriptor {
	mode := addressMode(d.Address)
	filter, mip := wgpu.FilterModeLinear, wgpu.MipmapFilterModeLinear
	if d.Filter == gfx.FilterNearest && d.MaxAnisotropy <= 1 {
		filter, mip = wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest
	}
	return &wgpu.SamplerDescriptor{
		AddressModeU:  mode,
		AddressModeV:  mode,
		AddressModeW:  mode,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mip,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: max(d.MaxAnisotropy, 1),
	}
}

func bufferUsage(kind gfx.BufferKind, dynamic bool) wgpu.BufferUsage {
	var u wgpu.BufferUsage
	switch kind {
	case gfx.IndexBuffer:
		u = wgpu.BufferUsageIndex
	case gfx.UniformBuffer:
		u = wgpu.BufferUsageUniform
	default:
		u = wgpu.BufferUsageVertex
	}
	if dynamic {
		u |= wgpu.BufferUsageCopyDst
	}
	return u
}

// align4 rounds n up to the 4-byte granularity WebGPU requires for buffer
// sizes and writes.
func align4(n uint64) uint64 { return (n + 3) &^ 3 }
