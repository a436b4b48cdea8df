// Package gfx is the small immediate-mode graphics interface the renderer and
// the particle subsystem are written against. The WebGPU backend in render/gpu
// implements it; gfxtest provides a recording fake for tests.
package gfx

import (
	"errors"
	"image"
)

// ErrResourceCreation wraps every failure to allocate a device object.
var ErrResourceCreation = errors.New("gfx: resource creation failed")

type BufferKind int

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
	UniformBuffer
)

func (k BufferKind) String() string {
	switch k {
	case VertexBuffer:
		return "vertex"
	case IndexBuffer:
		return "index"
	case UniformBuffer:
		return "uniform"
	}
	return "unknown"
}

// BufferDesc describes a buffer. When Contents is set the buffer is created
// initialized and Size is ignored. Dynamic buffers accept WriteBuffer calls.
type BufferDesc struct {
	Label    string
	Kind     BufferKind
	Size     uint64
	Contents []byte
	Dynamic  bool
}

type Buffer interface {
	Size() uint64
	Release()
}

type Texture interface {
	Width() int
	Height() int
	Release()
}

type AddressMode int

const (
	AddressWrap AddressMode = iota
	AddressClamp
	AddressMirror
)

type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

type SamplerDesc struct {
	Address       AddressMode
	Filter        FilterMode
	MaxAnisotropy uint16
}

type Sampler interface {
	Release()
}

type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StagePixel
)

type VertexFormat int

const (
	FormatFloat32x2 VertexFormat = iota
	FormatFloat32x3
	FormatFloat32x4
	FormatUint32
)

type VertexAttribute struct {
	Location uint32
	Offset   uint64
	Format   VertexFormat
}

type VertexLayout struct {
	Stride     uint64
	Attributes []VertexAttribute
}

// ShaderDesc describes one shader stage. Layout is required for vertex shaders.
type ShaderDesc struct {
	Name       string
	Stage      ShaderStage
	Source     string
	EntryPoint string
	Layout     *VertexLayout
}

type Shader interface {
	Name() string
	Stage() ShaderStage
	Release()
}

// Device creates GPU objects. Creation happens once at init time.
type Device interface {
	CreateBuffer(desc BufferDesc) (Buffer, error)
	CreateTexture(label string, img *image.RGBA) (Texture, error)
	CreateSampler(desc SamplerDesc) (Sampler, error)
	CreateShader(desc ShaderDesc) (Shader, error)
}

// MaxConstantsSize bounds the per-draw constant block passed to SetConstants.
const MaxConstantsSize = 256

// Context records draw work for the current frame. Blend and depth state are
// global: they stay bound until changed.
type Context interface {
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	SetBlendState(state BlendState)
	BlendState() BlendState
	SetDepthState(state DepthState)
	DepthState() DepthState

	SetShaders(vs, ps Shader)
	SetConstants(data []byte) error
	SetTexture(tex Texture, smp Sampler)
	SetVertexBuffer(buf Buffer)
	SetIndexBuffer(buf Buffer)

	DrawIndexed(indexCount, firstIndex uint32, baseVertex int32) error
}
