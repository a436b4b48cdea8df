// Package gfxtest provides a recording gfx.Device / gfx.Context for tests that
// must not touch a GPU.
package gfxtest

import (
	"fmt"
	"image"

	"github.com/gekko3d/ember/render/gfx"
)

type Buffer struct {
	Label    string
	Kind     gfx.BufferKind
	Dynamic  bool
	Data     []byte
	Released bool
}

func (b *Buffer) Size() uint64 { return uint64(len(b.Data)) }
func (b *Buffer) Release()     { b.Released = true }

type Texture struct {
	Label    string
	W, H     int
	Released bool
}

func (t *Texture) Width() int  { return t.W }
func (t *Texture) Height() int { return t.H }
func (t *Texture) Release()    { t.Released = true }

type Sampler struct {
	Desc     gfx.SamplerDesc
	Released bool
}

func (s *Sampler) Release() { s.Released = true }

type Shader struct {
	Desc     gfx.ShaderDesc
	Released bool
}

func (s *Shader) Name() string           { return s.Desc.Name }
func (s *Shader) Stage() gfx.ShaderStage { return s.Desc.Stage }
func (s *Shader) Release()               { s.Released = true }

// Draw is one recorded DrawIndexed call with the state bound at that moment.
type Draw struct {
	IndexCount uint32
	FirstIndex uint32
	BaseVertex int32
	Blend      gfx.BlendState
	Depth      gfx.DepthState
	VS, PS     gfx.Shader
	Vertex     gfx.Buffer
	Index      gfx.Buffer
	Texture    gfx.Texture
	Constants  []byte
}

// Recorder implements gfx.Device and gfx.Context.
type Recorder struct {
	Buffers  []*Buffer
	Textures []*Texture
	Samplers []*Sampler
	Shaders  []*Shader

	Draws       []Draw
	Writes      int
	StateChange int

	// FailBufferLabel makes CreateBuffer fail for the matching label.
	FailBufferLabel string
	// FailDraw is returned from DrawIndexed when set.
	FailDraw error

	blend     gfx.BlendState
	depth     gfx.DepthState
	vs, ps    gfx.Shader
	vertex    gfx.Buffer
	index     gfx.Buffer
	texture   gfx.Texture
	constants []byte
}

var (
	_ gfx.Device  = (*Recorder)(nil)
	_ gfx.Context = (*Recorder)(nil)
)

func NewRecorder() *Recorder {
	return &Recorder{
		blend: gfx.BlendOpaque,
		depth: gfx.DepthDefault,
	}
}

func (r *Recorder) CreateBuffer(desc gfx.BufferDesc) (gfx.Buffer, error) {
	if r.FailBufferLabel != "" && desc.Label == r.FailBufferLabel {
		return nil, fmt.Errorf("gfxtest: refusing buffer %q", desc.Label)
	}
	b := &Buffer{Label: desc.Label, Kind: desc.Kind, Dynamic: desc.Dynamic}
	if desc.Contents != nil {
		b.Data = append([]byte(nil), desc.Contents...)
	} else {
		b.Data = make([]byte, desc.Size)
	}
	r.Buffers = append(r.Buffers, b)
	return b, nil
}

func (r *Recorder) CreateTexture(label string, img *image.RGBA) (gfx.Texture, error) {
	t := &Texture{Label: label, W: img.Bounds().Dx(), H: img.Bounds().Dy()}
	r.Textures = append(r.Textures, t)
	return t, nil
}

func (r *Recorder) CreateSampler(desc gfx.SamplerDesc) (gfx.Sampler, error) {
	s := &Sampler{Desc: desc}
	r.Samplers = append(r.Samplers, s)
	return s, nil
}

func (r *Recorder) CreateShader(desc gfx.ShaderDesc) (gfx.Shader, error) {
	s := &Shader{Desc: desc}
	r.Shaders = append(r.Shaders, s)
	return s, nil
}

func (r *Recorder) WriteBuffer(buf gfx.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("gfxtest: foreign buffer %T", buf)
	}
	if !b.Dynamic {
		return fmt.Errorf("gfxtest: buffer %q is not dynamic", b.Label)
	}
	if offset+uint64(len(data)) > uint64(len(b.Data)) {
		return fmt.Errorf("gfxtest: write of %d bytes at %d overflows %q (%d bytes)", len(data), offset, b.Label, len(b.Data))
	}
	copy(b.Data[offset:], data)
	r.Writes++
	return nil
}

func (r *Recorder) SetBlendState(state gfx.BlendState) {
	r.blend = state
	r.StateChange++
}

func (r *Recorder) BlendState() gfx.BlendState { return r.blend }

func (r *Recorder) SetDepthState(state gfx.DepthState) {
	r.depth = state
	r.StateChange++
}

func (r *Recorder) DepthState() gfx.DepthState { return r.depth }

func (r *Recorder) SetShaders(vs, ps gfx.Shader) { r.vs, r.ps = vs, ps }

func (r *Recorder) SetConstants(data []byte) error {
	if len(data) > gfx.MaxConstantsSize {
		return fmt.Errorf("gfxtest: constants too large (%d bytes)", len(data))
	}
	r.constants = append(r.constants[:0], data...)
	return nil
}

func (r *Recorder) SetTexture(tex gfx.Texture, smp gfx.Sampler) { r.texture = tex }
func (r *Recorder) SetVertexBuffer(buf gfx.Buffer)              { r.vertex = buf }
func (r *Recorder) SetIndexBuffer(buf gfx.Buffer)               { r.index = buf }

func (r *Recorder) DrawIndexed(indexCount, firstIndex uint32, baseVertex int32) error {
	if r.FailDraw != nil {
		return r.FailDraw
	}
	r.Draws = append(r.Draws, Draw{
		IndexCount: indexCount,
		FirstIndex: firstIndex,
		BaseVertex: baseVertex,
		Blend:      r.blend,
		Depth:      r.depth,
		VS:         r.vs,
		PS:         r.ps,
		Vertex:     r.vertex,
		Index:      r.index,
		Texture:    r.texture,
		Constants:  append([]byte(nil), r.constants...),
	})
	return nil
}

// LastDraw returns the most recent draw; it panics when none was recorded.
func (r *Recorder) LastDraw() Draw {
	return r.Draws[len(r.Draws)-1]
}

// BufferByLabel finds the first created buffer with the label, or nil.
func (r *Recorder) BufferByLabel(label string) *Buffer {
	for _, b := range r.Buffers {
		if b.Label == label {
			return b
		}
	}
	return nil
}
