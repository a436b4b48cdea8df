package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/ember/render/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame records one frame into a single render pass that clears color and
// depth. It implements gfx.Context and is valid until End.
type Frame struct {
	r *Renderer

	surfaceTex *wgpu.Texture
	view       *wgpu.TextureView
	encoder    *wgpu.CommandEncoder
	pass       *wgpu.RenderPassEncoder

	blend  gfx.BlendState
	depth  gfx.DepthState
	vs, ps *shader
	tex    *texture
	smp    *sampler
	vb, ib *buffer

	slot      int
	constSlot int

	Draws int
}

var _ gfx.Context = (*Frame)(nil)

// BeginFrame acquires the next swapchain texture and opens the frame's pass.
func (r *Renderer) BeginFrame(clear mgl32.Vec4) (*Frame, error) {
	if r.surfaceLost {
		if err := r.Resize(int(r.config.Width), int(r.config.Height)); err != nil {
			return nil, err
		}
	}

	surfaceTex, err := r.surface.GetCurrentTexture()
	if err != nil {
		r.surfaceLost = true
		return nil, fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	}
	view, err := surfaceTex.CreateView(nil)
	if err != nil {
		surfaceTex.Release()
		return nil, fmt.Errorf("gpu: surface view: %w", err)
	}
	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTex.Release()
		return nil, fmt.Errorf("gpu: command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: float64(clear[0]), G: float64(clear[1]), B: float64(clear[2]), A: float64(clear[3])},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})

	return &Frame{
		r:          r,
		surfaceTex: surfaceTex,
		view:       view,
		encoder:    encoder,
		pass:       pass,
		blend:      gfx.BlendOpaque,
		depth:      gfx.DepthDefault,
		constSlot:  -1,
	}, nil
}

// End closes the pass, flushes this frame's constants, submits and presents.
func (f *Frame) End() error {
	defer f.release()

	if err := f.pass.End(); err != nil {
		return fmt.Errorf("gpu: render pass: %w", err)
	}
	if f.slot > 0 {
		used := f.slot * gfx.MaxConstantsSize
		if err := f.r.queue.WriteBuffer(f.r.constBuf, 0, f.r.staging[:used]); err != nil {
			return fmt.Errorf("gpu: constants upload: %w", err)
		}
	}
	cmd, err := f.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: encoder finish: %w", err)
	}
	defer cmd.Release()

	f.r.queue.Submit(cmd)
	f.r.surface.Present()
	return nil
}

func (f *Frame) release() {
	if f.pass != nil {
		f.pass.Release()
		f.pass = nil
	}
	if f.encoder != nil {
		f.encoder.Release()
		f.encoder = nil
	}
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.surfaceTex != nil {
		f.surfaceTex.Release()
		f.surfaceTex = nil
	}
}

func (f *Frame) WriteBuffer(buf gfx.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok || b.buf == nil {
		return fmt.Errorf("gpu: write to foreign or released buffer %T", buf)
	}
	if !b.dynamic {
		return fmt.Errorf("gpu: buffer %q is not dynamic", b.label)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("gpu: write of %d bytes at %d overflows %q (%d bytes)", len(data), offset, b.label, b.size)
	}
	if len(data)%4 != 0 || offset%4 != 0 {
		return fmt.Errorf("gpu: unaligned write to %q", b.label)
	}
	return f.r.queue.WriteBuffer(b.buf, offset, data)
}

func (f *Frame) SetBlendState(state gfx.BlendState) { f.blend = state }
func (f *Frame) BlendState() gfx.BlendState         { return f.blend }
func (f *Frame) SetDepthState(state gfx.DepthState) { f.depth = state }
func (f *Frame) DepthState() gfx.DepthState         { return f.depth }

func (f *Frame) SetShaders(vs, ps gfx.Shader) {
	f.vs, _ = vs.(*shader)
	f.ps, _ = ps.(*shader)
}

// SetConstants copies data into the next slot of the constant ring. Every
// call takes a new slot so earlier draws keep their values.
func (f *Frame) SetConstants(data []byte) error {
	if len(data) > gfx.MaxConstantsSize {
		return fmt.Errorf("gpu: constants too large (%d bytes)", len(data))
	}
	if f.slot >= f.r.constSlots {
		return fmt.Errorf("gpu: constant ring exhausted (%d slots)", f.r.constSlots)
	}
	off := f.slot * gfx.MaxConstantsSize
	dst := f.r.staging[off : off+gfx.MaxConstantsSize]
	clear(dst[copy(dst, data):])
	f.constSlot = f.slot
	f.slot++
	return nil
}

func (f *Frame) SetTexture(tex gfx.Texture, smp gfx.Sampler) {
	f.tex, _ = tex.(*texture)
	f.smp, _ = smp.(*sampler)
}

func (f *Frame) SetVertexBuffer(buf gfx.Buffer) { f.vb, _ = buf.(*buffer) }
func (f *Frame) SetIndexBuffer(buf gfx.Buffer)  { f.ib, _ = buf.(*buffer) }

var errIncompleteDraw = errors.New("gpu: draw without shaders, constants or buffers")

func (f *Frame) DrawIndexed(indexCount, firstIndex uint32, baseVertex int32) error {
	if indexCount == 0 {
		return nil
	}
	if f.vs == nil || f.ps == nil || f.vb == nil || f.ib == nil || f.constSlot < 0 {
		return errIncompleteDraw
	}
	if uint64(firstIndex+indexCount)*4 > f.ib.size {
		return fmt.Errorf("gpu: draw of %d indices from %d overruns %q", indexCount, firstIndex, f.ib.label)
	}

	p, err := f.r.pipeline(pipelineKey{vs: f.vs, ps: f.ps, blend: f.blend, depth: f.depth})
	if err != nil {
		return err
	}
	tg, err := f.r.textureGroup(f.tex, f.smp)
	if err != nil {
		return err
	}

	f.pass.SetPipeline(p)
	f.pass.SetBindGroup(0, f.r.constGroup, []uint32{uint32(f.constSlot * gfx.MaxConstantsSize)})
	f.pass.SetBindGroup(1, tg, nil)
	f.pass.SetVertexBuffer(0, f.vb.buf, 0, f.vb.buf.GetSize())
	f.pass.SetIndexBuffer(f.ib.buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	f.pass.DrawIndexed(indexCount, 1, firstIndex, baseVertex, 0)
	f.Draws++
	return nil
}
