package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/ember/render/gfx"
)

type buffer struct {
	label   string
	buf     *wgpu.Buffer
	size    uint64
	dynamic bool
}

func (b *buffer) Size() uint64 { return b.size }

func (b *buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type texture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
	w, h int
}

func (t *texture) Width() int  { return t.w }
func (t *texture) Height() int { return t.h }

func (t *texture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

type sampler struct {
	smp *wgpu.Sampler
}

func (s *sampler) Release() {
	if s.smp != nil {
		s.smp.Release()
		s.smp = nil
	}
}

type shader struct {
	desc   gfx.ShaderDesc
	module *wgpu.ShaderModule
}

func (s *shader) Name() string           { return s.desc.Name }
func (s *shader) Stage() gfx.ShaderStage { return s.desc.Stage }

func (s *shader) Release() {
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}

func (r *Renderer) CreateBuffer(desc gfx.BufferDesc) (gfx.Buffer, error) {
	usage := bufferUsage(desc.Kind, desc.Dynamic)

	var (
		buf *wgpu.Buffer
		err error
	)
	size := desc.Size
	if desc.Contents != nil {
		size = uint64(len(desc.Contents))
		buf, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    desc.Label,
			Contents: desc.Contents,
			Usage:    usage,
		})
	} else {
		if size == 0 {
			return nil, fmt.Errorf("%w: buffer %q has zero size", gfx.ErrResourceCreation, desc.Label)
		}
		buf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: desc.Label,
			Size:  align4(size),
			Usage: usage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: buffer %q: %w", gfx.ErrResourceCreation, desc.Label, err)
	}
	return &buffer{label: desc.Label, buf: buf, size: size, dynamic: desc.Dynamic}, nil
}

func (r *Renderer) CreateTexture(label string, img *image.RGBA) (gfx.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: texture %q is empty", gfx.ErrResourceCreation, label)
	}
	pix := img.Pix
	if img.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(packed.Pix[y*packed.Stride:(y+1)*packed.Stride], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		pix = packed.Pix
	}
	return r.createTexture(label, b.Dx(), b.Dy(), pix)
}

func (r *Renderer) createTexture(label string, w, h int, pix []byte) (*texture, error) {
	extent := wgpu.Extent3D{
		Width:              uint32(w),
		Height:             uint32(h),
		DepthOrArrayLayers: 1,
	}
	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: texture %q: %w", gfx.ErrResourceCreation, label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("%w: texture view %q: %w", gfx.ErrResourceCreation, label, err)
	}

	err = r.queue.WriteTexture(
		tex.AsImageCopy(),
		pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(4 * w),
			RowsPerImage: uint32(h),
		},
		&extent,
	)
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("%w: texture upload %q: %w", gfx.ErrResourceCreation, label, err)
	}
	return &texture{tex: tex, view: view, w: w, h: h}, nil
}

func (r *Renderer) CreateSampler(desc gfx.SamplerDesc) (gfx.Sampler, error) {
	smp, err := r.device.CreateSampler(samplerDescriptor(desc))
	if err != nil {
		return nil, fmt.Errorf("%w: sampler: %w", gfx.ErrResourceCreation, err)
	}
	return &sampler{smp: smp}, nil
}

func (r *Renderer) CreateShader(desc gfx.ShaderDesc) (gfx.Shader, error) {
	if desc.Stage == gfx.StageVertex && desc.Layout == nil {
		return nil, fmt.Errorf("%w: vertex shader %q needs a vertex layout", gfx.ErrResourceCreation, desc.Name)
	}
	if desc.EntryPoint == "" {
		return nil, fmt.Errorf("%w: shader %q has no entry point", gfx.ErrResourceCreation, desc.Name)
	}
	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: shader %q: %w", gfx.ErrResourceCreation, desc.Name, err)
	}
	return &shader{desc: desc, module: module}, nil
}
