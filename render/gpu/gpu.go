// Package gpu implements gfx.Device and gfx.Context on WebGPU, presenting to
// a GLFW window surface.
package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/ember/render/gfx"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ErrSurfaceLost is returned by BeginFrame when the swapchain texture could
// not be acquired. The surface is reconfigured on the next BeginFrame.
var ErrSurfaceLost = errors.New("gpu: surface lost")

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

type Options struct {
	// MaxDrawsPerFrame sizes the per-frame constant ring; one slot per
	// SetConstants call.
	MaxDrawsPerFrame int
	// VSync selects FIFO presentation; otherwise Immediate when supported.
	VSync  bool
	Logger Logger
}

func DefaultOptions() Options {
	return Options{MaxDrawsPerFrame: 256, VSync: true}
}

// Renderer owns the WebGPU device and the window surface.
type Renderer struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue
	config  *wgpu.SurfaceConfiguration

	depthTex  *wgpu.Texture
	depthView *wgpu.TextureView

	constLayout    *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	constBuf       *wgpu.Buffer
	constGroup     *wgpu.BindGroup
	constSlots     int
	staging        []byte

	whiteTex       *texture
	defaultSampler *sampler

	pipelines  map[pipelineKey]*wgpu.RenderPipeline
	bindGroups map[bindKey]*wgpu.BindGroup

	surfaceLost bool
	log         Logger
}

var _ gfx.Device = (*Renderer)(nil)

// New creates the device for win and configures its surface at the current
// framebuffer size. Failures wrap gfx.ErrResourceCreation.
func New(win *glfw.Window, opts Options) (r *Renderer, err error) {
	if opts.MaxDrawsPerFrame <= 0 {
		opts.MaxDrawsPerFrame = DefaultOptions().MaxDrawsPerFrame
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	r = &Renderer{
		pipelines:  map[pipelineKey]*wgpu.RenderPipeline{},
		bindGroups: map[bindKey]*wgpu.BindGroup{},
		constSlots: opts.MaxDrawsPerFrame,
		log:        opts.Logger,
	}
	defer func() {
		if err != nil {
			r.Release()
			r = nil
		}
	}()

	r.surface = instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	if r.adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	}); err != nil {
		return r, fmt.Errorf("%w: adapter: %w", gfx.ErrResourceCreation, err)
	}
	if r.device, err = r.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Ember Device"}); err != nil {
		return r, fmt.Errorf("%w: device: %w", gfx.ErrResourceCreation, err)
	}
	r.queue = r.device.GetQueue()

	caps := r.surface.GetCapabilities(r.adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return r, fmt.Errorf("%w: surface has no usable format", gfx.ErrResourceCreation)
	}
	present := wgpu.PresentModeFifo
	if !opts.VSync {
		for _, m := range caps.PresentModes {
			if m == wgpu.PresentModeImmediate {
				present = m
			}
		}
	}
	w, h := win.GetFramebufferSize()
	r.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(w, 1)),
		Height:      uint32(max(h, 1)),
		PresentMode: present,
		AlphaMode:   caps.AlphaModes[0],
	}
	r.surface.Configure(r.adapter, r.device, r.config)

	if err = r.createDepthTarget(); err != nil {
		return r, err
	}
	if err = r.createLayouts(); err != nil {
		return r, err
	}
	if err = r.createDefaults(); err != nil {
		return r, err
	}

	r.log.Debugf("gpu: surface %dx%d format %v, %d constant slots", r.config.Width, r.config.Height, r.config.Format, r.constSlots)
	return r, nil
}

func (r *Renderer) createDepthTarget() error {
	if r.depthView != nil {
		r.depthView.Release()
		r.depthView = nil
	}
	if r.depthTex != nil {
		r.depthTex.Release()
		r.depthTex = nil
	}

	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "DepthTexture",
		Size: wgpu.Extent3D{
			Width:              r.config.Width,
			Height:             r.config.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("%w: depth texture: %w", gfx.ErrResourceCreation, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("%w: depth view: %w", gfx.ErrResourceCreation, err)
	}
	r.depthTex, r.depthView = tex, view
	return nil
}

// createLayouts builds the layout every pipeline shares: group 0 is the
// dynamic-offset constant block, group 1 a texture and its sampler.
func (r *Renderer) createLayouts() (err error) {
	r.constLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ConstantsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   gfx.MaxConstantsSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("%w: constants layout: %w", gfx.ErrResourceCreation, err)
	}

	r.textureLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "TextureBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: texture layout: %w", gfx.ErrResourceCreation, err)
	}

	r.pipelineLayout, err = r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "SharedPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.constLayout, r.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("%w: pipeline layout: %w", gfx.ErrResourceCreation, err)
	}

	size := uint64(r.constSlots) * gfx.MaxConstantsSize
	r.constBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ConstantsRing",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: constants ring: %w", gfx.ErrResourceCreation, err)
	}
	r.staging = make([]byte, size)

	r.constGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ConstantsBG",
		Layout: r.constLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  r.constBuf,
			Offset:  0,
			Size:    gfx.MaxConstantsSize,
		}},
	})
	if err != nil {
		return fmt.Errorf("%w: constants bind group: %w", gfx.ErrResourceCreation, err)
	}
	return nil
}

// createDefaults makes the 1x1 white texture and linear sampler bound when a
// draw has none.
func (r *Renderer) createDefaults() error {
	white, err := r.createTexture("WhiteTexture", 1, 1, []byte{255, 255, 255, 255})
	if err != nil {
		return err
	}
	r.whiteTex = white

	smp, err := r.CreateSampler(gfx.SamplerDesc{Address: gfx.AddressClamp})
	if err != nil {
		return err
	}
	r.defaultSampler = smp.(*sampler)
	return nil
}

// Resize reconfigures the surface and depth target. Zero sizes (minimised
// window) are ignored.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if uint32(width) == r.config.Width && uint32(height) == r.config.Height && !r.surfaceLost {
		return nil
	}
	r.config.Width = uint32(width)
	r.config.Height = uint32(height)
	r.surface.Configure(r.adapter, r.device, r.config)
	r.surfaceLost = false
	r.log.Debugf("gpu: surface resized to %dx%d", width, height)
	return r.createDepthTarget()
}

func (r *Renderer) Size() (int, int) {
	return int(r.config.Width), int(r.config.Height)
}

func (r *Renderer) Release() {
	for k, bg := range r.bindGroups {
		bg.Release()
		delete(r.bindGroups, k)
	}
	for k, p := range r.pipelines {
		p.Release()
		delete(r.pipelines, k)
	}
	if r.defaultSampler != nil {
		r.defaultSampler.Release()
	}
	if r.whiteTex != nil {
		r.whiteTex.Release()
	}
	release := []interface{ Release() }{}
	if r.constGroup != nil {
		release = append(release, r.constGroup)
	}
	if r.constBuf != nil {
		release = append(release, r.constBuf)
	}
	if r.pipelineLayout != nil {
		release = append(release, r.pipelineLayout)
	}
	if r.textureLayout != nil {
		release = append(release, r.textureLayout)
	}
	if r.constLayout != nil {
		release = append(release, r.constLayout)
	}
	if r.depthView != nil {
		release = append(release, r.depthView)
	}
	if r.depthTex != nil {
		release = append(release, r.depthTex)
	}
	if r.queue != nil {
		release = append(release, r.queue)
	}
	if r.device != nil {
		release = append(release, r.device)
	}
	if r.adapter != nil {
		release = append(release, r.adapter)
	}
	if r.surface != nil {
		release = append(release, r.surface)
	}
	for _, x := range release {
		x.Release()
	}
	*r = Renderer{log: r.log}
}
