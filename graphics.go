package ember

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gekko3d/ember/render/core"
	"github.com/gekko3d/ember/render/gfx"
	"github.com/gekko3d/ember/render/particle"
	"github.com/gekko3d/ember/render/shaders"
	"github.com/gekko3d/ember/render/texture"
)

// Graphics holds the device and the objects shared by the scene and the
// particle emitter: compiled shaders, the sampler and named textures.
type Graphics struct {
	Device gfx.Device

	MeshVS, MeshPS         gfx.Shader
	ParticleVS, ParticlePS gfx.Shader
	Sampler                gfx.Sampler

	textures map[string]gfx.Texture
	owned    []interface{ Release() }
}

// NewGraphics compiles the built-in shaders and creates the anisotropic wrap
// sampler on dev.
func NewGraphics(dev gfx.Device) (_ *Graphics, err error) {
	if dev == nil {
		return nil, errors.New("graphics: nil device")
	}
	g := &Graphics{Device: dev, textures: make(map[string]gfx.Texture)}
	defer func() {
		if err != nil {
			g.Release()
		}
	}()

	shader := func(name string, stage gfx.ShaderStage, src string, layout *gfx.VertexLayout) (gfx.Shader, error) {
		entry := shaders.VertexEntry
		if stage == gfx.StagePixel {
			entry = shaders.FragmentEntry
		}
		s, err := dev.CreateShader(gfx.ShaderDesc{Name: name, Stage: stage, Source: src, EntryPoint: entry, Layout: layout})
		if err != nil {
			return nil, fmt.Errorf("%w: shader %s: %w", gfx.ErrResourceCreation, name, err)
		}
		g.owned = append(g.owned, s)
		return s, nil
	}

	if g.MeshVS, err = shader("MeshVS", gfx.StageVertex, shaders.MeshWGSL, core.MeshVertexLayout()); err != nil {
		return nil, err
	}
	if g.MeshPS, err = shader("MeshPS", gfx.StagePixel, shaders.MeshWGSL, nil); err != nil {
		return nil, err
	}
	if g.ParticleVS, err = shader("ParticleVS", gfx.StageVertex, shaders.ParticleWGSL, particle.VertexLayout()); err != nil {
		return nil, err
	}
	if g.ParticlePS, err = shader("ParticlePS", gfx.StagePixel, shaders.ParticleWGSL, nil); err != nil {
		return nil, err
	}

	smp, err := dev.CreateSampler(gfx.SamplerDesc{Address: gfx.AddressWrap, Filter: gfx.FilterLinear, MaxAnisotropy: 16})
	if err != nil {
		return nil, fmt.Errorf("%w: sampler: %w", gfx.ErrResourceCreation, err)
	}
	g.Sampler = smp
	g.owned = append(g.owned, smp)
	return g, nil
}

// LoadTextures creates one texture per entry. A file that cannot be read is
// replaced by the checker pattern and reported through log.
func (g *Graphics) LoadTextures(entries []TextureConfig, log Logger) error {
	for _, e := range entries {
		if _, ok := g.textures[e.Name]; ok {
			continue
		}
		img := builtinTexture(e.Name)
		if e.Path != "" {
			loaded, err := texture.Load(e.Path)
			if err != nil {
				log.Warnf("texture %q: %v, using checker", e.Name, err)
				img = builtinTexture(TextureChecker)
			} else {
				img = loaded
			}
		}
		tex, err := g.Device.CreateTexture(e.Name, img)
		if err != nil {
			return fmt.Errorf("%w: texture %q: %w", gfx.ErrResourceCreation, e.Name, err)
		}
		g.textures[e.Name] = tex
		g.owned = append(g.owned, tex)
		log.Debugf("texture %q: %dx%d", e.Name, tex.Width(), tex.Height())
	}
	return nil
}

func builtinTexture(name string) *image.RGBA {
	if name == TextureSoftDot {
		return texture.SoftDot(64)
	}
	return texture.Checker(256, 8, color.RGBA{R: 235, G: 235, B: 235, A: 255}, color.RGBA{R: 90, G: 90, B: 110, A: 255})
}

// Texture returns the named texture, or nil which binds the backend's white
// fallback.
func (g *Graphics) Texture(name string) gfx.Texture {
	return g.textures[name]
}

// EmitterTexture resolves the particle texture. An empty name selects the soft
// dot, which is created on first use when [[textures]] does not declare it.
func (g *Graphics) EmitterTexture(name string, log Logger) (gfx.Texture, error) {
	if name == "" {
		name = TextureSoftDot
	}
	if tex := g.Texture(name); tex != nil || name != TextureSoftDot {
		return tex, nil
	}
	if err := g.LoadTextures([]TextureConfig{{Name: TextureSoftDot}}, log); err != nil {
		return nil, err
	}
	return g.Texture(TextureSoftDot), nil
}

// Release frees everything created through NewGraphics and LoadTextures.
func (g *Graphics) Release() {
	for i := len(g.owned) - 1; i >= 0; i-- {
		g.owned[i].Release()
	}
	g.owned = nil
	clear(g.textures)
}

// GraphicsModule provides Graphics on an existing device. RendererModule
// installs it on the window's WebGPU device; tests pass a gfxtest.Recorder.
type GraphicsModule struct {
	Device gfx.Device
}

func (m GraphicsModule) Install(app *App, cmd *Commands) {
	installGraphics(app, cmd, m.Device)
}

func installGraphics(app *App, cmd *Commands, dev gfx.Device) *Graphics {
	g, err := NewGraphics(dev)
	if err != nil {
		panic(err)
	}
	textures := DefaultConfig().Textures
	if cfg := Resource[Config](app); cfg != nil {
		textures = cfg.Textures
	}
	if err := g.LoadTextures(textures, app.Logger()); err != nil {
		g.Release()
		panic(err)
	}
	cmd.AddResources(g)
	cmd.OnShutdown(g.Release)
	return g
}
