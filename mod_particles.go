package ember

import (
	"github.com/gekko3d/ember/render/core"
	"github.com/gekko3d/ember/render/gfx"
	"github.com/gekko3d/ember/render/particle"
)

// Particles owns the demo emitter. Without Graphics only the Pool is
// simulated and nothing is drawn.
type Particles struct {
	Pool    *particle.Pool
	Emitter *particle.Emitter

	cfg      EmitterConfig
	graphics *Graphics
	log      Logger
}

func newParticles(cfg EmitterConfig, g *Graphics, log Logger) (*Particles, error) {
	p := &Particles{graphics: g, log: log}
	if err := p.rebuild(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// rebuild replaces the pool (and emitter) for cfg. On failure the current one
// is kept.
func (p *Particles) rebuild(cfg EmitterConfig) error {
	opts := append(cfg.Options(), particle.WithLogger(p.log))

	if p.graphics == nil {
		pool, err := particle.NewPool(cfg.Config, opts...)
		if err != nil {
			return err
		}
		p.Release()
		p.Pool, p.cfg = pool, cfg
		return nil
	}

	g := p.graphics
	tex, err := g.EmitterTexture(cfg.Texture, p.log)
	if err != nil {
		return err
	}
	e, err := particle.New(cfg.Config, g.Device, g.ParticleVS, g.ParticlePS, tex, g.Sampler, opts...)
	if err != nil {
		return err
	}
	p.Release()
	p.Emitter, p.Pool, p.cfg = e, e.Pool, cfg
	return nil
}

func (p *Particles) Update(dt float32) {
	p.Pool.Update(dt)
}

// Draw issues the emitter's single draw. It is a no-op without Graphics.
func (p *Particles) Draw(ctx gfx.Context, cam *core.Camera) error {
	if p.Emitter == nil {
		return nil
	}
	return p.Emitter.Draw(ctx, cam)
}

func (p *Particles) Release() {
	if p.Emitter != nil {
		p.Emitter.Release()
		p.Emitter = nil
	}
	p.Pool = nil
}

// ParticlesModule simulates the emitter in Update and rebuilds it when a
// config reload changes the [emitter] section.
type ParticlesModule struct{}

func (m ParticlesModule) Install(app *App, cmd *Commands) {
	cfg := DefaultConfig().Emitter
	if c := Resource[Config](app); c != nil {
		cfg = c.Emitter
	}
	p, err := newParticles(cfg, Resource[Graphics](app), app.Logger())
	if err != nil {
		panic(err)
	}
	app.Logger().Infof("particles: capacity %d, steady state %d", cfg.MaxParticles, cfg.SteadyStateCount())
	cmd.AddResources(p)
	cmd.OnShutdown(p.Release)

	if Resource[ConfigEvents](app) != nil {
		cmd.UseSystem(System(reloadParticlesSystem).InStage(PreUpdate))
	}
	cmd.UseSystem(System(updateParticlesSystem).InStage(Update))
}

func updateParticlesSystem(p *Particles, t *Time) {
	p.Update(t.DtSeconds())
}

func reloadParticlesSystem(p *Particles, cfg *Config, events *ConfigEvents) {
	if !events.Reloaded || cfg.Emitter == p.cfg {
		return
	}
	if err := p.rebuild(cfg.Emitter); err != nil {
		p.log.Errorf("particles: keeping previous emitter: %v", err)
		return
	}
	p.log.Infof("particles: emitter rebuilt, capacity %d", cfg.Emitter.MaxParticles)
}
