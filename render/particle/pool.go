package particle

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Particle is one pool slot. Position is not integrated; it is evaluated from
// the spawn kinematics and the age.
type Particle struct {
	Age           float32
	StartPosition mgl32.Vec3
	StartVelocity mgl32.Vec3
	Acceleration  mgl32.Vec3
}

// Position returns start + v*age + 0.5*a*age².
func (p Particle) Position() mgl32.Vec3 {
	t := p.Age
	return p.StartPosition.
		Add(p.StartVelocity.Mul(t)).
		Add(p.Acceleration.Mul(0.5 * t * t))
}

// NormalizedAge maps the age onto [0,1] of the given lifetime.
func (p Particle) NormalizedAge(lifetime float32) float32 {
	t := p.Age / lifetime
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

type Stats struct {
	Spawned    uint64
	Expired    uint64
	Overwrites uint64
}

// Pool is a fixed-capacity ring of particles ordered by spawn time. Spawning
// writes at firstDead and expiry advances firstAlive, so the live particles
// always form the ring segment [firstAlive, firstAlive+live).
type Pool struct {
	cfg       Config
	particles []Particle

	firstAlive int
	firstDead  int
	live       int

	spawnAcc float32
	stats    Stats

	allowOverwrite bool
	log            Logger
	warnedFull     bool
}

// NewPool validates cfg and allocates the particle array once.
func NewPool(cfg Config, opts ...Option) (*Pool, error) {
	o := buildOptions(opts)
	if err := cfg.validate(!o.allowOverwrite); err != nil {
		return nil, err
	}
	return &Pool{
		cfg:            cfg,
		particles:      make([]Particle, cfg.MaxParticles),
		allowOverwrite: o.allowOverwrite,
		log:            o.log,
	}, nil
}

// Update advances the simulation by dt seconds: ages every live particle,
// expires those older than the lifetime and spawns at the configured rate.
func (p *Pool) Update(dt float32) {
	if dt < 0 || !finite(dt) {
		dt = 0
	}

	p.forEachIndex(func(i int) bool {
		p.particles[i].Age += dt
		return true
	})

	for p.live > 0 && p.particles[p.firstAlive].Age > p.cfg.Lifetime {
		p.firstAlive = (p.firstAlive + 1) % len(p.particles)
		p.live--
		p.stats.Expired++
	}

	p.spawnAcc += p.cfg.SpawnRate * dt
	for p.spawnAcc >= 1 {
		p.spawn()
		p.spawnAcc -= 1
	}
}

func (p *Pool) spawn() {
	if p.live == len(p.particles) {
		p.recycleOldest()
	}

	p.particles[p.firstDead] = Particle{
		Age:           0,
		StartPosition: p.cfg.StartPosition,
		StartVelocity: p.cfg.StartVelocity,
		Acceleration:  p.cfg.Acceleration,
	}
	p.firstDead = (p.firstDead + 1) % len(p.particles)
	p.live++
	p.stats.Spawned++
}

// recycleOldest frees the oldest slot of a full ring. A particle sitting
// exactly on its lifetime counts as expired; anything younger is an overwrite,
// reachable with AllowOverwrite or when uneven frame times lump a burst of
// spawns into one update.
func (p *Pool) recycleOldest() {
	oldest := p.particles[p.firstAlive].Age
	p.firstAlive = (p.firstAlive + 1) % len(p.particles)
	p.live--
	if oldest >= p.cfg.Lifetime {
		p.stats.Expired++
		return
	}
	p.stats.Overwrites++
	if !p.allowOverwrite && !p.warnedFull {
		p.warnedFull = true
		p.log.Warnf("particle pool full (%d); recycling live particles, check spawn_rate*lifetime", len(p.particles))
	}
}

func (p *Pool) forEachIndex(fn func(i int) bool) {
	n := len(p.particles)
	for k := 0; k < p.live; k++ {
		if !fn((p.firstAlive + k) % n) {
			return
		}
	}
}

// ForEachAlive calls fn for each live particle from oldest to newest until fn
// returns false.
func (p *Pool) ForEachAlive(fn func(Particle) bool) {
	p.forEachIndex(func(i int) bool {
		pt := p.particles[i]
		if pt.Age > p.cfg.Lifetime {
			return true
		}
		return fn(pt)
	})
}

// Reset kills every particle and clears the spawn accumulator.
func (p *Pool) Reset() {
	p.firstAlive, p.firstDead, p.live = 0, 0, 0
	p.spawnAcc = 0
	p.warnedFull = false
}

func (p *Pool) LiveCount() int { return p.live }
func (p *Pool) Capacity() int  { return len(p.particles) }
func (p *Pool) Config() Config { return p.cfg }
func (p *Pool) Stats() Stats   { return p.stats }
