package particle

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// ErrInvalidConfig is returned when an emitter configuration is rejected.
var ErrInvalidConfig = errors.New("particle: invalid emitter config")

// Config is the immutable emitter configuration.
type Config struct {
	MaxParticles  int        `toml:"max_particles"`
	SpawnRate     float32    `toml:"spawn_rate"` // particles per second
	Lifetime      float32    `toml:"lifetime"`   // seconds
	StartSize     float32    `toml:"start_size"`
	EndSize       float32    `toml:"end_size"`
	StartColor    mgl32.Vec4 `toml:"start_color"`
	EndColor      mgl32.Vec4 `toml:"end_color"`
	StartVelocity mgl32.Vec3 `toml:"start_velocity"`
	StartPosition mgl32.Vec3 `toml:"start_position"`
	Acceleration  mgl32.Vec3 `toml:"acceleration"`
}

// Validate checks the configuration including the capacity rule
// RequiredCapacity() <= MaxParticles.
func (c Config) Validate() error {
	return c.validate(true)
}

// ValidateWith checks the configuration under the given options; with
// AllowOverwrite the capacity rule is skipped.
func (c Config) ValidateWith(opts ...Option) error {
	return c.validate(!buildOptions(opts).allowOverwrite)
}

func (c Config) validate(capacity bool) error {
	if c.MaxParticles <= 0 {
		return fmt.Errorf("%w: max_particles must be positive, got %d", ErrInvalidConfig, c.MaxParticles)
	}
	if !finite(c.SpawnRate) || c.SpawnRate < 0 {
		return fmt.Errorf("%w: spawn_rate must be a finite non-negative number, got %v", ErrInvalidConfig, c.SpawnRate)
	}
	if !finite(c.Lifetime) || c.Lifetime <= 0 {
		return fmt.Errorf("%w: lifetime must be a finite positive number, got %v", ErrInvalidConfig, c.Lifetime)
	}
	if !finite(c.StartSize) || !finite(c.EndSize) || c.StartSize < 0 || c.EndSize < 0 {
		return fmt.Errorf("%w: sizes must be finite and non-negative, got %v..%v", ErrInvalidConfig, c.StartSize, c.EndSize)
	}
	for _, v := range [][]float32{c.StartColor[:], c.EndColor[:], c.StartVelocity[:], c.StartPosition[:], c.Acceleration[:]} {
		for _, f := range v {
			if !finite(f) {
				return fmt.Errorf("%w: kinematics and colors must be finite", ErrInvalidConfig)
			}
		}
	}
	if capacity {
		if need := c.RequiredCapacity(); need > c.MaxParticles {
			return fmt.Errorf("%w: spawn_rate*lifetime = %.2f needs max_particles >= %d, got %d",
				ErrInvalidConfig, float64(c.SpawnRate)*float64(c.Lifetime), need, c.MaxParticles)
		}
	}
	return nil
}

// SteadyStateCount is the number of particles alive once the emitter has run
// for at least one lifetime.
func (c Config) SteadyStateCount() int {
	return int(math.Floor(float64(c.SpawnRate) * float64(c.Lifetime)))
}

// RequiredCapacity is the most particles alive at once when frames are evenly
// spaced. Liveness includes Age == Lifetime, so a particle spawned exactly one
// lifetime ago is still counted alongside the one spawned this frame.
func (c Config) RequiredCapacity() int {
	return c.SteadyStateCount() + 1
}

// SizeAt returns the billboard size at normalized age t in [0,1].
func (c Config) SizeAt(t float32) float32 {
	return lerp(c.StartSize, c.EndSize, t)
}

// ColorAt returns the RGBA color at normalized age t in [0,1].
func (c Config) ColorAt(t float32) mgl32.Vec4 {
	return mgl32.Vec4{
		lerp(c.StartColor[0], c.EndColor[0], t),
		lerp(c.StartColor[1], c.EndColor[1], t),
		lerp(c.StartColor[2], c.EndColor[2], t),
		lerp(c.StartColor[3], c.EndColor[3], t),
	}
}

// lerp is exact at both ends: lerp(a,b,0)==a and lerp(a,b,1)==b.
func lerp[T constraints.Float](a, b, t T) T {
	return a*(1-t) + b*t
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
