package particle

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoConfig() Config {
	return Config{
		MaxParticles:  1000,
		SpawnRate:     100,
		Lifetime:      5,
		StartSize:     0.1,
		EndSize:       5.0,
		StartColor:    mgl32.Vec4{1, 0.1, 0.1, 0.2},
		EndColor:      mgl32.Vec4{1, 0.6, 0.1, 0},
		StartVelocity: mgl32.Vec3{-2, 2, 0},
		StartPosition: mgl32.Vec3{2, 0, 0},
		Acceleration:  mgl32.Vec3{0, -1, 0},
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, demoConfig().Validate())

	cases := map[string]func(c *Config){
		"zero capacity":     func(c *Config) { c.MaxParticles = 0 },
		"negative rate":     func(c *Config) { c.SpawnRate = -1 },
		"zero lifetime":     func(c *Config) { c.Lifetime = 0 },
		"nan lifetime":      func(c *Config) { c.Lifetime = float32(math.NaN()) },
		"negative size":     func(c *Config) { c.EndSize = -2 },
		"inf velocity":      func(c *Config) { c.StartVelocity[1] = float32(math.Inf(1)) },
		"capacity exceeded": func(c *Config) { c.SpawnRate = 300 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := demoConfig()
			mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewPool_AllowOverwriteSkipsCapacityRule(t *testing.T) {
	cfg := demoConfig()
	cfg.SpawnRate = 300

	_, err := NewPool(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	p, err := NewPool(cfg, AllowOverwrite())
	require.NoError(t, err)
	assert.Equal(t, 1000, p.Capacity())
}

func TestPool_SpawnCountTracksRate(t *testing.T) {
	cfg := demoConfig()
	cfg.Lifetime = 100
	cfg.MaxParticles = 100000
	cfg.SpawnRate = 37.3

	p, err := NewPool(cfg)
	require.NoError(t, err)

	steps := []float32{0.016, 0.033, 0.0, 0.1, 0.007, 0.25, 0.0166}
	var total float64
	for i := 0; i < 2000; i++ {
		dt := steps[i%len(steps)]
		p.Update(dt)
		total += float64(dt)

		expected := float64(cfg.SpawnRate) * total
		assert.InDelta(t, expected, float64(p.Stats().Spawned), 1.0, "step %d", i)
	}
}

func TestPool_SteadyStateScenario(t *testing.T) {
	p, err := NewPool(demoConfig())
	require.NoError(t, err)

	dt := float32(1.0 / 60.0)
	for i := 0; i < 300; i++ {
		p.Update(dt)
	}
	assert.InDelta(t, 500, p.LiveCount(), 2)

	// Keep running well past one lifetime: the count stays at rate*lifetime.
	for i := 0; i < 1200; i++ {
		p.Update(dt)
		require.LessOrEqual(t, p.LiveCount(), p.Capacity())
	}
	assert.InDelta(t, 500, p.LiveCount(), 2)
	assert.Zero(t, p.Stats().Overwrites)
}

type warnCounter struct{ warnings int }

func (w *warnCounter) Debugf(string, ...any) {}
func (w *warnCounter) Warnf(string, ...any)  { w.warnings++ }

func TestConfig_CapacityCountsLifetimeEndpoint(t *testing.T) {
	cfg := demoConfig()
	cfg.SpawnRate = 100
	cfg.Lifetime = 1
	assert.Equal(t, 101, cfg.RequiredCapacity())

	cfg.MaxParticles = 100
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.MaxParticles = 101
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 501, demoConfig().RequiredCapacity())
}

func TestPool_ExactCapacityNeverOverwrites(t *testing.T) {
	cases := map[string]struct {
		rate, lifetime, dt float32
	}{
		"half second frames":    {rate: 2, lifetime: 2, dt: 0.5},
		"quarter second frames": {rate: 4, lifetime: 1, dt: 0.25},
		"1/64 second frames":    {rate: 64, lifetime: 1, dt: 1.0 / 64},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := demoConfig()
			cfg.SpawnRate = tc.rate
			cfg.Lifetime = tc.lifetime
			cfg.MaxParticles = cfg.RequiredCapacity()
			require.NoError(t, cfg.Validate())

			warn := &warnCounter{}
			p, err := NewPool(cfg, WithLogger(warn))
			require.NoError(t, err)

			for i := 0; i < 1000; i++ {
				p.Update(tc.dt)
				require.LessOrEqual(t, p.LiveCount(), cfg.MaxParticles)
			}

			stats := p.Stats()
			assert.Equal(t, cfg.MaxParticles, p.LiveCount())
			assert.Zero(t, stats.Overwrites)
			assert.NotZero(t, stats.Expired)
			assert.EqualValues(t, stats.Spawned-stats.Expired, p.LiveCount())
			assert.Zero(t, warn.warnings)
		})
	}
}

func TestPool_FullRingReclaimsParticleAtLifetime(t *testing.T) {
	cfg := demoConfig()
	cfg.MaxParticles = 4
	cfg.SpawnRate = 2
	cfg.Lifetime = 2

	warn := &warnCounter{}
	p, err := NewPool(cfg, AllowOverwrite(), WithLogger(warn))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		p.Update(0.5)
	}
	// The oldest particle always sits at exactly the lifetime when the next
	// spawn needs its slot.
	assert.Equal(t, 4, p.LiveCount())
	assert.Zero(t, p.Stats().Overwrites)
	assert.EqualValues(t, 96, p.Stats().Expired)
	assert.Zero(t, warn.warnings)
}

func TestPool_AllowOverwriteRecyclesQuietly(t *testing.T) {
	cfg := demoConfig()
	cfg.MaxParticles = 10
	cfg.SpawnRate = 20
	cfg.Lifetime = 1

	warn := &warnCounter{}
	p, err := NewPool(cfg, WithLogger(warn))
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Nil(t, p)

	p, err = NewPool(cfg, AllowOverwrite(), WithLogger(warn))
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		p.Update(0.05)
		require.LessOrEqual(t, p.LiveCount(), cfg.MaxParticles)
	}
	assert.NotZero(t, p.Stats().Overwrites)
	assert.Zero(t, warn.warnings)
}

func TestPool_OverwriteRecyclesOldest(t *testing.T) {
	cfg := demoConfig()
	cfg.MaxParticles = 4
	cfg.SpawnRate = 10
	cfg.Lifetime = 10

	p, err := NewPool(cfg, AllowOverwrite())
	require.NoError(t, err)

	p.Update(1) // 10 spawns into 4 slots
	assert.Equal(t, 4, p.LiveCount())
	assert.EqualValues(t, 10, p.Stats().Spawned)
	assert.EqualValues(t, 6, p.Stats().Overwrites)
}

func TestPool_ExpiryIsIdempotentForZeroDelta(t *testing.T) {
	cfg := demoConfig()
	cfg.SpawnRate = 10
	cfg.Lifetime = 1

	p, err := NewPool(cfg)
	require.NoError(t, err)

	p.Update(0.5)
	p.Update(0.6)
	live := p.LiveCount()
	stats := p.Stats()

	for i := 0; i < 50; i++ {
		p.Update(0)
	}
	assert.Equal(t, live, p.LiveCount())
	assert.Equal(t, stats, p.Stats())

	p.ForEachAlive(func(pt Particle) bool {
		assert.LessOrEqual(t, pt.Age, cfg.Lifetime)
		return true
	})
}

func TestPool_ExpiresOldParticles(t *testing.T) {
	cfg := demoConfig()
	cfg.SpawnRate = 1
	cfg.Lifetime = 2

	p, err := NewPool(cfg)
	require.NoError(t, err)

	p.Update(1) // spawn #1 at age 0
	require.Equal(t, 1, p.LiveCount())

	p.Update(2) // #1 reaches age 2 == lifetime and stays alive; two more spawn
	assert.Equal(t, 3, p.LiveCount())

	p.Update(0.5) // #1 at 2.5 expires
	assert.Equal(t, 2, p.LiveCount())
	assert.EqualValues(t, 1, p.Stats().Expired)
}

func TestPool_NegativeDeltaIsIgnored(t *testing.T) {
	p, err := NewPool(demoConfig())
	require.NoError(t, err)

	p.Update(1)
	live := p.LiveCount()
	p.Update(-3)
	assert.Equal(t, live, p.LiveCount())
}

func TestPool_Reset(t *testing.T) {
	p, err := NewPool(demoConfig())
	require.NoError(t, err)

	p.Update(1.5)
	require.NotZero(t, p.LiveCount())
	p.Reset()
	assert.Zero(t, p.LiveCount())

	p.Update(0.015) // 1.5 accumulated from a cleared accumulator
	assert.Equal(t, 1, p.LiveCount())
}

func TestParticle_Position(t *testing.T) {
	cfg := demoConfig()
	pt := Particle{
		StartPosition: cfg.StartPosition,
		StartVelocity: cfg.StartVelocity,
		Acceleration:  cfg.Acceleration,
	}
	assert.Equal(t, cfg.StartPosition, pt.Position())

	pt.Age = cfg.Lifetime
	L := cfg.Lifetime
	want := mgl32.Vec3{
		2 + -2*L,
		0 + 2*L + 0.5*-1*L*L,
		0,
	}
	got := pt.Position()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-5)
	}
}

func TestConfig_InterpolationEndpoints(t *testing.T) {
	cfg := demoConfig()
	assert.Equal(t, cfg.StartSize, cfg.SizeAt(0))
	assert.Equal(t, cfg.EndSize, cfg.SizeAt(1))
	assert.Equal(t, cfg.StartColor, cfg.ColorAt(0))
	assert.Equal(t, cfg.EndColor, cfg.ColorAt(1))

	mid := cfg.ColorAt(0.5)
	assert.InDelta(t, 0.35, mid[1], 1e-6)
	assert.InDelta(t, 0.1, mid[3], 1e-6)
}

func TestConfig_SteadyStateCount(t *testing.T) {
	assert.Equal(t, 500, demoConfig().SteadyStateCount())
}

func TestConfig_ValidateWithAllowOverwrite(t *testing.T) {
	cfg := demoConfig()
	cfg.SpawnRate = 300
	assert.ErrorIs(t, cfg.ValidateWith(), ErrInvalidConfig)
	assert.NoError(t, cfg.ValidateWith(AllowOverwrite()))

	cfg.Lifetime = -1
	assert.ErrorIs(t, cfg.ValidateWith(AllowOverwrite()), ErrInvalidConfig)
}
