package ember

import (
	"errors"
	"testing"

	"github.com/gekko3d/ember/render/core"
	"github.com/gekko3d/ember/render/gfx"
	"github.com/gekko3d/ember/render/gfx/gfxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererModule_HeadlessInstallsNothing(t *testing.T) {
	app := headlessApp(t, DefaultConfig(), nil)
	assert.Nil(t, Resource[RenderState](app))
	assert.Nil(t, Resource[Graphics](app))
	assert.Equal(t, 5, app.RunFrames(5))
}

func TestDrawFrame_EntitiesThenParticles(t *testing.T) {
	rec := gfxtest.NewRecorder()
	app := headlessApp(t, DefaultConfig(), rec)
	app.RunFrames(60)

	scene := Resource[Scene](app)
	p := Resource[Particles](app)
	cam := Resource[core.Camera](app)
	require.NoError(t, DrawFrame(rec, scene, p, cam))

	require.Len(t, rec.Draws, 4)
	for _, d := range rec.Draws[:3] {
		assert.Equal(t, gfx.BlendOpaque, d.Blend)
		assert.Equal(t, gfx.DepthDefault, d.Depth)
	}

	particles := rec.LastDraw()
	assert.Equal(t, gfx.BlendAdditive, particles.Blend)
	assert.Equal(t, gfx.DepthReadOnly, particles.Depth)
	assert.Equal(t, "ParticleVS", particles.VS.Name())
	assert.EqualValues(t, p.Pool.LiveCount()*6, particles.IndexCount)
	assert.Equal(t, 1, rec.Writes, "one vertex upload per frame")

	assert.Equal(t, gfx.BlendOpaque, rec.BlendState())
	assert.Equal(t, gfx.DepthDefault, rec.DepthState())
}

func TestDrawFrame_PropagatesDrawErrors(t *testing.T) {
	rec := gfxtest.NewRecorder()
	app := headlessApp(t, DefaultConfig(), rec)
	rec.FailDraw = errors.New("device lost")

	err := DrawFrame(rec, Resource[Scene](app), Resource[Particles](app), Resource[core.Camera](app))
	assert.ErrorIs(t, err, rec.FailDraw)
}
