package particle

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/gekko3d/ember/render/gfx"
	"github.com/gekko3d/ember/render/gfx/gfxtest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCamera struct {
	view, proj mgl32.Mat4
}

func (c fixedCamera) View() mgl32.Mat4       { return c.view }
func (c fixedCamera) Projection() mgl32.Mat4 { return c.proj }

func lookAtCamera(eye, target mgl32.Vec3) fixedCamera {
	return fixedCamera{
		view: mgl32.LookAtV(eye, target, mgl32.Vec3{0, 1, 0}),
		proj: mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100),
	}
}

func newTestEmitter(t *testing.T, rec *gfxtest.Recorder, cfg Config) *Emitter {
	t.Helper()
	vs, _ := rec.CreateShader(gfx.ShaderDesc{Name: "ParticleVS", Stage: gfx.StageVertex, Layout: VertexLayout()})
	ps, _ := rec.CreateShader(gfx.ShaderDesc{Name: "ParticlePS", Stage: gfx.StagePixel})
	tex := &gfxtest.Texture{Label: "spark", W: 8, H: 8}
	smp, _ := rec.CreateSampler(gfx.SamplerDesc{})

	e, err := New(cfg, rec, vs, ps, tex, smp)
	require.NoError(t, err)
	return e
}

func TestNew_AllocatesBuffersForCapacity(t *testing.T) {
	rec := gfxtest.NewRecorder()
	e := newTestEmitter(t, rec, demoConfig())

	vb := rec.BufferByLabel("ParticleVertexBuffer")
	ib := rec.BufferByLabel("ParticleIndexBuffer")
	require.NotNil(t, vb)
	require.NotNil(t, ib)

	assert.True(t, vb.Dynamic)
	assert.EqualValues(t, 1000*4*unsafe.Sizeof(Vertex{}), vb.Size())
	assert.EqualValues(t, 1000*6*4, ib.Size())

	e.Release()
	assert.True(t, vb.Released)
	assert.True(t, ib.Released)
}

func TestNew_ResourceFailureReleasesPartialState(t *testing.T) {
	rec := gfxtest.NewRecorder()
	rec.FailBufferLabel = "ParticleIndexBuffer"
	vs, _ := rec.CreateShader(gfx.ShaderDesc{Name: "vs"})
	ps, _ := rec.CreateShader(gfx.ShaderDesc{Name: "ps"})

	_, err := New(demoConfig(), rec, vs, ps, nil, nil)
	require.ErrorIs(t, err, gfx.ErrResourceCreation)

	vb := rec.BufferByLabel("ParticleVertexBuffer")
	require.NotNil(t, vb)
	assert.True(t, vb.Released)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	rec := gfxtest.NewRecorder()
	vs, _ := rec.CreateShader(gfx.ShaderDesc{Name: "vs"})
	ps, _ := rec.CreateShader(gfx.ShaderDesc{Name: "ps"})
	cfg := demoConfig()
	cfg.MaxParticles = 100

	_, err := New(cfg, rec, vs, ps, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Empty(t, rec.Buffers)
}

func TestDraw_ZeroLiveParticles(t *testing.T) {
	rec := gfxtest.NewRecorder()
	e := newTestEmitter(t, rec, demoConfig())
	cam := lookAtCamera(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{})

	require.NoError(t, e.Draw(rec, cam))

	require.Len(t, rec.Draws, 1)
	assert.Zero(t, rec.LastDraw().IndexCount)
	assert.Zero(t, rec.Writes)
}

func TestDraw_UsesParticleStateAndRestores(t *testing.T) {
	rec := gfxtest.NewRecorder()
	e := newTestEmitter(t, rec, demoConfig())
	cam := lookAtCamera(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{})

	e.Update(0.5)
	require.Equal(t, 50, e.LiveCount())
	require.NoError(t, e.Draw(rec, cam))

	d := rec.LastDraw()
	assert.EqualValues(t, 50*6, d.IndexCount)
	assert.Equal(t, gfx.BlendAdditive, d.Blend)
	assert.Equal(t, gfx.DepthReadOnly, d.Depth)
	assert.Equal(t, "ParticleVS", d.VS.Name())
	assert.Equal(t, "ParticlePS", d.PS.Name())
	assert.Len(t, d.Constants, 64)

	assert.Equal(t, gfx.BlendOpaque, rec.BlendState())
	assert.Equal(t, gfx.DepthDefault, rec.DepthState())
}

func TestDraw_RestoresStateWhenDrawFails(t *testing.T) {
	rec := gfxtest.NewRecorder()
	e := newTestEmitter(t, rec, demoConfig())
	rec.FailDraw = errors.New("device lost")

	e.Update(0.1)
	err := e.Draw(rec, lookAtCamera(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{}))
	require.Error(t, err)

	assert.Equal(t, gfx.BlendOpaque, rec.BlendState())
	assert.Equal(t, gfx.DepthDefault, rec.DepthState())
}

func TestDraw_UploadOverwritesPreviousFrame(t *testing.T) {
	rec := gfxtest.NewRecorder()
	e := newTestEmitter(t, rec, demoConfig())
	cam := lookAtCamera(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{})

	e.Update(0.2)
	require.NoError(t, e.Draw(rec, cam))
	e.Update(0.2)
	require.NoError(t, e.Draw(rec, cam))

	assert.Equal(t, 2, rec.Writes)
	vb := rec.BufferByLabel("ParticleVertexBuffer")
	got := unsafe.Slice((*Vertex)(unsafe.Pointer(&vb.Data[0])), e.LiveCount()*4)
	want := BuildVertices(nil, e.Pool, cam.View())
	assert.Equal(t, want, got)
}

func TestBuildVertices_ExpiredNeverDrawn(t *testing.T) {
	cfg := demoConfig()
	cfg.SpawnRate = 10
	cfg.Lifetime = 1
	p, err := NewPool(cfg)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		p.Update(0.07)
	}
	require.Greater(t, p.LiveCount(), 2)

	// Leave a particle past its lifetime in the ring, as between aging and
	// the expiry sweep.
	p.particles[p.firstAlive].Age = cfg.Lifetime + 0.25

	var alive []Particle
	p.forEachIndex(func(i int) bool {
		if pt := p.particles[i]; pt.Age <= cfg.Lifetime {
			alive = append(alive, pt)
		}
		return true
	})
	require.Len(t, alive, p.LiveCount()-1)

	verts := BuildVertices(nil, p, mgl32.Ident4())
	require.Len(t, verts, len(alive)*4)
	for q, pt := range alive {
		quad := verts[q*4 : q*4+4]
		size := cfg.SizeAt(pt.Age / cfg.Lifetime)
		width := mgl32.Vec3(quad[1].Position).Sub(mgl32.Vec3(quad[0].Position)).Len()
		assert.InDelta(t, size, width, 1e-4)

		center := mgl32.Vec3(quad[0].Position).Add(mgl32.Vec3(quad[3].Position)).Mul(0.5)
		want := pt.Position()
		for k := 0; k < 3; k++ {
			assert.InDelta(t, want[k], center[k], 1e-4)
		}
	}

	// The next sweep removes it for good, and more zero steps change nothing.
	live := p.LiveCount()
	p.Update(0)
	assert.Equal(t, live-1, p.LiveCount())
	p.Update(0)
	assert.Equal(t, live-1, p.LiveCount())
}

func TestBuildVertices_NewbornQuad(t *testing.T) {
	cfg := demoConfig()
	cfg.SpawnRate = 1
	p, err := NewPool(cfg)
	require.NoError(t, err)
	p.Update(1)
	require.Equal(t, 1, p.LiveCount())

	verts := BuildVertices(nil, p, mgl32.Ident4())
	require.Len(t, verts, 4)

	half := cfg.StartSize / 2
	want := [][3]float32{
		{2 - half, half, 0},
		{2 + half, half, 0},
		{2 - half, -half, 0},
		{2 + half, -half, 0},
	}
	for i, v := range verts {
		assert.EqualValues(t, i, v.Corner)
		assert.Equal(t, quadUV[i], v.UV)
		assert.Equal(t, [4]float32(cfg.StartColor), v.Color)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, want[i][k], v.Position[k], 1e-6)
		}
	}
}

func TestBuildVertices_QuadFacesCamera(t *testing.T) {
	cfg := demoConfig()
	p, err := NewPool(cfg)
	require.NoError(t, err)
	p.Update(0.3)
	p.Update(0.4)

	eyes := []mgl32.Vec3{{0, 0, -5}, {7, 3, 2}, {-4, 9, -1}, {1, -6, 8}}
	for _, eye := range eyes {
		cam := lookAtCamera(eye, mgl32.Vec3{0, 1, 0})
		forward := mgl32.Vec3{0, 1, 0}.Sub(eye).Normalize()

		verts := BuildVertices(nil, p, cam.View())
		require.NotEmpty(t, verts)
		for q := 0; q+3 < len(verts); q += 4 {
			a := mgl32.Vec3(verts[q].Position)
			b := mgl32.Vec3(verts[q+1].Position)
			c := mgl32.Vec3(verts[q+2].Position)
			across := b.Sub(a)
			down := c.Sub(a)
			assert.InDelta(t, 0, across.Normalize().Dot(forward), 1e-4)
			assert.InDelta(t, 0, down.Normalize().Dot(forward), 1e-4)
			assert.InDelta(t, across.Len(), down.Len(), 1e-4)
		}
	}
}

func TestQuadIndices(t *testing.T) {
	idx := quadIndices(2)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3, 4, 5, 6, 6, 5, 7}, idx)
}

func TestVertexLayout(t *testing.T) {
	l := VertexLayout()
	assert.EqualValues(t, 40, l.Stride)
	require.Len(t, l.Attributes, 4)
	assert.EqualValues(t, 12, l.Attributes[1].Offset)
	assert.EqualValues(t, 32, l.Attributes[3].Offset)
}
