package gfx_test

import (
	"testing"

	"github.com/gekko3d/ember/render/gfx"
	"github.com/gekko3d/ember/render/gfx/gfxtest"
	"github.com/stretchr/testify/assert"
)

func TestPushState_RestoresPrevious(t *testing.T) {
	rec := gfxtest.NewRecorder()
	rec.SetBlendState(gfx.BlendAlpha)

	restore := gfx.PushState(rec, gfx.BlendAdditive, gfx.DepthReadOnly)
	assert.Equal(t, gfx.BlendAdditive, rec.BlendState())
	assert.Equal(t, gfx.DepthReadOnly, rec.DepthState())

	restore()
	assert.Equal(t, gfx.BlendAlpha, rec.BlendState())
	assert.Equal(t, gfx.DepthDefault, rec.DepthState())
}

func TestPushState_RestoresOnPanic(t *testing.T) {
	rec := gfxtest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		restore := gfx.PushState(rec, gfx.BlendAdditive, gfx.DepthReadOnly)
		defer restore()
		panic("draw blew up")
	}()

	assert.Equal(t, gfx.BlendOpaque, rec.BlendState())
	assert.Equal(t, gfx.DepthDefault, rec.DepthState())
}

func TestBlendAdditive_IsOneOne(t *testing.T) {
	assert.True(t, gfx.BlendAdditive.Enabled)
	assert.Equal(t, gfx.BlendOne, gfx.BlendAdditive.Color.Src)
	assert.Equal(t, gfx.BlendOne, gfx.BlendAdditive.Color.Dst)
	assert.Equal(t, gfx.BlendOne, gfx.BlendAdditive.Alpha.Src)
	assert.Equal(t, gfx.BlendOne, gfx.BlendAdditive.Alpha.Dst)
	assert.False(t, gfx.DepthReadOnly.WriteEnabled)
	assert.True(t, gfx.DepthReadOnly.TestEnabled)
}

func TestBytes(t *testing.T) {
	assert.Nil(t, gfx.Bytes([]uint32(nil)))
	b := gfx.Bytes([]uint32{1, 2, 3})
	assert.Len(t, b, 12)

	v := struct{ A, B float32 }{1, 2}
	assert.Len(t, gfx.StructBytes(&v), 8)
}
