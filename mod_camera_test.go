package ember

import (
	"testing"

	"github.com/gekko3d/ember/render/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_SetTracksEdges(t *testing.T) {
	var in Input
	in.Set(KeyW, true)
	assert.True(t, in.Pressed[KeyW])
	assert.True(t, in.JustPressed[KeyW])

	in.Set(KeyW, true)
	assert.False(t, in.JustPressed[KeyW])

	in.Set(KeyW, false)
	assert.False(t, in.Pressed[KeyW])
	assert.True(t, in.JustReleased[KeyW])
}

func TestInput_DragNeedsHeldLeftButton(t *testing.T) {
	var in Input
	in.MoveCursor(100, 100)
	assert.Zero(t, in.MouseDeltaX, "first position has no delta")

	in.MoveCursor(110, 95)
	_, _, ok := in.Drag()
	assert.False(t, ok)

	in.Set(MouseButtonLeft, true)
	_, _, ok = in.Drag()
	assert.False(t, ok, "press frame does not drag")

	in.Set(MouseButtonLeft, true)
	in.MoveCursor(120, 90)
	dx, dy, ok := in.Drag()
	require.True(t, ok)
	assert.Equal(t, 10.0, dx)
	assert.Equal(t, -5.0, dy)
}

func TestCameraModule_UsesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.Position = mgl32.Vec3{1, 2, 3}
	cfg.Camera.Yaw = 30
	cfg.Camera.Speed = 2
	cfg.Window.Width, cfg.Window.Height = 800, 400

	app := NewAppBuilder().UseModule(ConfigModule{Config: &cfg}, TimeModule{Step: testStep}, InputModule{}, CameraModule{}).Build()
	cam := Resource[core.Camera](app)
	require.NotNil(t, cam)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, cam.Position)
	assert.EqualValues(t, 30, cam.Yaw)
	assert.EqualValues(t, 2, cam.Speed)
	assert.EqualValues(t, 2, cam.Aspect)
}

func TestFlyCamera_MovesAndRotates(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{Step: testStep}, InputModule{}, CameraModule{}).Build()
	cam := Resource[core.Camera](app)
	in := Resource[Input](app)
	start := cam.Position

	in.Pressed[KeyW] = true
	app.RunFrames(1)
	moved := cam.Position.Sub(start)
	assert.InDelta(t, -cam.Speed*float32(testStep.Seconds()), moved[2], 1e-5)
	assert.InDelta(t, 0, moved[0], 1e-6)

	in.Pressed[KeyW] = false
	in.Pressed[KeySpace] = true
	before := cam.Position
	app.RunFrames(1)
	assert.Greater(t, cam.Position[1], before[1])
	in.Pressed[KeySpace] = false

	in.Set(MouseButtonLeft, true)
	in.Set(MouseButtonLeft, true)
	in.MouseDeltaX, in.MouseDeltaY = 10, 0
	app.RunFrames(1)
	assert.InDelta(t, 10*cam.Sensitivity, cam.Yaw, 1e-5)
}

func TestEscapeQuits(t *testing.T) {
	app := NewAppBuilder().UseModule(InputModule{}).Build()
	Resource[Input](app).Pressed[KeyEscape] = true

	assert.Equal(t, 1, app.RunFrames(5))
	assert.True(t, app.Quitting())
}
