package ember

import (
	"github.com/gekko3d/ember/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraModule adds the *core.Camera resource, placed from [camera], and flies
// it with WASD, Space/X and a left-button mouse drag.
type CameraModule struct{}

func (m CameraModule) Install(app *App, cmd *Commands) {
	cfg := DefaultConfig().Camera
	width, height := DefaultConfig().Window.Width, DefaultConfig().Window.Height
	if c := Resource[Config](app); c != nil {
		cfg = c.Camera
		width, height = c.Window.Width, c.Window.Height
	}
	if ws := Resource[WindowState](app); ws != nil {
		width, height = ws.Width, ws.Height
	}

	cam := core.NewCamera(cfg.Position, width, height)
	cam.Yaw, cam.Pitch = cfg.Yaw, cfg.Pitch
	if cfg.Speed > 0 {
		cam.Speed = cfg.Speed
	}
	if cfg.Sensitivity > 0 {
		cam.Sensitivity = cfg.Sensitivity
	}
	cmd.AddResources(cam)
	cmd.UseSystem(System(flyCameraSystem).InStage(Update))
}

func flyCameraSystem(input *Input, cam *core.Camera, t *Time) {
	if dx, dy, ok := input.Drag(); ok {
		cam.Rotate(float32(dx), float32(dy))
	}

	var move mgl32.Vec3
	if input.Pressed[KeyW] {
		move[2] += 1
	}
	if input.Pressed[KeyS] {
		move[2] -= 1
	}
	if input.Pressed[KeyA] {
		move[0] -= 1
	}
	if input.Pressed[KeyD] {
		move[0] += 1
	}
	if input.Pressed[KeySpace] {
		move[1] += 1
	}
	if input.Pressed[KeyX] {
		move[1] -= 1
	}
	cam.Move(move, t.DtSeconds())
}
