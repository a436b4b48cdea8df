package ember

import (
	"errors"

	"github.com/gekko3d/ember/render/core"
	"github.com/gekko3d/ember/render/gfx"
	"github.com/gekko3d/ember/render/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// ClearColor is the cornflower blue behind the scene.
var ClearColor = mgl32.Vec4{0.4, 0.6, 0.75, 0}

// DrawFrame records the scene followed by the particles. The particle draw
// binds its own blend and depth state and restores the opaque pair after.
func DrawFrame(ctx gfx.Context, scene *Scene, particles *Particles, cam *core.Camera) error {
	if err := scene.Draw(ctx, cam); err != nil {
		return err
	}
	if err := particles.Draw(ctx, cam); err != nil {
		return err
	}
	gfx.ResetState(ctx)
	return nil
}

// RenderState is the WebGPU renderer bound to the window.
type RenderState struct {
	renderer *gpu.Renderer
	Clear    mgl32.Vec4
	Frames   uint64
	Skipped  uint64
}

// RendererModule creates the WebGPU device on the window and draws one frame
// per App frame in the Render stage. Without a window it installs nothing and
// the App runs headless.
type RendererModule struct {
	Options gpu.Options
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	ws := Resource[WindowState](app)
	if ws == nil {
		app.Logger().Infof("renderer: no window, running headless")
		return
	}

	opts := m.Options
	if opts.MaxDrawsPerFrame == 0 {
		opts = gpu.DefaultOptions()
		if cfg := Resource[Config](app); cfg != nil {
			opts.VSync = cfg.Window.VSync
		}
	}
	if opts.Logger == nil {
		opts.Logger = app.Logger()
	}

	r, err := gpu.New(ws.Window(), opts)
	if err != nil {
		panic(err)
	}
	cmd.AddResources(&RenderState{renderer: r, Clear: ClearColor})
	cmd.OnShutdown(r.Release)
	installGraphics(app, cmd, r)

	cmd.UseSystem(System(renderSystem).InStage(Render))
}

func renderSystem(cmd *Commands, rs *RenderState, ws *WindowState, cam *core.Camera, scene *Scene, particles *Particles) {
	if ws.Resized {
		if err := rs.renderer.Resize(ws.Width, ws.Height); err != nil {
			cmd.Logger().Errorf("renderer: resize: %v", err)
			cmd.Quit()
			return
		}
		cam.SetAspect(ws.Width, ws.Height)
	}
	if ws.Width == 0 || ws.Height == 0 {
		rs.Skipped++
		return
	}

	frame, err := rs.renderer.BeginFrame(rs.Clear)
	if errors.Is(err, gpu.ErrSurfaceLost) {
		cmd.Logger().Debugf("renderer: %v, skipping frame", err)
		rs.Skipped++
		return
	}
	if err != nil {
		cmd.Logger().Errorf("renderer: begin frame: %v", err)
		cmd.Quit()
		return
	}

	drawErr := DrawFrame(frame, scene, particles, cam)
	if err := frame.End(); err != nil {
		cmd.Logger().Errorf("renderer: end frame: %v", err)
		cmd.Quit()
		return
	}
	if drawErr != nil {
		cmd.Logger().Errorf("renderer: %v", drawErr)
		cmd.Quit()
		return
	}
	rs.Frames++
}
