package ember

import (
	"fmt"
	"reflect"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the shared GLFW window. Width and Height are the framebuffer
// size in pixels.
type WindowState struct {
	windowGlfw *glfw.Window
	title      string

	Width, Height int
	// Resized is set for the frame in which the framebuffer size changed.
	Resized bool

	frames     int
	statsSince time.Time
}

func (s *WindowState) Window() *glfw.Window { return s.windowGlfw }

// PlatformWindowModule creates the window and polls its events every frame.
// Install is idempotent: an existing WindowState resource is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	t := reflect.TypeOf((*WindowState)(nil)).Elem()
	if _, ok := app.resources[t]; ok {
		return
	}

	width, height, title := m.Width, m.Height, m.Title
	if cfg := Resource[Config](app); cfg != nil {
		if width <= 0 {
			width = cfg.Window.Width
		}
		if height <= 0 {
			height = cfg.Window.Height
		}
		if title == "" {
			title = cfg.Window.Title
		}
	}

	ws, err := createWindowState(width, height, title)
	if err != nil {
		panic(err)
	}
	app.Logger().Infof("window: %dx%d framebuffer %dx%d", width, height, ws.Width, ws.Height)
	cmd.AddResources(ws)
	cmd.OnShutdown(func() {
		ws.windowGlfw.Destroy()
		glfw.Terminate()
	})
	cmd.UseSystem(System(windowSystem).InStage(PreUpdate))
}

func createWindowState(width, height int, title string) (*WindowState, error) {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Ember"
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw window: %w", err)
	}

	fbw, fbh := win.GetFramebufferSize()
	return &WindowState{
		windowGlfw: win,
		title:      title,
		Width:      fbw,
		Height:     fbh,
		statsSince: time.Now(),
	}, nil
}

func windowSystem(cmd *Commands, s *WindowState, t *Time) {
	glfw.PollEvents()
	if s.windowGlfw.ShouldClose() {
		cmd.Quit()
	}

	w, h := s.windowGlfw.GetFramebufferSize()
	s.Resized = w != s.Width || h != s.Height
	s.Width, s.Height = w, h

	if title, ok := s.frameStats(t.Now); ok {
		s.windowGlfw.SetTitle(title)
	}
}

// frameStats counts a frame and, once per second, returns the title with the
// average FPS and frame time appended.
func (s *WindowState) frameStats(now time.Time) (string, bool) {
	s.frames++
	elapsed := now.Sub(s.statsSince)
	if elapsed < time.Second {
		return "", false
	}
	fps := float64(s.frames) / elapsed.Seconds()
	ms := elapsed.Seconds() * 1000 / float64(s.frames)
	s.frames = 0
	s.statsSince = now
	return fmt.Sprintf("%s    FPS: %.0f    Frame Time: %.2fms", s.title, fps, ms), true
}
