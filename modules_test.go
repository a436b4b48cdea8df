package ember

import (
	"testing"
	"time"

	"github.com/gekko3d/ember/render/gfx/gfxtest"
)

const testStep = time.Second / 60

// headlessApp builds the demo without a window. A nil rec leaves out Graphics,
// so nothing is uploaded or drawn.
func headlessApp(t *testing.T, cfg Config, rec *gfxtest.Recorder) *App {
	t.Helper()
	modules := []Module{
		ConfigModule{Config: &cfg},
		TimeModule{Step: testStep},
	}
	if rec != nil {
		modules = append(modules, GraphicsModule{Device: rec})
	}
	modules = append(modules,
		RendererModule{},
		InputModule{},
		CameraModule{},
		SceneModule{},
		ParticlesModule{},
	)
	app := NewAppBuilder().UseModule(modules...).Build()
	t.Cleanup(app.Shutdown)
	return app
}
