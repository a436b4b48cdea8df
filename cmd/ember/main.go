package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gekko3d/ember"
)

func main() {
	configPath := flag.String("config", "ember.toml", "scene and emitter config (TOML); defaults are used when missing")
	watch := flag.Bool("watch", true, "reload the config file when it changes")
	debug := flag.Bool("debug", false, "enable debug logging")
	headless := flag.Bool("headless", false, "simulate without a window or GPU")
	frames := flag.Int("frames", 600, "frames to simulate in headless mode")
	flag.Parse()

	modules := []ember.Module{
		ember.LoggingModule{Prefix: "ember", Debug: *debug},
		ember.ConfigModule{Path: *configPath, Watch: *watch && !*headless},
	}
	if *headless {
		modules = append(modules, ember.TimeModule{Step: time.Second / 60})
	} else {
		modules = append(modules,
			ember.TimeModule{MaxDt: 250 * time.Millisecond},
			ember.PlatformWindowModule{},
			ember.RendererModule{},
		)
	}
	modules = append(modules,
		ember.InputModule{},
		ember.CameraModule{},
		ember.SceneModule{},
		ember.ParticlesModule{},
	)

	app := ember.NewAppBuilder().
		UseModule(modules...).
		Build()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		app.RequestQuit()
	}()

	if *headless {
		n := app.RunFrames(*frames)
		p := ember.Resource[ember.Particles](app)
		stats := p.Pool.Stats()
		app.Logger().Infof("simulated %d frames: %d live, %d spawned, %d expired", n, p.Pool.LiveCount(), stats.Spawned, stats.Expired)
		app.Shutdown()
		return
	}
	app.Run()
}
