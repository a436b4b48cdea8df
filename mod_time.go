package ember

import (
	"time"
)

type Time struct {
	Now   time.Time
	Dt    time.Duration
	Total time.Duration
}

func (t *Time) DtSeconds() float32    { return float32(t.Dt.Seconds()) }
func (t *Time) TotalSeconds() float32 { return float32(t.Total.Seconds()) }

type TimeModule struct {
	// Step, when positive, advances every frame by exactly Step instead of the
	// wall clock.
	Step time.Duration
	// MaxDt caps a single frame's delta, e.g. after the window was dragged.
	MaxDt time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Now: time.Now(),
	})
	cmd.UseSystem(System(mod.timeSystem).InStage(PreUpdate))
}

func (mod TimeModule) timeSystem(timeResource *Time) {
	var now time.Time
	if mod.Step > 0 {
		now = timeResource.Now.Add(mod.Step)
	} else {
		now = time.Now()
	}

	dt := now.Sub(timeResource.Now)
	if dt < 0 {
		dt = 0
	}
	if mod.MaxDt > 0 && dt > mod.MaxDt {
		dt = mod.MaxDt
	}
	timeResource.Dt = dt
	timeResource.Total += dt
	timeResource.Now = now
}
