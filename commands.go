package ember

// Commands is handed to modules and systems to mutate the App.
type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

// OnShutdown registers fn to run when the App stops.
func (cmd *Commands) OnShutdown(fn func()) *Commands {
	cmd.app.shutdown = append(cmd.app.shutdown, fn)
	return cmd
}

// Quit ends Run after the current frame.
func (cmd *Commands) Quit() {
	cmd.app.RequestQuit()
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
