package ember

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	assert.Same(t, resource2, Resource[MockResource2](app))
	assert.Nil(t, Resource[Time](app))
}

func TestApp_SystemsReceiveResources(t *testing.T) {
	app := NewAppBuilder().Build()
	res := NewMockResource1("counter")
	app.addResources(res)

	var seen []string
	app.UseSystem(System(func(r *MockResource1, cmd *Commands) {
		require.NotNil(t, cmd)
		seen = append(seen, r.name)
	}))

	assert.Equal(t, 3, app.RunFrames(3))
	assert.Equal(t, []string{"counter", "counter", "counter"}, seen)
	assert.EqualValues(t, 3, app.Frame())
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(r *MockResource2) {}))

	assert.Panics(t, func() { app.RunFrames(1) })
}

func TestApp_StagesRunInOrder(t *testing.T) {
	app := NewAppBuilder().Build()
	var order []string
	record := func(name string) func() {
		return func() { order = append(order, name) }
	}

	app.UseSystem(System(record("render")).InStage(Render))
	app.UseSystem(System(record("update")))
	app.UseSystem(System(record("pre")).InStage(PreUpdate))
	app.UseSystem(System(record("post")).InStage(PostUpdate))

	late := Stage{Name: "Late"}
	app.UseStage(late, AfterStage(Render))
	app.UseSystem(System(record("late")).InStage(late))
	early := Stage{Name: "Early"}
	app.UseStage(early, BeforeStage(PreUpdate))
	app.UseSystem(System(record("early")).InStage(early))

	app.RunFrames(1)
	assert.Equal(t, []string{"early", "pre", "update", "post", "render", "late"}, order)

	assert.PanicsWithValue(t, "Stage Late already exists", func() {
		app.UseStage(late, AfterStage(Update))
	})
	assert.PanicsWithValue(t, "Stage Missing doesn't exist", func() {
		app.UseSystem(System(record("x")).InStage(Stage{Name: "Missing"}))
	})
}

func TestApp_QuitStopsAfterCurrentFrame(t *testing.T) {
	app := NewAppBuilder().Build()
	frames := 0
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		if frames == 2 {
			cmd.Quit()
		}
	}))
	after := 0
	app.UseSystem(System(func() { after++ }).InStage(Render))

	assert.Equal(t, 2, app.RunFrames(10))
	assert.Equal(t, 2, after)
	assert.True(t, app.Quitting())
}

func TestApp_RunInvokesShutdownInReverse(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()
	var order []int
	cmd.OnShutdown(func() { order = append(order, 1) })
	cmd.OnShutdown(func() { order = append(order, 2) })
	app.UseSystem(System(func(cmd *Commands) { cmd.Quit() }))

	app.Run()
	assert.Equal(t, []int{2, 1}, order)

	app.Shutdown()
	assert.Equal(t, []int{2, 1}, order, "hooks run once")
}

func TestApp_LoggerNeverNil(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())

	app := NewAppBuilder().Build()
	assert.False(t, app.Logger().DebugEnabled())

	app = NewAppBuilder().UseModule(LoggingModule{Prefix: "test", Debug: true}).Build()
	assert.True(t, app.Logger().DebugEnabled())
}
