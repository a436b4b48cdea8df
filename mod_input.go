package ember

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyA int = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeySpace
	KeyEscape
	KeyShift
	KeyControl
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle

	inputSlots
)

type InputModule struct{}

type Input struct {
	Pressed      [inputSlots]bool
	JustPressed  [inputSlots]bool
	JustReleased [inputSlots]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64

	cursorSeen bool
}

// Set updates one key or button, tracking the pressed/released edges.
func (input *Input) Set(slot int, down bool) {
	input.JustPressed[slot] = down && !input.Pressed[slot]
	input.JustReleased[slot] = !down && input.Pressed[slot]
	input.Pressed[slot] = down
}

// MoveCursor records a cursor position. The first position seen produces no
// delta.
func (input *Input) MoveCursor(x, y float64) {
	if input.cursorSeen {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	} else {
		input.MouseDeltaX, input.MouseDeltaY = 0, 0
		input.cursorSeen = true
	}
	input.MouseX, input.MouseY = x, y
}

// Drag returns the cursor delta while the left button is held.
func (input *Input) Drag() (dx, dy float64, ok bool) {
	if !input.Pressed[MouseButtonLeft] || input.JustPressed[MouseButtonLeft] {
		return 0, 0, false
	}
	return input.MouseDeltaX, input.MouseDeltaY, true
}

// Install always provides the Input resource and the Escape-to-quit system;
// GLFW polling is added only when a window exists.
func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	if Resource[WindowState](app) != nil {
		cmd.UseSystem(System(inputSystem).InStage(PreUpdate))
	} else {
		app.Logger().Debugf("input: no window, keyboard and mouse are not polled")
	}
	cmd.UseSystem(System(quitOnEscape).InStage(PreUpdate))
}

func quitOnEscape(cmd *Commands, input *Input) {
	if input.Pressed[KeyEscape] {
		cmd.Quit()
	}
}

func inputSystem(s *WindowState, input *Input) {
	for key, glfwKey := range keyToGlfw {
		input.Set(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range buttonToGlfw {
		input.Set(btn, s.windowGlfw.GetMouseButton(glfwBtn) == glfw.Press)
	}
	input.MoveCursor(s.windowGlfw.GetCursorPos())
}

var buttonToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}

var keyToGlfw = map[int]glfw.Key{
	KeyA:       glfw.KeyA,
	KeyB:       glfw.KeyB,
	KeyC:       glfw.KeyC,
	KeyD:       glfw.KeyD,
	KeyE:       glfw.KeyE,
	KeyF:       glfw.KeyF,
	KeyG:       glfw.KeyG,
	KeyH:       glfw.KeyH,
	KeyI:       glfw.KeyI,
	KeyJ:       glfw.KeyJ,
	KeyK:       glfw.KeyK,
	KeyL:       glfw.KeyL,
	KeyM:       glfw.KeyM,
	KeyN:       glfw.KeyN,
	KeyO:       glfw.KeyO,
	KeyP:       glfw.KeyP,
	KeyQ:       glfw.KeyQ,
	KeyR:       glfw.KeyR,
	KeyS:       glfw.KeyS,
	KeyT:       glfw.KeyT,
	KeyU:       glfw.KeyU,
	KeyV:       glfw.KeyV,
	KeyW:       glfw.KeyW,
	KeyX:       glfw.KeyX,
	KeyY:       glfw.KeyY,
	KeyZ:       glfw.KeyZ,
	KeySpace:   glfw.KeySpace,
	KeyEscape:  glfw.KeyEscape,
	KeyShift:   glfw.KeyLeftShift,
	KeyControl: glfw.KeyLeftControl,
	KeyUp:      glfw.KeyUp,
	KeyDown:    glfw.KeyDown,
	KeyLeft:    glfw.KeyLeft,
	KeyRight:   glfw.KeyRight,
}
