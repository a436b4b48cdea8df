package gfx

type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

type BlendOp int

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
)

type BlendComponent struct {
	Op  BlendOp
	Src BlendFactor
	Dst BlendFactor
}

// BlendState is the color target blend configuration. A disabled state writes
// the source color unchanged.
type BlendState struct {
	Enabled bool
	Color   BlendComponent
	Alpha   BlendComponent
}

var (
	// BlendOpaque is the default state used for geometry passes.
	BlendOpaque = BlendState{}

	// BlendAdditive accumulates dst += src for both color and alpha. The
	// particle shader multiplies rgb by alpha before output so faded
	// particles add less light.
	BlendAdditive = BlendState{
		Enabled: true,
		Color:   BlendComponent{Op: BlendOpAdd, Src: BlendOne, Dst: BlendOne},
		Alpha:   BlendComponent{Op: BlendOpAdd, Src: BlendOne, Dst: BlendOne},
	}

	BlendAlpha = BlendState{
		Enabled: true,
		Color:   BlendComponent{Op: BlendOpAdd, Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha},
		Alpha:   BlendComponent{Op: BlendOpAdd, Src: BlendOne, Dst: BlendOneMinusSrcAlpha},
	}
)

type CompareFunc int

const (
	CompareLess CompareFunc = iota
	CompareLessEqual
	CompareAlways
)

type DepthState struct {
	TestEnabled  bool
	WriteEnabled bool
	Compare      CompareFunc
}

var (
	// DepthDefault tests and writes depth.
	DepthDefault = DepthState{TestEnabled: true, WriteEnabled: true, Compare: CompareLess}

	// DepthReadOnly tests against existing depth but never writes it.
	DepthReadOnly = DepthState{TestEnabled: true, WriteEnabled: false, Compare: CompareLess}
)

// PushState binds blend and depth on ctx and returns a func that restores the
// previously bound pair. Call it with defer so every exit path restores.
func PushState(ctx Context, blend BlendState, depth DepthState) (restore func()) {
	prevBlend := ctx.BlendState()
	prevDepth := ctx.DepthState()
	ctx.SetBlendState(blend)
	ctx.SetDepthState(depth)
	return func() {
		ctx.SetBlendState(prevBlend)
		ctx.SetDepthState(prevDepth)
	}
}

// ResetState binds the default opaque pipeline state.
func ResetState(ctx Context) {
	ctx.SetBlendState(BlendOpaque)
	ctx.SetDepthState(DepthDefault)
}
