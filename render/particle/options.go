package particle

import "github.com/gekko3d/ember/render/gfx"

// Logger is the subset of the application logger the emitter reports through.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

type options struct {
	allowOverwrite bool
	log            Logger
	blend          gfx.BlendState
	depth          gfx.DepthState
}

type Option func(*options)

// AllowOverwrite waives the Config.RequiredCapacity check. A full ring then
// recycles its oldest live particle.
func AllowOverwrite() Option {
	return func(o *options) { o.allowOverwrite = true }
}

func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithBlendState replaces the additive blend used by Draw.
func WithBlendState(b gfx.BlendState) Option {
	return func(o *options) { o.blend = b }
}

func buildOptions(opts []Option) options {
	o := options{
		log:   nopLogger{},
		blend: gfx.BlendAdditive,
		depth: gfx.DepthReadOnly,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
