package demystify

import (
	"fmt"

	"github.com/tomoemon/demystify/internal/symbol"
)

// Option configures a Demystifier.
type Option func(*options)

type options struct {
	runtimeFrames   bool
	fullPackagePath bool
	maxFrames       int
	entryStack      bool
}

// WithRuntimeFrames keeps frames of package runtime, which are dropped by
// default.
func WithRuntimeFrames() Option {
	return func(o *options) { o.runtimeFrames = true }
}

// WithFullPackagePath qualifies signatures with the import path instead of
// the package name.
func WithFullPackagePath() Option {
	return func(o *options) { o.fullPackagePath = true }
}

// WithMaxFrames limits the number of frames kept per stack. Zero or less
// keeps all frames.
func WithMaxFrames(n int) Option {
	return func(o *options) { o.maxFrames = n }
}

// WithEntryStack also demystifies the stack zap attaches to entries logged at
// or above the zap.AddStacktrace level.
func WithEntryStack() Option {
	return func(o *options) { o.entryStack = true }
}

// Demystifier rewrites compiler-generated frame names into readable
// signatures. It holds no mutable state and is safe for concurrent use.
type Demystifier struct {
	opts options
}

// NewDemystifier returns a Demystifier configured with opts.
func NewDemystifier(opts ...Option) *Demystifier {
	d := &Demystifier{}
	for _, opt := range opts {
		opt(&d.opts)
	}
	return d
}

var defaultDemystifier = NewDemystifier()

// Demystify demystifies err with the default options.
func Demystify(err error) error {
	return defaultDemystifier.Demystify(err)
}

// Demystify returns err decorated with demystified stack traces.
//
// The result has the same message as err and unwraps to it; err itself is
// not modified. Errors without a stack in their chain are returned as is, and
// so are errors that were already demystified.
func (d *Demystifier) Demystify(err error) error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*demystifiedError); ok {
		return de
	}

	var traces []trace
	walkStack(err, true, func(e error, root bool, frames []StackFrame) {
		t := trace{frames: d.Frames(frames)}
		if !root {
			t.err = e
		}
		traces = append(traces, t)
	})
	if len(traces) == 0 {
		return err
	}
	return &demystifiedError{error: err, traces: traces}
}

// Frames returns demystified copies of frames.
func (d *Demystifier) Frames(frames []StackFrame) []StackFrame {
	out := make([]StackFrame, 0, len(frames))
	for i, frame := range frames {
		sym := symbol.Parse(frame.Symbol())
		if sym.IsRuntime() && !d.opts.runtimeFrames {
			continue
		}
		frame.Signature = sym.Render(d.opts.fullPackagePath)
		// Frames demystified before have lost the goexit frame that
		// marked them.
		frame.Goroutine = frame.Goroutine || sym.Kind() == symbol.GoStatement ||
			(i+1 < len(frames) && isGoexit(frames[i+1]) && !isRuntimeMain(sym))
		if frame.Goroutine && sym.Kind() != symbol.GoStatement {
			frame.Signature = "go " + frame.Signature
		}
		out = append(out, frame)
		if d.opts.maxFrames > 0 && len(out) == d.opts.maxFrames {
			break
		}
	}
	return out
}

func isGoexit(frame StackFrame) bool {
	return frame.Symbol() == "runtime.goexit"
}

func isRuntimeMain(sym symbol.Symbol) bool {
	return sym.IsRuntime() && sym.Name == "main"
}

type trace struct {
	// err is the error that carried the stack, nil when it was the
	// demystified error's own cause.
	err    error
	frames []StackFrame
}

func (t trace) source(d *demystifiedError) error {
	if t.err == nil {
		return d
	}
	return t.err
}

type demystifiedError struct {
	error
	traces []trace
}

func (e *demystifiedError) Unwrap() error {
	return e.error
}

func (e *demystifiedError) Format(s fmt.State, verb rune) {
	formatError(s, verb, e)
}

// StackFrames returns the demystified frames of the first stack in the chain.
func (e *demystifiedError) StackFrames() []StackFrame {
	return e.traces[0].frames
}
