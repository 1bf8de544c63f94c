package demystify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxStackDepth is the maximum number of stack frames captured by
// With and Wrap.
var DefaultMaxStackDepth = 32

// DefaultSkipFrames is the number of additional frames skipped when
// capturing a stack trace. Helpers that wrap With can raise it at package
// initialization time.
var DefaultSkipFrames = 0

// DefaultStackFrameFormatter formats a single frame for ErrorStack and the
// %+v verb. It must be replaced at package initialization time only.
//
//	func init() {
//	    demystify.DefaultStackFrameFormatter = func(frame *demystify.StackFrame) string {
//	        return fmt.Sprintf("%s:%d\n", frame.File, frame.LineNumber)
//	    }
//	}
var DefaultStackFrameFormatter stackFrameFormatter = defaultStackFrameFormatter

// Wrap annotates the error pointed to by errp with the stack at the return
// point of the enclosing function. Use it with defer and a named result:
//
//	func load() (err error) {
//	    defer demystify.Wrap(&err)
//	    ...
//	}
//
// Nil errors and errors that already carry a stack are left alone.
func Wrap(errp *error) {
	if *errp != nil {
		// Wrap -> innerWithStack -> callers -> runtime.Callers
		const innerSkip = 4
		*errp = innerWithStack(*errp, DefaultSkipFrames+innerSkip)
	}
}

// With annotates err with the stack at the point With was called.
// It returns nil for a nil err and err itself when its chain already
// carries a stack.
func With(err error) error {
	// With -> innerWithStack -> callers -> runtime.Callers
	const innerSkip = 4
	return innerWithStack(err, DefaultSkipFrames+innerSkip)
}

func innerWithStack(err error, skip int) error {
	if err == nil {
		return nil
	}
	var stackError *withStack
	if errors.As(err, &stackError) {
		return err
	}
	return &withStack{
		err,
		callers(skip, DefaultMaxStackDepth),
	}
}

type withStack struct {
	error
	stack []uintptr
}

func (w *withStack) Format(s fmt.State, verb rune) {
	formatError(s, verb, w)
}

// StackFrames returns the raw frames captured when the error was wrapped.
func (w *withStack) StackFrames() []StackFrame {
	return stackFramesFromPC(w.stack)
}

// Callers returns the captured program counters. Errors from other packages
// that expose the same method are stack sources too.
func (w *withStack) Callers() []uintptr {
	return w.stack
}

func (w *withStack) Unwrap() error {
	return w.error
}

// formatError implements fmt.Formatter for the error types of this package.
// %+v prints the message followed by every stack in the chain.
func formatError(s fmt.State, verb rune, err error) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, ErrorStack(err))
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, err.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", err.Error())
	}
}

// ErrorStack returns the error message followed by every stack trace found
// in the chain of originalErr. When the stacks belong to wrapped errors the
// full message of originalErr comes first, so no wrapping context is lost.
//
// It returns an empty string if the chain carries no stack.
func ErrorStack(originalErr error) string {
	var accum []string
	var wrapped bool

	walkStack(originalErr, true, func(err error, root bool, frames []StackFrame) {
		wrapped = wrapped || !root
		accum = append(accum, fmt.Sprintf("%s\n%s", err.Error(), formatStackFrames(frames)))
	})

	if len(accum) == 0 {
		return ""
	}
	if wrapped {
		accum = append([]string{originalErr.Error() + "\n"}, accum...)
	}
	return strings.Join(accum, "\n")
}

// WalkStack calls f for every error in the chain of err that carries a stack,
// following both Unwrap() error and Unwrap() []error.
//
// A demystified error reports its demystified frames and is not descended
// into any further.
//
//	demystify.WalkStack(err, func(err error, frames []demystify.StackFrame) {
//	    for _, frame := range frames {
//	        fmt.Printf("  at %s:%d in %s\n", frame.File, frame.LineNumber, frame.Signature)
//	    }
//	})
func WalkStack(err error, f func(error, []StackFrame)) {
	walkStack(err, true, func(err error, _ bool, frames []StackFrame) {
		f(err, frames)
	})
}

// walkStack reports with root whether the stack belongs to the error the
// walk started from. Errors are not compared, their types need not be
// comparable.
func walkStack(err error, root bool, f func(err error, root bool, frames []StackFrame)) {
	if err == nil {
		return
	}
	if d, ok := err.(*demystifiedError); ok {
		for _, t := range d.traces {
			f(t.source(d), root && t.err == nil, t.frames)
		}
		return
	}
	if caller, ok := err.(interface{ Callers() []uintptr }); ok {
		f(err, root, stackFramesFromPC(caller.Callers()))
	}
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range u.Unwrap() {
			walkStack(e, false, f)
		}
	} else if u := errors.Unwrap(err); u != nil {
		walkStack(u, false, f)
	}
}

func formatStackFrames(frames []StackFrame) []byte {
	buf := bytes.Buffer{}
	for _, frame := range frames {
		buf.WriteString(frame.String())
	}
	return buf.Bytes()
}
