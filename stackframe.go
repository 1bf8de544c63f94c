package demystify

import (
	"runtime"
	"strings"

	"github.com/tomoemon/demystify/internal/symbol"
)

// StackFrame is a single frame of a captured call stack.
type StackFrame struct {
	// File is the absolute source file path.
	File       string
	LineNumber int
	// Name is the function name without the package path, as the runtime
	// reports it, e.g. "(*Server).serve.func1".
	Name string
	// Package is the import path of the function.
	Package        string
	ProgramCounter uintptr

	// Signature is the readable form of Name. It is empty for frames that
	// have not been demystified.
	Signature string
	// Goroutine marks the entry function of a goroutine.
	Goroutine bool

	function string
}

func newStackFrame(frame runtime.Frame) StackFrame {
	sym := symbol.Parse(frame.Function)
	name := frame.Function
	if sym.Package != "" {
		tail := frame.Function[strings.LastIndex(frame.Function, "/")+1:]
		name = tail[strings.IndexByte(tail, '.')+1:]
	}
	return StackFrame{
		File:           frame.File,
		LineNumber:     frame.Line,
		Name:           name,
		Package:        sym.Package,
		ProgramCounter: frame.PC,
		function:       frame.Function,
	}
}

// Symbol returns the function name as reported by the runtime.
func (f StackFrame) Symbol() string {
	if f.function != "" {
		return f.function
	}
	if f.Package == "" {
		return f.Name
	}
	return f.Package + "." + f.Name
}

// String formats the frame with DefaultStackFrameFormatter.
func (f StackFrame) String() string {
	return DefaultStackFrameFormatter(&f)
}

func callers(skip, depth int) []uintptr {
	stack := make([]uintptr, depth)
	n := runtime.Callers(skip, stack)
	return stack[:n]
}

func stackFramesFromPC(stack []uintptr) []StackFrame {
	if len(stack) == 0 {
		return nil
	}
	frames := make([]StackFrame, 0, len(stack))
	it := runtime.CallersFrames(stack)
	for {
		frame, more := it.Next()
		frames = append(frames, newStackFrame(frame))
		if !more {
			break
		}
	}
	return frames
}
