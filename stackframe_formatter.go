package demystify

import "fmt"

// stackFrameFormatter is a function type that formats a stack frame into a string.
type stackFrameFormatter func(frame *StackFrame) string

// defaultStackFrameFormatter lays frames out the way runtime/debug.Stack()
// does. Demystified frames print their signature in place of the raw name.
func defaultStackFrameFormatter(frame *StackFrame) string {
	// Format: go func literal #1 in app.run()
	//     file/path.go:123 +0xhex
	if frame.Signature != "" {
		return fmt.Sprintf("%s\n\t%s:%d +0x%x\n", frame.Signature, frame.File, frame.LineNumber, frame.ProgramCounter)
	}
	return fmt.Sprintf("%s()\n\t%s:%d +0x%x\n", frame.Symbol(), frame.File, frame.LineNumber, frame.ProgramCounter)
}
