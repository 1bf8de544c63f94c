package demystify

import (
	"strings"

	"github.com/tomoemon/demystify/internal/symbol"
)

const createdBy = "created by "

// DemystifyTrace rewrites the function lines of a textual Go stack trace:
// runtime/debug.Stack output, panic tracebacks and the stacktrace field zap
// attaches to entries. Call arguments are dropped, location lines and
// anything the parser does not recognise are kept verbatim.
func (d *Demystifier) DemystifyTrace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	frames := 0
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "goroutine ") {
			frames = 0
		}
		if !isFunctionLine(lines, i) {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(line, createdBy) {
			out = append(out, d.creator(line))
			continue
		}

		sym := symbol.Parse(functionName(line))
		keep := (!sym.IsRuntime() || d.opts.runtimeFrames) &&
			(d.opts.maxFrames <= 0 || frames < d.opts.maxFrames)
		if !keep {
			i++ // location line
			continue
		}
		frames++

		sig := sym.Render(d.opts.fullPackagePath)
		if sym.Kind() != symbol.GoStatement && !isRuntimeMain(sym) && startsGoroutine(lines, i+2) {
			sig = "go " + sig
		}
		out = append(out, sig)
	}
	return strings.Join(out, "\n")
}

// DemystifyTrace demystifies a textual stack trace with the default options.
func DemystifyTrace(text string) string {
	return defaultDemystifier.DemystifyTrace(text)
}

func (d *Demystifier) creator(line string) string {
	name := strings.TrimPrefix(line, createdBy)
	suffix := ""
	if idx := strings.Index(name, " in goroutine "); idx >= 0 {
		name, suffix = name[:idx], name[idx:]
	}
	return createdBy + symbol.Parse(name).Render(d.opts.fullPackagePath) + suffix
}

// isFunctionLine reports whether lines[i] names a function, which is the
// case when a tab-indented location line follows.
func isFunctionLine(lines []string, i int) bool {
	line := lines[i]
	if line == "" || line[0] == '\t' || line[0] == ' ' || strings.HasPrefix(line, "goroutine ") {
		return false
	}
	return i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t")
}

// startsGoroutine reports whether the frame line at index next, the one
// following a frame, ends the goroutine: a "created by" line or goexit.
func startsGoroutine(lines []string, next int) bool {
	if next >= len(lines) {
		return false
	}
	line := lines[next]
	if strings.HasPrefix(line, createdBy) {
		return true
	}
	return isFunctionLine(lines, next) && functionName(line) == "runtime.goexit"
}

// functionName strips the argument list of a traceback function line.
func functionName(line string) string {
	line = strings.TrimSpace(line)
	if !strings.HasSuffix(line, ")") {
		return line
	}
	depth := 0
	for i := len(line) - 1; i > 0; i-- {
		switch line[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return line[:i]
			}
		}
	}
	return line
}
