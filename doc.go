// Package demystify makes the stack traces of logged errors readable.
//
// The Go compiler names func literals, goroutine wrappers and
// range-over-func loop bodies after the function that contains them, so a
// captured stack reads
//
//	github.com/acme/app.fetchAll.func1
//	github.com/acme/app.sum-range1
//
// Demystify rewrites such frames into signatures of the code that was
// actually written:
//
//	go func literal #1 in app.fetchAll()
//	range-over-func body #1 in app.sum()
//
// Stacks are captured with With or Wrap, or by any error in the chain that
// implements Callers() []uintptr. The Enricher plugs the transformation into
// a zap logger, so errors logged with zap.Error carry demystified frames in
// their verbose form:
//
//	logger := zap.New(core, demystify.WithDemystifiedStackTraces())
//	logger.Error("sync failed", zap.Error(demystify.With(err)))
package demystify
