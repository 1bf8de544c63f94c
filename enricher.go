package demystify

import (
	"go.uber.org/zap"

	"github.com/tomoemon/demystify/enrich"
)

// ErrorDemystifier rewrites the stack traces carried by an error. It may
// return err itself or a new error that decorates it.
type ErrorDemystifier interface {
	Demystify(err error) error
}

// Enricher demystifies the exception attached to a log event.
type Enricher struct {
	demystifier ErrorDemystifier
}

// NewEnricher returns an Enricher that hands exceptions to d. A nil d uses
// the package defaults.
func NewEnricher(d ErrorDemystifier) *Enricher {
	if d == nil {
		d = defaultDemystifier
	}
	return &Enricher{demystifier: d}
}

// Enrich replaces ev.Exception with its demystified form. Events without an
// exception are left untouched and the property factory is not used.
func (e *Enricher) Enrich(ev *enrich.Event, _ enrich.PropertyFactory) {
	if ev.Exception != nil {
		ev.Exception = e.demystifier.Demystify(ev.Exception)
	}
}

// TraceDemystifier rewrites a textual stack trace.
type TraceDemystifier interface {
	DemystifyTrace(text string) string
}

// StackEnricher demystifies the stack zap captures for entries logged at or
// above the zap.AddStacktrace level.
type StackEnricher struct {
	demystifier TraceDemystifier
}

// NewStackEnricher returns a StackEnricher backed by d. A nil d uses the
// package defaults.
func NewStackEnricher(d TraceDemystifier) *StackEnricher {
	if d == nil {
		d = defaultDemystifier
	}
	return &StackEnricher{demystifier: d}
}

// Enrich rewrites the entry stack, if zap attached one.
func (e *StackEnricher) Enrich(ev *enrich.Event, _ enrich.PropertyFactory) {
	if ev.Entry.Stack != "" {
		ev.Entry.Stack = e.demystifier.DemystifyTrace(ev.Entry.Stack)
	}
}

// Enrichers returns the enrichers configured by opts: the exception enricher
// and, with WithEntryStack, the entry stack enricher.
func Enrichers(opts ...Option) []enrich.Enricher {
	d := NewDemystifier(opts...)
	enrichers := []enrich.Enricher{NewEnricher(d)}
	if d.opts.entryStack {
		enrichers = append(enrichers, NewStackEnricher(d))
	}
	return enrichers
}

// WithDemystifiedStackTraces registers the enricher with a zap logger:
//
//	logger := zap.New(core, demystify.WithDemystifiedStackTraces())
//	logger.Error("request failed", zap.Error(err))
func WithDemystifiedStackTraces(opts ...Option) zap.Option {
	return enrich.WithEnrichers(Enrichers(opts...)...)
}
