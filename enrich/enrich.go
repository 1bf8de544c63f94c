// Package enrich adds an enrichment stage to zap.
//
// An Enricher sees every event written through a core returned by NewCore
// and may change its properties or its exception before the event reaches
// the wrapped core:
//
//	logger := zap.New(core, enrich.WithEnrichers(
//	    enrich.WithProperty("service", "billing"),
//	    demystify.NewEnricher(nil),
//	))
//
// Enrichers run synchronously on the goroutine that writes the entry, in the
// order they were registered.
package enrich

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Enricher augments or transforms a log event before it is written.
type Enricher interface {
	Enrich(ev *Event, factory PropertyFactory)
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(ev *Event, factory PropertyFactory)

func (f EnricherFunc) Enrich(ev *Event, factory PropertyFactory) {
	f(ev, factory)
}

// PropertyFactory creates event properties.
type PropertyFactory interface {
	// CreateProperty builds a field for value. With destructure set, values
	// are encoded by reflection instead of their String or Error method.
	CreateProperty(name string, value any, destructure bool) zapcore.Field
}

type fieldFactory struct{}

func (fieldFactory) CreateProperty(name string, value any, destructure bool) zapcore.Field {
	if destructure {
		return zap.Reflect(name, value)
	}
	return zap.Any(name, value)
}

// Properties is the PropertyFactory handed to enrichers by NewCore.
var Properties PropertyFactory = fieldFactory{}

// WithProperty returns an enricher that adds a constant property to every
// event that does not already have it.
func WithProperty(name string, value any) Enricher {
	return EnricherFunc(func(ev *Event, factory PropertyFactory) {
		if _, ok := ev.Property(name); ok {
			return
		}
		ev.AddPropertyIfAbsent(factory.CreateProperty(name, value, false))
	})
}

// WithEnrichers returns a zap.Option that wraps the logger's core with the
// given enrichers.
func WithEnrichers(enrichers ...Enricher) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return NewCore(core, enrichers...)
	})
}
