package enrich

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultExceptionKey is the field key used when an enricher attaches an
// exception to an event that had none. It matches zap.Error.
const DefaultExceptionKey = "error"

// Event is a log event on its way from the logger to the wrapped core.
//
// Exception holds the error of the first zapcore.ErrorType field, as added by
// zap.Error or zap.NamedError. Enrichers may replace it; the field keeps its
// key and position when the event is written.
type Event struct {
	Entry     zapcore.Entry
	Exception error

	fields       []zapcore.Field
	exceptionKey string
	exceptionAt  int
}

func newEvent(ent zapcore.Entry, fields []zapcore.Field) *Event {
	ev := &Event{Entry: ent, exceptionAt: -1}
	ev.fields = make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if ev.exceptionAt < 0 && f.Type == zapcore.ErrorType {
			if err, ok := f.Interface.(error); ok {
				ev.Exception = err
				ev.exceptionKey = f.Key
				ev.exceptionAt = len(ev.fields)
			}
		}
		ev.fields = append(ev.fields, f)
	}
	return ev
}

// Fields returns the event properties, the exception field excluded.
func (e *Event) Fields() []zapcore.Field {
	out := make([]zapcore.Field, 0, len(e.fields))
	for i, f := range e.fields {
		if i != e.exceptionAt {
			out = append(out, f)
		}
	}
	return out
}

// Property returns the property with the given key.
func (e *Event) Property(key string) (zapcore.Field, bool) {
	if i := e.indexOf(key); i >= 0 {
		return e.fields[i], true
	}
	return zapcore.Field{}, false
}

// AddPropertyIfAbsent adds f unless a property with the same key exists.
func (e *Event) AddPropertyIfAbsent(f zapcore.Field) {
	if e.indexOf(f.Key) < 0 {
		e.fields = append(e.fields, f)
	}
}

// AddOrUpdateProperty adds f, replacing a property with the same key.
func (e *Event) AddOrUpdateProperty(f zapcore.Field) {
	if i := e.indexOf(f.Key); i >= 0 {
		e.fields[i] = f
		return
	}
	e.fields = append(e.fields, f)
}

// RemovePropertyIfPresent removes the property with the given key.
func (e *Event) RemovePropertyIfPresent(key string) {
	i := e.indexOf(key)
	if i < 0 {
		return
	}
	e.fields = append(e.fields[:i], e.fields[i+1:]...)
	if e.exceptionAt > i {
		e.exceptionAt--
	}
}

func (e *Event) indexOf(key string) int {
	for i, f := range e.fields {
		if i != e.exceptionAt && f.Key == key {
			return i
		}
	}
	return -1
}

// finish returns the entry and fields to hand to the wrapped core.
func (e *Event) finish() (zapcore.Entry, []zapcore.Field) {
	fields := e.fields
	switch {
	case e.exceptionAt >= 0 && e.Exception == nil:
		fields = append(fields[:e.exceptionAt:e.exceptionAt], fields[e.exceptionAt+1:]...)
	case e.exceptionAt >= 0:
		fields[e.exceptionAt] = zap.NamedError(e.exceptionKey, e.Exception)
	case e.Exception != nil:
		fields = append(fields, zap.NamedError(DefaultExceptionKey, e.Exception))
	}
	return e.Entry, fields
}
