package enrich

import (
	"bytes"
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

type core struct {
	next      zapcore.Core
	enrichers []Enricher
	// pending holds context fields that must be enriched together with
	// the entry. Once a context field carries an error, every later context
	// field is held back too so the field order stays intact.
	pending []zapcore.Field
}

// NewCore returns a core that runs enrichers on every entry before passing
// it to next. It returns next itself when there are no enrichers.
func NewCore(next zapcore.Core, enrichers ...Enricher) zapcore.Core {
	var list []Enricher
	for _, e := range enrichers {
		if e != nil {
			list = append(list, e)
		}
	}
	if len(list) == 0 {
		return next
	}
	return &core{next: next, enrichers: list}
}

func (c *core) Enabled(lvl zapcore.Level) bool {
	return c.next.Enabled(lvl)
}

func (c *core) Level() zapcore.Level {
	return zapcore.LevelOf(c.next)
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	if len(fields) == 0 {
		return c
	}
	if len(c.pending) == 0 && !hasError(fields) {
		return &core{next: c.next.With(fields), enrichers: c.enrichers}
	}
	pending := make([]zapcore.Field, 0, len(c.pending)+len(fields))
	pending = append(pending, c.pending...)
	pending = append(pending, fields...)
	return &core{next: c.next, enrichers: c.enrichers, pending: pending}
}

// Check asks the wrapped core first, so samplers and tee members decide for
// themselves. The entry is enriched only when one of them accepts it.
func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}
	downstream := c.next.Check(ent, nil)
	if downstream == nil {
		return ce
	}
	return ce.AddCore(ent, &checkedCore{core: c, downstream: downstream})
}

// Write enriches the entry and writes it to the wrapped core without
// consulting its Check.
func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent, fields = c.enrich(ent, fields)
	return c.next.Write(ent, fields)
}

func (c *core) Sync() error {
	return c.next.Sync()
}

func (c *core) enrich(ent zapcore.Entry, fields []zapcore.Field) (zapcore.Entry, []zapcore.Field) {
	all := fields
	if len(c.pending) > 0 {
		all = make([]zapcore.Field, 0, len(c.pending)+len(fields))
		all = append(all, c.pending...)
		all = append(all, fields...)
	}
	// newEvent copies all, the caller's slice is never modified.
	ev := newEvent(ent, all)
	for _, e := range c.enrichers {
		e.Enrich(ev, Properties)
	}
	return ev.finish()
}

// checkedCore carries one entry accepted by the wrapped core. It lives until
// the entry is written.
type checkedCore struct {
	*core
	downstream *zapcore.CheckedEntry
}

func (c *checkedCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent, fields = c.enrich(ent, fields)
	var errs writeErrors
	c.downstream.Entry = ent
	c.downstream.ErrorOutput = &errs
	c.downstream.Write(fields...)
	return errs.err
}

// writeErrors collects the write errors the downstream entry reports.
type writeErrors struct {
	err error
}

func (w *writeErrors) Write(p []byte) (int, error) {
	w.err = multierr.Append(w.err, errors.New(string(bytes.TrimSpace(p))))
	return len(p), nil
}

func (w *writeErrors) Sync() error {
	return nil
}

func hasError(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			return true
		}
	}
	return false
}
