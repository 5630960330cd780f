package logger

import (
	"go.uber.org/zap/zapcore"
)

const redactedVisible = 4

type redactingCore struct {
	zapcore.Core
	keys map[string]struct{}
}

// NewRedactingCore wraps core so that string fields named by keys keep only
// their last few characters.
func NewRedactingCore(core zapcore.Core, keys ...string) zapcore.Core {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return &redactingCore{Core: core, keys: set}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(c.redact(fields)), keys: c.keys}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, c.redact(fields))
}

func (c *redactingCore) redact(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if _, ok := c.keys[f.Key]; !ok || f.Type != zapcore.StringType {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i].String = mask(f.String)
	}
	if out == nil {
		return fields
	}
	return out
}

func mask(v string) string {
	if len(v) <= redactedVisible*2 {
		return "***"
	}
	return "***" + v[len(v)-redactedVisible:]
}
