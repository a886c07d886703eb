package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type redactingCore struct {
	zapcore.Core
}

// NewRedactingCore wraps core so that sensitive fields and secret-looking
// strings never reach the encoder. Messages are filtered too.
func NewRedactingCore(core zapcore.Core) zapcore.Core {
	return &redactingCore{Core: core}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(redactFields(fields))}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = RedactSensitiveData(ent.Message)
	return c.Core.Write(ent, redactFields(fields))
}

func redactFields(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		r, changed := redactField(f)
		if !changed {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i] = r
	}
	if out == nil {
		return fields
	}
	return out
}

func redactField(f zapcore.Field) (zapcore.Field, bool) {
	if IsSensitiveField(f.Key) {
		return zap.String(f.Key, RedactedPlaceholder), true
	}
	switch f.Type {
	case zapcore.StringType:
		if v := RedactSensitiveData(f.String); v != f.String {
			return zap.String(f.Key, v), true
		}
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok && err != nil {
			if v := RedactSensitiveData(err.Error()); v != err.Error() {
				return zap.String(f.Key, v), true
			}
		}
	}
	return f, false
}
