package log

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// traceFieldKey marks the field built by Trace. Encoders skip it; traceCore
// swaps it for the trace and span ids.
const traceFieldKey = "__trace_ctx"

// Trace carries ctx into a log call so the entry is stamped with the ids of
// the span in ctx:
//
//	log.Errorw("persist failed", log.Trace(ctx), "error", err)
func Trace(ctx context.Context) zap.Field {
	return zap.Field{Key: traceFieldKey, Type: zapcore.SkipType, Interface: ctx}
}

// traceCore 在写日志时把 Trace 字段替换为 trace_id/span_id
type traceCore struct {
	zapcore.Core
}

func wrapCoreWithTrace(core zapcore.Core) zapcore.Core {
	return &traceCore{Core: core}
}

func (c *traceCore) With(fields []zapcore.Field) zapcore.Core {
	return &traceCore{Core: c.Core.With(expandTrace(fields))}
}

func (c *traceCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *traceCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, expandTrace(fields))
}

func expandTrace(fields []zapcore.Field) []zapcore.Field {
	idx := -1
	for i := range fields {
		if fields[i].Key == traceFieldKey && fields[i].Type == zapcore.SkipType {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fields
	}

	out := make([]zapcore.Field, 0, len(fields)+2)
	out = append(out, fields[:idx]...)
	if ctx, ok := fields[idx].Interface.(context.Context); ok && ctx != nil {
		out = append(out, traceFields(trace.SpanContextFromContext(ctx))...)
	}
	// 只处理第一个, 其余原样交给 encoder 跳过
	return append(out, fields[idx+1:]...)
}

func traceFields(sc trace.SpanContext) []zapcore.Field {
	if !sc.IsValid() {
		return nil
	}
	fields := []zapcore.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
	if sc.TraceFlags() != 0 {
		fields = append(fields, zap.Uint8("trace_flags", uint8(sc.TraceFlags())))
	}
	return fields
}
