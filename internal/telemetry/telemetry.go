// Package telemetry gives every control-plane operation a per-call, leveled
// logger the way the reconciliation code expects: derive one from the
// context at the top of a method, call Warnf/Errorf/Fatalf on it, hand the
// (possibly annotated) context to whatever it calls next.
package telemetry

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

var base = mustBuild()

func mustBuild() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return l
}

// SetBase swaps the process-wide root logger; called once from main.
func SetBase(l *zap.Logger) {
	if l != nil {
		base = l
	}
}

// StartSpan returns a sugared logger scoped to op, plus a context carrying
// it, so nested calls that pull FromContext keep the same fields.
func StartSpan(ctx context.Context, op string) (*zap.SugaredLogger, context.Context) {
	parent := fromContext(ctx)
	log := parent.With("op", op)
	return log, context.WithValue(ctx, loggerKey{}, log)
}

// FromContext returns the span logger for ctx, or the root logger if none
// was ever attached.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	return fromContext(ctx)
}

func fromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if v, ok := ctx.Value(loggerKey{}).(*zap.SugaredLogger); ok {
			return v
		}
	}
	return base.Sugar()
}
