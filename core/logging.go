package core

import "go.uber.org/zap"

// sugaredLogger is the minimal structured-logging surface the dispatch
// engine needs. It matches zap.SugaredLogger's method shapes so a
// *zap.SugaredLogger satisfies it directly.
type sugaredLogger interface {
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)
}

// Logger is the structured logger interface Processor.SetLogger accepts.
// *zap.SugaredLogger implements it; wrap any other logging library behind
// this interface to plug it in.
type Logger = sugaredLogger

// NewZapLogger adapts a *zap.Logger for use with Processor.SetLogger.
func NewZapLogger(l *zap.Logger) Logger {
	return l.Sugar()
}

type nopLogger struct{}

func (nopLogger) Infow(string, ...any)  {}
func (nopLogger) Warnw(string, ...any)  {}
func (nopLogger) Errorw(string, ...any) {}
