// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(Logger)
}

// WithContext returns a logger scoped with the given attributes,
// derived from the root logger at call time.
func WithContext(ctx ...any) Logger {
	return &scopedLogger{ctx: ctx}
}

// scopedLogger defers root lookup to emit time, so package-level loggers
// observe handlers installed after package init.
type scopedLogger struct {
	ctx []any
}

func (s *scopedLogger) delegate() Logger {
	return Root().With(s.ctx...)
}

func (s *scopedLogger) With(ctx ...any) Logger {
	return &scopedLogger{ctx: append(append([]any{}, s.ctx...), ctx...)}
}

func (s *scopedLogger) New(ctx ...any) Logger { return s.With(ctx...) }

func (s *scopedLogger) Log(level slog.Level, msg string, ctx ...any) {
	s.delegate().Log(level, msg, ctx...)
}

func (s *scopedLogger) Trace(msg string, ctx ...any) { s.delegate().Trace(msg, ctx...) }
func (s *scopedLogger) Debug(msg string, ctx ...any) { s.delegate().Debug(msg, ctx...) }
func (s *scopedLogger) Info(msg string, ctx ...any)  { s.delegate().Info(msg, ctx...) }
func (s *scopedLogger) Warn(msg string, ctx ...any)  { s.delegate().Warn(msg, ctx...) }
func (s *scopedLogger) Error(msg string, ctx ...any) { s.delegate().Error(msg, ctx...) }
func (s *scopedLogger) Crit(msg string, ctx ...any) {
	s.delegate().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

func (s *scopedLogger) Write(level slog.Level, msg string, attrs ...any) {
	s.delegate().Write(level, msg, attrs...)
}

func (s *scopedLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return s.delegate().Enabled(ctx, level)
}

func (s *scopedLogger) Handler() slog.Handler {
	return s.delegate().Handler()
}

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) {
	Root().Write(LevelTrace, msg, ctx...)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) {
	Root().Write(slog.LevelDebug, msg, ctx...)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) {
	Root().Write(slog.LevelInfo, msg, ctx...)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) {
	Root().Write(slog.LevelWarn, msg, ctx...)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) {
	Root().Write(slog.LevelError, msg, ctx...)
}

// Crit is a convenient alias for Root().Crit
func Crit(msg string, ctx ...any) {
	Root().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}
