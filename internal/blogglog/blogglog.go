// Package blogglog is the default blocks.Logger implementation, built from
// github.com/joeycumines/logiface and its
// github.com/joeycumines/go-utilpkg/logiface/stumpy JSON writer. It exists so App never writes structured log lines itself;
// it only ever calls the small blocks.Logger interface.
package blogglog

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/go-utilpkg/logiface/stumpy"
)

// Logger adapts a *logiface.Logger[*stumpy.Event] to blocks.Logger.
type Logger struct {
	l *logiface.Logger[*stumpy.Event]
}

// New builds a Logger writing newline-delimited JSON to stderr via stumpy,
// at informational level.
func New() *Logger {
	return &Logger{
		l: logiface.New[*stumpy.Event](
			stumpy.WithStumpy(),
			logiface.WithLevel[*stumpy.Event](logiface.LevelInformational),
		),
	}
}

func (b *Logger) Debug(msg string, fields map[string]any) { b.log(b.l.Debug(), msg, fields) }
func (b *Logger) Info(msg string, fields map[string]any)  { b.log(b.l.Info(), msg, fields) }
func (b *Logger) Warn(msg string, fields map[string]any)  { b.log(b.l.Warning(), msg, fields) }
func (b *Logger) Error(msg string, fields map[string]any) { b.log(b.l.Err(), msg, fields) }

func (b *Logger) log(build *logiface.Builder[*stumpy.Event], msg string, fields map[string]any) {
	if build == nil {
		return
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			build = build.Err(err)
			continue
		}
		build = build.Any(k, v)
	}
	build.Log(msg)
}
