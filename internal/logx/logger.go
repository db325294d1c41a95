// Package logx is the logging seam shared by the engine packages.
package logx

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type Logger interface {
	Debug(msg string, keyValues ...any)
	Info(msg string, keyValues ...any)
	Warn(msg string, keyValues ...any)
	Error(msg string, keyValues ...any)
}

// TraceLogger writes through raylib's TraceLog so engine messages interleave
// with raylib's own output and obey rl.SetTraceLogLevel.
type TraceLogger struct {
	Prefix string
}

func NewTraceLogger(prefix string) *TraceLogger {
	return &TraceLogger{Prefix: prefix}
}

func (l *TraceLogger) Debug(msg string, keyValues ...any) {
	rl.TraceLog(rl.LogDebug, "%s", l.format(msg, keyValues))
}

func (l *TraceLogger) Info(msg string, keyValues ...any) {
	rl.TraceLog(rl.LogInfo, "%s", l.format(msg, keyValues))
}

func (l *TraceLogger) Warn(msg string, keyValues ...any) {
	rl.TraceLog(rl.LogWarning, "%s", l.format(msg, keyValues))
}

func (l *TraceLogger) Error(msg string, keyValues ...any) {
	rl.TraceLog(rl.LogError, "%s", l.format(msg, keyValues))
}

func (l *TraceLogger) format(msg string, keyValues []any) string {
	var b strings.Builder
	if l.Prefix != "" {
		b.WriteString(l.Prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	b.WriteString(FormatKeyValues(keyValues...))
	return b.String()
}

// FormatKeyValues renders pairs as " k=v k=v". A trailing key without a value gets "<missing>".
func FormatKeyValues(keyValues ...any) string {
	var b strings.Builder
	for i := 0; i < len(keyValues); i += 2 {
		b.WriteByte(' ')
		fmt.Fprint(&b, keyValues[i])
		b.WriteByte('=')
		if i+1 < len(keyValues) {
			fmt.Fprint(&b, keyValues[i+1])
		} else {
			b.WriteString("<missing>")
		}
	}
	return b.String()
}

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nop{}
}
