package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mdobak/go-xerrors"
)

var (
	once   sync.Once
	logger *slog.Logger
	level  = new(slog.LevelVar)
)

type frame struct {
	Func   string `json:"func"`
	Source string `json:"source"`
	Line   int    `json:"line"`
}

func stack(err error) []frame {
	trace := xerrors.StackTrace(err)
	if len(trace) == 0 {
		return nil
	}
	var res []frame
	for _, f := range trace.Frames() {
		res = append(res, frame{
			Func:   filepath.Base(f.Function),
			Source: filepath.Join(filepath.Base(filepath.Dir(f.File)), filepath.Base(f.File)),
			Line:   f.Line,
		})
	}
	return res
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	err, ok := a.Value.Any().(error)
	if !ok {
		return a
	}
	attrs := []any{slog.String("msg", err.Error())}
	if frames := stack(err); len(frames) > 0 {
		var b strings.Builder
		for i, f := range frames {
			if i > 0 {
				b.WriteString(" < ")
			}
			fmt.Fprintf(&b, "%s %s:%d", f.Func, f.Source, f.Line)
		}
		attrs = append(attrs, slog.String("trace", b.String()))
	}
	return slog.Group(a.Key, attrs...)
}

func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func New(w io.Writer, lvl slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceAttr,
	}))
}

// SetLevel changes the level of the process logger, including loggers
// already handed out by GetLogger.
func SetLevel(s string) {
	level.Set(ParseLevel(s))
}

// GetLogger returns the process logger, writing to stderr. The level starts
// at info until SetLevel is called.
func GetLogger() *slog.Logger {
	once.Do(func() {
		logger = New(os.Stderr, level)
	})
	return logger
}
