// log/log.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes structured records to a rotating file. A nil *Logger is
// valid: debug and info records are dropped and warnings and errors go
// to slog's default logger.
type Logger struct {
	*slog.Logger
	LogFile string
	LogDir  string
	Start   time.Time
}

// DefaultDir returns the directory where logs, crash reports and the
// configuration file live by default.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to find user config dir: %v\n", err)
		dir = "."
	}
	return filepath.Join(dir, "ViperOps2MIZ")
}

// ParseLevel maps a level name as given on the command line to a
// slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%s: invalid log level", level)
	}
}

// New returns a Logger that writes JSON records to a rotating log file
// in dir, or in DefaultDir() if dir is empty. An invalid level is
// reported on stderr and info is used instead.
func New(level string, dir string) *Logger {
	if dir == "" {
		dir = DefaultDir()
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "viperops2miz.slog"),
		MaxSize:    16, // MB
		MaxBackups: 1,
	}
	if lvl == slog.LevelDebug {
		w.MaxSize = 128
	}

	l := &Logger{
		Logger:  slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})),
		LogFile: w.Filename,
		LogDir:  dir,
		Start:   time.Now(),
	}
	l.Info("startup", slog.Time("start", l.Start), runtimeInfo())
	return l
}

func runtimeInfo() slog.Attr {
	attrs := []any{
		slog.String("os", runtime.GOOS),
		slog.String("arch", runtime.GOARCH),
		slog.Int("cpus", runtime.NumCPU()),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		attrs = append(attrs, slog.String("go", bi.GoVersion), slog.String("path", bi.Path))
		if bi.Main.Version != "" {
			attrs = append(attrs, slog.String("version", bi.Main.Version))
		}
	}
	return slog.Group("runtime", attrs...)
}

func (l *Logger) enabled(level slog.Level) bool {
	if l == nil {
		return level >= slog.LevelWarn
	}
	return l.Logger.Enabled(context.Background(), level)
}

// emit adds the caller's stack to the record. It must be called directly
// from one of the exported logging methods.
func (l *Logger) emit(level slog.Level, msg string, args []any) {
	args = append([]any{slog.Any("callstack", Callstack(2))}, args...)
	lg := slog.Default()
	if l != nil {
		lg = l.Logger
	}
	lg.Log(context.Background(), level, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	if l.enabled(slog.LevelDebug) {
		l.emit(slog.LevelDebug, msg, args)
	}
}

// Debugf logs a printf-style formatted message; the arguments are only
// formatted if debug records are enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if l.enabled(slog.LevelDebug) {
		l.emit(slog.LevelDebug, fmt.Sprintf(format, args...), nil)
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l.enabled(slog.LevelInfo) {
		l.emit(slog.LevelInfo, msg, args)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	if l.enabled(slog.LevelInfo) {
		l.emit(slog.LevelInfo, fmt.Sprintf(format, args...), nil)
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l.enabled(slog.LevelWarn) {
		l.emit(slog.LevelWarn, msg, args)
	}
}

func (l *Logger) Warnf(format string, args ...any) {
	if l.enabled(slog.LevelWarn) {
		l.emit(slog.LevelWarn, fmt.Sprintf(format, args...), nil)
	}
}

func (l *Logger) Error(msg string, args ...any) {
	if l.enabled(slog.LevelError) {
		l.emit(slog.LevelError, msg, args)
	}
}

func (l *Logger) Errorf(format string, args ...any) {
	if l.enabled(slog.LevelError) {
		l.emit(slog.LevelError, fmt.Sprintf(format, args...), nil)
	}
}

// With returns a Logger that includes the given attributes in each
// record; With on a nil Logger returns nil.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	c.Logger = l.Logger.With(args...)
	return &c
}

// CatchAndReportCrash should be deferred at the top of main. If the
// program is panicking it logs the panic, prints a report to stderr and
// saves it in the log directory, then returns the recovered value.
func (l *Logger) CatchAndReportCrash() any {
	err := recover()
	if err == nil {
		return nil
	}
	l.Errorf("Crashed: %v", err)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Crashed: %v\n", err)
	fmt.Fprintf(&sb, "Sys: %s/%s\n", runtime.GOARCH, runtime.GOOS)
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			fmt.Fprintf(&sb, "%s: %s\n", setting.Key, setting.Value)
		}
	}
	sb.Write(debug.Stack())
	report := sb.String()

	fmt.Fprintln(os.Stderr, report)
	if l != nil {
		fn := filepath.Join(l.LogDir, "crash-"+time.Now().Format("20060102-150405")+".txt")
		_ = os.WriteFile(fn, []byte(report), 0o600)
	}
	return err
}
