// log/stack.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	modulePrefix = "github.com/ilominar/viperops2miz/"
	maxFrames    = 16
)

type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f Frame) String() string {
	return fmt.Sprintf("%s:%d:%s", f.File, f.Line, f.Function)
}

// Stack is a call stack, innermost frame first.
type Stack []Frame

// Callstack returns the caller's stack, stopping at main.main. skip
// frames above the caller of Callstack are omitted first.
func Callstack(skip int) Stack {
	pcs := make([]uintptr, maxFrames)
	// runtime.Callers and Callstack itself are always skipped.
	pcs = pcs[:runtime.Callers(2+skip, pcs)]
	if len(pcs) == 0 {
		return nil
	}

	st := make(Stack, 0, len(pcs))
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		fn, ok := strings.CutPrefix(frame.Function, modulePrefix)
		if !ok {
			fn = strings.TrimPrefix(frame.Function, "main.")
		}
		st = append(st, Frame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: fn,
		})
		if !more || frame.Function == "main.main" {
			return st
		}
	}
}

// LogValue writes the stack as a list of "file:line:function" strings.
func (s Stack) LogValue() slog.Value {
	frames := make([]string, len(s))
	for i, f := range s {
		frames[i] = f.String()
	}
	return slog.AnyValue(frames)
}
