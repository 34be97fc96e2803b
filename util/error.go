// util/error.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ilominar/viperops2miz/log"
)

// ErrorLogger collects validation problems. Push and Pop maintain the
// path to the item being checked; each problem is reported along with
// the path that was current when it was found.
type ErrorLogger struct {
	path   []string
	issues []issue
}

type issue struct {
	path string
	msg  string
}

func (is issue) String() string {
	if is.path == "" {
		return is.msg
	}
	return is.path + ": " + is.msg
}

func (e *ErrorLogger) Push(s string) {
	e.path = append(e.path, s)
}

func (e *ErrorLogger) Pop() {
	e.path = e.path[:len(e.path)-1]
}

func (e *ErrorLogger) ErrorString(format string, args ...any) {
	e.add(fmt.Sprintf(format, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.add(err.Error())
}

func (e *ErrorLogger) add(msg string) {
	e.issues = append(e.issues, issue{path: strings.Join(e.path, " / "), msg: msg})
}

func (e *ErrorLogger) HaveErrors() bool {
	return e != nil && len(e.issues) > 0
}

// PrintErrors logs the problems to lg, which may be nil, and then lists
// them on stderr.
func (e *ErrorLogger) PrintErrors(lg *log.Logger) {
	for _, is := range e.issues {
		if lg != nil {
			lg.Error("validation failed", slog.String("path", is.path), slog.String("problem", is.msg))
		}
		fmt.Fprintln(os.Stderr, is)
	}
}

func (e *ErrorLogger) String() string {
	lines := make([]string, len(e.issues))
	for i, is := range e.issues {
		lines[i] = is.String()
	}
	return strings.Join(lines, "\n")
}

// Err returns the collected problems joined into a single error, or nil
// if there are none.
func (e *ErrorLogger) Err() error {
	if !e.HaveErrors() {
		return nil
	}
	errs := make([]error, len(e.issues))
	for i, is := range e.issues {
		errs[i] = errors.New(is.String())
	}
	return errors.Join(errs...)
}
