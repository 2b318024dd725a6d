/*
 * MIT License
 *
 * Copyright (c) 2026 sevpn contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package vpnlog is a thin structured-logging facade over logrus. Every
// session task and handshake phase logs through a Logger scoped with a
// "handle" field, so a host collecting logs from many concurrent
// connections can filter by handle without parsing message text.
package vpnlog

import "github.com/sirupsen/logrus"

// Logger is the subset of logging operations the engine needs. It is
// intentionally small: no hooks, no file/syslog targets, no gin/gorm
// integration, none of which apply to a library with no filesystem access
// of its own (the host owns log sinks on Android).
type Logger interface {
	Debug(msg string, fields logrus.Fields)
	Info(msg string, fields logrus.Fields)
	Warn(msg string, fields logrus.Fields)
	Error(msg string, fields logrus.Fields)

	// With returns a Logger that merges extra into every subsequent call's
	// fields, without mutating the receiver.
	With(extra logrus.Fields) Logger
}

type lgr struct {
	entry *logrus.Entry
}

// New wraps the given logrus.Logger (nil creates one with sane Android-host
// defaults: text formatter, Info level) into a vpnlog.Logger.
func New(base *logrus.Logger) Logger {
	if base == nil {
		base = logrus.New()
		base.SetLevel(logrus.InfoLevel)
	}
	return &lgr{entry: logrus.NewEntry(base)}
}

func (l *lgr) Debug(msg string, fields logrus.Fields) { l.entry.WithFields(fields).Debug(msg) }
func (l *lgr) Info(msg string, fields logrus.Fields)  { l.entry.WithFields(fields).Info(msg) }
func (l *lgr) Warn(msg string, fields logrus.Fields)  { l.entry.WithFields(fields).Warn(msg) }
func (l *lgr) Error(msg string, fields logrus.Fields) { l.entry.WithFields(fields).Error(msg) }

func (l *lgr) With(extra logrus.Fields) Logger {
	return &lgr{entry: l.entry.WithFields(extra)}
}

// Noop returns a Logger that discards everything, for tests that don't care
// about log output.
func Noop() Logger {
	base := logrus.New()
	base.SetOutput(discard{})
	return New(base)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
