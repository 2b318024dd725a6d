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

// Package errcode implements the closed error taxonomy of the connection
// engine: a fixed set of numeric codes, each with a stable message, plus a
// lightweight wrapper that carries an optional underlying cause.
package errcode

import "fmt"

// Code is one of the fixed engine error kinds. Unlike a general-purpose
// error-code package, this set never grows at runtime: every kind a
// connection can report is enumerated below.
type Code uint8

const (
	Success Code = iota
	InvalidParam
	ConnectFailed
	AuthFailed
	SSLHandshakeFailed
	ProtocolMismatch
	DHCPFailed
	TunFailed
	Timeout
	NetworkError
	OutOfMemory
)

var message = map[Code]string{
	Success:            "success",
	InvalidParam:       "invalid parameter",
	ConnectFailed:      "connection failed",
	AuthFailed:         "authentication failed",
	SSLHandshakeFailed: "TLS handshake failed",
	ProtocolMismatch:   "protocol mismatch",
	DHCPFailed:         "network configuration request failed",
	TunFailed:          "tunnel device failure",
	Timeout:            "operation timed out",
	NetworkError:       "network error",
	OutOfMemory:        "out of memory",
}

// Message returns the fixed human-readable string for the code. Unknown
// codes (which cannot occur through the constructors below, but can arrive
// across a serialization boundary) fall back to the OutOfMemory-adjacent
// "unknown error" text rather than panicking.
func (c Code) Message() string {
	if m, ok := message[c]; ok {
		return m
	}
	return "unknown error"
}

func (c Code) String() string {
	return c.Message()
}

// Error is the error value carried on a Connection's "last error" field and
// returned from fallible operations. It pairs a fixed Code with the fixed
// message and an optional wrapped cause describing the underlying failure
// (a *net.OpError, a TLS alert, a short-read detail, ...).
type Error struct {
	code  Code
	cause error
}

func New(code Code, cause error) *Error {
	return &Error{code: code, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return Success
	}
	return e.code
}

func (e *Error) Error() string {
	if e == nil {
		return Success.Message()
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.code.Message(), e.cause)
	}
	return e.code.Message()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if err == nil {
		return false
	}
	if ce, ok := err.(*Error); ok {
		e = ce
	} else {
		return false
	}
	return e.code == code
}
