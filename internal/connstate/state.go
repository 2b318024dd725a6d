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

// Package connstate defines the connection state machine: a closed set of
// states and the edges a Connection is allowed to take between them.
package connstate

// State is one of the five states a Connection can be in.
type State uint8

const (
	Disconnected State = iota
	Connecting
	Connected
	Disconnecting
	Error
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	case Disconnecting:
		return "DISCONNECTING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// edges enumerates the legal next-states for every state. Error is
// reachable from any state (an unrecoverable fault can occur during any
// phase), so it is appended to every row rather than listed per-row.
var edges = map[State][]State{
	Disconnected:  {Connecting},
	Connecting:    {Connected},
	Connected:     {Disconnecting},
	Disconnecting: {Disconnected},
	Error:         {Connecting, Disconnected},
}

// CanTransition reports whether moving from cur to next is a legal edge of
// the state machine. Error is always a legal destination: it is the sink
// for unrecoverable faults regardless of the current phase.
func CanTransition(cur, next State) bool {
	if next == Error {
		return true
	}
	for _, s := range edges[cur] {
		if s == next {
			return true
		}
	}
	return false
}

// Terminal reports whether a state is a sink of the machine: no task keeps
// running once a Connection reaches it without going through Connecting
// again.
func (s State) Terminal() bool {
	return s == Disconnected || s == Error
}
