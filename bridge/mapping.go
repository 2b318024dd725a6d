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

package bridge

import (
	"github.com/sevpn/vpncore/internal/connstate"
	"github.com/sevpn/vpncore/internal/errcode"
)

// errorCode maps the engine's closed error taxonomy onto the host's numeric
// constants. The mapping is part of the public contract: it must never be
// reordered, only extended for genuinely new engine error kinds.
var errorCode = map[errcode.Code]int{
	errcode.Success:            0,
	errcode.ConnectFailed:      1,
	errcode.AuthFailed:         2,
	errcode.SSLHandshakeFailed: 3,
	errcode.DHCPFailed:         4,
	errcode.TunFailed:          5,
}

// ErrorCode translates an engine error code into the host's numeric
// constant. Codes the host contract has no slot for (InvalidParam,
// ProtocolMismatch, Timeout, NetworkError, OutOfMemory) fall back to the
// host's generic failure code, 1, matching CONNECT_FAILED: the host only
// needs to know "it failed" for those, and the human-readable detail is
// still available through GetErrorString.
func ErrorCode(c errcode.Code) int {
	if v, ok := errorCode[c]; ok {
		return v
	}
	return 1
}

// errorString gives each engine error code the exact host-facing string
// the boundary contract promises, independent of errcode.Code.Message's
// internal, lower-cased wording.
var errorString = map[errcode.Code]string{
	errcode.Success:            "Success",
	errcode.InvalidParam:       "Invalid parameter",
	errcode.ConnectFailed:      "Connection failed",
	errcode.AuthFailed:         "Authentication failed",
	errcode.SSLHandshakeFailed: "TLS handshake failed",
	errcode.ProtocolMismatch:   "Protocol mismatch",
	errcode.DHCPFailed:         "Network configuration request failed",
	errcode.TunFailed:          "Tunnel device failure",
	errcode.Timeout:            "Operation timed out",
	errcode.NetworkError:       "Network error",
	errcode.OutOfMemory:        "Out of memory",
}

// ErrorString returns the host-facing message for an engine error code.
func ErrorString(c errcode.Code) string {
	if s, ok := errorString[c]; ok {
		return s
	}
	return "Unknown error"
}

// connState maps the engine's connection state enum onto the host's
// numeric constants. The iota order of connstate.State already matches
// this table; the map exists anyway so a reordering of connstate's
// constants cannot silently reorder the public contract underneath it.
var connState = map[connstate.State]int{
	connstate.Disconnected:  0,
	connstate.Connecting:    1,
	connstate.Connected:     2,
	connstate.Disconnecting: 3,
	connstate.Error:         4,
}

// ConnState translates an engine connection state into the host's numeric
// constant.
func ConnState(s connstate.State) int {
	return connState[s]
}
