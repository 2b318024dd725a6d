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

// Package wire implements the binding wire frame: a fixed 12-byte
// big-endian header followed by a variable-length payload, and the 64-byte
// hello block exchanged in handshake phase 1. The codec never allocates
// more than the output it produces and never fails on a short read — a
// partial read is the transport layer's problem to retry, not this
// package's problem to report.
package wire

// Kind is the 32-bit frame-kind tag. The authoritative set is the eight
// values below; anything else decodes successfully, Known reports false
// for it, and String returns "UNKNOWN".
type Kind uint32

const (
	KindData         Kind = 0x0001
	KindControl      Kind = 0x0002
	KindKeepAlive    Kind = 0x0003
	KindAuthRequest  Kind = 0x0010
	KindAuthResponse Kind = 0x0011
	KindDHCPRequest  Kind = 0x0020
	KindDHCPResponse Kind = 0x0021
	KindDisconnect   Kind = 0x00FF
)

var names = map[Kind]string{
	KindData:         "DATA",
	KindControl:      "CONTROL",
	KindKeepAlive:    "KEEPALIVE",
	KindAuthRequest:  "AUTH_REQUEST",
	KindAuthResponse: "AUTH_RESPONSE",
	KindDHCPRequest:  "DHCP_REQUEST",
	KindDHCPResponse: "DHCP_RESPONSE",
	KindDisconnect:   "DISCONNECT",
}

// Known reports whether the kind is one of the eight authoritative values.
func (k Kind) Known() bool {
	_, ok := names[k]
	return ok
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "UNKNOWN"
}
