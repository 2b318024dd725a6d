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

package wire

import "fmt"

// HelloLen is the exact size of the handshake hello block.
const HelloLen = 64

// Signature is the four ASCII bytes that open every hello block, at
// hello[0:4]. This package does not implement any older legacy header
// format; it speaks only this signature.
var Signature = [4]byte{'S', 'T', 'V', 'P'}

// Hello is the decoded form of the 64-byte handshake hello block exchanged
// as the first step of the handshake.
type Hello struct {
	Major, Minor, BuildHi, BuildLo byte
	UseEncrypt, UseCompress        bool
	Nonce                          [16]byte
}

// EncodeHello lays out a Hello into the fixed 64-byte block: bytes 0..4 the
// STVP signature, 4..8 the version quad, 8..9/9..10 the capability toggles,
// 16..32 the session nonce, the rest zero.
func EncodeHello(h Hello) [HelloLen]byte {
	var b [HelloLen]byte
	copy(b[0:4], Signature[:])
	b[4] = h.Major
	b[5] = h.Minor
	b[6] = h.BuildHi
	b[7] = h.BuildLo
	if h.UseEncrypt {
		b[8] = 1
	}
	if h.UseCompress {
		b[9] = 1
	}
	copy(b[16:32], h.Nonce[:])
	return b
}

// DecodeHello parses a 64-byte hello block and validates its signature.
// A signature mismatch is the caller's cue to fail the handshake as a
// protocol mismatch; this function only reports the mismatch, it does not
// know about error codes.
func DecodeHello(b []byte) (Hello, error) {
	if len(b) < HelloLen {
		return Hello{}, fmt.Errorf("wire: short hello block, need %d bytes, got %d", HelloLen, len(b))
	}
	if b[0] != Signature[0] || b[1] != Signature[1] || b[2] != Signature[2] || b[3] != Signature[3] {
		return Hello{}, fmt.Errorf("wire: bad hello signature %q", b[0:4])
	}
	var h Hello
	h.Major, h.Minor, h.BuildHi, h.BuildLo = b[4], b[5], b[6], b[7]
	h.UseEncrypt = b[8] != 0
	h.UseCompress = b[9] != 0
	copy(h.Nonce[:], b[16:32])
	return h, nil
}
