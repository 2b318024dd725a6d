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

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderLen is the exact size of the wire header in bytes.
	HeaderLen = 12

	// MaxPayload is the largest payload a single frame may carry.
	MaxPayload = 65536

	// MaxFrame is HeaderLen + MaxPayload, the largest a serialized frame
	// can ever be.
	MaxFrame = HeaderLen + MaxPayload
)

// Header is the decoded form of the 12-byte wire header:
// kind:u32 | flags:u32 | payload_len:u32, big-endian.
type Header struct {
	Kind       Kind
	Flags      uint32
	PayloadLen uint32
}

// Serialize encodes (kind, flags, payload) as header+payload into a single
// allocation. It panics if payload exceeds MaxPayload: an oversized payload
// at this layer is always a caller bug (the facade is responsible for
// chunking before it ever reaches the codec), never a runtime condition to
// recover from.
func Serialize(kind Kind, flags uint32, payload []byte) []byte {
	if len(payload) > MaxPayload {
		panic(fmt.Sprintf("wire: payload of %d bytes exceeds max %d", len(payload), MaxPayload))
	}

	buf := make([]byte, HeaderLen+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(kind))
	binary.BigEndian.PutUint32(buf[4:8], flags)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(payload)))
	copy(buf[HeaderLen:], payload)
	return buf
}

// DecodeHeader reads the 12-byte header from the front of b. It fails only
// if b is shorter than HeaderLen; a declared payload_len larger than
// MaxPayload is still decoded here (bounds on payload size are enforced by
// the reader that then tries to read PayloadLen bytes, since a header-only
// view cannot know whether the transport intends to honor the cap).
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("wire: short header, need %d bytes, got %d", HeaderLen, len(b))
	}
	return Header{
		Kind:       Kind(binary.BigEndian.Uint32(b[0:4])),
		Flags:      binary.BigEndian.Uint32(b[4:8]),
		PayloadLen: binary.BigEndian.Uint32(b[8:12]),
	}, nil
}

// PeekPayloadLen returns the declared payload length from bytes 8..12
// without decoding the rest of the header or copying the buffer.
func PeekPayloadLen(b []byte) (uint32, error) {
	if len(b) < HeaderLen {
		return 0, fmt.Errorf("wire: short header, need %d bytes, got %d", HeaderLen, len(b))
	}
	return binary.BigEndian.Uint32(b[8:12]), nil
}

// DecodeFrame decodes a full frame from b, which must hold at least
// HeaderLen+payload_len bytes. The returned payload is a sub-slice of b
// (borrowed, not copied); callers that retain it past the lifetime of b's
// backing array must copy it themselves.
func DecodeFrame(b []byte) (Header, []byte, error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return Header{}, nil, err
	}
	need := HeaderLen + int(h.PayloadLen)
	if len(b) < need {
		return Header{}, nil, fmt.Errorf("wire: short frame, need %d bytes, got %d", need, len(b))
	}
	return h, b[HeaderLen:need], nil
}
