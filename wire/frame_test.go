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

package wire_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sevpn/vpncore/wire"
)

var _ = Describe("Frame", func() {
	It("round-trips kind, flags and payload", func() {
		payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
		buf := wire.Serialize(wire.KindData, 0, payload)

		Expect(buf).To(Equal([]byte{
			0x00, 0x00, 0x00, 0x01,
			0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x04,
			0xDE, 0xAD, 0xBE, 0xEF,
		}))

		h, p, err := wire.DecodeFrame(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(h.Kind).To(Equal(wire.KindData))
		Expect(h.Flags).To(Equal(uint32(0)))
		Expect(h.PayloadLen).To(Equal(uint32(4)))
		Expect(p).To(Equal(payload))
	})

	It("produces a frame of exactly 12+payload_len bytes", func() {
		for _, n := range []int{0, 1, 12, 65536} {
			buf := wire.Serialize(wire.KindData, 0, bytes.Repeat([]byte{1}, n))
			Expect(len(buf)).To(Equal(wire.HeaderLen + n))
		}
	})

	It("panics when the payload exceeds the cap", func() {
		Expect(func() {
			wire.Serialize(wire.KindData, 0, make([]byte, wire.MaxPayload+1))
		}).To(Panic())
	})

	It("fails to decode a header shorter than 12 bytes", func() {
		_, err := wire.DecodeHeader(make([]byte, 11))
		Expect(err).To(HaveOccurred())
	})

	It("fails to decode a frame whose buffer is too small for the declared payload", func() {
		buf := wire.Serialize(wire.KindData, 0, []byte{1, 2, 3, 4})
		_, _, err := wire.DecodeFrame(buf[:wire.HeaderLen+2])
		Expect(err).To(HaveOccurred())
	})

	It("peeks the payload length without copying", func() {
		buf := wire.Serialize(wire.KindKeepAlive, 0, make([]byte, 42))
		n, err := wire.PeekPayloadLen(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(uint32(42)))
	})

	It("classifies unknown frame kinds", func() {
		Expect(wire.Kind(0x9999).Known()).To(BeFalse())
		Expect(wire.KindDisconnect.Known()).To(BeTrue())
		Expect(wire.Kind(0x9999).String()).To(Equal("UNKNOWN"))
	})
})

var _ = Describe("Hello block", func() {
	It("round-trips version, capability toggles and nonce", func() {
		var nonce [16]byte
		for i := range nonce {
			nonce[i] = byte(i)
		}
		h := wire.Hello{Major: 4, Minor: 0, BuildHi: 0, BuildLo: 0, UseEncrypt: true, UseCompress: false, Nonce: nonce}
		buf := wire.EncodeHello(h)
		Expect(buf[0:4]).To(Equal([]byte{'S', 'T', 'V', 'P'}))

		got, err := wire.DecodeHello(buf[:])
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(h))
	})

	It("rejects a mismatched signature", func() {
		var buf [wire.HelloLen]byte
		copy(buf[0:4], "XTVP")
		_, err := wire.DecodeHello(buf[:])
		Expect(err).To(HaveOccurred())
	})

	It("rejects a short buffer", func() {
		_, err := wire.DecodeHello(make([]byte, 10))
		Expect(err).To(HaveOccurred())
	})
})
