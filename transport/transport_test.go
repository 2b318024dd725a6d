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

package transport_test

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sevpn/vpncore/internal/errcode"
	"github.com/sevpn/vpncore/transport"
)

var _ = Describe("Resolve", func() {
	It("passes plain ASCII hosts through unchanged", func() {
		host, err := transport.Resolve("vpn.example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(host).To(Equal("vpn.example.com"))
	})

	It("punycode-encodes an internationalized host", func() {
		host, err := transport.Resolve("bücher.example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(host).To(Equal("xn--bcher-kva.example.com"))
	})
})

var _ = Describe("Dial", func() {
	It("fails fast when nothing listens on the target port", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		// Port 0 is never a valid listening target, so the dial fails
		// immediately rather than timing out the whole test.
		_, err := transport.Dial(ctx, "127.0.0.1", 0, 500*time.Millisecond)
		Expect(err).To(HaveOccurred())
		Expect(errcode.IsCode(err, errcode.ConnectFailed)).To(BeTrue())
	})

	It("connects and tunes the socket against a local listener", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		accepted := make(chan net.Conn, 1)
		go func() {
			c, _ := ln.Accept()
			accepted <- c
		}()

		addr := ln.Addr().(*net.TCPAddr)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		conn, err := transport.Dial(ctx, "127.0.0.1", uint16(addr.Port), time.Second)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		Eventually(accepted, time.Second).Should(Receive())
	})
})

var _ = Describe("ClientTLS", func() {
	It("reports a handshake failure as SSLHandshakeFailed", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		go func() {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			defer c.Close()
			// A plaintext server speaking no TLS at all forces the
			// client handshake to fail rather than succeed.
			_, _ = c.Write([]byte("not tls"))
		}()

		addr := ln.Addr().(*net.TCPAddr)
		conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
		Expect(err).NotTo(HaveOccurred())

		cfg := &tls.Config{InsecureSkipVerify: true}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err = transport.ClientTLS(ctx, conn, "localhost", cfg, time.Second)
		Expect(err).To(HaveOccurred())
		Expect(errcode.IsCode(err, errcode.SSLHandshakeFailed)).To(BeTrue())
	})
})
