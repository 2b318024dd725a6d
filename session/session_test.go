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

package session_test

import (
	"io"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sevpn/vpncore/internal/connstate"
	"github.com/sevpn/vpncore/internal/vpnlog"
	"github.com/sevpn/vpncore/session"
	"github.com/sevpn/vpncore/wire"
)

// fakeTunnel wires its Read side to one io.Pipe and its Write side to
// another, so a test can feed bytes in on one end and observe what comes
// out the other without a real file descriptor.
type fakeTunnel struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func newFakeTunnel() (host *fakeTunnel, test *fakeTunnel) {
	toTunnel := func() (*io.PipeReader, *io.PipeWriter) { return io.Pipe() }
	inR, inW := toTunnel()
	outR, outW := toTunnel()
	return &fakeTunnel{r: inR, w: outW}, &fakeTunnel{r: outR, w: inW}
}

func (t *fakeTunnel) Read(p []byte) (int, error)  { return t.r.Read(p) }
func (t *fakeTunnel) Write(p []byte) (int, error) { return t.w.Write(p) }
func (t *fakeTunnel) Close() error {
	_ = t.r.Close()
	return t.w.Close()
}

var _ = Describe("Runtime", func() {
	var (
		clientStream, serverStream net.Conn
		hostTunnel, testTunnel     *fakeTunnel
		rt                         *session.Runtime
		states                     chan connstate.State
	)

	BeforeEach(func() {
		clientStream, serverStream = net.Pipe()
		hostTunnel, testTunnel = newFakeTunnel()
		states = make(chan connstate.State, 4)
		rt = session.New(clientStream, hostTunnel, 4, vpnlog.Noop(), func(s connstate.State) {
			states <- s
		})
		rt.Start()
	})

	AfterEach(func() {
		hostTunnel.Close()
		testTunnel.Close()
		rt.Stop()
		clientStream.Close()
		serverStream.Close()
	})

	It("writes an inbound DATA frame's payload to the tunnel descriptor", func() {
		payload := []byte("hello-from-server")
		_, err := serverStream.Write(wire.Serialize(wire.KindData, 0, payload))
		Expect(err).NotTo(HaveOccurred())

		buf := make([]byte, len(payload))
		_, err = io.ReadFull(testTunnel, buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(Equal(payload))

		Eventually(func() uint64 { return rt.Statistics().PacketsReceived }).Should(Equal(uint64(1)))
	})

	It("frames tunnel reads as outbound DATA packets", func() {
		payload := []byte("hello-from-tunnel")
		go func() { _, _ = testTunnel.Write(payload) }()

		hdr := make([]byte, wire.HeaderLen)
		_, err := io.ReadFull(serverStream, hdr)
		Expect(err).NotTo(HaveOccurred())
		h, err := wire.DecodeHeader(hdr)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Kind).To(Equal(wire.KindData))

		got := make([]byte, h.PayloadLen)
		_, err = io.ReadFull(serverStream, got)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(payload))
	})

	It("halts the ingress task and signals DISCONNECTING on a DISCONNECT frame", func() {
		_, err := serverStream.Write(wire.Serialize(wire.KindDisconnect, 0, nil))
		Expect(err).NotTo(HaveOccurred())

		Eventually(states, time.Second).Should(Receive(Equal(connstate.Disconnecting)))
	})

	It("ignores KEEPALIVE frames", func() {
		_, err := serverStream.Write(wire.Serialize(wire.KindKeepAlive, 0, nil))
		Expect(err).NotTo(HaveOccurred())
		Consistently(states, 50*time.Millisecond).ShouldNot(Receive())
	})
})

var _ = Describe("Statistics", func() {
	It("zeroes every counter and re-stamps the session start on reset", func() {
		clientStream, serverStream := net.Pipe()
		defer clientStream.Close()
		defer serverStream.Close()
		hostTunnel, testTunnel := newFakeTunnel()

		rt := session.New(clientStream, hostTunnel, 4, vpnlog.Noop(), nil)
		rt.Start()
		defer rt.Stop()
		defer hostTunnel.Close()
		defer testTunnel.Close()

		go func() { _, _ = testTunnel.Write([]byte("x")) }()
		Eventually(func() uint64 { return rt.Statistics().PacketsSent }).Should(Equal(uint64(1)))

		before := rt.Statistics().SessionStartMillis
		time.Sleep(2 * time.Millisecond)
		rt.ResetStatistics()

		stats := rt.Statistics()
		Expect(stats.PacketsSent).To(Equal(uint64(0)))
		Expect(stats.BytesSent).To(Equal(uint64(0)))
		Expect(stats.SessionStartMillis).To(BeNumerically(">=", before))
	})
})
