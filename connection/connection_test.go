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

package connection_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"io"
	"math/big"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sevpn/vpncore/connection"
	"github.com/sevpn/vpncore/internal/connstate"
	"github.com/sevpn/vpncore/handshake"
	"github.com/sevpn/vpncore/wire"
)

func selfSignedCert() tls.Certificate {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).NotTo(HaveOccurred())

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	Expect(err).NotTo(HaveOccurred())

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func readFrame(r io.Reader) (wire.Header, []byte) {
	hdr := make([]byte, wire.HeaderLen)
	_, err := io.ReadFull(r, hdr)
	Expect(err).NotTo(HaveOccurred())
	h, err := wire.DecodeHeader(hdr)
	Expect(err).NotTo(HaveOccurred())
	payload := make([]byte, h.PayloadLen)
	if h.PayloadLen > 0 {
		_, err = io.ReadFull(r, payload)
		Expect(err).NotTo(HaveOccurred())
	}
	return h, payload
}

// serveHandshake plays a scripted server across one accepted connection:
// hello, a successful auth response, and a fixed DHCP lease. authStatus
// lets a test force an authentication failure.
func serveHandshake(conn net.Conn, authStatus uint32) {
	in := make([]byte, wire.HelloLen)
	_, err := io.ReadFull(conn, in)
	Expect(err).NotTo(HaveOccurred())

	var out [wire.HelloLen]byte
	copy(out[0:4], wire.Signature[:])
	out[4], out[5], out[6], out[7] = 4, 0, 0, 0
	_, err = conn.Write(out[:])
	Expect(err).NotTo(HaveOccurred())

	h, _ := readFrame(conn)
	Expect(h.Kind).To(Equal(wire.KindAuthRequest))

	status := make([]byte, 4)
	binary.BigEndian.PutUint32(status, authStatus)
	_, err = conn.Write(wire.Serialize(wire.KindAuthResponse, 0, status))
	Expect(err).NotTo(HaveOccurred())
	if authStatus != 0 {
		return
	}

	h, _ = readFrame(conn)
	Expect(h.Kind).To(Equal(wire.KindDHCPRequest))

	lease := make([]byte, 16)
	binary.BigEndian.PutUint32(lease[0:4], 0x0A000002)
	binary.BigEndian.PutUint32(lease[4:8], 0xFFFFFF00)
	binary.BigEndian.PutUint32(lease[8:12], 0x0A000001)
	binary.BigEndian.PutUint32(lease[12:16], 0x08080808)
	_, err = conn.Write(wire.Serialize(wire.KindDHCPResponse, 0, lease))
	Expect(err).NotTo(HaveOccurred())
}

type loopTunnel struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (t *loopTunnel) Read(p []byte) (int, error)  { return t.r.Read(p) }
func (t *loopTunnel) Write(p []byte) (int, error) { return t.w.Write(p) }
func (t *loopTunnel) Close() error {
	_ = t.r.Close()
	return t.w.Close()
}

var _ = Describe("Connection", func() {
	var ln net.Listener

	BeforeEach(func() {
		cert := selfSignedCert()
		var err error
		ln, err = tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		ln.Close()
	})

	It("reaches CONNECTED and publishes the negotiated network config", func() {
		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			serveHandshake(conn, 0)
			// Stay on the connection until the client's Disconnect closes its
			// side, so the session runtime doesn't see an early EOF and race
			// onto ERROR before the test issues its own explicit disconnect.
			_, _ = io.Copy(io.Discard, conn)
		}()

		connected := make(chan handshake.NetConfig, 1)
		c, err := connection.New(connection.Callbacks{
			OnConnected: func(cfg handshake.NetConfig) { connected <- cfg },
		}, nil)
		Expect(err).NotTo(HaveOccurred())

		r, w := io.Pipe()
		c.SetTunnel(&loopTunnel{r: r, w: w})

		addr := ln.Addr().(*net.TCPAddr)
		params := connection.Params{
			ServerHost:       "127.0.0.1",
			ServerPort:       uint16(addr.Port),
			Hub:              "DEFAULT",
			Username:         "alice",
			Password:         "s3cret",
			VerifyServerCert: false,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Expect(c.Connect(ctx, params)).NotTo(HaveOccurred())
		Expect(c.State()).To(Equal(connstate.Connected))

		var cfg handshake.NetConfig
		Eventually(connected, time.Second).Should(Receive(&cfg))
		Expect(cfg.ClientIP.String()).To(Equal("10.0.0.2"))

		c.Disconnect()
		Eventually(func() connstate.State { return c.State() }, time.Second).Should(Equal(connstate.Disconnected))
	})

	It("transitions to ERROR on an authentication failure", func() {
		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			serveHandshake(conn, 1)
		}()

		c, err := connection.New(connection.Callbacks{}, nil)
		Expect(err).NotTo(HaveOccurred())

		r, w := io.Pipe()
		c.SetTunnel(&loopTunnel{r: r, w: w})

		addr := ln.Addr().(*net.TCPAddr)
		params := connection.Params{
			ServerHost: "127.0.0.1",
			ServerPort: uint16(addr.Port),
			Hub:        "DEFAULT",
			Username:   "bob",
			Password:   "wrong",
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = c.Connect(ctx, params)
		Expect(err).To(HaveOccurred())
		Expect(c.State()).To(Equal(connstate.Error))
		Expect(c.LastError()).NotTo(BeNil())
	})
})
