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

// Package transport resolves and dials the server TCP endpoint with a
// timeout, tunes the socket, and wraps it in a TLS client session with SNI.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/idna"

	"github.com/sevpn/vpncore/internal/errcode"
	"github.com/sevpn/vpncore/tlsconfig"
)

// sendRecvBuffer is the size set on the TCP socket's send and receive
// buffers.
const sendRecvBuffer = 64 * 1024

// Stream is a secured, bidirectional byte stream: the TLS-wrapped
// connection handed to the handshake driver and the session runtime. It is
// an interface (not *tls.Conn directly) so tests can substitute an in-memory
// pipe without standing up a real TLS server.
type Stream interface {
	net.Conn
}

// Resolve normalizes an internationalized host name via IDNA/punycode
// before it is used for DNS resolution or SNI. Plain ASCII hosts (the
// overwhelming majority) pass through unchanged.
func Resolve(host string) (string, error) {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", errcode.New(errcode.ConnectFailed, fmt.Errorf("resolve host %q: %w", host, err))
	}
	return ascii, nil
}

// Dial opens a TCP connection to host:port honoring timeout, then tunes the
// socket: keepalive enabled, Nagle disabled, 64KiB send/receive buffers. On
// timeout or any dial failure the error is ConnectFailed.
func Dial(ctx context.Context, host string, port uint16, timeout time.Duration) (net.Conn, error) {
	ascii, err := Resolve(host)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(ascii, fmt.Sprintf("%d", port))
	d := net.Dialer{Timeout: timeout}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.DialContext(dctx, "tcp", addr)
	if err != nil {
		return nil, errcode.New(errcode.ConnectFailed, err)
	}

	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return conn, nil
	}

	if err := tcp.SetKeepAlive(true); err != nil {
		_ = conn.Close()
		return nil, errcode.New(errcode.ConnectFailed, err)
	}
	if err := tcp.SetNoDelay(true); err != nil {
		_ = conn.Close()
		return nil, errcode.New(errcode.ConnectFailed, err)
	}
	if err := tcp.SetReadBuffer(sendRecvBuffer); err != nil {
		_ = conn.Close()
		return nil, errcode.New(errcode.ConnectFailed, err)
	}
	if err := tcp.SetWriteBuffer(sendRecvBuffer); err != nil {
		_ = conn.Close()
		return nil, errcode.New(errcode.ConnectFailed, err)
	}

	return tcp, nil
}

// ClientTLS wraps conn in a TLS client session targeting serverName and
// performs a full handshake within the given deadline. Handshake failures
// (including certificate verification failures, when enabled) translate to
// SSLHandshakeFailed.
func ClientTLS(ctx context.Context, conn net.Conn, serverName string, cfg *tls.Config, timeout time.Duration) (Stream, error) {
	tconn := tls.Client(conn, cfg)

	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := tconn.HandshakeContext(hctx); err != nil {
		_ = tconn.Close()
		return nil, errcode.New(errcode.SSLHandshakeFailed, err)
	}

	return tconn, nil
}

// Connect dials host:port and layers a TLS client session on top in one
// call, the combination the handshake driver actually uses. verifyCert
// controls certificate-chain verification; it must default to true
// everywhere except explicit test harnesses.
func Connect(ctx context.Context, host string, port uint16, verifyCert bool, dialTimeout, tlsTimeout time.Duration) (Stream, error) {
	conn, err := Dial(ctx, host, port, dialTimeout)
	if err != nil {
		return nil, err
	}

	ascii, err := Resolve(host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	cfg := tlsconfig.New().WithVerify(verifyCert).Config(ascii)
	stream, err := ClientTLS(ctx, conn, ascii, cfg, tlsTimeout)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return stream, nil
}
