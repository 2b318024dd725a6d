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

// Package tlsconfig builds the *tls.Config used by the transport layer's
// client session. It is a deliberately small client-only subset of
// the certificate/cipher/curve management the wider ecosystem offers: this
// engine dials exactly one server per Connection and never terminates TLS
// itself, so there is no certificate-pair pool, no client-auth mode, and no
// dynamic record sizing toggle to expose.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
)

// Builder accumulates the handful of knobs a VPN client session needs before
// producing a *tls.Config for a given server name.
type Builder struct {
	minVersion uint16
	rootCAs    *x509.CertPool
	insecure   bool
}

// New returns a Builder defaulting to TLS 1.2 as the floor and certificate
// verification enabled.
func New() *Builder {
	return &Builder{minVersion: tls.VersionTLS12}
}

// WithRootCA adds an extra trusted root on top of the system pool. Passing
// nil pem is a no-op.
func (b *Builder) WithRootCA(pem []byte) *Builder {
	if len(pem) == 0 {
		return b
	}
	if b.rootCAs == nil {
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		b.rootCAs = pool
	}
	b.rootCAs.AppendCertsFromPEM(pem)
	return b
}

// WithVerify sets whether the server certificate chain is verified. The
// false case exists only to support an explicit opt-out; it must never be
// the default.
func (b *Builder) WithVerify(verify bool) *Builder {
	b.insecure = !verify
	return b
}

// Config materializes the accumulated settings into a *tls.Config scoped to
// serverName, which is used both for SNI and (when verification is on) for
// certificate hostname matching.
func (b *Builder) Config(serverName string) *tls.Config {
	return &tls.Config{
		ServerName:         serverName,
		MinVersion:         b.minVersion,
		RootCAs:            b.rootCAs,
		InsecureSkipVerify: b.insecure,
	}
}
