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

// Package handshake drives the three-phase exchange that turns a bare TLS
// stream into an authenticated session with a negotiated network
// configuration: hello, authentication, and DHCP-style address assignment.
package handshake

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/hashicorp/go-version"

	"github.com/sevpn/vpncore/internal/errcode"
	"github.com/sevpn/vpncore/internal/vpnlog"
	"github.com/sevpn/vpncore/wire"
)

// ClientVersion is the protocol version this engine presents in its hello
// block.
var ClientVersion = struct{ Major, Minor, BuildHi, BuildLo byte }{Major: 4, Minor: 0, BuildHi: 0, BuildLo: 0}

// MinServerVersion is the floor below which a server is rejected even if
// its hello signature and frames are otherwise well formed. It exists to
// keep the client from attempting a protocol dialect older than what it
// speaks.
var MinServerVersion = version.Must(version.NewVersion("2.0.0"))

// Credentials carries the authentication phase's inputs. Each string is
// bounded to 255 bytes by the caller before Authenticate is invoked.
type Credentials struct {
	Username string
	Password string
	Hub      string
}

// NetConfig is the negotiated network configuration returned by the DHCP
// phase.
type NetConfig struct {
	ClientIP  net.IP
	SubnetMask net.IP
	Gateway   net.IP
	DNS1      net.IP
}

// ServerInfo is what the hello phase learns about the peer.
type ServerInfo struct {
	Major, Minor, BuildHi, BuildLo byte
	Version                        *version.Version
}

// frameReadWriter is the minimal surface the handshake phases need from the
// secured stream: full-frame read and write. transport.Stream satisfies it
// directly via net.Conn's Read/Write plus the helpers below.
type frameReadWriter interface {
	io.Reader
	io.Writer
}

// readFrame reads one complete frame from r: a 12-byte header followed by
// its payload, retrying short reads until satisfied (per the rule that a
// short read is this layer's problem to retry, never the caller's).
func readFrame(r io.Reader) (wire.Header, []byte, error) {
	hdr := make([]byte, wire.HeaderLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return wire.Header{}, nil, err
	}
	h, err := wire.DecodeHeader(hdr)
	if err != nil {
		return wire.Header{}, nil, err
	}
	payload := make([]byte, h.PayloadLen)
	if h.PayloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return wire.Header{}, nil, err
		}
	}
	return h, payload, nil
}

func writeFrame(w io.Writer, kind wire.Kind, flags uint32, payload []byte) error {
	_, err := w.Write(wire.Serialize(kind, flags, payload))
	return err
}

// Hello performs the hello phase: send the client's 64-byte hello block
// carrying nonce, receive the server's, validate its signature, and report
// the server's version.
func Hello(stream frameReadWriter, nonce [16]byte, useEncrypt, useCompress bool, log vpnlog.Logger) (ServerInfo, error) {
	out := wire.EncodeHello(wire.Hello{
		Major: ClientVersion.Major, Minor: ClientVersion.Minor,
		BuildHi: ClientVersion.BuildHi, BuildLo: ClientVersion.BuildLo,
		UseEncrypt: useEncrypt, UseCompress: useCompress,
		Nonce: nonce,
	})
	if _, err := stream.Write(out[:]); err != nil {
		return ServerInfo{}, errcode.New(errcode.ConnectFailed, err)
	}

	in := make([]byte, wire.HelloLen)
	if _, err := io.ReadFull(stream, in); err != nil {
		return ServerInfo{}, errcode.New(errcode.ConnectFailed, err)
	}

	h, err := wire.DecodeHello(in)
	if err != nil {
		log.Warn("hello signature mismatch", nil)
		return ServerInfo{}, errcode.New(errcode.ProtocolMismatch, err)
	}

	sv, err := version.NewVersion(fmt.Sprintf("%d.%d.%d", h.Major, h.Minor, uint16(h.BuildHi)<<8|uint16(h.BuildLo)))
	if err != nil {
		return ServerInfo{}, errcode.New(errcode.ProtocolMismatch, err)
	}
	if sv.LessThan(MinServerVersion) {
		return ServerInfo{}, errcode.New(errcode.ProtocolMismatch, fmt.Errorf("server version %s older than minimum %s", sv, MinServerVersion))
	}

	return ServerInfo{Major: h.Major, Minor: h.Minor, BuildHi: h.BuildHi, BuildLo: h.BuildLo, Version: sv}, nil
}

// encodeLenPrefixed appends a u32 big-endian length prefix followed by s.
func encodeLenPrefixed(dst []byte, s string) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, s...)
	return dst
}

// Authenticate performs the authentication phase: send a length-prefixed
// username/password/hub AUTH_REQUEST, and interpret the reply. A zero
// status in the first four payload bytes of an AUTH_RESPONSE is success;
// anything else, or any other frame kind, is AuthFailed.
func Authenticate(stream frameReadWriter, creds Credentials, log vpnlog.Logger) error {
	var payload []byte
	payload = encodeLenPrefixed(payload, creds.Username)
	payload = encodeLenPrefixed(payload, creds.Password)
	payload = encodeLenPrefixed(payload, creds.Hub)

	if err := writeFrame(stream, wire.KindAuthRequest, 0, payload); err != nil {
		return errcode.New(errcode.ConnectFailed, err)
	}

	h, resp, err := readFrame(stream)
	if err != nil {
		return errcode.New(errcode.ConnectFailed, err)
	}

	if h.Kind != wire.KindAuthResponse {
		log.Warn("unexpected frame during authentication", map[string]interface{}{"kind": h.Kind.String()})
		return errcode.New(errcode.AuthFailed, fmt.Errorf("unexpected frame kind %s", h.Kind))
	}
	if len(resp) < 4 {
		return errcode.New(errcode.AuthFailed, fmt.Errorf("truncated auth response"))
	}
	if status := binary.BigEndian.Uint32(resp[0:4]); status != 0 {
		return errcode.New(errcode.AuthFailed, fmt.Errorf("server rejected credentials, status %d", status))
	}
	return nil
}

// DHCP performs the network-configuration phase: send the session nonce in
// a DHCP_REQUEST and parse the four IPv4 addresses of the DHCP_RESPONSE.
func DHCP(stream frameReadWriter, nonce [16]byte) (NetConfig, error) {
	if err := writeFrame(stream, wire.KindDHCPRequest, 0, nonce[:]); err != nil {
		return NetConfig{}, errcode.New(errcode.DHCPFailed, err)
	}

	h, resp, err := readFrame(stream)
	if err != nil {
		return NetConfig{}, errcode.New(errcode.DHCPFailed, err)
	}
	if h.Kind != wire.KindDHCPResponse {
		return NetConfig{}, errcode.New(errcode.DHCPFailed, fmt.Errorf("unexpected frame kind %s", h.Kind))
	}
	if len(resp) < 16 {
		return NetConfig{}, errcode.New(errcode.DHCPFailed, fmt.Errorf("truncated DHCP response"))
	}

	ip := func(off int) net.IP {
		var b [4]byte
		copy(b[:], resp[off:off+4])
		return net.IPv4(b[0], b[1], b[2], b[3])
	}

	return NetConfig{
		ClientIP:   ip(0),
		SubnetMask: ip(4),
		Gateway:    ip(8),
		DNS1:       ip(12),
	}, nil
}

// Run drives all three phases in order, short-circuiting on the first
// failure the way a single handshake attempt must.
func Run(stream frameReadWriter, nonce [16]byte, useEncrypt, useCompress bool, creds Credentials, log vpnlog.Logger) (ServerInfo, NetConfig, error) {
	srv, err := Hello(stream, nonce, useEncrypt, useCompress, log)
	if err != nil {
		return ServerInfo{}, NetConfig{}, err
	}
	if err := Authenticate(stream, creds, log); err != nil {
		return srv, NetConfig{}, err
	}
	cfg, err := DHCP(stream, nonce)
	if err != nil {
		return srv, NetConfig{}, err
	}
	return srv, cfg, nil
}
