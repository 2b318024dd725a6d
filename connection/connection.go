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

// Package connection presents the full connect/disconnect/send/receive
// lifecycle as a single object: the facade that drives the transport,
// handshake, and session packages in sequence and exposes a connection's
// state, statistics, and last error to its caller.
package connection

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sevpn/vpncore/handshake"
	"github.com/sevpn/vpncore/internal/connstate"
	"github.com/sevpn/vpncore/internal/errcode"
	"github.com/sevpn/vpncore/internal/vpnlog"
	"github.com/sevpn/vpncore/session"
	"github.com/sevpn/vpncore/transport"
	"github.com/sevpn/vpncore/wire"
)

// disconnectDrainTimeout bounds the best-effort read disconnectOnce attempts
// after writing a DISCONNECT frame, waiting for whatever reply the peer
// sends (or none) without holding up teardown.
const disconnectDrainTimeout = 100 * time.Millisecond

// Default per-phase timeouts, per the connection's timing budget.
const (
	ConnectTimeout   = 30 * time.Second
	HandshakeTimeout = 10 * time.Second
	DHCPTimeout      = 30 * time.Second
)

// maxSendChunk is the largest payload a single outbound DATA frame may
// carry; Send fragments anything larger instead of failing.
const maxSendChunk = wire.MaxPayload

// Callbacks groups the events a Connection reports upward. Any field left
// nil is simply not invoked.
type Callbacks struct {
	OnConnected    func(handshake.NetConfig)
	OnDisconnected func()
	OnError        func(code errcode.Code, message string)
}

// Connection is the principal object: one handshake driver and one session
// runtime, behind a state machine and a single mutex guarding everything
// that is not already atomic.
type Connection struct {
	log vpnlog.Logger

	mu        sync.Mutex
	state     connstate.State
	lastErr   *errcode.Error
	params    Params
	netConfig handshake.NetConfig
	nonce     [16]byte

	tunnel    session.Tunnel
	tunnelSet bool

	stream  transport.Stream
	runtime *session.Runtime
	cb      Callbacks

	group singleflight.Group
}

// New creates a connection in DISCONNECTED with a fresh random session
// nonce. log may be nil, in which case a discarding logger is used.
func New(cb Callbacks, log vpnlog.Logger) (*Connection, error) {
	if log == nil {
		log = vpnlog.Noop()
	}
	c := &Connection{log: log, cb: cb, state: connstate.Disconnected}
	if _, err := rand.Read(c.nonce[:]); err != nil {
		return nil, errcode.New(errcode.OutOfMemory, err)
	}
	return c, nil
}

// SetTunnel stores the host-provided tunnel descriptor abstraction.
// It must be called before Connect.
func (c *Connection) SetTunnel(t session.Tunnel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tunnel = t
	c.tunnelSet = true
}

// transition moves the connection to s, after checking the move against the
// state machine's legal edges. The check is advisory, not enforced: an
// illegal transition indicates a bug upstream, and the new state is applied
// either way so the facade never freezes on an inconsistent c.state. Caller
// must hold c.mu.
func (c *Connection) transition(s connstate.State) {
	if !connstate.CanTransition(c.state, s) {
		c.log.Warn("illegal state transition", map[string]interface{}{"from": c.state.String(), "to": s.String()})
	}
	c.state = s
}

func (c *Connection) setState(s connstate.State) {
	c.mu.Lock()
	c.transition(s)
	c.mu.Unlock()
	c.log.Debug("state transition", map[string]interface{}{"state": s.String()})
}

func (c *Connection) fail(code errcode.Code, cause error) error {
	err := errcode.New(code, cause)
	c.mu.Lock()
	c.lastErr = err
	c.transition(connstate.Error)
	c.mu.Unlock()
	c.log.Error("connection failed", map[string]interface{}{"code": code.String(), "cause": fmt.Sprint(cause)})
	if c.cb.OnError != nil {
		c.cb.OnError(code, err.Error())
	}
	return err
}

// Connect drives transport dial, TLS wrap, and the three-phase handshake,
// then spawns the session runtime. Concurrent calls collapse onto the
// single in-flight attempt via singleflight, matching the facade's
// idempotency requirement under calls from multiple host threads.
func (c *Connection) Connect(ctx context.Context, params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}

	_, err, _ := c.group.Do("connect", func() (interface{}, error) {
		return nil, c.connectOnce(ctx, params)
	})
	return err
}

func (c *Connection) connectOnce(ctx context.Context, params Params) error {
	c.mu.Lock()
	if c.state == connstate.Connected || c.state == connstate.Connecting {
		c.mu.Unlock()
		return nil
	}
	if !c.tunnelSet {
		c.mu.Unlock()
		return c.fail(errcode.InvalidParam, fmt.Errorf("tunnel not set before connect"))
	}
	c.params = params
	c.lastErr = nil
	c.mu.Unlock()

	c.setState(connstate.Connecting)

	stream, err := transport.Connect(ctx, params.ServerHost, params.ServerPort, params.VerifyServerCert, ConnectTimeout, HandshakeTimeout)
	if err != nil {
		var ce *errcode.Error
		if errors.As(err, &ce) {
			return c.fail(ce.Code(), ce.Unwrap())
		}
		return c.fail(errcode.ConnectFailed, err)
	}

	creds := handshake.Credentials{Username: params.Username, Password: params.Password, Hub: params.Hub}
	_, cfg, err := handshake.Run(stream, c.nonce, params.UseEncrypt, params.UseCompress, creds, c.log)
	if err != nil {
		_ = stream.Close()
		var ce *errcode.Error
		if errors.As(err, &ce) {
			return c.fail(ce.Code(), ce.Unwrap())
		}
		return c.fail(errcode.ConnectFailed, err)
	}

	c.mu.Lock()
	c.netConfig = cfg
	c.stream = stream
	tunnel := c.tunnel
	c.mu.Unlock()

	c.runtime = session.New(stream, tunnel, 0, c.log, c.onSessionStateChange)
	c.runtime.Start()

	c.setState(connstate.Connected)
	if c.cb.OnConnected != nil {
		c.cb.OnConnected(cfg)
	}
	return nil
}

func (c *Connection) onSessionStateChange(s connstate.State) {
	if s == connstate.Disconnecting {
		// disconnectOnce makes the CONNECTED -> DISCONNECTING move itself;
		// applying it here first would turn that call into a no-op.
		go c.Disconnect()
		return
	}
	c.mu.Lock()
	c.transition(s)
	c.mu.Unlock()
	if s == connstate.Error {
		if c.cb.OnError != nil {
			c.cb.OnError(errcode.NetworkError, errcode.NetworkError.Message())
		}
	}
}

// Disconnect halts the session runtime, joins its tasks, and closes
// transport. It is idempotent: calling it when already disconnected or
// disconnecting is a no-op.
func (c *Connection) Disconnect() {
	_, _, _ = c.group.Do("disconnect", func() (interface{}, error) {
		c.disconnectOnce()
		return nil, nil
	})
}

func (c *Connection) disconnectOnce() {
	c.mu.Lock()
	if c.state == connstate.Disconnected || c.state == connstate.Disconnecting {
		c.mu.Unlock()
		return
	}
	c.transition(connstate.Disconnecting)
	rt := c.runtime
	stream := c.stream
	c.mu.Unlock()

	if rt != nil {
		// Stop joins the session's tasks before this facade touches the
		// stream directly, so the polite DISCONNECT write below can't
		// interleave with a concurrent egress or keepalive write.
		rt.Stop()
	}
	if stream != nil {
		_, _ = stream.Write(wire.Serialize(wire.KindDisconnect, 0, nil))
		_ = stream.SetReadDeadline(time.Now().Add(disconnectDrainTimeout))
		drain := make([]byte, wire.HeaderLen)
		_, _ = stream.Read(drain)
		_ = stream.Close()
	}

	c.mu.Lock()
	c.transition(connstate.Disconnected)
	c.runtime = nil
	c.stream = nil
	c.mu.Unlock()

	if c.cb.OnDisconnected != nil {
		c.cb.OnDisconnected()
	}
}

// Send fragments payload into frames no larger than the wire format's
// frame limit and enqueues them for the egress task, non-blocking.
func (c *Connection) Send(payload []byte) error {
	c.mu.Lock()
	rt := c.runtime
	state := c.state
	c.mu.Unlock()

	if rt == nil || state != connstate.Connected {
		return errcode.New(errcode.NetworkError, fmt.Errorf("not connected"))
	}

	for len(payload) > 0 {
		n := len(payload)
		if n > maxSendChunk {
			n = maxSendChunk
		}
		if !rt.TrySend(payload[:n]) {
			return errcode.New(errcode.NetworkError, fmt.Errorf("send queue full"))
		}
		payload = payload[n:]
	}
	return nil
}

// Receive copies the next queued inbound data packet into buf, returning
// the number of bytes copied. It returns (0, nil) if nothing is queued.
func (c *Connection) Receive(buf []byte) (int, error) {
	c.mu.Lock()
	rt := c.runtime
	state := c.state
	c.mu.Unlock()

	if rt == nil || state != connstate.Connected {
		return 0, errcode.New(errcode.NetworkError, fmt.Errorf("not connected"))
	}

	n, ok := rt.TryReceive(buf)
	if !ok {
		return 0, nil
	}
	return n, nil
}

// State returns the connection's current state.
func (c *Connection) State() connstate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the sticky last error, or nil if the next successful
// Connect has cleared it.
func (c *Connection) LastError() *errcode.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Statistics returns a snapshot of the session's traffic counters, or a
// zero value when no session runtime exists: before the first successful
// Connect and after Disconnect, which discards the runtime.
func (c *Connection) Statistics() session.Statistics {
	c.mu.Lock()
	rt := c.runtime
	c.mu.Unlock()
	if rt == nil {
		return session.Statistics{}
	}
	return rt.Statistics()
}

// ResetStatistics zeroes the session's counters and restamps the session
// start. It is a no-op when no session runtime exists (before the first
// successful Connect and after Disconnect).
func (c *Connection) ResetStatistics() {
	c.mu.Lock()
	rt := c.runtime
	c.mu.Unlock()
	if rt != nil {
		rt.ResetStatistics()
	}
}

// NetConfig returns the network configuration negotiated by the most
// recent successful Connect.
func (c *Connection) NetConfig() handshake.NetConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.netConfig
}

