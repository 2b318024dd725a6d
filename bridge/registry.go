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

package bridge

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/sevpn/vpncore/connection"
	"github.com/sevpn/vpncore/handshake"
	"github.com/sevpn/vpncore/internal/errcode"
	"github.com/sevpn/vpncore/internal/vpnlog"
)

// statsPollInterval is how often a CONNECTED handle's counters are sampled
// for OnBytesTransferred.
var statsPollInterval = 2 * time.Second

type entry struct {
	conn       *connection.Connection
	cancelPoll context.CancelFunc
}

// Registry is the process-wide table of live handles. It is the only
// package-level mutable state the engine holds; everything else is owned
// by a Connection reached through a handle.
type Registry struct {
	// AttachRuntime, if set, is invoked by the first Init, before any
	// callback is dispatched, and its returned detach function is invoked
	// once, when the last live handle is torn down; an Init after that
	// detach invokes AttachRuntime again. This models
	// the JNIEnv AttachCurrentThread/DetachCurrentThread pairing a real
	// JNI or gomobile binding needs so that engine goroutines (threads the
	// host did not create) may call back into host code; a pure-Go host
	// can leave it nil.
	AttachRuntime func() func()

	log *logrus.Logger

	mu       sync.Mutex
	next     uint64
	entries  map[Handle]*entry
	cb       map[Handle]Callbacks
	detach   func()
	attached bool
}

// NewRegistry creates an empty registry. log may be nil, in which case a
// default logrus.Logger at Info level is used.
func NewRegistry(log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
	}
	return &Registry{
		log:     log,
		entries: make(map[Handle]*entry),
		cb:      make(map[Handle]Callbacks),
	}
}

func (r *Registry) ensureAttached() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attached || r.AttachRuntime == nil {
		return
	}
	r.detach = r.AttachRuntime()
	r.attached = true
}

func (r *Registry) maybeDetach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.attached || len(r.entries) > 0 {
		return
	}
	if r.detach != nil {
		r.detach()
	}
	r.attached = false
	r.detach = nil
}

// Init creates a new handle in DISCONNECTED state, registers cb for its
// lifecycle events, and returns the handle the host uses for every
// subsequent call.
func (r *Registry) Init(cb Callbacks) Handle {
	r.ensureAttached()

	r.mu.Lock()
	h := Handle(r.next)
	r.next++
	r.mu.Unlock()

	scoped := vpnlog.New(r.log).With(logrus.Fields{"handle": uint64(h)})
	conn, err := connection.New(connection.Callbacks{
		OnConnected:    func(cfg handshake.NetConfig) { r.dispatchConnected(h, cfg) },
		OnDisconnected: func() { r.dispatchDisconnected(h, "disconnected") },
		OnError:        func(code errcode.Code, _ string) { r.dispatchError(h, code) },
	}, scoped)
	if err != nil {
		// rand.Read failing is not recoverable; surface it as an ERROR
		// handle rather than panicking across the host boundary.
		scoped.Error("failed to create connection", logrus.Fields{"cause": err.Error()})
	}

	r.mu.Lock()
	r.entries[h] = &entry{conn: conn}
	r.cb[h] = cb
	r.mu.Unlock()
	return h
}

// Cleanup disconnects and removes a handle. Calling it twice, or on an
// unknown handle, is a no-op.
func (r *Registry) Cleanup(h Handle) {
	r.mu.Lock()
	e, ok := r.entries[h]
	if ok {
		delete(r.entries, h)
		delete(r.cb, h)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	if e.cancelPoll != nil {
		e.cancelPoll()
	}
	e.conn.Disconnect()
	r.maybeDetach()
}

func (r *Registry) lookup(h Handle) (*entry, Callbacks, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return nil, Callbacks{}, false
	}
	return e, r.cb[h], true
}

// Connect drives handle h through transport dial, handshake, and session
// startup against the given parameters, adopting tunnelFD (a host-owned,
// already-open file descriptor for the local tunnel interface) as the
// session's data path. It returns true only once the handle is CONNECTED,
// and false if the handle is unknown, tunnelFD is negative, the parameters
// fail validation, or any transport or handshake phase fails; phase
// failures are also reported through OnError and leave the handle in ERROR.
func (r *Registry) Connect(h Handle, params connection.Params, tunnelFD int) bool {
	e, _, ok := r.lookup(h)
	if !ok || tunnelFD < 0 {
		return false
	}

	tunnel := os.NewFile(uintptr(tunnelFD), fmt.Sprintf("tun-%d", uint64(h)))
	if tunnel == nil {
		return false
	}
	e.conn.SetTunnel(tunnel)

	ctx, cancel := context.WithTimeout(context.Background(), connection.ConnectTimeout+connection.HandshakeTimeout+connection.DHCPTimeout)
	defer cancel()

	if err := e.conn.Connect(ctx, params); err != nil {
		return false
	}

	pollCtx, pollCancel := context.WithCancel(context.Background())
	r.mu.Lock()
	e.cancelPoll = pollCancel
	r.mu.Unlock()
	go r.pollBytesTransferred(pollCtx, h)
	return true
}

// Disconnect halts the session and transport for handle h. Unknown handles
// are a no-op.
func (r *Registry) Disconnect(h Handle) {
	e, _, ok := r.lookup(h)
	if !ok {
		return
	}
	if e.cancelPoll != nil {
		e.cancelPoll()
	}
	e.conn.Disconnect()
}

// GetStatus returns the host's numeric state constant for handle h, or the
// DISCONNECTED constant if h is unknown.
func (r *Registry) GetStatus(h Handle) int {
	e, _, ok := r.lookup(h)
	if !ok {
		return 0
	}
	return ConnState(e.conn.State())
}

// GetStatistics returns cumulative bytes sent and received for handle h.
func (r *Registry) GetStatistics(h Handle) (sent, received uint64) {
	e, _, ok := r.lookup(h)
	if !ok {
		return 0, 0
	}
	st := e.conn.Statistics()
	return st.BytesSent, st.BytesReceived
}

// GetLastError returns the host's numeric error constant for handle h's
// sticky last error, or 0 (SUCCESS) if there is none.
func (r *Registry) GetLastError(h Handle) int {
	e, _, ok := r.lookup(h)
	if !ok {
		return 0
	}
	return ErrorCode(e.conn.LastError().Code())
}

// GetErrorString returns the host-facing message for handle h's sticky
// last error, or the SUCCESS string if there is none.
func (r *Registry) GetErrorString(h Handle) string {
	e, _, ok := r.lookup(h)
	if !ok {
		return ErrorString(errcode.Success)
	}
	return ErrorString(e.conn.LastError().Code())
}

// Handles returns a sorted snapshot of every live handle, for diagnostics.
func (r *Registry) Handles() []Handle {
	r.mu.Lock()
	out := make([]Handle, 0, len(r.entries))
	for h := range r.entries {
		out = append(out, h)
	}
	r.mu.Unlock()
	slices.Sort(out)
	return out
}

func (r *Registry) dispatchConnected(h Handle, cfg handshake.NetConfig) {
	_, cb, ok := r.lookup(h)
	if !ok || cb.OnConnectionEstablished == nil {
		return
	}
	cb.OnConnectionEstablished(h, cfg.ClientIP.String(), cfg.SubnetMask.String(), cfg.DNS1.String())
}

func (r *Registry) dispatchDisconnected(h Handle, reason string) {
	_, cb, ok := r.lookup(h)
	if !ok || cb.OnDisconnected == nil {
		return
	}
	cb.OnDisconnected(h, reason)
}

func (r *Registry) dispatchError(h Handle, code errcode.Code) {
	_, cb, ok := r.lookup(h)
	if !ok || cb.OnError == nil {
		return
	}
	cb.OnError(h, ErrorCode(code), ErrorString(code))
}

func (r *Registry) pollBytesTransferred(ctx context.Context, h Handle) {
	ticker := time.NewTicker(statsPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e, cb, ok := r.lookup(h)
			if !ok || cb.OnBytesTransferred == nil {
				continue
			}
			st := e.conn.Statistics()
			cb.OnBytesTransferred(h, st.BytesSent, st.BytesReceived)
		}
	}
}
