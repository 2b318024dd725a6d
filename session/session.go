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

// Package session runs the steady-state packet pump of an established
// connection: ingress (network to tunnel), egress (tunnel to network), and
// a keepalive heartbeat, cooperating over a shared halt flag and two
// bounded packet queues.
package session

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sevpn/vpncore/internal/connstate"
	"github.com/sevpn/vpncore/internal/vpnlog"
	"github.com/sevpn/vpncore/queue"
	"github.com/sevpn/vpncore/wire"
)

// MaxPacketSize bounds a single egress read from the tunnel descriptor so
// the resulting DATA frame never exceeds the wire codec's frame limit.
const MaxPacketSize = wire.MaxFrame

// egressPollInterval is how long the egress dispatcher sleeps between
// non-blocking queue drains when the tunnel reader has nothing queued.
const egressPollInterval = time.Millisecond

// keepaliveInterval and keepaliveSlice implement the sliced-sleep
// cancellation pattern: the task wakes every keepaliveSlice to check the
// halt flag, and only emits a heartbeat once keepaliveInterval has elapsed.
// They are vars, not consts, so tests can shrink them instead of waiting
// out a real 5 second cadence.
var (
	keepaliveInterval = 5 * time.Second
	keepaliveSlice    = 100 * time.Millisecond
)

// Statistics is a point-in-time snapshot of a session's traffic counters.
// It is always returned by value: nothing a caller holds can alias the
// live counters.
type Statistics struct {
	BytesSent          uint64
	BytesReceived      uint64
	PacketsSent        uint64
	PacketsReceived    uint64
	Errors             uint64
	SessionStartMillis int64
}

// Stream is the secured control channel the session reads frames from and
// writes frames to.
type Stream interface {
	io.Reader
	io.Writer
}

// streamDeadline is the read-deadline capability net.Conn and tls.Conn both
// implement. tlsReader's io.ReadFull has no other way to notice halt while
// parked in a Read against an idle peer, so Stop uses it the same way it
// uses Tunnel's io.Closer.
type streamDeadline interface {
	SetReadDeadline(t time.Time) error
}

// Tunnel is the host-provided local end of the point-to-point tunnel: the
// engine reads outgoing IP packets from it and writes incoming IP packets
// to it. A raw file descriptor read can block indefinitely and cannot be
// interrupted by a flag check, which is why the runtime isolates tunnel
// I/O behind dedicated goroutines feeding bounded queues rather than
// calling it inline from the cancellable dispatch loops. If a Tunnel also
// implements io.Closer, Stop uses it to unblock a goroutine parked in Read.
type Tunnel interface {
	io.Reader
	io.Writer
}

// OnStateChange is invoked whenever the runtime moves the connection to a
// new state (normally ERROR or DISCONNECTING, since CONNECTED and
// CONNECTING are set by the facade around the runtime's lifetime).
type OnStateChange func(connstate.State)

// Runtime owns the three cooperating tasks of one established session. It
// is started once the facade has completed the handshake; Stop sets the halt
// flag, waits for all tasks to exit, and reports no state change of its own
// (the facade owns the DISCONNECTING and DISCONNECTED transitions). A
// stopped Runtime is never restarted.
type Runtime struct {
	// stats leads the struct so its uint64 fields stay 64-bit aligned for
	// atomic access on 32-bit platforms, per the sync/atomic alignment rule.
	stats Statistics

	stream Stream
	tunnel Tunnel
	log    vpnlog.Logger

	recvQueue *queue.Queue // DATA payloads read off the wire, pending a tunnel write
	sendQueue *queue.Queue // DATA payloads read off the tunnel, pending a wire write

	halt    int32
	wg      sync.WaitGroup
	onState OnStateChange

	mu sync.Mutex // guards stats' non-atomic SessionStartMillis field only
}

// New builds a Runtime around stream and tunnel. queueCapacity of 0 uses
// the packet queue's own default.
func New(stream Stream, tunnel Tunnel, queueCapacity int, log vpnlog.Logger, onState OnStateChange) *Runtime {
	return &Runtime{
		stream:    stream,
		tunnel:    tunnel,
		log:       log,
		recvQueue: queue.New(queueCapacity),
		sendQueue: queue.New(queueCapacity),
		onState:   onState,
		stats:     Statistics{SessionStartMillis: time.Now().UnixMilli()},
	}
}

// Start launches the ingress, egress, and keepalive tasks. It returns
// immediately; the tasks run until Stop is called or a fatal fault occurs.
func (r *Runtime) Start() {
	r.wg.Add(5)
	go r.tlsReader()
	go r.tunnelWriter()
	go r.tunnelReader()
	go r.egressDispatch()
	go r.keepalive()
}

// Stop sets the halt flag and blocks until every task has exited. It is
// safe to call more than once. A reader blocked in a Read call cannot see
// the halt flag until that call returns, so Stop closes the tunnel (if it
// implements io.Closer) and expires the stream's read deadline (if it
// implements SetReadDeadline) to unblock both tunnelReader and tlsReader
// even when the peer is idle. Expiring the deadline rather than closing the
// stream outright leaves it usable for disconnectOnce's own best-effort
// DISCONNECT write and drain read once Stop returns.
func (r *Runtime) Stop() {
	atomic.StoreInt32(&r.halt, 1)
	r.recvQueue.Clear()
	r.sendQueue.Clear()
	if closer, ok := r.tunnel.(io.Closer); ok {
		_ = closer.Close()
	}
	if sd, ok := r.stream.(streamDeadline); ok {
		_ = sd.SetReadDeadline(time.Now())
	}
	r.wg.Wait()
}

func (r *Runtime) halted() bool {
	return atomic.LoadInt32(&r.halt) == 1
}

func (r *Runtime) fail(state connstate.State) {
	atomic.AddUint64(&r.stats.Errors, 1)
	atomic.StoreInt32(&r.halt, 1)
	r.recvQueue.Clear()
	r.sendQueue.Clear()
	if r.onState != nil {
		r.onState(state)
	}
}

// tlsReader is the network-facing half of ingress: it reads frames off the
// wire and dispatches by kind, handing DATA payloads to recvQueue rather
// than writing the tunnel inline so a slow tunnel write cannot stall frame
// reads (and with them, prompt detection of a DISCONNECT frame).
func (r *Runtime) tlsReader() {
	defer r.wg.Done()

	hdr := make([]byte, wire.HeaderLen)
	for !r.halted() {
		if _, err := io.ReadFull(r.stream, hdr); err != nil {
			if r.halted() {
				return
			}
			r.log.Error("ingress read failed", map[string]interface{}{"error": err.Error()})
			r.fail(connstate.Error)
			return
		}

		h, err := wire.DecodeHeader(hdr)
		if err != nil {
			r.log.Warn("ingress dropped malformed header", nil)
			continue
		}

		var payload []byte
		if h.PayloadLen > 0 {
			payload = make([]byte, h.PayloadLen)
			if _, err := io.ReadFull(r.stream, payload); err != nil {
				if r.halted() {
					return
				}
				r.fail(connstate.Error)
				return
			}
		}

		switch h.Kind {
		case wire.KindData:
			atomic.AddUint64(&r.stats.PacketsReceived, 1)
			atomic.AddUint64(&r.stats.BytesReceived, uint64(len(payload)))
			r.recvQueue.Push(queue.Packet{Kind: uint32(h.Kind), Flags: h.Flags, Payload: payload}, true)
		case wire.KindKeepAlive:
			// server heartbeat, no action
		case wire.KindDisconnect:
			if r.onState != nil {
				r.onState(connstate.Disconnecting)
			}
			atomic.StoreInt32(&r.halt, 1)
			return
		default:
			r.log.Warn("ingress dropped unhandled frame kind", map[string]interface{}{"kind": h.Kind.String()})
		}
	}
}

// tunnelWriter drains recvQueue to the tunnel descriptor.
func (r *Runtime) tunnelWriter() {
	defer r.wg.Done()
	for {
		p, ok := r.recvQueue.Pop(true)
		if !ok {
			return
		}
		if _, err := r.tunnel.Write(p.Payload); err != nil {
			r.log.Error("tunnel write failed", map[string]interface{}{"error": err.Error()})
			r.fail(connstate.Error)
			return
		}
	}
}

// tunnelReader is the tunnel-facing half of egress: it blocks on the
// tunnel descriptor's Read and hands whatever it gets to sendQueue.
func (r *Runtime) tunnelReader() {
	defer r.wg.Done()
	buf := make([]byte, MaxPacketSize-wire.HeaderLen)
	for !r.halted() {
		n, err := r.tunnel.Read(buf)
		if err != nil {
			if r.halted() {
				return
			}
			r.log.Error("tunnel read failed", map[string]interface{}{"error": err.Error()})
			r.fail(connstate.Error)
			return
		}
		if n == 0 {
			continue
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		r.sendQueue.Push(queue.Packet{Kind: uint32(wire.KindData), Payload: payload}, true)
	}
}

// egressDispatch drains sendQueue to the wire as DATA frames, polling
// rather than blocking indefinitely so the halt flag is checked regularly.
func (r *Runtime) egressDispatch() {
	defer r.wg.Done()
	for !r.halted() {
		p, ok := r.sendQueue.Pop(false)
		if !ok {
			time.Sleep(egressPollInterval)
			continue
		}
		frame := wire.Serialize(wire.Kind(p.Kind), p.Flags, p.Payload)
		if _, err := r.stream.Write(frame); err != nil {
			r.log.Error("egress write failed", map[string]interface{}{"error": err.Error()})
			r.fail(connstate.Error)
			return
		}
		atomic.AddUint64(&r.stats.PacketsSent, 1)
		atomic.AddUint64(&r.stats.BytesSent, uint64(len(p.Payload)))
	}
}

// keepalive emits an empty KEEPALIVE frame on a 5 second cadence, sliced
// into 100 ms checks of the halt flag so shutdown latency stays bounded.
func (r *Runtime) keepalive() {
	defer r.wg.Done()
	elapsed := time.Duration(0)
	for !r.halted() {
		time.Sleep(keepaliveSlice)
		elapsed += keepaliveSlice
		if elapsed < keepaliveInterval {
			continue
		}
		elapsed = 0
		if r.halted() {
			return
		}
		if _, err := r.stream.Write(wire.Serialize(wire.KindKeepAlive, 0, nil)); err != nil {
			r.log.Warn("keepalive emission failed, exiting", map[string]interface{}{"error": err.Error()})
			return
		}
	}
}

// TrySend enqueues payload as an outbound DATA packet without blocking. It
// reports false if the send queue is currently full; the caller (the
// connection facade) is responsible for chunking payload to the wire
// format's frame limit before calling this.
func (r *Runtime) TrySend(payload []byte) bool {
	return r.sendQueue.Push(queue.Packet{Kind: uint32(wire.KindData), Payload: payload}, false)
}

// TryReceive copies the next queued inbound DATA payload into buf without
// blocking, returning the number of bytes copied. It reports false if no
// packet is currently queued. A payload larger than buf is truncated; the
// caller's buffer size is expected to match its negotiated MTU.
func (r *Runtime) TryReceive(buf []byte) (int, bool) {
	p, ok := r.recvQueue.Pop(false)
	if !ok {
		return 0, false
	}
	return copy(buf, p.Payload), true
}

// Statistics returns a snapshot of the session's traffic counters.
func (r *Runtime) Statistics() Statistics {
	r.mu.Lock()
	start := r.stats.SessionStartMillis
	r.mu.Unlock()
	return Statistics{
		BytesSent:          atomic.LoadUint64(&r.stats.BytesSent),
		BytesReceived:      atomic.LoadUint64(&r.stats.BytesReceived),
		PacketsSent:        atomic.LoadUint64(&r.stats.PacketsSent),
		PacketsReceived:    atomic.LoadUint64(&r.stats.PacketsReceived),
		Errors:             atomic.LoadUint64(&r.stats.Errors),
		SessionStartMillis: start,
	}
}

// ResetStatistics zeroes every counter and stamps a fresh session start.
func (r *Runtime) ResetStatistics() {
	atomic.StoreUint64(&r.stats.BytesSent, 0)
	atomic.StoreUint64(&r.stats.BytesReceived, 0)
	atomic.StoreUint64(&r.stats.PacketsSent, 0)
	atomic.StoreUint64(&r.stats.PacketsReceived, 0)
	atomic.StoreUint64(&r.stats.Errors, 0)
	r.mu.Lock()
	r.stats.SessionStartMillis = time.Now().UnixMilli()
	r.mu.Unlock()
}
