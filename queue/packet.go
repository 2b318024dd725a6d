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

// Package queue implements a bounded packet FIFO: a fixed-capacity queue of
// wire-level packets with blocking and non-blocking push/pop, used by the
// session runtime to hand data between the tunnel-facing tasks and the
// TLS-facing tasks without either side calling into the other directly.
package queue

import (
	"sync"
)

// Packet is a kind, flags, and an owned payload. The queue treats Packet as
// an opaque value; it has no notion of the wire encoding used to produce or
// consume one.
type Packet struct {
	Kind    uint32
	Flags   uint32
	Payload []byte
}

// DefaultCapacity is the default bound used by New when capacity is 0.
const DefaultCapacity = 100

// Queue is a bounded, thread-safe FIFO of Packet values.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []Packet
	cap      int
	// epoch increments on every Clear. A waiter that started waiting
	// before a Clear recognizes it by comparing its captured epoch against
	// the current one after being woken, rather than by a plain bool flag
	// that Clear would otherwise have to reset racily right after the
	// broadcast.
	epoch uint64
}

// New creates a Queue with the given capacity. A capacity of 0 is replaced
// with DefaultCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &Queue{
		items: make([]Packet, 0, capacity),
		cap:   capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Push enqueues p. When blocking is true and the queue is full, Push
// suspends the caller until a Pop frees space or Clear drains the queue; in
// the latter case Push returns false and the item is left in the caller's
// hands. When blocking is false,
// Push never suspends: it returns false immediately ("would block") if the
// queue is full.
func (q *Queue) Push(p Packet, blocking bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	startEpoch := q.epoch
	for len(q.items) >= q.cap {
		if !blocking {
			return false
		}
		q.notFull.Wait()
		if q.epoch != startEpoch {
			return false
		}
	}

	q.items = append(q.items, p)
	q.notEmpty.Signal()
	return true
}

// Pop dequeues the oldest packet. When blocking is true and the queue is
// empty, Pop suspends until a Push adds an item or Clear drains the queue
// (in which case Pop returns (Packet{}, false)). When blocking is false,
// Pop never suspends: it returns (Packet{}, false) immediately if the queue
// is empty.
func (q *Queue) Pop(blocking bool) (Packet, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	startEpoch := q.epoch
	for len(q.items) == 0 {
		if !blocking {
			return Packet{}, false
		}
		q.notEmpty.Wait()
		if q.epoch != startEpoch {
			return Packet{}, false
		}
	}

	p := q.items[0]
	q.items = q.items[1:]
	q.notFull.Signal()
	return p, true
}

// Size returns the current number of queued packets.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear empties the queue and wakes every blocked Push and Pop with a
// "drained" signal: blocked Pop calls return (Packet{}, false) and blocked
// Push calls return false with their item un-enqueued.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = q.items[:0]
	q.epoch++
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	q.mu.Unlock()
}
