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

package queue_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sevpn/vpncore/queue"
)

var _ = Describe("Queue", func() {
	It("defaults to a capacity of 100", func() {
		q := queue.New(0)
		for i := 0; i < 100; i++ {
			Expect(q.Push(queue.Packet{Kind: uint32(i)}, false)).To(BeTrue())
		}
		Expect(q.Push(queue.Packet{Kind: 100}, false)).To(BeFalse())
	})

	It("preserves FIFO order under non-blocking push then pop", func() {
		q := queue.New(10)
		for i := 0; i < 5; i++ {
			Expect(q.Push(queue.Packet{Kind: uint32(i)}, false)).To(BeTrue())
		}
		for i := 0; i < 5; i++ {
			p, ok := q.Pop(false)
			Expect(ok).To(BeTrue())
			Expect(p.Kind).To(Equal(uint32(i)))
		}
	})

	It("returns would-block on a full non-blocking push", func() {
		q := queue.New(2)
		Expect(q.Push(queue.Packet{Kind: 1}, false)).To(BeTrue())
		Expect(q.Push(queue.Packet{Kind: 2}, false)).To(BeTrue())
		Expect(q.Push(queue.Packet{Kind: 3}, false)).To(BeFalse())
		Expect(q.Size()).To(Equal(2))
	})

	It("returns nothing on an empty non-blocking pop", func() {
		q := queue.New(2)
		_, ok := q.Pop(false)
		Expect(ok).To(BeFalse())
	})

	It("unblocks a blocking push once a pop frees space (scenario 4)", func() {
		q := queue.New(2)
		Expect(q.Push(queue.Packet{Kind: 0xA}, false)).To(BeTrue())
		Expect(q.Push(queue.Packet{Kind: 0xB}, false)).To(BeTrue())

		done := make(chan bool, 1)
		go func() {
			done <- q.Push(queue.Packet{Kind: 0xC}, true)
		}()

		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())

		p, ok := q.Pop(false)
		Expect(ok).To(BeTrue())
		Expect(p.Kind).To(Equal(uint32(0xA)))

		Eventually(done, time.Second).Should(Receive(BeTrue()))

		first, _ := q.Pop(false)
		second, _ := q.Pop(false)
		Expect(first.Kind).To(Equal(uint32(0xB)))
		Expect(second.Kind).To(Equal(uint32(0xC)))
	})

	It("wakes a blocking pop with a drained signal on Clear", func() {
		q := queue.New(2)
		done := make(chan bool, 1)
		go func() {
			_, ok := q.Pop(true)
			done <- ok
		}()

		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())
		q.Clear()
		Eventually(done, time.Second).Should(Receive(BeFalse()))
	})

	It("restores the item to the caller when Clear drains a blocking push", func() {
		q := queue.New(1)
		Expect(q.Push(queue.Packet{Kind: 1}, false)).To(BeTrue())

		done := make(chan bool, 1)
		go func() {
			done <- q.Push(queue.Packet{Kind: 2}, true)
		}()

		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())
		q.Clear()
		Eventually(done, time.Second).Should(Receive(BeFalse()))
		Expect(q.Size()).To(Equal(0))
	})
})
