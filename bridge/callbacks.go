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

// Callbacks are the four host-side functions a registered handle can
// receive events on. Any field left nil is simply never called. Every
// callback fires on the engine task goroutine that produced the event: the
// host is expected to be reentrant-safe under that or to re-post to its own
// thread.
type Callbacks struct {
	// OnConnectionEstablished fires once, after a successful handshake,
	// with the negotiated client IP, subnet mask, and primary DNS server
	// as host-friendly strings.
	OnConnectionEstablished func(handle Handle, clientIP, subnetMask, primaryDNS string)

	// OnDisconnected fires once per completed teardown, successful or
	// not, with a short human-readable reason.
	OnDisconnected func(handle Handle, reason string)

	// OnError fires whenever a handle's state moves to ERROR, with the
	// host's numeric error code and the matching message string.
	OnError func(handle Handle, code int, message string)

	// OnBytesTransferred fires periodically while CONNECTED with the
	// cumulative sent/received byte counters.
	OnBytesTransferred func(handle Handle, sent, received uint64)
}
