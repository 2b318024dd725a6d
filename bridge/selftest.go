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
	"errors"
	"io"

	"github.com/sevpn/vpncore/connection"
	"github.com/sevpn/vpncore/internal/errcode"
	"github.com/sevpn/vpncore/internal/vpnlog"
)

// discardTunnel satisfies session.Tunnel without ever touching a real
// device, so TestConnect can run a full connect/disconnect cycle and then
// throw the handle away.
type discardTunnel struct{}

func (discardTunnel) Read(p []byte) (int, error)  { return 0, io.EOF }
func (discardTunnel) Write(p []byte) (int, error) { return len(p), nil }

// TestConnect performs a full connect-then-disconnect cycle against the
// given server without creating a host-visible handle, for a host's
// connectivity self-test UI. It returns the host's numeric error
// constant: 0 on success.
func (r *Registry) TestConnect(ctx context.Context, params connection.Params) int {
	conn, err := connection.New(connection.Callbacks{}, vpnlog.New(r.log))
	if err != nil {
		return ErrorCode(errcode.OutOfMemory)
	}
	conn.SetTunnel(discardTunnel{})

	if err := conn.Connect(ctx, params); err != nil {
		var ce *errcode.Error
		if errors.As(err, &ce) {
			return ErrorCode(ce.Code())
		}
		return ErrorCode(errcode.ConnectFailed)
	}
	conn.Disconnect()
	return ErrorCode(errcode.Success)
}

// TestEcho returns text unchanged, a trivial round-trip check that the
// engine's entry points are reachable from the host's binding layer at
// all, independent of network access.
func (r *Registry) TestEcho(text string) string {
	return text
}
