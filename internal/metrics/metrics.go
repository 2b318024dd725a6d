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

// Package metrics mirrors a handle's traffic counters as Prometheus
// collectors and, optionally, serves them over HTTP for a host-side
// supervisor process that runs alongside the engine (a desktop test
// harness or a companion service on the Android host, never the engine
// itself — the engine has no listening surface of its own).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sevpn/vpncore/internal/connstate"
	"github.com/sevpn/vpncore/session"
)

const namespace = "sevpn"

var handleLabels = []string{"handle"}

var (
	bytesSent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bytes_sent_total",
		Help:      "Cumulative bytes sent on a connection handle.",
	}, handleLabels)

	bytesReceived = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bytes_received_total",
		Help:      "Cumulative bytes received on a connection handle.",
	}, handleLabels)

	packetsSent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "packets_sent_total",
		Help:      "Cumulative packets sent on a connection handle.",
	}, handleLabels)

	packetsReceived = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "packets_received_total",
		Help:      "Cumulative packets received on a connection handle.",
	}, handleLabels)

	sessionErrors = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_errors_total",
		Help:      "Cumulative session-level errors observed on a connection handle.",
	}, handleLabels)

	connectionState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connection_state",
		Help:      "Current connection state as its host-facing numeric constant (0=DISCONNECTED..4=ERROR).",
	}, handleLabels)
)

func init() {
	prometheus.MustRegister(bytesSent, bytesReceived, packetsSent, packetsReceived, sessionErrors, connectionState)
}

// Observe updates every collector for one handle from a statistics
// snapshot and its current state. Safe to call on every poll tick; gauges
// simply overwrite.
func Observe(handle string, stats session.Statistics, state connstate.State) {
	bytesSent.WithLabelValues(handle).Set(float64(stats.BytesSent))
	bytesReceived.WithLabelValues(handle).Set(float64(stats.BytesReceived))
	packetsSent.WithLabelValues(handle).Set(float64(stats.PacketsSent))
	packetsReceived.WithLabelValues(handle).Set(float64(stats.PacketsReceived))
	sessionErrors.WithLabelValues(handle).Set(float64(stats.Errors))
	connectionState.WithLabelValues(handle).Set(float64(stateCode(state)))
}

// Forget removes a handle's series once its connection is torn down, so
// stale handles don't accumulate in the exporter forever.
func Forget(handle string) {
	bytesSent.DeleteLabelValues(handle)
	bytesReceived.DeleteLabelValues(handle)
	packetsSent.DeleteLabelValues(handle)
	packetsReceived.DeleteLabelValues(handle)
	sessionErrors.DeleteLabelValues(handle)
	connectionState.DeleteLabelValues(handle)
}

func stateCode(s connstate.State) int {
	switch s {
	case connstate.Disconnected:
		return 0
	case connstate.Connecting:
		return 1
	case connstate.Connected:
		return 2
	case connstate.Disconnecting:
		return 3
	default:
		return 4
	}
}
