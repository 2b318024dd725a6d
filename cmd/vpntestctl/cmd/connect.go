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

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sevpn/vpncore/bridge"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a server and hold the session open until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}
		tunnelFD, _ := cmd.Flags().GetInt("tunnel-fd")

		r := bridge.NewRegistry(nil)
		done := make(chan struct{})
		h := r.Init(bridge.Callbacks{
			OnConnectionEstablished: func(_ bridge.Handle, clientIP, subnetMask, dns string) {
				printSuccess(cmd, fmt.Sprintf("connected: client_ip=%s subnet_mask=%s dns=%s", clientIP, subnetMask, dns))
			},
			OnDisconnected: func(bridge.Handle, string) {
				printSuccess(cmd, "disconnected")
				close(done)
			},
			OnError: func(_ bridge.Handle, code int, message string) {
				printFailure(cmd, fmt.Sprintf("error %d: %s", code, message))
			},
			OnBytesTransferred: func(_ bridge.Handle, sent, received uint64) {
				fmt.Fprintf(cmd.OutOrStdout(), "sent=%d received=%d\n", sent, received)
			},
		})
		defer r.Cleanup(h)

		if !r.Connect(h, params, tunnelFD) {
			printFailure(cmd, fmt.Sprintf("connect failed, last_error=%s", r.GetErrorString(h)))
			return nil
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
			r.Disconnect(h)
			<-done
		case <-done:
		case <-cmd.Context().Done():
			r.Disconnect(h)
		}
		return nil
	},
}

func init() {
	addConnectFlags(connectCmd)
	connectCmd.Flags().Int("tunnel-fd", -1, "host-owned tunnel file descriptor (required)")
	rootCmd.AddCommand(connectCmd)
}
