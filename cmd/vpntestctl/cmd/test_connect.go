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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevpn/vpncore/bridge"
	"github.com/sevpn/vpncore/connection"
)

var testConnectCmd = &cobra.Command{
	Use:   "test-connect",
	Short: "Attempt a connect/disconnect cycle and print the resulting code, without keeping a handle",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}

		r := bridge.NewRegistry(nil)
		ctx, cancel := context.WithTimeout(context.Background(), connection.ConnectTimeout+connection.HandshakeTimeout+connection.DHCPTimeout)
		defer cancel()

		code := r.TestConnect(ctx, params)
		if code == 0 {
			printSuccess(cmd, "test-connect succeeded")
		} else {
			printFailure(cmd, fmt.Sprintf("test-connect failed, code=%d", code))
		}
		return nil
	},
}

func init() {
	addConnectFlags(testConnectCmd)
	rootCmd.AddCommand(testConnectCmd)
}
