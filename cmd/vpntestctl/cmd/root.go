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

// Package cmd wires the vpntestctl subcommands onto a cobra root command.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sevpn/vpncore/cliconfig"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vpntestctl",
	Short: "Exercise the connection engine from a terminal",
	Long: "vpntestctl drives the same Connect/Disconnect/test-connect/test-echo " +
		"entry points a host application reaches through the handle bridge.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML defaults file (default ~/"+cliconfig.DefaultFileName+")")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() cliconfig.Config {
	l, err := cliconfig.NewLoader(configPath)
	if err != nil {
		return cliconfig.Config{}
	}
	return l.Current()
}
