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

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sevpn/vpncore/connection"
)

// addConnectFlags registers the connection-parameter flags shared by the
// connect and test-connect commands, seeded from any loaded config file.
func addConnectFlags(c *cobra.Command) {
	defaults := loadConfig()
	c.Flags().String("server", defaults.ServerHost, "VPN server host")
	c.Flags().Uint16("port", defaults.ServerPort, "VPN server port")
	c.Flags().String("hub", defaults.Hub, "virtual hub name")
	c.Flags().String("user", defaults.Username, "username")
	c.Flags().String("password", "", "password (prompted on the terminal if omitted)")
	c.Flags().Bool("encrypt", defaults.UseEncrypt, "request encryption")
	c.Flags().Bool("compress", defaults.UseCompress, "request compression")
	c.Flags().Bool("verify-cert", defaults.VerifyServerCert, "verify the server's TLS certificate")
	c.Flags().Int("mtu", defaults.MTU, "tunnel MTU (0 leaves it unset; a set value must be 576-65535 and is validated only, the session does not use it)")
}

// paramsFromFlags builds connection.Params from a command's flags,
// prompting for a password on the controlling terminal (without echoing
// it) if none was given on the command line.
func paramsFromFlags(c *cobra.Command) (connection.Params, error) {
	host, _ := c.Flags().GetString("server")
	port, _ := c.Flags().GetUint16("port")
	hub, _ := c.Flags().GetString("hub")
	user, _ := c.Flags().GetString("user")
	password, _ := c.Flags().GetString("password")
	encrypt, _ := c.Flags().GetBool("encrypt")
	compress, _ := c.Flags().GetBool("compress")
	verify, _ := c.Flags().GetBool("verify-cert")
	mtu, _ := c.Flags().GetInt("mtu")

	if password == "" {
		pw, err := promptPassword()
		if err != nil {
			return connection.Params{}, fmt.Errorf("read password: %w", err)
		}
		password = pw
	}

	return connection.Params{
		ServerHost:       host,
		ServerPort:       port,
		Hub:              hub,
		Username:         user,
		Password:         password,
		UseEncrypt:       encrypt,
		UseCompress:      compress,
		VerifyServerCert: verify,
		MTU:              mtu,
	}, nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stdout, "Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func printSuccess(c *cobra.Command, msg string) {
	out := colorable.NewColorableStdout()
	color.New(color.FgGreen).Fprintln(out, msg)
}

func printFailure(c *cobra.Command, msg string) {
	out := colorable.NewColorableStdout()
	color.New(color.FgRed).Fprintln(out, msg)
}
