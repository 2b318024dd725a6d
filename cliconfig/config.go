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

// Package cliconfig loads the command-line harness's optional defaults
// from a YAML file, the way the teacher's cobra configuration helper
// resolves a default path under the user's home directory and marshals
// settings as YAML/JSON/TOML.
package cliconfig

// Config holds every connection default the CLI harness can read from a
// file. It intentionally excludes Password: secrets are never written to
// or read from disk here, only prompted for at the terminal.
type Config struct {
	ServerHost       string `mapstructure:"server_host" yaml:"server_host"`
	ServerPort       uint16 `mapstructure:"server_port" yaml:"server_port"`
	Hub              string `mapstructure:"hub" yaml:"hub"`
	Username         string `mapstructure:"username" yaml:"username"`
	UseEncrypt       bool   `mapstructure:"use_encrypt" yaml:"use_encrypt"`
	UseCompress      bool   `mapstructure:"use_compress" yaml:"use_compress"`
	VerifyServerCert bool   `mapstructure:"verify_server_cert" yaml:"verify_server_cert"`
	MTU              int    `mapstructure:"mtu" yaml:"mtu"`
}

// defaults returns the baseline a fresh config file (or a missing one)
// resolves to.
func defaults() Config {
	return Config{
		ServerPort:       443,
		Hub:              "DEFAULT",
		VerifyServerCert: true,
	}
}
