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

package cliconfig_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sevpn/vpncore/cliconfig"
)

var _ = Describe("NewLoader", func() {
	It("falls back to defaults when the file does not exist", func() {
		l, err := cliconfig.NewLoader(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).NotTo(HaveOccurred())
		cfg := l.Current()
		Expect(cfg.ServerPort).To(Equal(uint16(443)))
		Expect(cfg.Hub).To(Equal("DEFAULT"))
		Expect(cfg.VerifyServerCert).To(BeTrue())
	})

	It("loads values from an existing YAML file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "config.yaml")
		Expect(os.WriteFile(path, []byte("server_host: vpn.example.com\nserver_port: 8443\nhub: CORP\nusername: alice\n"), 0o600)).To(Succeed())

		l, err := cliconfig.NewLoader(path)
		Expect(err).NotTo(HaveOccurred())
		cfg := l.Current()
		Expect(cfg.ServerHost).To(Equal("vpn.example.com"))
		Expect(cfg.ServerPort).To(Equal(uint16(8443)))
		Expect(cfg.Hub).To(Equal("CORP"))
		Expect(cfg.Username).To(Equal("alice"))
	})
})

var _ = Describe("Loader.Watch", func() {
	It("reloads and notifies onChange after the file is rewritten", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "config.yaml")
		Expect(os.WriteFile(path, []byte("server_host: first.example.com\n"), 0o600)).To(Succeed())

		l, err := cliconfig.NewLoader(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(l.Current().ServerHost).To(Equal("first.example.com"))

		changed := make(chan cliconfig.Config, 1)
		Expect(l.Watch(func(c cliconfig.Config) { changed <- c })).To(Succeed())
		defer l.Close()

		Expect(os.WriteFile(path, []byte("server_host: second.example.com\n"), 0o600)).To(Succeed())

		var cfg cliconfig.Config
		Eventually(changed, 2*time.Second).Should(Receive(&cfg))
		Expect(cfg.ServerHost).To(Equal("second.example.com"))
	})
})
