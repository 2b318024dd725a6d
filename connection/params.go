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

package connection

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/sevpn/vpncore/internal/errcode"
)

// Params is every input to Connect, bundled as a value object. Strings are
// bounded to 255 bytes and the object is treated as immutable once the
// handshake starts.
type Params struct {
	ServerHost       string `validate:"required,max=255"`
	ServerPort       uint16 `validate:"required"`
	Hub              string `validate:"required,max=255"`
	Username         string `validate:"required,max=255"`
	Password         string `validate:"max=255"`
	UseEncrypt       bool
	UseCompress      bool
	VerifyServerCert bool
	MTU              int `validate:"omitempty,min=576,max=65535"`
}

var paramsValidator = validator.New()

// Validate checks Params against its field constraints, returning
// InvalidParam on the first violation.
func (p Params) Validate() error {
	if err := paramsValidator.Struct(p); err != nil {
		return errcode.New(errcode.InvalidParam, err)
	}
	// The max=255 tags count characters; the bound is on bytes.
	for _, s := range []string{p.ServerHost, p.Hub, p.Username, p.Password} {
		if len(s) > 255 {
			return errcode.New(errcode.InvalidParam, fmt.Errorf("string parameter longer than 255 bytes"))
		}
	}
	return nil
}
