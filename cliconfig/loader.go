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

package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// DefaultFileName is the file a Loader resolves to when the caller passes
// an empty path: ~/.vpntestctl/config.yaml.
const DefaultFileName = ".vpntestctl/config.yaml"

// Loader owns one viper instance bound to one file and, once Watch is
// called, one fsnotify watcher on that file's directory.
type Loader struct {
	path string
	v    *viper.Viper

	mu      sync.RWMutex
	current Config

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// ResolveDefaultPath expands DefaultFileName under the user's home
// directory, the way the teacher's cobra configuration helper resolves a
// default path before falling back to an explicit one.
func ResolveDefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// NewLoader reads path (or the default path, if empty) into a Config. A
// missing file is not an error: Current returns defaults() until a file
// is written and Watch picks it up.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		p, err := ResolveDefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	l := &Loader{path: path, v: viper.New(), current: defaults()}
	l.v.SetConfigFile(path)
	l.v.SetConfigType("yaml")

	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Loader) reload() error {
	err := l.v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", l.path, err)
	}

	cfg := defaults()
	if err := l.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return nil
}

// Current returns the most recently loaded configuration.
func (l *Loader) Current() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Watch starts an fsnotify watch on the config file's directory and calls
// onChange with the freshly reloaded Config every time the file is
// written or created. It is idempotent: a second call is a no-op.
func (l *Loader) Watch(onChange func(Config)) error {
	if l.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start config watcher: %w", err)
	}
	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch config dir %s: %w", dir, err)
	}

	l.watcher = w
	l.done = make(chan struct{})

	go func() {
		var debounce *time.Timer
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(l.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(50*time.Millisecond, func() {
					if err := l.reload(); err == nil && onChange != nil {
						onChange(l.Current())
					}
				})
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-l.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the fsnotify watcher, if one was started.
func (l *Loader) Close() error {
	if l.watcher == nil {
		return nil
	}
	close(l.done)
	err := l.watcher.Close()
	l.watcher = nil
	return err
}
