// Copyright 2015 The TCell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package encoding provides a small registry of legacy 8-bit and CJK
// charset codecs, keyed by the name a Compose(5) file's locale tag uses
// (e.g. "ISO8859-1", "eucJP"). A compose loader transcodes a non-UTF-8
// Compose source to UTF-8 through this registry before parsing it.
package encoding

import (
	"sync"

	"golang.org/x/text/encoding"
)

var (
	mu       sync.RWMutex
	registry = map[string]encoding.Encoding{}
)

// Register adds enc under name, overwriting any existing registration.
func Register(name string, enc encoding.Encoding) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = enc
}

// Lookup returns the encoding registered under name, if any.
func Lookup(name string) (encoding.Encoding, bool) {
	mu.RLock()
	defer mu.RUnlock()
	enc, ok := registry[name]
	return enc, ok
}

// Names returns every currently registered encoding name.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
