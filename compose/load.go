// Copyright 2025 The TCell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compose

import (
	"bytes"
	"fmt"

	xkbenc "github.com/xkbgo/xkbcommon/encoding"
)

// DecodeSource transcodes a Compose(5) file's raw bytes to UTF-8, so that
// any Table builder downstream of this package can assume a UTF-8 input
// regardless of the locale charset the file was actually authored in.
// localeCharset is a bare charset name (e.g. "ISO8859-1", not
// "en_US.ISO8859-1"); an empty or unrecognized charset is passed through
// as presumptive UTF-8.
func DecodeSource(raw []byte, localeCharset string) (string, error) {
	if localeCharset == "" || isUTF8Name(localeCharset) {
		return string(stripBOM(raw)), nil
	}
	enc, ok := xkbenc.Lookup(localeCharset)
	if !ok {
		return string(stripBOM(raw)), nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("compose: decoding %s: %w", localeCharset, err)
	}
	return string(stripBOM(out)), nil
}

func isUTF8Name(name string) bool {
	switch name {
	case "UTF-8", "utf-8", "UTF8", "utf8":
		return true
	default:
		return false
	}
}

// stripBOM removes a leading UTF-8 byte-order mark, which some Compose
// files carry even though Compose(5) does not require one.
func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}
