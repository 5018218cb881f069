// +build windows nacl plan9 js

// Copyright 2025 The TCell Authors
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

package xkb

import "os"

// dirAccessible on platforms without POSIX access(2) semantics falls back
// to a plain directory existence check; there's no effective-uid concept
// to enforce more precisely here.
func dirAccessible(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// isUnsafeEnvironment is always false on platforms without a setuid/setgid
// process model.
func isUnsafeEnvironment() bool {
	return false
}
