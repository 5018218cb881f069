// +build !windows,!nacl,!plan9,!js

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

import (
	"os"

	"golang.org/x/sys/unix"
)

// dirAccessible implements context.c's check_eaccess(path, R_OK|X_OK): the
// path must exist, be a directory, and be readable and executable by the
// effective uid/gid of this process.
func dirAccessible(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return false
	}
	return unix.Access(path, unix.R_OK|unix.X_OK) == nil
}

// isUnsafeEnvironment reports whether reading ambient environment
// variables should be refused because the real and effective ids differ,
// mirroring secure_getenv(3)'s guard against trusting the environment of a
// setuid/setgid process.
func isUnsafeEnvironment() bool {
	return unix.Getuid() != unix.Geteuid() || unix.Getgid() != unix.Getegid()
}
