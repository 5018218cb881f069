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

package xkb

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
)

// ContextFlags gate optional Context behavior at creation time.
type ContextFlags int

const (
	// NoDefaultIncludes skips appending the default include-path
	// directories during NewContext.
	NoDefaultIncludes ContextFlags = 1 << iota
	// NoEnvironmentNames disables falling back to XKB_DEFAULT_* and
	// related environment variables when resolving RMLVO names.
	NoEnvironmentNames
	// NoSecureGetenv disables the extra privilege check normally applied
	// before reading environment variables in a setuid/setgid context.
	NoSecureGetenv
)

// DefaultXKBConfigRoot and DefaultXKBConfigExtraPath are the built-in
// fallbacks for XKB_CONFIG_ROOT and XKB_CONFIG_EXTRA_PATH (§4.1).
const (
	DefaultXKBConfigRoot      = "/usr/share/X11/xkb"
	DefaultXKBConfigExtraPath = "/etc/xkb"
)

// Context is process-wide XKB configuration: an atom interner, an ordered
// list of include-path directories, environment gating flags, and the
// diagnostic sink. A Context guards its reference count, log sink and
// include-path lists with its own mutex, and the append-only atom table has
// its own lock (§5); Keymaps and States carry no internal locking.
type Context struct {
	mu             sync.Mutex
	flags          ContextFlags
	atoms          *atomTable
	includes       []string
	failedIncludes []string
	logFn          LogFunc
	refs           int32
}

// NewContext creates a Context with the given flags. Unless
// NoDefaultIncludes is set, the default include path is populated from
// $XDG_CONFIG_HOME/xkb (falling back to $HOME/.config/xkb), $HOME/.xkb,
// $XKB_CONFIG_EXTRA_PATH, and $XKB_CONFIG_ROOT, in that order (§4.1).
func NewContext(flags ContextFlags) *Context {
	c := &Context{
		flags: flags,
		atoms: newAtomTable(),
		refs:  1,
	}
	if flags&NoDefaultIncludes == 0 {
		c.IncludePathAppendDefault()
	}
	return c
}

// Ref increments the Context's reference count and returns it, mirroring
// the intrusive refcounts of §5; callers that hand a Context to multiple
// owners should Ref it for each and Unref when done.
func (c *Context) Ref() *Context {
	c.mu.Lock()
	c.refs++
	c.mu.Unlock()
	return c
}

// Unref decrements the reference count. The Context carries no finalizer:
// Go's garbage collector reclaims it once unreferenced, so Unref exists
// only to mirror the C API's ownership contract for ports of existing code.
func (c *Context) Unref() {
	c.mu.Lock()
	c.refs--
	c.mu.Unlock()
}

// SetLogFunc installs the sink that receives every Diagnostic produced by
// parsing, compiling, or resolving rules on this Context.
func (c *Context) SetLogFunc(fn LogFunc) {
	c.mu.Lock()
	c.logFn = fn
	c.mu.Unlock()
}

// Getenv reads an environment variable, honoring NoEnvironmentNames (which
// makes every lookup return "", false) and NoSecureGetenv (which otherwise
// would refuse to read the environment when the process is setuid/setgid).
func (c *Context) Getenv(name string) (string, bool) {
	if c.flags&NoEnvironmentNames != 0 {
		return "", false
	}
	if c.flags&NoSecureGetenv == 0 && isUnsafeEnvironment() {
		return "", false
	}
	v, ok := os.LookupEnv(name)
	return v, ok
}

// IncludePaths returns a copy of the ordered include-path list.
func (c *Context) IncludePaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.includes))
	copy(out, c.includes)
	return out
}

// FailedIncludePaths returns the paths rejected by IncludePathAppend,
// because they didn't exist, weren't directories, or weren't readable and
// executable by this process.
func (c *Context) FailedIncludePaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.failedIncludes))
	copy(out, c.failedIncludes)
	return out
}

// IncludePathAppend adds path to the end of the include-path list if it
// exists as a directory readable and executable by this process; otherwise
// it is recorded in FailedIncludePaths and false is returned.
func (c *Context) IncludePathAppend(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !dirAccessible(path) {
		c.failedIncludes = append(c.failedIncludes, path)
		c.log(LogDebug, 0, "include path failed: %s", path)
		return false
	}
	c.includes = append(c.includes, path)
	c.log(LogDebug, 0, "include path added: %s", path)
	return true
}

// IncludePathClear removes every entry from both the include-path list and
// the failed-includes list.
func (c *Context) IncludePathClear() {
	c.mu.Lock()
	c.includes = nil
	c.failedIncludes = nil
	c.mu.Unlock()
}

// IncludePathAppendDefault clears nothing; it appends the default
// directories described in §4.1, in order.
func (c *Context) IncludePathAppendDefault() {
	home, _ := c.Getenv("HOME")
	if xdg, ok := c.Getenv("XDG_CONFIG_HOME"); ok && xdg != "" {
		c.IncludePathAppend(filepath.Join(xdg, "xkb"))
	} else if home != "" {
		c.IncludePathAppend(filepath.Join(home, ".config", "xkb"))
	}
	if home != "" {
		c.IncludePathAppend(filepath.Join(home, ".xkb"))
	}
	extra, ok := c.Getenv("XKB_CONFIG_EXTRA_PATH")
	if !ok || extra == "" {
		extra = DefaultXKBConfigExtraPath
	}
	c.IncludePathAppend(extra)
	root, ok := c.Getenv("XKB_CONFIG_ROOT")
	if !ok || root == "" {
		root = DefaultXKBConfigRoot
	}
	c.IncludePathAppend(root)
}

// IncludePathResetDefaults clears the include path and re-appends the
// default directories.
func (c *Context) IncludePathResetDefaults() {
	c.IncludePathClear()
	c.IncludePathAppendDefault()
}

// sectionSubdir is the conventional leading subdirectory for each section
// kind, mirrored from the real xkb config-root layout.
func sectionSubdir(kind string) string {
	switch kind {
	case "xkb_keycodes":
		return "keycodes"
	case "xkb_types":
		return "types"
	case "xkb_compatibility", "xkb_compat":
		return "compat"
	case "xkb_symbols":
		return "symbols"
	case "xkb_geometry":
		return "geometry"
	case "rules":
		return "rules"
	default:
		return kind
	}
}

// ResolveInclude searches the include path for <root>/<subdir(kind)>/<name>
// and returns its contents along with the path that resolved, implementing
// §4.2's include-path search. The returned bytes have any leading UTF-8 BOM
// stripped; a leading UTF-16 or UTF-32 BOM is rejected per §4.3.
func (c *Context) ResolveInclude(kind, name string) ([]byte, string, error) {
	sub := sectionSubdir(kind)
	for _, root := range c.IncludePaths() {
		full := filepath.Join(root, sub, name)
		data, err := os.ReadFile(full)
		if err == nil {
			data, err = decodeSource(data, full)
			if err != nil {
				return nil, "", err
			}
			return data, full, nil
		}
	}
	return nil, "", wrapError(ErrIO, os.ErrNotExist, "include %q not found in any include path (section %s)", name, kind)
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// decodeSource sniffs an optional leading byte-order mark and enforces
// §4.3/§4.2: a UTF-8 BOM is tolerated and stripped, and a UTF-16 or UTF-32
// BOM is rejected outright rather than transcoded, since every XKB text
// format is specified as plain ASCII/UTF-8.
func decodeSource(data []byte, label string) ([]byte, error) {
	// Four-byte BOMs must be checked before the two-byte ones, since the
	// UTF-32LE BOM shares its first two bytes with the UTF-16LE BOM.
	switch {
	case bytes.HasPrefix(data, bomUTF32BE):
		return nil, newError(ErrSyntax, "%s: UTF-32BE encoded source is not supported, only UTF-8", label)
	case bytes.HasPrefix(data, bomUTF32LE):
		return nil, newError(ErrSyntax, "%s: UTF-32LE encoded source is not supported, only UTF-8", label)
	case bytes.HasPrefix(data, bomUTF16BE):
		return nil, newError(ErrSyntax, "%s: UTF-16BE encoded source is not supported, only UTF-8", label)
	case bytes.HasPrefix(data, bomUTF16LE):
		return nil, newError(ErrSyntax, "%s: UTF-16LE encoded source is not supported, only UTF-8", label)
	case bytes.HasPrefix(data, bomUTF8):
		return bytes.TrimPrefix(data, bomUTF8), nil
	default:
		return data, nil
	}
}
