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
	"errors"
	"fmt"
	"strings"

	"github.com/xkbgo/xkbcommon/parser"
	"github.com/xkbgo/xkbcommon/rules"
)

// NewKeymapFromString parses and compiles an XKB text source into a
// Keymap, per §4.2-§4.4. Compilation is all-or-nothing (§7): any syntax or
// semantic error discards the partially built keymap.
func (c *Context) NewKeymapFromString(name, src string) (*Keymap, error) {
	decoded, err := decodeSource([]byte(src), name)
	if err != nil {
		return nil, err
	}
	file, err := parser.ParseFile(name, string(decoded), c)
	if err != nil {
		return nil, wrapError(ErrSyntax, err, "parsing %s", name)
	}
	return compileFile(c, file)
}

func compileFile(c *Context, file *parser.File) (*Keymap, error) {
	km := newKeymap(c)
	var keycodes, types, compat, symbols *parser.Section
	for _, sec := range file.Sections {
		switch sec.Kind {
		case parser.SectionKeycodes:
			keycodes = sec
		case parser.SectionTypes:
			types = sec
		case parser.SectionCompat:
			compat = sec
		case parser.SectionSymbols:
			symbols = sec
		}
	}
	if err := compileKeycodes(km, keycodes); err != nil {
		return nil, wrapError(ErrSemantic, err, "compiling xkb_keycodes")
	}
	if err := compileTypes(km, types); err != nil {
		return nil, wrapError(ErrSemantic, err, "compiling xkb_types")
	}
	if err := compileCompat(km, compat); err != nil {
		return nil, wrapError(ErrSemantic, err, "compiling xkb_compatibility")
	}
	if err := compileSymbols(km, symbols); err != nil {
		return nil, wrapError(ErrSemantic, err, "compiling xkb_symbols")
	}
	return km, nil
}

// defaultRMLVOEnv fills in any empty RMLVO field from XKB_DEFAULT_* (unless
// NoEnvironmentNames is set) then from a minimal built-in default, per
// §4.3/§6.
func (c *Context) defaultRMLVOEnv(r rules.RMLVO) rules.RMLVO {
	if r.Rules == "" {
		if v, ok := c.Getenv("XKB_DEFAULT_RULES"); ok && v != "" {
			r.Rules = v
		} else {
			r.Rules = "evdev"
		}
	}
	if r.Model == "" {
		if v, ok := c.Getenv("XKB_DEFAULT_MODEL"); ok && v != "" {
			r.Model = v
		} else {
			r.Model = "pc104"
		}
	}
	if len(r.Layouts) == 0 {
		layout := "us"
		if v, ok := c.Getenv("XKB_DEFAULT_LAYOUT"); ok && v != "" {
			layout = v
		}
		r.Layouts = strings.Split(layout, ",")
	}
	if len(r.Variants) == 0 {
		if v, ok := c.Getenv("XKB_DEFAULT_VARIANT"); ok && v != "" {
			r.Variants = strings.Split(v, ",")
		}
	}
	if len(r.Options) == 0 {
		if v, ok := c.Getenv("XKB_DEFAULT_OPTIONS"); ok && v != "" {
			r.Options = strings.Split(v, ",")
		}
	}
	return r
}

// NewKeymapFromNames resolves rmlvo through the rules subsystem and
// compiles the resulting KcCGST component set, per §4.3-§4.4. Missing
// RMLVO fields are filled from the environment and built-in defaults
// unless the Context was created with NoEnvironmentNames.
func (c *Context) NewKeymapFromNames(rmlvo rules.RMLVO) (*Keymap, error) {
	if c.flags&NoEnvironmentNames == 0 {
		rmlvo = c.defaultRMLVOEnv(rmlvo)
	}
	if len(rmlvo.Layouts) > rules.MaxLayouts {
		return nil, newError(ErrLimit, "rmlvo: %d layouts exceeds the cap of %d", len(rmlvo.Layouts), rules.MaxLayouts)
	}

	data, _, err := c.ResolveInclude("rules", rmlvo.Rules)
	if err != nil {
		kind := ErrIO
		var xerr *Error
		if errors.As(err, &xerr) {
			kind = xerr.Kind
		}
		return nil, wrapError(kind, err, "loading rules file %q", rmlvo.Rules)
	}
	rf, err := rules.Parse(string(data))
	if err != nil {
		return nil, wrapError(ErrSyntax, err, "parsing rules file %q", rmlvo.Rules)
	}
	result, err := rf.Resolve(rmlvo)
	if err != nil {
		return nil, wrapError(ErrInvalidUsage, err, "resolving rmlvo")
	}

	src := synthesizeKeymapSource(result)
	return c.NewKeymapFromString("<rmlvo>", src)
}

// synthesizeKeymapSource builds the textual xkb_keymap wrapper that an
// RMLVO resolution implies: one include expression per section kind,
// exactly as real xkbcomp feeds its resolved KcCGST names back through the
// ordinary include-expanding parser.
func synthesizeKeymapSource(r rules.Result) string {
	var sb strings.Builder
	sb.WriteString("xkb_keymap {\n")
	fmt.Fprintf(&sb, "  xkb_keycodes { include %q; };\n", r.Keycodes)
	fmt.Fprintf(&sb, "  xkb_types { include %q; };\n", r.Types)
	fmt.Fprintf(&sb, "  xkb_compatibility { include %q; };\n", r.Compat)
	fmt.Fprintf(&sb, "  xkb_symbols { include %q; };\n", r.Symbols)
	sb.WriteString("};\n")
	return sb.String()
}
