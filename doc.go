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

// Package xkb compiles XKB (X Keyboard Extension) keyboard descriptions
// into an in-memory keymap, and runs a per-connection state machine that
// applies key events against that keymap to produce keysyms, UTF-8 text,
// and modifier/group/LED state changes.
//
// A Context owns process-wide configuration: an atom interner and an
// ordered list of include-path directories searched while resolving
// "include" statements and RMLVO rule files. A Keymap is produced either
// from raw XKB text (Context.NewKeymapFromString) or from an RMLVO
// selection resolved through the rules subsystem (Context.NewKeymapFromNames).
// A State is created over a Keymap and is the object clients drive with
// key-down/key-up events.
//
// Subpackages: xkbgo/xkbcommon/rules resolves RMLVO tuples to component
// names; xkbgo/xkbcommon/parser tokenizes and parses XKB text into an
// include-expanded tree; xkbgo/xkbcommon/compose defines the interface
// this package uses to fold dead-key sequences into composed keysyms.
package xkb
