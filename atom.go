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

import "sync"

// Atom is a small interned handle for a string, unique within the Context
// that produced it. AtomNone (the zero value) denotes "no name". Atoms are
// immutable for the lifetime of their Context and compare by equality.
type Atom uint32

// AtomNone is the atom denoting the absence of a name.
const AtomNone Atom = 0

// atomTable interns strings to small integers. It is append-only: once an
// atom is assigned it is never renumbered or freed, so atoms may be safely
// read from multiple goroutines once created, provided the client
// serializes writes (§5).
type atomTable struct {
	mu      sync.RWMutex
	byName  map[string]Atom
	byAtom  []string // index 0 is unused, so byAtom[a] is valid for a >= 1
}

func newAtomTable() *atomTable {
	return &atomTable{
		byName: make(map[string]Atom),
		byAtom: []string{""},
	}
}

// intern returns the atom for s, assigning a new one if s hasn't been seen.
func (t *atomTable) intern(s string) Atom {
	if s == "" {
		return AtomNone
	}
	t.mu.RLock()
	if a, ok := t.byName[s]; ok {
		t.mu.RUnlock()
		return a
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.byName[s]; ok {
		return a
	}
	a := Atom(len(t.byAtom))
	t.byAtom = append(t.byAtom, s)
	t.byName[s] = a
	return a
}

// lookup returns the atom for s, or AtomNone if s has never been interned.
func (t *atomTable) lookup(s string) Atom {
	if s == "" {
		return AtomNone
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byName[s]
}

// text returns the string an atom was interned from, or "" for AtomNone or
// an atom this table has not assigned.
func (t *atomTable) text(a Atom) string {
	if a == AtomNone {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(a) >= len(t.byAtom) {
		return ""
	}
	return t.byAtom[a]
}

// Intern returns the atom for s in this context, assigning a fresh one if
// necessary.
func (c *Context) Intern(s string) Atom {
	return c.atoms.intern(s)
}

// LookupAtom returns the atom for s, or AtomNone if it was never interned
// in this context.
func (c *Context) LookupAtom(s string) Atom {
	return c.atoms.lookup(s)
}

// AtomText returns the string that atom a was interned from.
func (c *Context) AtomText(a Atom) string {
	return c.atoms.text(a)
}
