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

import "testing"

func TestKeysymFromRuneASCII(t *testing.T) {
	if k := KeysymFromRune('a'); k != Keysym('a') {
		t.Fatalf("KeysymFromRune('a') = %#x, want %#x", k, Keysym('a'))
	}
}

func TestKeysymFromRuneBeyondLatin1(t *testing.T) {
	k := KeysymFromRune('中') // CJK UNIFIED IDEOGRAPH "middle"
	want := Keysym(KeysymUnicodeOffset) + Keysym(0x4e2d)
	if k != want {
		t.Fatalf("KeysymFromRune(U+4E2D) = %#x, want %#x", k, want)
	}
}

func TestKeysymFromRuneNegativeIsNone(t *testing.T) {
	if k := KeysymFromRune(-1); k != KeysymNone {
		t.Fatalf("KeysymFromRune(-1) = %#x, want KeysymNone", k)
	}
}

func TestKeysymFromNameSingleChar(t *testing.T) {
	k, ok := KeysymFromName("a")
	if !ok || k != Keysym('a') {
		t.Fatalf("KeysymFromName(%q) = (%#x, %v), want (%#x, true)", "a", k, ok, Keysym('a'))
	}
}

func TestKeysymFromNameNamedKeysym(t *testing.T) {
	k, ok := KeysymFromName("Shift_L")
	if !ok || k != KeysymShiftL {
		t.Fatalf("KeysymFromName(%q) = (%#x, %v), want (%#x, true)", "Shift_L", k, ok, KeysymShiftL)
	}
}

func TestKeysymFromNameUnicodeEscape(t *testing.T) {
	k, ok := KeysymFromName("U1F600")
	if !ok {
		t.Fatalf("KeysymFromName(%q) failed to resolve", "U1F600")
	}
	want := KeysymFromRune(0x1F600)
	if k != want {
		t.Fatalf("KeysymFromName(%q) = %#x, want %#x", "U1F600", k, want)
	}
}

func TestKeysymFromNameUnknown(t *testing.T) {
	if _, ok := KeysymFromName("NotARealKeysymName"); ok {
		t.Fatal("KeysymFromName resolved a bogus name")
	}
}

func TestKeysymNameRoundTripsThroughFromName(t *testing.T) {
	for _, k := range []Keysym{KeysymReturn, KeysymEscape, KeysymDeadAcute, KeysymCapsLock} {
		name := k.Name()
		got, ok := KeysymFromName(name)
		if !ok {
			t.Fatalf("KeysymFromName(%q) failed for round trip of %#x", name, k)
		}
		if got != k {
			t.Fatalf("round trip of %#x through name %q produced %#x", k, name, got)
		}
	}
}

func TestKeysymNamePrintableASCII(t *testing.T) {
	if name := Keysym('Q').Name(); name != "Q" {
		t.Fatalf("Name() of printable ASCII keysym = %q, want %q", name, "Q")
	}
}

func TestKeysymNameNoSymbol(t *testing.T) {
	if name := KeysymNone.Name(); name != "NoSymbol" {
		t.Fatalf("Name() of KeysymNone = %q, want %q", name, "NoSymbol")
	}
}

func TestKeysymRuneASCIIAndLatin1(t *testing.T) {
	r, ok := Keysym('Z').Rune()
	if !ok || r != 'Z' {
		t.Fatalf("Rune() of Keysym('Z') = (%v, %v), want ('Z', true)", r, ok)
	}
}

func TestKeysymRuneOfModifierIsAbsent(t *testing.T) {
	if _, ok := KeysymShiftL.Rune(); ok {
		t.Fatal("Rune() resolved a printable rune for Shift_L")
	}
}

func TestKeysymUTF8(t *testing.T) {
	if s := KeysymFromRune('é').UTF8(); s != "é" {
		t.Fatalf("UTF8() = %q, want %q", s, "é")
	}
	if s := KeysymShiftL.UTF8(); s != "" {
		t.Fatalf("UTF8() of Shift_L = %q, want \"\"", s)
	}
}

func TestKeysymToUpperAndToLower(t *testing.T) {
	lower := KeysymFromRune('a')
	upper := lower.ToUpper()
	if upper != KeysymFromRune('A') {
		t.Fatalf("ToUpper('a') = %#x, want %#x", upper, KeysymFromRune('A'))
	}
	if back := upper.ToLower(); back != lower {
		t.Fatalf("ToLower(ToUpper('a')) = %#x, want %#x", back, lower)
	}
}

func TestKeysymToUpperOfNonLetterIsUnchanged(t *testing.T) {
	digit := KeysymFromRune('5')
	if got := digit.ToUpper(); got != digit {
		t.Fatalf("ToUpper('5') = %#x, want unchanged %#x", got, digit)
	}
}

func TestKeysymToUpperOfModifierIsUnchanged(t *testing.T) {
	if got := KeysymShiftL.ToUpper(); got != KeysymShiftL {
		t.Fatalf("ToUpper(Shift_L) = %#x, want unchanged", got)
	}
}

func TestKeysymIsKeypad(t *testing.T) {
	if Keysym(0xFF80).IsKeypad() != true {
		t.Fatal("IsKeypad() false at lower bound 0xFF80")
	}
	if Keysym(0xFFBD).IsKeypad() != true {
		t.Fatal("IsKeypad() false at upper bound 0xFFBD")
	}
	if KeysymShiftL.IsKeypad() {
		t.Fatal("IsKeypad() true for Shift_L")
	}
}
