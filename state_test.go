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

// buildTestKeymap assembles a tiny, hand-built keymap exercising a shift
// key, a caps-lock key, a two-level "a" key, and a two-group latch-capable
// key, without going through the parser/compiler passes.
func buildTestKeymap(t *testing.T) (*Keymap, Keycode, Keycode, Keycode, Keycode) {
	t.Helper()
	c := NewContext(NoDefaultIncludes)
	km := newKeymap(c)
	km.MinKeycode, km.MaxKeycode = 9, 20
	km.NumGroups = 2

	alphaType := &KeyType{
		Name:      c.Intern("ALPHABETIC"),
		Mods:      ModMask(1)<<ModIndexShift | ModMask(1)<<ModIndexLock,
		NumLevels: 2,
		Entries: []KeyTypeEntry{
			{Mods: 0, Level: 0},
			{Mods: ModMask(1) << ModIndexShift, Level: 1},
		},
	}
	km.Types = append(km.Types, alphaType)

	const (
		kcShift    Keycode = 10
		kcCaps     Keycode = 11
		kcA        Keycode = 12
		kcGroupKey Keycode = 13
	)

	shiftKey := &Key{
		Keycode: kcShift,
		Name:    c.Intern("LFSH"),
		Groups: []Group{{
			Type: alphaType,
			Levels: []Level{
				{Syms: []Keysym{KeysymShiftL}, Actions: []Action{
					ModAction{Op: ModActionSet, Mods: ModMask(1) << ModIndexShift},
				}},
			},
		}},
	}
	capsKey := &Key{
		Keycode: kcCaps,
		Name:    c.Intern("CAPS"),
		Groups: []Group{{
			Type: alphaType,
			Levels: []Level{
				{Syms: []Keysym{KeysymCapsLock}, Actions: []Action{
					ModAction{Op: ModActionLock, Mods: ModMask(1) << ModIndexLock},
				}},
			},
		}},
	}
	aKey := &Key{
		Keycode: kcA,
		Name:    c.Intern("AC01"),
		Groups: []Group{{
			Type: alphaType,
			Levels: []Level{
				{Syms: []Keysym{KeysymFromRune('a')}},
				{Syms: []Keysym{KeysymFromRune('A')}},
			},
		}},
	}
	groupKey := &Key{
		Keycode: kcGroupKey,
		Name:    c.Intern("RALT"),
		Groups: []Group{{
			Type: alphaType,
			Levels: []Level{
				{Syms: []Keysym{KeysymISOLevel3Shift}, Actions: []Action{
					GroupAction{Op: GroupActionLatch, Group: 1},
				}},
			},
		}},
	}

	km.Keys[kcShift] = shiftKey
	km.Keys[kcCaps] = capsKey
	km.Keys[kcA] = aKey
	km.Keys[kcGroupKey] = groupKey
	km.keyByName[shiftKey.Name] = kcShift
	km.keyByName[capsKey.Name] = kcCaps
	km.keyByName[aKey.Name] = kcA
	km.keyByName[groupKey.Name] = kcGroupKey

	return km, kcShift, kcCaps, kcA, kcGroupKey
}

func TestStateShiftSetMods(t *testing.T) {
	km, kcShift, _, kcA, _ := buildTestKeymap(t)
	st := NewState(km)

	if sym := st.EffectiveSym(kcA); sym != KeysymFromRune('a') {
		t.Fatalf("unshifted 'a' key = %v, want lowercase a", sym)
	}

	st.UpdateKey(kcShift, KeyDown)
	if sym := st.EffectiveSym(kcA); sym != KeysymFromRune('A') {
		t.Fatalf("shifted 'a' key = %v, want uppercase A", sym)
	}

	st.UpdateKey(kcShift, KeyUp)
	if sym := st.EffectiveSym(kcA); sym != KeysymFromRune('a') {
		t.Fatalf("after shift release, 'a' key = %v, want lowercase a", sym)
	}
}

func TestStateCapsLockCapitalizes(t *testing.T) {
	km, _, kcCaps, kcA, _ := buildTestKeymap(t)
	st := NewState(km)

	st.UpdateKey(kcCaps, KeyDown)
	st.UpdateKey(kcCaps, KeyUp)

	if sym := st.EffectiveSym(kcA); sym != KeysymFromRune('A') {
		t.Fatalf("'a' key under CapsLock = %v, want uppercase A", sym)
	}
	if !st.capsActive() {
		t.Fatal("capsActive() = false after locking CapsLock")
	}

	st.UpdateKey(kcCaps, KeyDown)
	st.UpdateKey(kcCaps, KeyUp)
	if sym := st.EffectiveSym(kcA); sym != KeysymFromRune('a') {
		t.Fatalf("'a' key after unlocking CapsLock = %v, want lowercase a", sym)
	}
}

func TestStateGroupLatch(t *testing.T) {
	km, _, _, kcA, kcGroupKey := buildTestKeymap(t)
	st := NewState(km)

	st.UpdateKey(kcGroupKey, KeyDown)
	st.UpdateKey(kcGroupKey, KeyUp)

	if st.effectiveLayout != 1 {
		t.Fatalf("effectiveLayout after group latch = %d, want 1", st.effectiveLayout)
	}

	// aKey only declares one group; EffectiveGroup must saturate/wrap back.
	if sym := st.EffectiveSym(kcA); sym == KeysymNone {
		t.Fatal("EffectiveSym returned KeysymNone after group latch")
	}
}

func TestStateLatchSurvivesNoActionKey(t *testing.T) {
	km, _, _, kcA, kcGroupKey := buildTestKeymap(t)
	st := NewState(km)

	st.UpdateKey(kcGroupKey, KeyDown)
	// the 'a' key carries no actions; BreaksLatch is keyed on dispatched
	// actions, so pressing it must not break the pending group latch.
	st.UpdateKey(kcA, KeyDown)
	st.UpdateKey(kcA, KeyUp)
	st.UpdateKey(kcGroupKey, KeyUp)

	if st.effectiveLayout != 1 {
		t.Fatalf("effectiveLayout = %d, want 1 (latch should survive a no-action key)", st.effectiveLayout)
	}
}

func TestStateLatchBrokenByVoidAction(t *testing.T) {
	km, _, _, _, kcGroupKey := buildTestKeymap(t)
	c := km.ctx

	const kcVoid Keycode = 14
	voidKey := &Key{
		Keycode: kcVoid,
		Name:    c.Intern("VOID"),
		Groups: []Group{{
			Type: km.Types[0],
			Levels: []Level{
				{Syms: []Keysym{KeysymVoidSymbol}, Actions: []Action{VoidAction{}}},
			},
		}},
	}
	km.Keys[kcVoid] = voidKey
	km.keyByName[voidKey.Name] = kcVoid

	st := NewState(km)
	st.UpdateKey(kcGroupKey, KeyDown)
	st.UpdateKey(kcVoid, KeyDown)
	st.UpdateKey(kcVoid, KeyUp)
	st.UpdateKey(kcGroupKey, KeyUp)

	if st.effectiveLayout != 0 {
		t.Fatalf("effectiveLayout = %d, want 0 (a Void action must break the pending latch)", st.effectiveLayout)
	}
}

func TestStateUpdateMask(t *testing.T) {
	km, _, _, _, _ := buildTestKeymap(t)
	st := NewState(km)

	changed := st.UpdateMask(ModMask(1)<<ModIndexShift, 0, 0, 0, 0, 0)
	if changed&DepressedMods == 0 {
		t.Fatal("UpdateMask did not report DepressedMods changed")
	}
	if st.effectiveMods&(ModMask(1)<<ModIndexShift) == 0 {
		t.Fatal("effectiveMods missing Shift after UpdateMask")
	}
}

func TestModIsConsumedXKBMode(t *testing.T) {
	km, _, _, kcA, _ := buildTestKeymap(t)
	st := NewState(km)

	st.UpdateKey(10, KeyDown) // LFSH (shift) held
	if !st.ModIsConsumed(kcA, ModIndexShift, false) {
		t.Fatal("Shift should be consumed selecting the 'a' key's shifted level")
	}
	if st.ModIsConsumed(kcA, ModIndexControl, false) {
		t.Fatal("Control is not part of this key's type and must not be reported consumed")
	}
}
