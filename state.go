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

import "github.com/xkbgo/xkbcommon/compose"

// StateComponent is a bit in the changed-component set §4.6 requires
// update_key/update_mask to report.
type StateComponent uint32

const (
	DepressedMods StateComponent = 1 << iota
	LatchedMods
	LockedMods
	EffectiveMods
	DepressedLayout
	LatchedLayout
	LockedLayout
	EffectiveLayout
	ChangedLeds
)

// KeyDirection is the edge a call to State.UpdateKey reports.
type KeyDirection int

const (
	KeyUp KeyDirection = iota
	KeyDown
)

// heldKey is the bookkeeping a State keeps for a currently-pressed key, so
// its release can reverse or promote exactly what its press spawned (§3's
// "the filters ... each spawned").
type heldKey struct {
	group, level int

	setMods       ModMask // bits this key's SetMods actions contributed
	pendingUnlock ModMask // LockMods bits whose unlock is deferred to release

	latchCandidate  ModMask
	hasLatchCand    bool
	latchGeneration uint64

	setGroupDelta GroupDelta
	hasSetGroup   bool

	pendingGroupUnlock GroupDelta
	hasGroupUnlock     bool

	latchGroupCandidate GroupDelta
	hasGroupLatchCand   bool
	groupLatchGen       uint64
}

// State is the mutable per-connection object clients drive with key events
// (§3's State, §4.6).
type State struct {
	km *Keymap

	depressedMods ModMask
	latchedMods   ModMask
	lockedMods    ModMask
	effectiveMods ModMask

	depressedLayout int32
	latchedLayout   int32
	lockedLayout    int32
	effectiveLayout int32

	controls Controls

	leds []bool

	held map[Keycode]*heldKey

	// latchGeneration increments every time a latch-breaking action is
	// dispatched; a held key's recorded generation at spawn time lets
	// release compare "did anything break my latch since."
	latchGeneration uint64

	lastKeycode Keycode

	Compose compose.Table

	// composeStatus is what the last FeedCompose call returned.
	composeStatus compose.Status
}

// NewState creates a State over km, taking a reference to it (§5).
func NewState(km *Keymap) *State {
	km.Ref()
	st := &State{
		km:      km,
		leds:    make([]bool, len(km.Leds)),
		held:    make(map[Keycode]*heldKey),
		Compose: compose.NopTable{},
	}
	st.recompute(*st)
	return st
}

// Unref releases this state's reference to its keymap.
func (st *State) Unref() {
	st.km.Unref()
}

// recompute derives the effective components and reports which components
// differ from old, the state as it was before the caller changed it.
func (st *State) recompute(old State) StateComponent {
	st.effectiveMods = st.km.Mods.EffectiveMask(st.depressedMods | st.latchedMods | st.lockedMods)
	st.effectiveLayout = st.selectLayout()

	var changed StateComponent
	if old.depressedMods != st.depressedMods {
		changed |= DepressedMods
	}
	if old.latchedMods != st.latchedMods {
		changed |= LatchedMods
	}
	if old.lockedMods != st.lockedMods {
		changed |= LockedMods
	}
	if old.effectiveMods != st.effectiveMods {
		changed |= EffectiveMods
	}
	if old.depressedLayout != st.depressedLayout {
		changed |= DepressedLayout
	}
	if old.latchedLayout != st.latchedLayout {
		changed |= LatchedLayout
	}
	if old.lockedLayout != st.lockedLayout {
		changed |= LockedLayout
	}
	if old.effectiveLayout != st.effectiveLayout {
		changed |= EffectiveLayout
	}
	if st.recomputeLeds() {
		changed |= ChangedLeds
	}
	return changed
}

// selectLayout folds depressed/latched/locked group numbers into a single
// effective layout index, the same additive convention used for mods.
func (st *State) selectLayout() int32 {
	return st.depressedLayout + st.latchedLayout + st.lockedLayout
}

// effectiveGroupFor resolves kc's group the way step 1 of §4.6's "Processing
// a key" does.
func (st *State) effectiveGroupFor(k *Key) int {
	return k.EffectiveGroup(st.effectiveLayout)
}

// levelFor resolves the effective level within g per step 2 of §4.6, with
// the "no matching entry -> level 0" fallback.
func levelFor(g *Group, effMods ModMask) int {
	if g.Type == nil {
		return 0
	}
	lvl, ok := g.Type.findLevel(effMods)
	if !ok {
		return 0
	}
	if int(lvl) >= len(g.Levels) {
		return 0
	}
	return int(lvl)
}

// EffectiveSym returns the keysym step 3 of §4.6 resolves for kc at the
// state's current modifiers/layout: the level's first sym, capitalized if
// CapsLock is effective and Shift is not. If a compose sequence is
// currently COMPOSED, it takes precedence over the key's own sym.
func (st *State) EffectiveSym(kc Keycode) Keysym {
	key, ok := st.km.Key(kc)
	if !ok {
		return KeysymNone
	}
	if st.composeStatus == compose.Composed {
		return Keysym(st.Compose.GetOneSym())
	}
	gi := st.effectiveGroupFor(key)
	if gi < 0 {
		return KeysymNone
	}
	g := &key.Groups[gi]
	li := levelFor(g, st.effectiveMods&g.Type.Mods)
	if li >= len(g.Levels) || len(g.Levels[li].Syms) == 0 {
		return KeysymNone
	}
	sym := g.Levels[li].Syms[0]
	if st.capsActive() {
		sym = sym.ToUpper()
	}
	return sym
}

func (st *State) capsActive() bool {
	lockBit := ModMask(1) << uint(ModIndexLock)
	shiftBit := ModMask(1) << uint(ModIndexShift)
	return st.effectiveMods&lockBit != 0 && st.effectiveMods&shiftBit == 0
}

// EffectiveUTF8 returns the UTF-8 text for kc's effective sym.
func (st *State) EffectiveUTF8(kc Keycode) string {
	return st.EffectiveSym(kc).UTF8()
}

// UpdateKey applies a key event to the state, per §4.6's "Processing a
// key"/"On a key-up event" rules, and returns the set of changed
// components.
func (st *State) UpdateKey(kc Keycode, dir KeyDirection) StateComponent {
	key, ok := st.km.Key(kc)
	if !ok {
		return 0
	}
	st.lastKeycode = kc

	if dir == KeyDown {
		return st.keyDown(key)
	}
	return st.keyUp(key)
}

func (st *State) keyDown(key *Key) StateComponent {
	old := *st
	hk := &heldKey{}
	hk.group = st.effectiveGroupFor(key)
	if hk.group >= 0 {
		g := &key.Groups[hk.group]
		hk.level = levelFor(g, st.effectiveMods&g.Type.Mods)
		if hk.level < len(g.Levels) {
			for _, act := range g.Levels[hk.level].Actions {
				st.dispatch(act, hk)
			}
		}
	}
	st.held[key.Keycode] = hk
	return st.recompute(old)
}

func (st *State) keyUp(key *Key) StateComponent {
	old := *st
	hk, ok := st.held[key.Keycode]
	if !ok {
		return st.recompute(old)
	}
	delete(st.held, key.Keycode)

	st.depressedMods &^= hk.setMods
	st.lockedMods &^= hk.pendingUnlock

	if hk.hasLatchCand {
		if hk.latchGeneration == st.latchGeneration {
			st.latchedMods |= hk.latchCandidate
		}
	}

	if hk.hasSetGroup {
		st.depressedLayout -= int32(hk.setGroupDelta)
	}
	st.lockedLayout -= int32(hk.pendingGroupUnlock)
	if hk.hasGroupLatchCand {
		if hk.groupLatchGen == st.latchGeneration {
			st.latchedLayout += int32(hk.latchGroupCandidate)
		}
	}

	return st.recompute(old)
}

// dispatch applies one action from a key-press, per §4.6 step 4, recording
// into hk whatever the matching key-release must reverse or promote.
func (st *State) dispatch(act Action, hk *heldKey) {
	if act.BreaksLatch() {
		st.latchGeneration++
	}

	switch a := act.(type) {
	case ModAction:
		st.dispatchMod(a, hk)
	case GroupAction:
		st.dispatchGroup(a, hk)
	case ControlAction:
		switch a.Op {
		case ControlSet:
			st.controls = a.Controls
		case ControlLock:
			st.controls |= a.Controls
		}
	default:
		// Terminate, SwitchScreen, pointer actions, Private, and Void carry
		// no keyboard-state effect here; callers observe them out of band.
	}
}

func (st *State) dispatchMod(a ModAction, hk *heldKey) {
	switch a.Op {
	case ModActionSet:
		st.depressedMods |= a.Mods
		hk.setMods |= a.Mods
	case ModActionLatch:
		if st.latchedMods&a.Mods == a.Mods && a.Flags&ActionLatchToLock != 0 {
			st.lockedMods |= a.Mods
			st.latchedMods &^= a.Mods
			return
		}
		hk.hasLatchCand = true
		hk.latchCandidate |= a.Mods
		hk.latchGeneration = st.latchGeneration
	case ModActionLock:
		alreadyLocked := st.lockedMods&a.Mods == a.Mods
		switch {
		case alreadyLocked && a.Flags&ActionLockNoUnlock != 0:
			// unlock inhibited
		case !alreadyLocked && a.Flags&ActionLockNoLock != 0:
			// lock inhibited
		case alreadyLocked:
			if a.Flags&ActionUnlockOnPress != 0 {
				st.lockedMods &^= a.Mods
			} else {
				hk.pendingUnlock |= a.Mods
			}
		default:
			st.lockedMods |= a.Mods
		}
	}
	if a.Flags&ActionClearLock != 0 {
		st.lockedMods &^= a.Mods
	}
}

func (st *State) dispatchGroup(a GroupAction, hk *heldKey) {
	switch a.Op {
	case GroupActionSet:
		var delta GroupDelta
		if a.Flags&ActionAbsolute != 0 {
			delta = a.Group - GroupDelta(st.depressedLayout)
		} else {
			delta = a.Group
		}
		st.depressedLayout += int32(delta)
		hk.hasSetGroup = true
		hk.setGroupDelta = delta
	case GroupActionLatch:
		group := a.Group
		if a.Flags&ActionAbsolute != 0 {
			group = a.Group - GroupDelta(st.latchedLayout)
		}
		if st.latchedLayout == int32(group) && a.Flags&ActionLatchToLock != 0 {
			st.lockedLayout += int32(group)
			st.latchedLayout = 0
			return
		}
		hk.hasGroupLatchCand = true
		hk.latchGroupCandidate = group
		hk.groupLatchGen = st.latchGeneration
	case GroupActionLock:
		group := a.Group
		if a.Flags&ActionAbsolute != 0 {
			group = a.Group - GroupDelta(st.lockedLayout)
		}
		st.lockedLayout += int32(group)
		hk.hasGroupUnlock = true
		hk.pendingGroupUnlock = group
	}
	if a.Flags&ActionClearLock != 0 {
		st.lockedLayout = 0
	}
}

// UpdateMask sets the three mod components and the three layout components
// directly, the way a Wayland compositor replays a remote client's state
// (§4.6's update_mask). It returns the changed-component set.
func (st *State) UpdateMask(depressedMods, latchedMods, lockedMods ModMask, depressedLayout, latchedLayout, lockedLayout int32) StateComponent {
	old := *st
	st.depressedMods = depressedMods
	st.latchedMods = latchedMods
	st.lockedMods = lockedMods
	st.depressedLayout = depressedLayout
	st.latchedLayout = latchedLayout
	st.lockedLayout = lockedLayout
	return st.recompute(old)
}

// ModIsConsumed implements §4.6's mod_is_consumed: whether mod contributed
// to selecting kc's current level.
func (st *State) ModIsConsumed(kc Keycode, mod int, gtkMode bool) bool {
	key, ok := st.km.Key(kc)
	if !ok || mod < 0 || mod >= len(st.km.Mods.Mods) {
		return false
	}
	gi := st.effectiveGroupFor(key)
	if gi < 0 {
		return false
	}
	g := &key.Groups[gi]
	if g.Type == nil {
		return false
	}
	bit := ModMask(1) << uint(mod)
	effMods := st.effectiveMods & g.Type.Mods
	lvl, ok := g.Type.findLevel(effMods)
	if !ok {
		return false
	}
	if !gtkMode {
		preserve := g.Type.preserveFor(effMods)
		return bit&g.Type.Mods != 0 && bit&preserve == 0 && effMods&bit != 0
	}
	flipped := effMods ^ bit
	other, _ := g.Type.findLevel(flipped & g.Type.Mods)
	return other != lvl
}

// recomputeLeds applies §4.6's LED rule to every LED, returning whether any
// LED's lit state changed.
func (st *State) recomputeLeds() bool {
	changed := false
	for i, led := range st.km.Leds {
		lit := st.ledLit(led)
		if lit != st.leds[i] {
			changed = true
		}
		st.leds[i] = lit
	}
	return changed
}

func (st *State) ledLit(led *Led) bool {
	if led.Mods != 0 {
		combined := st.combinedMods(led.WhichMods)
		if combined&led.Mods == led.Mods {
			return true
		}
	}
	if led.Groups != 0 {
		if st.combinedGroupBits(led.WhichGroups)&led.Groups == led.Groups {
			return true
		}
	}
	if led.Ctrls != 0 && st.controls&led.Ctrls != 0 {
		return true
	}
	return false
}

func (st *State) combinedMods(which LedComponent) ModMask {
	var m ModMask
	if which&LedDepressed != 0 {
		m |= st.depressedMods
	}
	if which&LedLatched != 0 {
		m |= st.latchedMods
	}
	if which&LedLocked != 0 {
		m |= st.lockedMods
	}
	if which&LedEffective != 0 || which == 0 {
		m |= st.effectiveMods
	}
	return m
}

// combinedGroupBits mirrors combinedMods for the group-index domain: it
// folds whichever of the depressed/latched/locked/effective layout
// components a LED or map selects into a single group bitmask.
func (st *State) combinedGroupBits(which LedComponent) uint32 {
	var bits uint32
	if which&LedDepressed != 0 {
		bits |= 1 << uint(st.depressedLayout)
	}
	if which&LedLatched != 0 {
		bits |= 1 << uint(st.latchedLayout)
	}
	if which&LedLocked != 0 {
		bits |= 1 << uint(st.lockedLayout)
	}
	if which&LedEffective != 0 || which == 0 {
		bits |= 1 << uint(st.effectiveLayout)
	}
	return bits
}

// LedActive reports whether the named LED is currently lit.
func (st *State) LedActive(name Atom) bool {
	for i, led := range st.km.Leds {
		if led.Name == name {
			return st.leds[i]
		}
	}
	return false
}

// FeedCompose advances the state's compose table by sym, updating the
// effective keysym/UTF-8 when composition completes (§4.7).
func (st *State) FeedCompose(sym Keysym) compose.Status {
	st.composeStatus = st.Compose.Feed(uint32(sym))
	return st.composeStatus
}
