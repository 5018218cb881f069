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

// ActionFlags carries the per-action bit options named in §4.6. Not every
// flag applies to every action kind; the compiler records whatever flags
// were parsed on an action without checking them against its kind.
type ActionFlags uint16

const (
	ActionClearLock ActionFlags = 1 << iota
	ActionLatchToLock
	ActionLookupModMap
	ActionLockNoLock
	ActionLockNoUnlock
	ActionAbsolute
	ActionUnlockOnPress // V2 only; default is unlock-on-release
)

// GroupDelta is a signed relative or absolute group number, carried by
// Set/Latch/LockGroup actions.
type GroupDelta int32

// Action is the sum type of every key action in §4.6. Each concrete type
// carries only the fields its variant needs, mirroring the tagged unions
// (xkb_mod_action, xkb_group_action, ...) in the design notes (§9).
type Action interface {
	actionKind() string
	// BreaksLatch reports whether dispatching this action should break a
	// pending latch, per §4.6's "non-modifier, non-group, non-void
	// action" rule and the V2 breaksLatch classification.
	BreaksLatch() bool
}

// ModAction implements SetMods, LatchMods, and LockMods.
type ModAction struct {
	Op    ModActionOp
	Mods  ModMask
	Flags ActionFlags
}

type ModActionOp int

const (
	ModActionSet ModActionOp = iota
	ModActionLatch
	ModActionLock
)

func (ModAction) actionKind() string { return "mod" }
func (ModAction) BreaksLatch() bool  { return false }

// GroupAction implements SetGroup, LatchGroup, and LockGroup.
type GroupAction struct {
	Op    GroupActionOp
	Group GroupDelta
	Flags ActionFlags
}

type GroupActionOp int

const (
	GroupActionSet GroupActionOp = iota
	GroupActionLatch
	GroupActionLock
)

func (GroupAction) actionKind() string { return "group" }
func (GroupAction) BreaksLatch() bool  { return false }

// TerminateAction implements the Terminate action (tells a compositor or
// session manager to end the session); it carries no state.
type TerminateAction struct{}

func (TerminateAction) actionKind() string { return "terminate" }
func (TerminateAction) BreaksLatch() bool  { return true }

// SwitchScreenAction implements SwitchScreen.
type SwitchScreenAction struct {
	Screen    int32
	Absolute  bool
}

func (SwitchScreenAction) actionKind() string { return "switch_screen" }
func (SwitchScreenAction) BreaksLatch() bool  { return true }

// PointerActionOp distinguishes the four pointer-related action kinds.
type PointerActionOp int

const (
	PointerMove PointerActionOp = iota
	PointerButton
	PointerLock
	PointerDefault
)

// PointerAction implements PtrMove, PtrButton, PtrLock, and PtrDefault.
type PointerAction struct {
	Op      PointerActionOp
	X, Y    int32
	Button  int
	Flags   ActionFlags
}

func (PointerAction) actionKind() string { return "pointer" }
func (PointerAction) BreaksLatch() bool  { return true }

// ControlActionOp distinguishes CtrlSet from CtrlLock.
type ControlActionOp int

const (
	ControlSet ControlActionOp = iota
	ControlLock
)

// ControlAction implements CtrlSet and CtrlLock over the keyboard-control
// bitmask (Controls).
type ControlAction struct {
	Op       ControlActionOp
	Controls Controls
}

func (ControlAction) actionKind() string { return "control" }
func (ControlAction) BreaksLatch() bool  { return true }

// PrivateAction implements the vendor-escape Private action: an opaque
// payload the compiler doesn't interpret, carried through to the state
// machine's output for the caller to handle.
type PrivateAction struct {
	Type int
	Data []byte
}

func (PrivateAction) actionKind() string { return "private" }
func (PrivateAction) BreaksLatch() bool  { return true }

// VoidAction is the explicit latch-breaker named in §4.6 and §9: it
// performs no state change of its own but always clears pending latches.
type VoidAction struct{}

func (VoidAction) actionKind() string { return "void" }
func (VoidAction) BreaksLatch() bool  { return true }

// Controls is the keyboard-control bitmask referenced by ControlAction and
// by LED which_ctrls (§4.6's "State options").
type Controls uint32

const (
	ControlRepeat Controls = 1 << iota
	ControlSlow
	ControlSticky
	ControlMouseKeys
	ControlBell
	ControlIgnoreGroupLock
)
