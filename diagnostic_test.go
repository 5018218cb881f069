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

func TestLogLevelString(t *testing.T) {
	cases := map[LogLevel]string{
		LogCritical:   "critical",
		LogError:      "error",
		LogWarning:    "warning",
		LogInfo:       "info",
		LogDebug:      "debug",
		LogLevel(999): "unknown",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Fatalf("LogLevel(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestDiagnosticStringWithMessageID(t *testing.T) {
	d := Diagnostic{Level: LogWarning, MessageID: MsgUnresolvedKeysym, Text: "no such keysym bogus"}
	want := "warning: [XKB-107] no such keysym bogus"
	if got := d.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestDiagnosticStringWithoutMessageID(t *testing.T) {
	d := Diagnostic{Level: LogInfo, Text: "compiled successfully"}
	want := "info: compiled successfully"
	if got := d.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestContextLogDiscardsWithoutLogFunc(t *testing.T) {
	c := NewContext(NoDefaultIncludes)
	// must not panic when no LogFunc is registered
	c.log(LogError, MsgDuplicateEntry, "duplicate %s", "AC01")
}

func TestContextLogInvokesRegisteredLogFunc(t *testing.T) {
	c := NewContext(NoDefaultIncludes)
	var got Diagnostic
	var calls int
	c.SetLogFunc(func(d Diagnostic) {
		got = d
		calls++
	})
	c.log(LogWarning, MsgUnrecognizedKeysym, "bad keysym %q", "Nonsense")
	if calls != 1 {
		t.Fatalf("LogFunc invoked %d times, want 1", calls)
	}
	if got.Level != LogWarning || got.MessageID != MsgUnrecognizedKeysym {
		t.Fatalf("Diagnostic = %#v, want Level=LogWarning MessageID=%d", got, MsgUnrecognizedKeysym)
	}
	if got.Text != `bad keysym "Nonsense"` {
		t.Fatalf("Diagnostic.Text = %q", got.Text)
	}
}
