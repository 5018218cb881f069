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

package compose

import "testing"

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Nothing:     "NOTHING",
		Composing:   "COMPOSING",
		Composed:    "COMPOSED",
		Cancelled:   "CANCELLED",
		Status(999): "UNKNOWN",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestNopTableNeverComposes(t *testing.T) {
	var tbl NopTable
	if st := tbl.Feed(0x1000061); st != Nothing {
		t.Fatalf("NopTable.Feed = %v, want Nothing", st)
	}
	if tbl.GetOneSym() != 0 {
		t.Fatal("NopTable.GetOneSym should always be 0")
	}
	if tbl.GetUTF8() != "" {
		t.Fatal("NopTable.GetUTF8 should always be empty")
	}
	tbl.Reset() // must not panic
}

func TestNopTableSatisfiesTableInterface(t *testing.T) {
	var _ Table = NopTable{}
}

func TestCacheHeaderFieldsRoundTrip(t *testing.T) {
	h := CacheHeader{
		Format:   1,
		Flags:    0,
		Locale:   "en_US.UTF-8",
		UTF8Src:  "<dead_acute> <a> : \"á\"",
		NodeSize: 16,
	}
	if h.Locale != "en_US.UTF-8" {
		t.Fatalf("Locale = %q", h.Locale)
	}
	if h.NodeSize != 16 {
		t.Fatalf("NodeSize = %d, want 16", h.NodeSize)
	}
}
