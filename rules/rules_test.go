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

package rules

import "testing"

const testRulesFile = `
! model = keycodes
  pc104 = pc104

! model layout[1] = symbols
  pc104 us = pc+us
  pc104 *  = pc+%l

! layout[2] = symbols
  * = %l:2

! option = symbols
  grp_lalt_lshift_toggle = group(lalt_lshift_toggle)
`

func TestResolveModelAndSingleLayout(t *testing.T) {
	f, err := Parse(testRulesFile)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := f.Resolve(RMLVO{Model: "pc104", Layouts: []string{"us"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Keycodes != "pc104" {
		t.Errorf("Keycodes = %q, want pc104", res.Keycodes)
	}
	if res.Symbols != "pc+us" {
		t.Errorf("Symbols = %q, want pc+us", res.Symbols)
	}
	if res.ExplicitLayouts != 1 {
		t.Errorf("ExplicitLayouts = %d, want 1", res.ExplicitLayouts)
	}
}

func TestResolveSecondLayoutQualifier(t *testing.T) {
	f, err := Parse(testRulesFile)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := f.Resolve(RMLVO{Model: "pc104", Layouts: []string{"us", "de"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbols != "pc+us+de:2" {
		t.Errorf("Symbols = %q, want pc+us+de:2", res.Symbols)
	}
	if res.ExplicitLayouts != 2 {
		t.Errorf("ExplicitLayouts = %d, want 2", res.ExplicitLayouts)
	}
}

func TestResolveOptionAppendsToSymbols(t *testing.T) {
	f, err := Parse(testRulesFile)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := f.Resolve(RMLVO{
		Model:   "pc104",
		Layouts: []string{"us"},
		Options: []string{"grp_lalt_lshift_toggle"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := "pc+us+group(lalt_lshift_toggle)"
	if res.Symbols != want {
		t.Errorf("Symbols = %q, want %q", res.Symbols, want)
	}
}

func TestResolveVariantWithoutLayoutIsInvalid(t *testing.T) {
	f, err := Parse(testRulesFile)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = f.Resolve(RMLVO{Variants: []string{"dvorak"}})
	if err == nil {
		t.Fatal("expected error for variant with no matching layout")
	}
}

func TestParseRejectsRowBeforeHeader(t *testing.T) {
	_, err := Parse("pc104 = pc104\n")
	if err == nil {
		t.Fatal("expected error for a rule row preceding any header")
	}
}

func TestMatchValueWildcards(t *testing.T) {
	cases := []struct {
		pattern, value string
		want           bool
	}{
		{"*", "us", true},
		{"*", "", false},
		{"<none>", "", true},
		{"<none>", "us", false},
		{"<some>", "us", true},
		{"<any>", "", true},
		{"us", "us", true},
		{"us", "de", false},
	}
	for _, c := range cases {
		if got := matchValue(c.pattern, c.value); got != c.want {
			t.Errorf("matchValue(%q, %q) = %v, want %v", c.pattern, c.value, got, c.want)
		}
	}
}
