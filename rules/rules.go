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

// Package rules resolves an RMLVO (Rules, Model, Layout, Variant, Options)
// tuple against a rules(5) database into a KcCGST (Keycodes, Compatibility,
// Geometry, Symbols, Types) component-name tuple, the way xkbcomp's
// "rules" stage does before the text parser ever runs.
package rules

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// MaxLayouts is the hard cap on layout/variant positions (§4.3).
const MaxLayouts = 32

// RMLVO is the caller-supplied selection tuple. Missing fields are filled
// in by the caller from the environment or built-in defaults before
// Resolve is called; this package performs no environment access of its
// own (that lives on Context, per §4.1/§6).
type RMLVO struct {
	Rules    string
	Model    string
	Layouts  []string
	Variants []string
	Options  []string
}

// Result is the resolved KcCGST tuple plus the count of layout positions
// that were actually populated by a matching rule.
type Result struct {
	Keycodes, Types, Compat, Symbols, Geometry string
	ExplicitLayouts                            int
}

// component identifies one of the five output columns a rules file can
// populate.
type component int

const (
	compKeycodes component = iota
	compTypes
	compCompat
	compSymbols
	compGeometry
)

func componentFromName(s string) (component, bool) {
	switch strings.ToLower(s) {
	case "keycodes":
		return compKeycodes, true
	case "types":
		return compTypes, true
	case "compat", "compatibility":
		return compCompat, true
	case "symbols":
		return compSymbols, true
	case "geometry":
		return compGeometry, true
	default:
		return 0, false
	}
}

// column is one input field of a rule row: its semantic name (model,
// layout, variant, option) and an optional layout-index qualifier parsed
// from a "[...]" suffix on the header token, e.g. "layout[1]" or
// "option[all]".
type column struct {
	name  string
	index indexQualifier
}

type indexQualifierKind int

const (
	idxNone indexQualifierKind = iota
	idxExact
	idxFirst
	idxLater
	idxAny
	idxAll
	idxSome
	idxNoneClass
)

type indexQualifier struct {
	kind  indexQualifierKind
	value int // only meaningful for idxExact
}

func parseIndexQualifier(s string) indexQualifier {
	switch strings.ToLower(s) {
	case "first":
		return indexQualifier{kind: idxFirst}
	case "later":
		return indexQualifier{kind: idxLater}
	case "any":
		return indexQualifier{kind: idxAny}
	case "all":
		return indexQualifier{kind: idxAll}
	case "some":
		return indexQualifier{kind: idxSome}
	case "none":
		return indexQualifier{kind: idxNoneClass}
	default:
		if n, err := strconv.Atoi(s); err == nil {
			return indexQualifier{kind: idxExact, value: n}
		}
		return indexQualifier{kind: idxNone}
	}
}

// splitNameIndex splits "layout[1]" into ("layout", "1"), and "layout"
// into ("layout", "").
func splitNameIndex(tok string) (string, string) {
	if i := strings.IndexByte(tok, '['); i >= 0 && strings.HasSuffix(tok, "]") {
		return tok[:i], tok[i+1 : len(tok)-1]
	}
	return tok, ""
}

// group is one `! col1 col2 = out1 out2` header plus its rows.
type group struct {
	inputs  []column
	outputs []component
	rows    []ruleRow
}

type ruleRow struct {
	values  []string // parallel to group.inputs
	outputs []string // parallel to group.outputs
}

// File is a parsed rules(5) database.
type File struct {
	groups []group
}

// Parse reads a rules(5) file's text, per §6: line-oriented, blank lines
// and "//" comments ignored, declaration blocks begin with "!".
func Parse(src string) (*File, error) {
	f := &File{}
	var cur *group
	sc := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "!") {
			g, err := parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("rules: line %d: %w", lineNo, err)
			}
			f.groups = append(f.groups, g)
			cur = &f.groups[len(f.groups)-1]
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("rules: line %d: rule row before any header", lineNo)
		}
		row, err := parseRow(line, len(cur.inputs), len(cur.outputs))
		if err != nil {
			return nil, fmt.Errorf("rules: line %d: %w", lineNo, err)
		}
		cur.rows = append(cur.rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

func parseHeader(line string) (group, error) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "!"))
	lhs, rhs, ok := strings.Cut(body, "=")
	if !ok {
		return group{}, fmt.Errorf("malformed header %q", line)
	}
	var g group
	for _, tok := range strings.Fields(lhs) {
		name, idx := splitNameIndex(tok)
		g.inputs = append(g.inputs, column{name: strings.ToLower(name), index: parseIndexQualifier(idx)})
	}
	for _, tok := range strings.Fields(rhs) {
		c, ok := componentFromName(tok)
		if !ok {
			return group{}, fmt.Errorf("unknown output component %q", tok)
		}
		g.outputs = append(g.outputs, c)
	}
	return g, nil
}

func parseRow(line string, numIn, numOut int) (ruleRow, error) {
	lhs, rhs, ok := strings.Cut(line, "=")
	if !ok {
		return ruleRow{}, fmt.Errorf("malformed rule row %q", line)
	}
	in := strings.Fields(lhs)
	out := strings.Fields(rhs)
	if len(in) != numIn {
		return ruleRow{}, fmt.Errorf("rule row has %d input values, header declares %d", len(in), numIn)
	}
	if len(out) != numOut {
		return ruleRow{}, fmt.Errorf("rule row has %d output values, header declares %d", len(out), numOut)
	}
	return ruleRow{values: in, outputs: out}, nil
}

// Resolve matches rmlvo against the parsed rules database and builds the
// four (plus geometry) component strings per §4.3.
func (f *File) Resolve(rmlvo RMLVO) (Result, error) {
	if len(rmlvo.Layouts) > MaxLayouts || len(rmlvo.Variants) > MaxLayouts {
		return Result{}, fmt.Errorf("rules: layout count exceeds %d", MaxLayouts)
	}
	for i, v := range rmlvo.Variants {
		if v != "" && (i >= len(rmlvo.Layouts) || rmlvo.Layouts[i] == "") {
			return Result{}, fmt.Errorf("rules: variant %q at position %d has no layout (INVALID_USAGE)", v, i+1)
		}
	}

	parts := map[component][]string{}
	matchedLayout := make([]bool, len(rmlvo.Layouts))

	for _, g := range f.groups {
		hasLayoutIdx := groupHasPerLayoutColumn(g)
		if hasLayoutIdx {
			n := len(rmlvo.Layouts)
			if n == 0 {
				n = 1
			}
			for idx := 1; idx <= n; idx++ {
				row, ok := matchGroup(g, rmlvo, idx)
				if !ok {
					continue
				}
				applyRow(parts, g, row, rmlvo, idx)
				if idx-1 < len(matchedLayout) {
					matchedLayout[idx-1] = true
				}
			}
			continue
		}
		row, ok := matchGroup(g, rmlvo, 0)
		if !ok {
			continue
		}
		applyRow(parts, g, row, rmlvo, 0)
	}

	explicit := 0
	for _, m := range matchedLayout {
		if m {
			explicit++
		}
	}

	return Result{
		Keycodes:         strings.Join(parts[compKeycodes], ""),
		Types:            strings.Join(parts[compTypes], ""),
		Compat:           strings.Join(parts[compCompat], ""),
		Symbols:          strings.Join(parts[compSymbols], ""),
		Geometry:         strings.Join(parts[compGeometry], ""),
		ExplicitLayouts:  explicit,
	}, nil
}

func groupHasPerLayoutColumn(g group) bool {
	for _, c := range g.inputs {
		if c.name == "layout" || c.name == "variant" {
			return true
		}
		if c.index.kind != idxNone {
			return true
		}
	}
	return false
}

// matchGroup finds the first row in g whose values all match rmlvo at the
// given 1-based layout index (0 means "no layout context", for
// model/global rule groups). Per §6 "the first match wins".
func matchGroup(g group, rmlvo RMLVO, layoutIdx int) (ruleRow, bool) {
	for _, row := range g.rows {
		if rowMatches(g, row, rmlvo, layoutIdx) {
			return row, true
		}
	}
	return ruleRow{}, false
}

func rowMatches(g group, row ruleRow, rmlvo RMLVO, layoutIdx int) bool {
	for i, col := range g.inputs {
		if !fieldMatches(col, row.values[i], rmlvo, layoutIdx) {
			return false
		}
	}
	return true
}

func layoutAt(rmlvo RMLVO, idx int) string {
	if idx >= 1 && idx <= len(rmlvo.Layouts) {
		return rmlvo.Layouts[idx-1]
	}
	return ""
}

func variantAt(rmlvo RMLVO, idx int) string {
	if idx >= 1 && idx <= len(rmlvo.Variants) {
		return rmlvo.Variants[idx-1]
	}
	return ""
}

func fieldMatches(col column, want string, rmlvo RMLVO, layoutIdx int) bool {
	switch col.name {
	case "rules":
		return matchValue(want, rmlvo.Rules)
	case "model":
		return matchValue(want, rmlvo.Model)
	case "layout":
		if !indexApplies(col.index, layoutIdx) {
			return false
		}
		return matchValue(want, layoutAt(rmlvo, layoutIdx))
	case "variant":
		if !indexApplies(col.index, layoutIdx) {
			return false
		}
		return matchValue(want, variantAt(rmlvo, layoutIdx))
	case "option":
		return matchOption(want, rmlvo.Options, layoutIdx)
	default:
		return false
	}
}

func indexApplies(q indexQualifier, layoutIdx int) bool {
	switch q.kind {
	case idxNone, idxAll, idxAny, idxSome:
		return true
	case idxExact:
		return layoutIdx == q.value
	case idxFirst:
		return layoutIdx == 1
	case idxLater:
		return layoutIdx > 1
	case idxNoneClass:
		return layoutIdx == 0
	default:
		return true
	}
}

// matchValue implements the literal/wildcard matching rules of §4.3.
func matchValue(pattern, value string) bool {
	switch pattern {
	case "*":
		return value != ""
	case "<none>":
		return value == ""
	case "<some>":
		return value != ""
	case "<any>":
		return true
	default:
		return pattern == value
	}
}

// matchOption matches an option name against the option list, honoring an
// "opt!n" or "opt!index-class" layout-position restriction.
func matchOption(pattern string, options []string, layoutIdx int) bool {
	name, restrict, hasRestrict := strings.Cut(pattern, "!")
	for _, opt := range options {
		optName := opt
		optIdx := 0
		if j := strings.IndexByte(opt, ':'); j >= 0 {
			optName = opt[:j]
			optIdx, _ = strconv.Atoi(opt[j+1:])
		}
		if optName != name {
			continue
		}
		if !hasRestrict {
			return true
		}
		q := parseIndexQualifier(restrict)
		if optIdx == 0 {
			optIdx = layoutIdx
		}
		if indexApplies(q, optIdx) {
			return true
		}
	}
	return false
}

// interpolate expands %i, %l, %v, %% in a rule's output value, per §4.3.
func interpolate(value string, layoutIdx int, layout, variant string) string {
	var sb strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '%' || i+1 >= len(value) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch value[i] {
		case 'i':
			sb.WriteString(strconv.Itoa(layoutIdx))
		case 'l':
			sb.WriteString(layout)
		case 'v':
			sb.WriteString(variant)
		case '%':
			sb.WriteByte('%')
		default:
			sb.WriteByte('%')
			sb.WriteByte(value[i])
		}
	}
	return sb.String()
}

// applyRow interpolates and appends the matched row's output values into
// the accumulating per-component string list, per group, gluing with the
// value's own leading merge operator when present or a default '+'
// between a non-empty accumulation and non-operator-prefixed text.
func applyRow(parts map[component][]string, g group, row ruleRow, rmlvo RMLVO, layoutIdx int) {
	layout := layoutAt(rmlvo, layoutIdx)
	variant := variantAt(rmlvo, layoutIdx)
	for i, c := range g.outputs {
		val := interpolate(row.outputs[i], layoutIdx, layout, variant)
		if val == "" {
			continue
		}
		existing := parts[c]
		if len(existing) > 0 && !startsWithMergeOp(val) {
			val = "+" + val
		}
		parts[c] = append(existing, val)
	}
}

func startsWithMergeOp(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '+', '|', '^':
		return true
	default:
		return false
	}
}
