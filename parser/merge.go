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

package parser

import "strconv"

// mergeSectionInto folds sec into the File's accumulating per-kind Section,
// applying sec's merge operator (§4.2: '+' augment, '|' override, '^'
// replace, default behaves like augment).
func mergeSectionInto(f *File, sec *Section) {
	for _, existing := range f.Sections {
		if existing.Kind != sec.Kind {
			continue
		}
		existing.Statements = mergeStatements(existing.Statements, sec.Statements, sec.mergeMode)
		if existing.Name == "" {
			existing.Name = sec.Name
		}
		existing.Flags |= sec.Flags
		return
	}
	sec.mergeMode = MergeDefault
	f.Sections = append(f.Sections, sec)
}

// mergeStatements combines an already-accumulated statement list with one
// newly parsed or included list, per the merge operator:
//
//   - Replace ('^'): the incoming list completely replaces the existing one.
//   - Override ('|'): entries in incoming take precedence over same-keyed
//     entries already present; new keys are appended.
//   - Augment ('+', and the implicit default): existing entries win on key
//     collision; only genuinely new keys from incoming are appended.
//
// Statements with no stable dedup key (the default case below) are always
// appended, since there is nothing sensible to collide them against.
func mergeStatements(existing, incoming []Statement, mode MergeMode) []Statement {
	if mode == MergeReplace {
		out := make([]Statement, len(incoming))
		copy(out, incoming)
		return out
	}

	existingKeys := make(map[string]int, len(existing))
	for i, s := range existing {
		if k, ok := statementKey(s); ok {
			existingKeys[k] = i
		}
	}

	out := make([]Statement, len(existing))
	copy(out, existing)

	for _, s := range incoming {
		key, dedupable := statementKey(s)
		if !dedupable {
			out = append(out, s)
			continue
		}
		if idx, present := existingKeys[key]; present {
			if mode == MergeOverride {
				out[idx] = s
			}
			continue
		}
		existingKeys[key] = len(out)
		out = append(out, s)
	}
	return out
}

// statementKey returns a dedup key identifying "the same declaration" for
// merge purposes, and whether the statement kind supports deduplication at
// all (multi-name declarations like virtual_modifiers don't: they're always
// additive and the semantic pass reconciles duplicates by name).
func statementKey(s Statement) (string, bool) {
	switch v := s.(type) {
	case *KeycodeStmt:
		return "keycode:" + v.Name, true
	case *AliasStmt:
		return "alias:" + v.Alias, true
	case *IndicatorNameStmt:
		return "indicatorname:" + strconv.FormatInt(v.Index, 10), true
	case *TypeDeclStmt:
		return "type:" + v.Name, true
	case *InterpretStmt:
		return "interp:" + v.Sym + "+" + v.MatchOp, true
	case *ModMapStmt:
		return "modmap:" + v.Mod, true
	case *LedMapStmt:
		return "led:" + v.Name, true
	case *KeyDeclStmt:
		return "key:" + v.Name, true
	case *GroupNameStmt:
		return "groupname:" + strconv.Itoa(v.Group), true
	default:
		return "", false
	}
}
