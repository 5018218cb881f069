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

import (
	"errors"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		ErrInvalidUsage: "invalid usage",
		ErrIO:           "io",
		ErrSyntax:       "syntax",
		ErrSemantic:     "semantic",
		ErrLimit:        "limit",
		ErrInternal:     "internal",
		ErrNotFound:     "not found",
		ErrorKind(999):  "unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("ErrorKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestNewErrorFormatsMessage(t *testing.T) {
	err := newError(ErrSemantic, "unresolved type %q", "FOO")
	if err.Kind != ErrSemantic {
		t.Fatalf("Kind = %v, want ErrSemantic", err.Kind)
	}
	want := `semantic: unresolved type "FOO"`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorWithEmptyMessageFallsBackToKind(t *testing.T) {
	err := &Error{Kind: ErrLimit}
	if err.Error() != "limit" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "limit")
	}
}

func TestNewErrorUnwrapsToMatchingSentinel(t *testing.T) {
	err := newError(ErrNotFound, "no such key")
	if !errors.Is(err, ErrNotFoundSentinel) {
		t.Fatal("errors.Is did not match ErrNotFoundSentinel")
	}
	if errors.Is(err, ErrIOSentinel) {
		t.Fatal("errors.Is incorrectly matched an unrelated sentinel")
	}
}

func TestWrapErrorPreservesUnderlyingError(t *testing.T) {
	underlying := errors.New("disk is full")
	err := wrapError(ErrIO, underlying, "reading include file %q", "pc/us")
	if !errors.Is(err, underlying) {
		t.Fatal("wrapError did not preserve the wrapped underlying error")
	}
	want := `io: reading include file "pc/us"`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapErrorUnwrapReturnsUnderlyingNotSentinel(t *testing.T) {
	underlying := errors.New("boom")
	err := wrapError(ErrInternal, underlying, "panic recovered")
	if err.Unwrap() != underlying {
		t.Fatal("Unwrap() of a wrapped error should return the underlying error, not the sentinel")
	}
}

func TestEveryErrorKindHasADistinctSentinel(t *testing.T) {
	kinds := []ErrorKind{
		ErrInvalidUsage, ErrIO, ErrSyntax, ErrSemantic, ErrLimit, ErrInternal, ErrNotFound,
	}
	seen := map[error]bool{}
	for _, k := range kinds {
		e := &Error{Kind: k}
		s := e.Unwrap()
		if s == nil {
			t.Fatalf("Kind %v unwrapped to a nil sentinel", k)
		}
		if seen[s] {
			t.Fatalf("Kind %v shares a sentinel with another kind", k)
		}
		seen[s] = true
	}
}

func TestUnknownKindUnwrapsToNil(t *testing.T) {
	e := &Error{Kind: ErrorKind(999)}
	if e.Unwrap() != nil {
		t.Fatal("an unrecognized ErrorKind should unwrap to nil")
	}
}
