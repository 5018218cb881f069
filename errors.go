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
	"fmt"
)

// ErrorKind classifies why a compilation or API call failed. See §7 of the
// design: compilation is all-or-nothing, and every failure is tagged with
// exactly one of these kinds.
type ErrorKind int

const (
	// ErrInvalidUsage indicates the caller supplied malformed arguments,
	// or a disallowed combination such as a variant without a layout.
	ErrInvalidUsage ErrorKind = iota
	// ErrIO indicates a failure to open an include path or rules file.
	ErrIO
	// ErrSyntax indicates the parser rejected the token stream.
	ErrSyntax
	// ErrSemantic indicates unresolved names/references, an out-of-bounds
	// type entry level, or an incompatible duplicate merge.
	ErrSemantic
	// ErrLimit indicates a hard cap was exceeded (more than 32 layouts,
	// more than 32 modifiers, a keycode above the 0x0FFF cap).
	ErrLimit
	// ErrInternal indicates an assertion-level invariant violation.
	ErrInternal
	// ErrNotFound indicates an atom, key, or modifier lookup failed.
	ErrNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidUsage:
		return "invalid usage"
	case ErrIO:
		return "io"
	case ErrSyntax:
		return "syntax"
	case ErrSemantic:
		return "semantic"
	case ErrLimit:
		return "limit"
	case ErrInternal:
		return "internal"
	case ErrNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Error is the error type returned by compilation and lookup failures. Its
// Kind lets callers use errors.Is against the package's sentinel errors
// below, while Msg carries the specific diagnostic text.
type Error struct {
	Kind ErrorKind
	Msg  string
	err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	if e.err != nil {
		return e.err
	}
	switch e.Kind {
	case ErrInvalidUsage:
		return ErrInvalidUsageSentinel
	case ErrIO:
		return ErrIOSentinel
	case ErrSyntax:
		return ErrSyntaxSentinel
	case ErrSemantic:
		return ErrSemanticSentinel
	case ErrLimit:
		return ErrLimitSentinel
	case ErrInternal:
		return ErrInternalSentinel
	case ErrNotFound:
		return ErrNotFoundSentinel
	default:
		return nil
	}
}

// Is reports whether target is the sentinel for e's Kind, so errors.Is
// matches it even when e wraps an underlying cause.
func (e *Error) Is(target error) bool {
	s := (&Error{Kind: e.Kind}).Unwrap()
	return s != nil && s == target
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), err: err}
}

var (
	// ErrInvalidUsageSentinel is matched by errors.Is against any *Error
	// with Kind == ErrInvalidUsage.
	ErrInvalidUsageSentinel = errors.New("invalid usage")
	// ErrIOSentinel is matched by errors.Is against any *Error with
	// Kind == ErrIO.
	ErrIOSentinel = errors.New("io error")
	// ErrSyntaxSentinel is matched by errors.Is against any *Error with
	// Kind == ErrSyntax.
	ErrSyntaxSentinel = errors.New("syntax error")
	// ErrSemanticSentinel is matched by errors.Is against any *Error with
	// Kind == ErrSemantic.
	ErrSemanticSentinel = errors.New("semantic error")
	// ErrLimitSentinel is matched by errors.Is against any *Error with
	// Kind == ErrLimit.
	ErrLimitSentinel = errors.New("limit exceeded")
	// ErrInternalSentinel is matched by errors.Is against any *Error with
	// Kind == ErrInternal.
	ErrInternalSentinel = errors.New("internal error")
	// ErrNotFoundSentinel is matched by errors.Is against any *Error with
	// Kind == ErrNotFound.
	ErrNotFoundSentinel = errors.New("not found")
)
