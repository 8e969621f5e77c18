// Copyright (c) 2025, The Theme Radar Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

// Bundle failure kinds. Every one of them is terminal for the bundle being
// fingerprinted; none is retried internally.
const (
	// ErrCodeInvalidIdentifier indicates a malformed bundle identifier.
	ErrCodeInvalidIdentifier ErrorCode = "INVALID_IDENTIFIER"
	// ErrCodeBundleNotFound indicates the primary document of a bundle is absent.
	ErrCodeBundleNotFound ErrorCode = "BUNDLE_NOT_FOUND"
	// ErrCodeIncompleteBundle indicates a referenced diagnostic artifact is missing.
	ErrCodeIncompleteBundle ErrorCode = "INCOMPLETE_BUNDLE"
	// ErrCodePathEscape indicates a path resolving outside the bundle root.
	ErrCodePathEscape ErrorCode = "PATH_ESCAPE"
	// ErrCodeDuplicatePath indicates two entries normalizing to the same path.
	ErrCodeDuplicatePath ErrorCode = "DUPLICATE_PATH"
	// ErrCodeEmptyBundle indicates a bundle with zero entries.
	ErrCodeEmptyBundle ErrorCode = "EMPTY_BUNDLE"
	// ErrCodeIOFailure indicates an unreadable file (permissions, disk errors).
	ErrCodeIOFailure ErrorCode = "IO_FAILURE"
)

// Generic codes shared with the HTTP and CLI surfaces.
const (
	// ErrCodeNotFound indicates a requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeMismatch indicates a recomputed fingerprint differs from the recorded one.
	ErrCodeMismatch ErrorCode = "FINGERPRINT_MISMATCH"
)

// Context keys used on bundle errors.
const (
	KeyBundle = "bundle"
	KeyPath   = "path"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a StructuredError with the same code.
// This lets callers match on a kind with errors.Is(err, errors.New(code, "")).
func (e *StructuredError) Is(target error) bool {
	t, ok := target.(*StructuredError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Bundle returns the bundle identifier recorded on the error, if any.
func (e *StructuredError) Bundle() string {
	s, _ := e.Context[KeyBundle].(string)
	return s
}

// Path returns the offending relative path recorded on the error, if any.
func (e *StructuredError) Path() string {
	s, _ := e.Context[KeyPath].(string)
	return s
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// ForBundle builds a bundle failure naming the bundle and, when non-empty,
// the offending relative path. The message is prefixed with both so the
// error text alone is enough to diagnose the failure.
func ForBundle(code ErrorCode, bundle, path, message string, cause error) *StructuredError {
	ctx := map[string]any{KeyBundle: bundle}
	msg := fmt.Sprintf("bundle %s: %s", bundle, message)
	if path != "" {
		ctx[KeyPath] = path
		msg = fmt.Sprintf("bundle %s: %s: %s", bundle, path, message)
	}
	return &StructuredError{
		Code:    code,
		Message: msg,
		Cause:   cause,
		Context: ctx,
	}
}

// CodeOf returns the code of the first StructuredError in err's chain,
// or an empty code when there is none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &StructuredError{Code: code})
}
