// Copyright 2026 pg-sqlite-fs Authors
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

package common

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy for store operations. Callers classify failures with
// errors.Is; the concrete message carries the detail.
var (
	// ErrConfiguration: the store path is not absolute or lies outside the
	// configured location.
	ErrConfiguration = errors.New("path not allowed")

	// ErrStoreOpen: the store file cannot be opened or created.
	ErrStoreOpen = errors.New("cannot open store")

	// ErrSchema: a DDL statement failed during store creation.
	ErrSchema = errors.New("schema creation failed")

	// ErrValidation: a required field or argument is missing or malformed.
	ErrValidation = errors.New("invalid argument")

	// ErrFormatMismatch: a bulk-load row set does not match the expected
	// column count or per-column types.
	ErrFormatMismatch = errors.New("row set format mismatch")

	// ErrConstraint: a write would violate a uniqueness constraint.
	ErrConstraint = errors.New("constraint violation")

	// ErrEngine: an opaque SQLite-level failure, surfaced as-is.
	ErrEngine = errors.New("engine error")
)

// ErrNullField reports a NULL in a required bulk-load column. It is a kind of
// validation failure: errors.Is(err, ErrValidation) also holds.
var ErrNullField = fmt.Errorf("%w: required column is null", ErrValidation)

// IsConstraintViolation reports whether err is a SQLite uniqueness violation.
// libsql surfaces these as plain strings, so match on the message.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "constraint failed")
}

// IsClassified reports whether err already carries one of the taxonomy
// sentinels. Wrappers use it to avoid stacking a second classification on
// top of an already-classified failure.
func IsClassified(err error) bool {
	for _, sentinel := range []error{
		ErrConfiguration,
		ErrStoreOpen,
		ErrSchema,
		ErrValidation,
		ErrFormatMismatch,
		ErrConstraint,
		ErrEngine,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
