package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDefinitions(t *testing.T) {
	t.Parallel()

	errs := []error{
		ErrConfiguration,
		ErrStoreOpen,
		ErrSchema,
		ErrValidation,
		ErrFormatMismatch,
		ErrConstraint,
		ErrEngine,
		ErrNullField,
	}

	t.Run("all errors are non-nil", func(t *testing.T) {
		t.Parallel()
		for i, err := range errs {
			require.NotNil(t, err, "error at index %d should not be nil", i)
		}
	})

	t.Run("all error messages are unique", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]bool)
		for _, err := range errs {
			msg := err.Error()
			assert.False(t, seen[msg], "duplicate error message: %s", msg)
			seen[msg] = true
		}
	})
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrConfiguration", ErrConfiguration, "path not allowed"},
		{"ErrStoreOpen", ErrStoreOpen, "cannot open store"},
		{"ErrSchema", ErrSchema, "schema creation failed"},
		{"ErrValidation", ErrValidation, "invalid argument"},
		{"ErrFormatMismatch", ErrFormatMismatch, "row set format mismatch"},
		{"ErrConstraint", ErrConstraint, "constraint violation"},
		{"ErrEngine", ErrEngine, "engine error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNullFieldIsValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(ErrNullField, ErrValidation),
		"a null required column is a kind of validation failure")

	wrapped := fmt.Errorf("%w: column \"name\" is null at row 3", ErrNullField)
	assert.True(t, errors.Is(wrapped, ErrNullField))
	assert.True(t, errors.Is(wrapped, ErrValidation))
}

func TestIsClassified(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain sentinel", ErrFormatMismatch, true},
		{"wrapped sentinel", fmt.Errorf("%w: column 3", ErrFormatMismatch), true},
		{"null field", fmt.Errorf("%w: row 2", ErrNullField), true},
		{"bare driver error", errors.New("database is locked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsClassified(tt.err))
		})
	}
}

func TestIsConstraintViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unique index", errors.New("UNIQUE constraint failed: entries.parent_inode, entries.name"), true},
		{"primary key", errors.New("constraint failed: entries.inode"), true},
		{"unrelated", errors.New("database is locked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsConstraintViolation(tt.err))
		})
	}
}
