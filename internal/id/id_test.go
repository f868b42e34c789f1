package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryNumber(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "JE-0001"},
		{42, "JE-0042"},
		{9999, "JE-9999"},
		{10000, "JE-10000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEntryNumber(tt.seq))
	}
}

func TestParseEntryNumber(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"JE-0001", 1},
		{"JE-0042", 42},
		{"JE-10000", 10000},
	}
	for _, tt := range tests {
		seq, err := ParseEntryNumber(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, seq)
	}
}

func TestParseEntryNumber_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"JE-",
		"0001",
		"JE-abc",
		"JE-0000",
		"je-0001",
	}
	for _, input := range badInputs {
		_, err := ParseEntryNumber(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestNew(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
	assert.False(t, Valid("not-an-id"))
}
