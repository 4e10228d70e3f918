package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHumanDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		hasError bool
	}{
		{name: "Should parse Go format seconds", input: "30s", expected: 30 * time.Second},
		{name: "Should parse Go format compound", input: "1h30m", expected: 90 * time.Minute},
		{name: "Should parse spelled-out minutes", input: "30 minutes", expected: 30 * time.Minute},
		{name: "Should parse spelled-out single unit", input: "1 hour", expected: time.Hour},
		{name: "Should parse days", input: "2d", expected: 48 * time.Hour},
		{name: "Should reject empty input", input: "", hasError: true},
		{name: "Should reject garbage", input: "soon", hasError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHumanDuration(tt.input)
			if tt.hasError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseAnyDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected time.Duration
		ok       bool
	}{
		{name: "Should read ints as seconds", input: 5, expected: 5 * time.Second, ok: true},
		{name: "Should read floats as fractional seconds", input: 0.5, expected: 500 * time.Millisecond, ok: true},
		{name: "Should read duration strings", input: "2m", expected: 2 * time.Minute, ok: true},
		{name: "Should pass durations through", input: time.Second, expected: time.Second, ok: true},
		{name: "Should reject nil", input: nil},
		{name: "Should reject unsupported types", input: []any{1}},
		{name: "Should reject bad strings", input: "whenever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAnyDuration(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
