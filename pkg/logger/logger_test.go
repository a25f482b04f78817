package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"DEBUG", DEBUG},
		{" warn ", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"fatal", FATAL},
		{"info", INFO},
		{"", INFO},
		{"bogus", INFO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestSetLevel(t *testing.T) {
	prev := GetLevel()
	defer SetLevel(prev)

	SetLevel(ERROR)
	assert.Equal(t, ERROR, GetLevel())
}

func TestFormatFieldsStableOrder(t *testing.T) {
	got := formatFields(map[string]any{"b": 2, "a": 1, "c": "x"})
	assert.Equal(t, "{a=1, b=2, c=x}", got)
}
