package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"ctrl+shift+q", []string{"q", "ctrl", "shift"}},
		{"Ctrl+Alt+Q", []string{"q", "ctrl", "alt"}},
		{"Win + F12", []string{"f12", "cmd"}},
		{"Super+Escape", []string{"esc", "cmd"}},
		{"Control+Option+x", []string{"x", "ctrl", "alt"}},
		{"esc", []string{"esc"}},
		{"", nil},
		{" + ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseHotkey(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListenRejectsEmptyCombo(t *testing.T) {
	stop, err := Listen("  ", func() {}, nil)
	assert.Error(t, err)
	assert.Nil(t, stop)
}
