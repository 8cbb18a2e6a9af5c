// Package hotkey watches for the global key combination that aborts a run.
// The agent owns the user's mouse and keyboard while it works, so this is
// the only reliable way to take them back.
package hotkey

import (
	"fmt"
	"strings"

	gohook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

// Listen registers combo (e.g. "Ctrl+Shift+Q") and calls onPress from the
// hook goroutine each time it is pressed. The returned stop function ends
// the hook.
func Listen(combo string, onPress func(), logger *zap.Logger) (func(), error) {
	keys := parseHotkey(combo)
	if len(keys) == 0 {
		return nil, fmt.Errorf("no valid keys in hotkey configuration %q", combo)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("hotkey")

	gohook.Register(gohook.KeyDown, keys, func(gohook.Event) {
		log.Warn("Abort hotkey pressed", zap.String("hotkey", combo))
		if onPress != nil {
			onPress()
		}
	})

	evChan := gohook.Start()
	if evChan == nil {
		return nil, fmt.Errorf("gohook.Start() returned nil channel")
	}
	done := gohook.Process(evChan)
	log.Info("Abort hotkey armed", zap.Strings("keys", keys))

	stop := func() {
		gohook.End()
		<-done
	}
	return stop, nil
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to the key names
// gohook understands. Modifiers come last, matching gohook's examples.
func parseHotkey(hotkeyConfig string) []string {
	var modifiers, keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "ctrl", "control":
			modifiers = append(modifiers, "ctrl")
		case "alt", "option":
			modifiers = append(modifiers, "alt")
		case "shift":
			modifiers = append(modifiers, "shift")
		case "win", "cmd", "super":
			modifiers = append(modifiers, "cmd")
		case "escape":
			keys = append(keys, "esc")
		default:
			keys = append(keys, part)
		}
	}
	return append(keys, modifiers...)
}
