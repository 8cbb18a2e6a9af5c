package input

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// DefaultKeyDelay is the pause between synthesized characters.
const DefaultKeyDelay = 20 * time.Millisecond

// Driver synthesizes mouse and keyboard input. Calls are fire-and-forget:
// nothing confirms the target application received them.
type Driver interface {
	Click(x, y int)
	Type(text string)
	Tap(key string) error
}

// Robot drives the real mouse and keyboard through robotgo.
type Robot struct {
	keyDelay time.Duration
	sleep    func(time.Duration)
	typeRune func(string)
	tapKey   func(string) error
}

// NewRobot returns a Robot typing with the given per-character delay.
// A non-positive delay selects DefaultKeyDelay.
func NewRobot(keyDelay time.Duration) *Robot {
	if keyDelay <= 0 {
		keyDelay = DefaultKeyDelay
	}
	return &Robot{
		keyDelay: keyDelay,
		sleep:    time.Sleep,
		typeRune: func(s string) { robotgo.TypeStr(s) },
		tapKey:   func(k string) error { return robotgo.KeyTap(k) },
	}
}

// Click moves the pointer to x, y and presses the left button.
func (r *Robot) Click(x, y int) {
	robotgo.Move(x, y)
	robotgo.Click("left", false)
}

// Type sends text one character at a time. Newlines become Enter presses.
func (r *Robot) Type(text string) {
	for _, ch := range text {
		switch ch {
		case '\n':
			_ = r.tapKey("enter")
		case '\t':
			_ = r.tapKey("tab")
		default:
			r.typeRune(string(ch))
		}
		r.sleep(r.keyDelay)
	}
}

// Tap presses and releases a named key such as "enter" or "tab".
func (r *Robot) Tap(key string) error {
	if err := r.tapKey(key); err != nil {
		return fmt.Errorf("key tap %q: %w", key, err)
	}
	return nil
}
