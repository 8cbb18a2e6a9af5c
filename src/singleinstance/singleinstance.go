// Package singleinstance keeps two agent runs from fighting over the same
// mouse and keyboard. Ownership is a loopback TCP listener that answers PING.
package singleinstance

import (
	"context"
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned when another run holds the lock.
var ErrAlreadyRunning = errors.New("another agent run is already in progress")

// Acquire claims the first bindable port in [start, end]. A port that is
// taken by a listener answering PING means another run owns the lock.
func Acquire(ctx context.Context, start, end int) (*Lock, error) {
	if end < start {
		start, end = end, start
	}
	if port, ok := DetectResidentPort(ctx, start, end); ok {
		return nil, fmt.Errorf("%w (port %d)", ErrAlreadyRunning, port)
	}

	var lastErr error
	for port := start; port <= end; port++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l, err := listen(port)
		if err == nil {
			return l, nil
		}
		lastErr = err
		// Another run may have bound the port since the scan.
		if ping(residentAddr(port), pingTimeout) {
			return nil, fmt.Errorf("%w (port %d)", ErrAlreadyRunning, port)
		}
	}
	return nil, fmt.Errorf("no free port in %d-%d: %w", start, end, lastErr)
}
