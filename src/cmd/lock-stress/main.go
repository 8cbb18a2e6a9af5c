package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"pypestream-rpa/src/config"
	"pypestream-rpa/src/singleinstance"
)

type stressOptions struct {
	n        int
	hold     time.Duration
	deadline time.Duration
}

type stressResult struct {
	launched int
	held     int32
	peak     int32
	busy     int32
	errs     int32
	elapsed  time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lock-stress",
		Short:         "Race concurrent runs for the single-instance lock",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			res := stress(cmd.Context(), *opts, cfg.Lock.PortStart, cfg.Lock.PortEnd)
			return report(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of contenders to launch")
	cmd.Flags().DurationVar(&opts.hold, "hold", time.Second, "how long the winner keeps the lock")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-contender timeout")

	return cmd
}

func stress(parent context.Context, opts stressOptions, portStart, portEnd int) stressResult {
	var wg sync.WaitGroup
	var held, current, peak, busy, errCount int32

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(parent, opts.deadline)
			defer cancel()
			lock, err := singleinstance.Acquire(ctx, portStart, portEnd)
			if err != nil {
				if errors.Is(err, singleinstance.ErrAlreadyRunning) {
					atomic.AddInt32(&busy, 1)
					return
				}
				atomic.AddInt32(&errCount, 1)
				return
			}
			atomic.AddInt32(&held, 1)
			now := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if now <= p || atomic.CompareAndSwapInt32(&peak, p, now) {
					break
				}
			}
			select {
			case <-time.After(opts.hold):
			case <-ctx.Done():
			}
			atomic.AddInt32(&current, -1)
			_ = lock.Close()
		}()
	}
	wg.Wait()
	return stressResult{launched: opts.n, held: held, peak: peak, busy: busy, errs: errCount, elapsed: time.Since(start)}
}

func report(w io.Writer, res stressResult) error {
	fmt.Fprintf(w, "launched=%d held=%d peak=%d busy=%d err=%d elapsed=%s\n", res.launched, res.held, res.peak, res.busy, res.errs, res.elapsed)
	if res.peak > 1 {
		return fmt.Errorf("%d contenders held the lock at once", res.peak)
	}
	return nil
}
