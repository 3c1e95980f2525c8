package notion

import (
	"context"
	"time"
)

// Fixed inter-call delays. The destination store penalizes write bursts with
// conflict errors, so every mutating call site routes through paced with one
// of these named durations. They are a backpressure policy, not a correctness
// requirement.
const (
	// relationSettleDelay follows a relation-page create, covering the
	// store's write-then-read consistency window.
	relationSettleDelay = 200 * time.Millisecond
	// updateLeadDelay precedes building each record's update.
	updateLeadDelay = 200 * time.Millisecond
	// updateIssueDelay precedes issuing the property update itself.
	updateIssueDelay = 500 * time.Millisecond
	// appendSettleDelay follows each block append.
	appendSettleDelay = 400 * time.Millisecond
)

// paced sleeps for d on the store's clock, then runs call.
func (s *Store) paced(ctx context.Context, d time.Duration, call func(context.Context) error) error {
	if err := s.clock.Sleep(ctx, d); err != nil {
		return err
	}
	if call == nil {
		return nil
	}
	return call(ctx)
}
