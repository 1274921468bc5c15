package results

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"
)

// Submitter retries a Sink with exponential backoff.
type Submitter struct {
	sink        Sink
	maxAttempts int
	min, max    time.Duration
}

// NewSubmitter wraps sink. maxAttempts below one means a single attempt.
func NewSubmitter(sink Sink, maxAttempts int) *Submitter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Submitter{sink: sink, maxAttempts: maxAttempts, min: 250 * time.Millisecond, max: 10 * time.Second}
}

// WithBackoff sets the delay bounds between attempts.
func (s *Submitter) WithBackoff(min, max time.Duration) *Submitter {
	s.min, s.max = min, max
	return s
}

// SubmitResult delivers summary, retrying until it succeeds, attempts run
// out, or ctx is done.
func (s *Submitter) SubmitResult(ctx context.Context, summary Summary) error {
	b := &backoff.Backoff{Min: s.min, Max: s.max, Factor: 2, Jitter: true}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.sink.SubmitResult(ctx, summary)
		if lastErr == nil {
			return nil
		}
		log.Warn().Err(lastErr).
			Str("result", summary.ID).
			Str("session", summary.SessionID).
			Int("attempt", attempt).
			Msg("result submission failed")
		if attempt == s.maxAttempts {
			break
		}

		timer := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("submit result %s: %w", summary.ID, ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("submit result %s after %d attempts: %w", summary.ID, s.maxAttempts, lastErr)
}
