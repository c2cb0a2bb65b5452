package pybox

import (
	"context"
	"time"
)

// WaitForCompletion polls GetExecution at a fixed interval until the
// execution reaches a terminal status (completed, failed, or killed) and
// returns that result.
//
// The status is checked before the first sleep, so an already-terminal
// execution returns without waiting. Non-terminal statuses are treated as
// unordered: a regression from running back to pending is absorbed and
// polling simply continues.
//
// maxWait bounds the whole loop across all polls; zero means wait forever.
// On expiry a *PollTimeoutError is returned and the remote execution is
// left running; the poller never cancels implicitly, so call Kill if the
// execution should not continue. Cancelling ctx stops the loop at the next
// suspension point.
func (c *Client) WaitForCompletion(ctx context.Context, executionID string, pollInterval, maxWait time.Duration) (*ExecutionResult, error) {
	start := time.Now()

	for {
		result, err := c.GetExecution(ctx, executionID)
		if err != nil {
			return nil, err
		}
		if result.Status.IsTerminal() {
			return result, nil
		}

		elapsed := time.Since(start)
		if maxWait > 0 && elapsed > maxWait {
			return nil, &PollTimeoutError{
				ExecutionID: executionID,
				MaxWait:     maxWait,
				Elapsed:     elapsed,
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
