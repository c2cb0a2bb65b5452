package pybox_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rgrandy/pybox/pkg/pybox"
)

// scriptedServer serves a fixed status sequence for one execution ID,
// repeating the last status once the script is exhausted, and records
// every request method it sees.
type scriptedServer struct {
	mu       sync.Mutex
	statuses []pybox.Status
	polls    int
	deletes  int
}

func (s *scriptedServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if r.Method == http.MethodDelete {
			s.deletes++
			w.WriteHeader(http.StatusOK)
			return
		}

		idx := s.polls
		if idx >= len(s.statuses) {
			idx = len(s.statuses) - 1
		}
		s.polls++

		json.NewEncoder(w).Encode(pybox.ExecutionResult{
			ExecutionID: "exe_scripted",
			Status:      s.statuses[idx],
		})
	})
}

func TestWaitForCompletionPollsUntilTerminal(t *testing.T) {
	script := &scriptedServer{statuses: []pybox.Status{
		pybox.StatusPending, pybox.StatusRunning, pybox.StatusCompleted,
	}}
	ts := httptest.NewServer(script.handler())
	defer ts.Close()

	client := pybox.New(ts.URL)
	result, err := client.WaitForCompletion(context.Background(), "exe_scripted", 10*time.Millisecond, 0)
	if err != nil {
		t.Fatalf("WaitForCompletion: %v", err)
	}

	if result.Status != pybox.StatusCompleted {
		t.Errorf("Status = %s, want completed", result.Status)
	}
	if script.polls != 3 {
		t.Errorf("polls = %d, want exactly 3", script.polls)
	}
}

func TestWaitForCompletionToleratesStatusRegression(t *testing.T) {
	// The service may report pending after running; the poller must absorb
	// that and keep going.
	script := &scriptedServer{statuses: []pybox.Status{
		pybox.StatusRunning, pybox.StatusPending, pybox.StatusRunning, pybox.StatusFailed,
	}}
	ts := httptest.NewServer(script.handler())
	defer ts.Close()

	client := pybox.New(ts.URL)
	result, err := client.WaitForCompletion(context.Background(), "exe_scripted", time.Millisecond, 0)
	if err != nil {
		t.Fatalf("WaitForCompletion: %v", err)
	}
	if result.Status != pybox.StatusFailed {
		t.Errorf("Status = %s, want failed", result.Status)
	}
}

func TestWaitForCompletionTimeout(t *testing.T) {
	script := &scriptedServer{statuses: []pybox.Status{pybox.StatusPending}}
	ts := httptest.NewServer(script.handler())
	defer ts.Close()

	client := pybox.New(ts.URL)
	_, err := client.WaitForCompletion(context.Background(), "exe_scripted", 10*time.Millisecond, 50*time.Millisecond)

	var timeout *pybox.PollTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("err = %v, want *PollTimeoutError", err)
	}
	if timeout.ExecutionID != "exe_scripted" {
		t.Errorf("ExecutionID = %q", timeout.ExecutionID)
	}
	if timeout.Elapsed < 50*time.Millisecond {
		t.Errorf("Elapsed = %v, want at least maxWait", timeout.Elapsed)
	}

	// The poller must not cancel the remote execution on timeout.
	if script.deletes != 0 {
		t.Errorf("observed %d implicit cancel calls, want 0", script.deletes)
	}
}

func TestWaitForCompletionContextCancel(t *testing.T) {
	script := &scriptedServer{statuses: []pybox.Status{pybox.StatusRunning}}
	ts := httptest.NewServer(script.handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	client := pybox.New(ts.URL)
	_, err := client.WaitForCompletion(ctx, "exe_scripted", time.Second, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
