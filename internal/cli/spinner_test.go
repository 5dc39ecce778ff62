package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func terminalSpinner(ctx context.Context, message string, w *syncBuffer) *Spinner {
	s := newSpinnerWithContext(ctx, message)
	s.w = w
	s.enabled = true
	return s
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := terminalSpinner(context.Background(), "Fetching octocat", &out)
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.SetMessage("Planning octocat")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	got := out.String()
	for _, want := range []string{"Fetching octocat", "Planning octocat"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %q", want, got)
		}
	}
	if !strings.HasSuffix(got, "\r") {
		t.Error("Stop should clear the line")
	}
}

func TestSpinnerDisabledWritesNothing(t *testing.T) {
	var out syncBuffer
	s := newSpinner("quiet")
	s.w = &out
	s.enabled = false
	s.Start()
	time.Sleep(2 * spinnerInterval)
	s.Stop()
	if out.String() != "" {
		t.Errorf("disabled spinner wrote %q", out.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var out syncBuffer
	s := terminalSpinner(ctx, "Testing with context...", &out)
	s.Start()
	cancel()

	// Give goroutine time to notice cancellation
	time.Sleep(100 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out syncBuffer
	s := terminalSpinner(ctx, "Testing with timeout...", &out)
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := terminalSpinner(context.Background(), "Testing idempotent stop...", &out)
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		newSpinner("never started").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop without Start blocked")
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	var out syncBuffer
	s := terminalSpinner(context.Background(), "Testing success...", &out)
	s.Start()
	s.StopWithSuccess("Done!")

	s = terminalSpinner(context.Background(), "Testing error...", &out)
	s.Start()
	s.StopWithError("Failed!")
}
