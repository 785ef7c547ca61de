package repository

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %v, want 1", calls)
	}
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %v, want 3", calls)
	}
}

func TestWithRetry_ExhaustsBudget(t *testing.T) {
	failure := errors.New("persistent failure")
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return failure
	})

	if !errors.Is(err, failure) {
		t.Errorf("error = %v, want wrapped %v", err, failure)
	}
	if calls != 4 {
		t.Errorf("calls = %v, want 4 (initial attempt plus three retries)", calls)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetry(ctx, fastRetryConfig(), func() error {
		calls++
		cancel()
		return errors.New("failure")
	})

	if err == nil {
		t.Error("expected error after context cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %v, want 1 (no retry after cancellation)", calls)
	}
}
