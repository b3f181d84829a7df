package gate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStartAuthDeliversResult(t *testing.T) {
	task := StartAuth(context.Background(), func(ctx context.Context) (bool, error) {
		return true, nil
	}, time.Millisecond)

	res := task.Wait()
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !res.OK {
		t.Error("expected OK result")
	}
}

func TestStartAuthMinimumDelay(t *testing.T) {
	const delay = 50 * time.Millisecond
	start := time.Now()
	task := StartAuth(context.Background(), func(ctx context.Context) (bool, error) {
		return true, nil
	}, delay)

	task.Wait()
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("result delivered after %v, before the %v delay", elapsed, delay)
	}
}

func TestCancelDuringDelay(t *testing.T) {
	ran := false
	task := StartAuth(context.Background(), func(ctx context.Context) (bool, error) {
		ran = true
		return true, nil
	}, time.Hour)

	task.Cancel()
	res := task.Wait()

	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err)
	}
	if ran {
		t.Error("check should never run after cancellation during the delay")
	}
}

func TestCancelPropagatesToCheck(t *testing.T) {
	task := StartAuth(context.Background(), func(ctx context.Context) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	}, 0)

	time.Sleep(5 * time.Millisecond)
	task.Cancel()

	res := task.Wait()
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err)
	}
}

func TestCancelTwice(t *testing.T) {
	task := StartAuth(context.Background(), func(ctx context.Context) (bool, error) {
		return true, nil
	}, 0)
	task.Cancel()
	task.Cancel()
	task.Wait()
}
