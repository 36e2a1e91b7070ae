package clock

import (
	"testing"
	"time"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	var order []int

	f.AfterFunc(300*time.Millisecond, func() { order = append(order, 3) })
	f.AfterFunc(100*time.Millisecond, func() { order = append(order, 1) })
	f.AfterFunc(200*time.Millisecond, func() { order = append(order, 2) })

	f.Advance(250 * time.Millisecond)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v, want [1 2]", order)
	}
	if f.Waiters() != 1 {
		t.Fatalf("Waiters() = %d, want 1", f.Waiters())
	}

	f.Advance(50 * time.Millisecond)
	if len(order) != 3 {
		t.Fatalf("order = %v, want 3 entries", order)
	}
}

func TestFakeStopPreventsFire(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	fired := false
	timer := f.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatalf("Stop() = false, want true")
	}
	if timer.Stop() {
		t.Fatalf("second Stop() = true, want false")
	}
	f.Advance(2 * time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestFakeAfterAndBlockUntil(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	done := make(chan time.Duration)

	go func() {
		start := f.Now()
		<-f.After(1500 * time.Millisecond)
		done <- f.Since(start)
	}()

	f.BlockUntil(1)
	f.Advance(1500 * time.Millisecond)

	if elapsed := <-done; elapsed != 1500*time.Millisecond {
		t.Fatalf("elapsed = %v, want 1.5s", elapsed)
	}
}
