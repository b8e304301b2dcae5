package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	c := NewManual(epoch)

	var order []string
	c.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	c.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "c") })

	if fired := c.Advance(500 * time.Millisecond); fired != 0 {
		t.Fatalf("Advance(500ms) fired %d timers, expected 0", fired)
	}

	fired := c.Advance(2 * time.Second)
	if fired != 3 {
		t.Fatalf("Advance fired %d timers, expected 3", fired)
	}

	expected := []string{"a", "b", "c"}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("order[%d] = %q, expected %q", i, order[i], expected[i])
		}
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, expected 0", c.Pending())
	}
}

func TestManualStop(t *testing.T) {
	c := NewManual(epoch)

	ran := false
	timer := c.AfterFunc(time.Second, func() { ran = true })

	if !timer.Stop() {
		t.Error("Stop() on a live timer should return true")
	}
	if timer.Stop() {
		t.Error("second Stop() should return false")
	}

	c.Advance(5 * time.Second)
	if ran {
		t.Error("stopped timer should not fire")
	}
}

func TestManualStopAfterFire(t *testing.T) {
	c := NewManual(epoch)

	timer := c.AfterFunc(time.Second, func() {})
	c.Advance(time.Second)

	if timer.Stop() {
		t.Error("Stop() after firing should return false")
	}
}

func TestManualRescheduleWithinWindow(t *testing.T) {
	c := NewManual(epoch)

	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		c.AfterFunc(time.Second, tick)
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(10 * time.Second)
	if ticks != 10 {
		t.Errorf("ticks = %d, expected 10", ticks)
	}
	if got := c.Now().Sub(epoch); got != 10*time.Second {
		t.Errorf("Now() advanced by %v, expected 10s", got)
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, expected the next tick to be scheduled", c.Pending())
	}
}

func TestRealClockStop(t *testing.T) {
	c := Real()

	fired := make(chan struct{}, 1)
	timer := c.AfterFunc(time.Hour, func() { fired <- struct{}{} })
	if !timer.Stop() {
		t.Fatal("Stop() on a pending real timer should return true")
	}

	select {
	case <-fired:
		t.Error("stopped real timer fired")
	default:
	}
}
