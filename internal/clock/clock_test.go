package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresInOrder(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	var got []int
	c.AfterFunc(3*time.Second, func() { got = append(got, 3) })
	c.AfterFunc(1*time.Second, func() { got = append(got, 1) })
	c.AfterFunc(2*time.Second, func() { got = append(got, 2) })

	c.Advance(2 * time.Second)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("fired = %v, want [1 2]", got)
	}
	if c.Pending() != 1 {
		t.Errorf("pending = %d, want 1", c.Pending())
	}

	c.Advance(time.Second)
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("fired = %v, want [1 2 3]", got)
	}
}

func TestFakeChainedCallbacks(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		c.AfterFunc(time.Second, tick)
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(5 * time.Second)
	if ticks != 5 {
		t.Errorf("ticks = %d, want 5", ticks)
	}
	if want := time.Unix(5, 0); !c.Now().Equal(want) {
		t.Errorf("now = %v, want %v", c.Now(), want)
	}
}

func TestFakeStop(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Error("first Stop should report true")
	}
	if tm.Stop() {
		t.Error("second Stop should report false")
	}

	c.Advance(time.Minute)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestFakeNowDuringCallback(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewFake(start)

	var seen time.Time
	c.AfterFunc(4*time.Second, func() { seen = c.Now() })
	c.Advance(10 * time.Second)

	if want := start.Add(4 * time.Second); !seen.Equal(want) {
		t.Errorf("now inside callback = %v, want %v", seen, want)
	}
}
