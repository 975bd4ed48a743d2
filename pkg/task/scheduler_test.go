package task

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualSchedulerRunsInDueOrder(t *testing.T) {
	s := NewManualScheduler(epoch)
	var got []string

	s.After(300*time.Millisecond, func() { got = append(got, "c") })
	s.After(100*time.Millisecond, func() { got = append(got, "a") })
	s.After(100*time.Millisecond, func() { got = append(got, "b") })

	s.Advance(99 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("ran early: %v", got)
	}

	s.Advance(1 * time.Millisecond)
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after 100ms got %v, want %v", got, want)
	}

	s.Advance(time.Second)
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after 1.1s got %v, want %v", got, want)
	}
	if s.Now() != epoch.Add(1100*time.Millisecond) {
		t.Errorf("Now() = %v", s.Now())
	}
}

func TestManualSchedulerCancel(t *testing.T) {
	s := NewManualScheduler(epoch)
	ran := false
	h := s.After(time.Second, func() { ran = true })

	if !h.Cancel() {
		t.Error("first Cancel() should report true")
	}
	if h.Cancel() {
		t.Error("second Cancel() should report false")
	}
	s.Advance(2 * time.Second)
	if ran {
		t.Error("cancelled task ran")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestManualSchedulerChainedTasks(t *testing.T) {
	s := NewManualScheduler(epoch)
	var at []time.Duration

	s.After(100*time.Millisecond, func() {
		at = append(at, s.Now().Sub(epoch))
		s.After(100*time.Millisecond, func() {
			at = append(at, s.Now().Sub(epoch))
		})
	})

	s.Advance(250 * time.Millisecond)

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if !reflect.DeepEqual(at, want) {
		t.Errorf("tasks ran at %v, want %v", at, want)
	}
}

func TestManualSchedulerFlush(t *testing.T) {
	s := NewManualScheduler(epoch)
	s.After(time.Hour, func() {})
	s.After(time.Minute, func() {})
	if n := s.Flush(); n != 2 {
		t.Errorf("Flush() = %d, want 2", n)
	}
	if s.Now() != epoch.Add(time.Hour) {
		t.Errorf("Now() = %v, want epoch+1h", s.Now())
	}
}

func TestTimerSchedulerPost(t *testing.T) {
	var mu sync.Mutex
	posted := 0
	done := make(chan struct{})

	s := NewTimerScheduler(func(fn func()) {
		mu.Lock()
		posted++
		mu.Unlock()
		fn()
	})
	s.After(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("continuation never ran")
	}
	mu.Lock()
	defer mu.Unlock()
	if posted != 1 {
		t.Errorf("posted = %d, want 1", posted)
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := NewTimerScheduler(nil)
	ran := make(chan struct{}, 1)
	h := s.After(50*time.Millisecond, func() { ran <- struct{}{} })
	if !h.Cancel() {
		t.Fatal("Cancel() = false, want true")
	}
	select {
	case <-ran:
		t.Error("cancelled continuation ran")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestThrottle(t *testing.T) {
	s := NewManualScheduler(epoch)
	th := NewThrottle(s, 600*time.Millisecond)

	tests := []struct {
		advance time.Duration
		want    bool
	}{
		{0, true},
		{100 * time.Millisecond, false},
		{400 * time.Millisecond, false},
		{100 * time.Millisecond, true},
		{599 * time.Millisecond, false},
		{time.Millisecond, true},
	}
	for i, tt := range tests {
		s.Advance(tt.advance)
		if got := th.Allow(); got != tt.want {
			t.Errorf("step %d: Allow() = %v, want %v", i, got, tt.want)
		}
	}
}
