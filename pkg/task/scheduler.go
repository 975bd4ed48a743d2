package task

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Handle refers to a scheduled continuation.
type Handle interface {
	// Cancel stops the continuation from running. It reports whether the
	// call prevented it; false means it already ran or was cancelled.
	Cancel() bool
}

// Scheduler runs functions after a delay.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) Handle
}

// Cancel cancels h if it is non-nil. It is a convenience for optional
// pending handles.
func Cancel(h Handle) {
	if h != nil {
		h.Cancel()
	}
}

// =============================================================================
// Wall-clock scheduler
// =============================================================================

// TimerScheduler schedules continuations on time.AfterFunc timers.
type TimerScheduler struct {
	post func(func())
}

// NewTimerScheduler returns a scheduler that delivers due continuations
// through post. A nil post runs them directly on the timer goroutine.
func NewTimerScheduler(post func(func())) *TimerScheduler {
	return &TimerScheduler{post: post}
}

// Now implements Scheduler.
func (s *TimerScheduler) Now() time.Time { return time.Now() }

// After implements Scheduler.
func (s *TimerScheduler) After(d time.Duration, fn func()) Handle {
	h := &timerHandle{}
	run := func() {
		if h.done.CompareAndSwap(false, true) {
			fn()
		}
	}
	h.timer = time.AfterFunc(d, func() {
		if s.post != nil {
			s.post(run)
			return
		}
		run()
	})
	return h
}

type timerHandle struct {
	timer *time.Timer
	done  atomic.Bool
}

// Cancel also covers the window where the timer has fired but the posted
// continuation has not run yet.
func (h *timerHandle) Cancel() bool {
	h.timer.Stop()
	return h.done.CompareAndSwap(false, true)
}

// =============================================================================
// Manual scheduler
// =============================================================================

// ManualScheduler is a Scheduler driven by an explicit clock.
// Nothing runs until [ManualScheduler.Advance] moves time past a task's due
// time; tasks then run in due order, ties in scheduling order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	due time.Time
	seq uint64
	fn  func()
	s   *ManualScheduler
}

// NewManualScheduler creates a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now implements Scheduler.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// After implements Scheduler.
func (s *ManualScheduler) After(d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	t := &manualTask{due: s.now.Add(d), seq: s.seq, fn: fn, s: s}
	s.seq++
	s.tasks = append(s.tasks, t)
	return t
}

// Cancel implements Handle.
func (t *manualTask) Cancel() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i, other := range t.s.tasks {
		if other == t {
			t.s.tasks = append(t.s.tasks[:i], t.s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, running every task that falls due on
// the way. Tasks scheduled by running tasks are honoured if they fall due
// before the new time.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// Flush runs pending tasks until none remain, advancing the clock to each
// task's due time. It returns the number of tasks run.
func (s *ManualScheduler) Flush() int {
	n := 0
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			return n
		}
		s.sortLocked()
		due := s.tasks[0].due
		s.mu.Unlock()

		if t := s.popDue(due); t != nil {
			t.fn()
			n++
		}
	}
}

// Pending returns the number of tasks waiting to run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *ManualScheduler) popDue(target time.Time) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil
	}
	s.sortLocked()
	t := s.tasks[0]
	if t.due.After(target) {
		return nil
	}
	s.tasks = s.tasks[1:]
	if t.due.After(s.now) {
		s.now = t.due
	}
	return t
}

func (s *ManualScheduler) sortLocked() {
	sort.SliceStable(s.tasks, func(i, j int) bool {
		a, b := s.tasks[i], s.tasks[j]
		if !a.due.Equal(b.due) {
			return a.due.Before(b.due)
		}
		return a.seq < b.seq
	})
}
