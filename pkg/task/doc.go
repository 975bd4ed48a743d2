// Package task schedules cancellable continuations.
//
// Navigation chains some commands across a fixed delay: fit a page, wait for
// the fit animation, then pan. Such continuations are scheduled on a
// [Scheduler] and kept as a [Handle] so a newer gesture can cancel them before
// they fire.
//
// Two schedulers are provided:
//
//   - [TimerScheduler] runs continuations on wall-clock timers. A post function
//     hands each continuation to the goroutine that owns the state it touches.
//   - [ManualScheduler] only moves when told to via [ManualScheduler.Advance],
//     which makes every timed path deterministic in tests and simulations.
//
// [Throttle] coalesces bursts of events to at most one per window.
package task
