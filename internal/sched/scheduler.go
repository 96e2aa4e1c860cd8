// Package sched provides a single-threaded cancellable task scheduler for the
// simulation. Tasks are keyed by an owner string so that destroying an entity
// can bulk-cancel everything it scheduled. All tasks run synchronously inside
// Advance, in due-time order, so deliveries complete before control returns
// to the driver.
package sched

import (
	"sort"
	"time"
)

// Task is a callback executed when its due time is reached. The time passed
// is the task's due time, not the wall clock, so recurring tasks observe an
// even cadence.
type Task func(now time.Time)

// TaskID identifies a scheduled task for cancellation.
type TaskID int64

type entry struct {
	id     TaskID
	owner  string
	due    time.Time
	period time.Duration // zero for one-shot tasks
	fn     Task
	done   bool
}

// Scheduler holds pending tasks and a logical clock that only moves forward
// through Advance. It is not safe for concurrent use; the simulation is
// single-threaded by design.
type Scheduler struct {
	now    time.Time
	nextID TaskID
	tasks  []*entry
}

// NewScheduler creates a scheduler whose logical clock starts at now.
func NewScheduler(now time.Time) *Scheduler {
	return &Scheduler{now: now}
}

// Now returns the scheduler's current logical time.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// After schedules fn to run once, delay after the current logical time.
func (s *Scheduler) After(owner string, delay time.Duration, fn Task) TaskID {
	return s.add(owner, s.now.Add(delay), 0, fn)
}

// Every schedules fn to run repeatedly with the given period, first firing
// one period from the current logical time.
func (s *Scheduler) Every(owner string, period time.Duration, fn Task) TaskID {
	return s.add(owner, s.now.Add(period), period, fn)
}

func (s *Scheduler) add(owner string, due time.Time, period time.Duration, fn Task) TaskID {
	s.nextID++
	s.tasks = append(s.tasks, &entry{
		id:     s.nextID,
		owner:  owner,
		due:    due,
		period: period,
		fn:     fn,
	})
	return s.nextID
}

// Cancel removes a single task. Cancelling an unknown or already-finished
// task is a no-op.
func (s *Scheduler) Cancel(id TaskID) {
	for _, e := range s.tasks {
		if e.id == id {
			e.done = true
			return
		}
	}
}

// CancelOwner removes every pending task registered under owner and returns
// how many were cancelled. Used when a neuron or edge is destroyed.
func (s *Scheduler) CancelOwner(owner string) int {
	n := 0
	for _, e := range s.tasks {
		if e.owner == owner && !e.done {
			e.done = true
			n++
		}
	}
	return n
}

// Pending returns the number of live tasks registered under owner.
func (s *Scheduler) Pending(owner string) int {
	n := 0
	for _, e := range s.tasks {
		if e.owner == owner && !e.done {
			n++
		}
	}
	return n
}

// Advance moves the logical clock to now, running every task that falls due
// on the way, in due-time order. A task that schedules further tasks within
// the advanced window has those run in the same call. Recurring tasks are
// re-queued one period after their due time.
func (s *Scheduler) Advance(now time.Time) {
	if now.Before(s.now) {
		return
	}

	for {
		e := s.nextDue(now)
		if e == nil {
			break
		}

		// Move the logical clock to the task's due time so callbacks that
		// read Now or schedule follow-ups see consistent time.
		if e.due.After(s.now) {
			s.now = e.due
		}

		if e.period > 0 {
			e.due = e.due.Add(e.period)
		} else {
			e.done = true
		}

		e.fn(s.now)
	}

	s.now = now
	s.compact()
}

// nextDue returns the earliest live task due at or before now, breaking ties
// by registration order.
func (s *Scheduler) nextDue(now time.Time) *entry {
	var best *entry
	for _, e := range s.tasks {
		if e.done || e.due.After(now) {
			continue
		}
		if best == nil || e.due.Before(best.due) || (e.due.Equal(best.due) && e.id < best.id) {
			best = e
		}
	}
	return best
}

// compact drops finished entries and keeps the remainder in id order.
func (s *Scheduler) compact() {
	live := s.tasks[:0]
	for _, e := range s.tasks {
		if !e.done {
			live = append(live, e)
		}
	}
	s.tasks = live
	sort.Slice(s.tasks, func(i, j int) bool { return s.tasks[i].id < s.tasks[j].id })
}
