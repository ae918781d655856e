// Package schedule runs delayed and periodic callbacks from a frame loop.
//
// Nothing runs on its own goroutine: the owner calls Advance once per frame
// and every due task runs synchronously inside that call.
package schedule

import (
	"errors"
	"sort"
	"time"
)

// ErrInterval is returned by Every for a non-positive period.
var ErrInterval = errors.New("schedule: interval must be positive")

// An ID identifies a scheduled task.
type ID uint64

type task struct {
	id       ID
	due      time.Time
	interval time.Duration // zero for one-shot tasks
	seq      uint64
	fn       func()
	stopped  bool
}

// A Scheduler holds pending tasks ordered by due time.
type Scheduler struct {
	now     time.Time
	tasks   []*task
	running []*task
	next    ID
	seq     uint64
}

// New returns a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// After runs fn once, d after the scheduler's current time.
func (s *Scheduler) After(d time.Duration, fn func()) ID {
	return s.add(d, 0, fn)
}

// Every runs fn each period, starting one period from now.
func (s *Scheduler) Every(period time.Duration, fn func()) (ID, error) {
	if period <= 0 {
		return 0, ErrInterval
	}
	return s.add(period, period, fn), nil
}

func (s *Scheduler) add(d, interval time.Duration, fn func()) ID {
	s.next++
	s.seq++
	s.tasks = append(s.tasks, &task{
		id:       s.next,
		due:      s.now.Add(d),
		interval: interval,
		seq:      s.seq,
		fn:       fn,
	})
	return s.next
}

// Cancel removes a pending task. It reports whether the task was found.
func (s *Scheduler) Cancel(id ID) bool {
	found := false
	for _, t := range s.running {
		if t.id == id && !t.stopped {
			t.stopped = true
			found = true
		}
	}
	for i, t := range s.tasks {
		if t.id == id {
			t.stopped = true
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return found
}

// CancelAll drops every pending task and returns how many there were.
func (s *Scheduler) CancelAll() int {
	n := len(s.tasks)
	for _, t := range s.tasks {
		t.stopped = true
	}
	for _, t := range s.running {
		t.stopped = true
	}
	s.tasks = nil
	return n
}

// Pending returns the number of scheduled tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Advance moves the clock to now and runs every task due at or before it,
// earliest first. Tasks due at the same instant run in the order they were
// scheduled. A periodic task runs at most once per call and is then
// rescheduled one period after its previous due time. Tasks scheduled from
// inside a callback are not run until the next call, and tasks cancelled by
// an earlier callback in the same call are skipped.
//
// It returns the number of callbacks run.
func (s *Scheduler) Advance(now time.Time) int {
	if now.After(s.now) {
		s.now = now
	}

	var due []*task
	rest := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.due.After(s.now) {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	s.tasks = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})

	for _, t := range due {
		if t.interval > 0 {
			t.due = t.due.Add(t.interval)
			if !t.due.After(s.now) {
				t.due = s.now.Add(t.interval)
			}
			s.seq++
			t.seq = s.seq
			s.tasks = append(s.tasks, t)
		}
	}
	s.running = due
	defer func() { s.running = nil }()
	ran := 0
	for _, t := range due {
		if t.stopped {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}
