package sim

import (
	"sort"
	"time"
)

type TaskID uint64

type task struct {
	id       TaskID
	owner    string
	due      uint64
	interval uint64
	fn       func()
	canceled bool
}

// Scheduler runs delayed and repeating callbacks against the tick clock.
// Every task belongs to an owner key so an entity's pending work can be
// dropped when the entity is torn down.
type Scheduler struct {
	fps    int
	now    uint64
	nextID TaskID
	tasks  map[TaskID]*task
}

func NewScheduler(fps int) *Scheduler {
	if fps <= 0 {
		fps = 30
	}
	return &Scheduler{
		fps:   fps,
		tasks: make(map[TaskID]*task),
	}
}

func (s *Scheduler) Now() uint64 { return s.now }

// After runs fn once, d after the current tick.
func (s *Scheduler) After(owner string, d time.Duration, fn func()) TaskID {
	return s.add(owner, DurationTicks(d, s.fps), 0, fn)
}

// Every runs fn each d, first at now+d.
func (s *Scheduler) Every(owner string, d time.Duration, fn func()) TaskID {
	n := DurationTicks(d, s.fps)
	return s.add(owner, n, n, fn)
}

func (s *Scheduler) add(owner string, delay, interval uint64, fn func()) TaskID {
	s.nextID++
	id := s.nextID
	s.tasks[id] = &task{
		id:       id,
		owner:    owner,
		due:      s.now + delay,
		interval: interval,
		fn:       fn,
	}
	return id
}

// Cancel drops one task. It reports whether the task was still pending.
func (s *Scheduler) Cancel(id TaskID) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	t.canceled = true
	delete(s.tasks, id)
	return true
}

// CancelOwner drops every task registered under owner.
func (s *Scheduler) CancelOwner(owner string) int {
	n := 0
	for id, t := range s.tasks {
		if t.owner == owner {
			t.canceled = true
			delete(s.tasks, id)
			n++
		}
	}
	return n
}

// CancelAll drops every pending task. The game calls it when a session is torn
// down and recruitment starts over.
func (s *Scheduler) CancelAll() {
	for id, t := range s.tasks {
		t.canceled = true
		delete(s.tasks, id)
	}
}

func (s *Scheduler) Pending(owner string) int {
	n := 0
	for _, t := range s.tasks {
		if t.owner == owner {
			n++
		}
	}
	return n
}

// Advance moves the clock to now and runs every task that came due, ordered
// by due tick and registration order. Tasks registered by a callback are never
// due on the same tick.
func (s *Scheduler) Advance(now uint64) {
	if now < s.now {
		return
	}
	s.now = now

	var due []*task
	for _, t := range s.tasks {
		if t.due <= now {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})

	for _, t := range due {
		if t.canceled {
			continue
		}
		if t.interval > 0 {
			t.due += t.interval
			if t.due <= now {
				t.due = now + t.interval
			}
		} else {
			delete(s.tasks, t.id)
		}
		t.fn()
	}
}
