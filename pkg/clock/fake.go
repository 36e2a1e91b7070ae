package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake é um relógio manual. O tempo só avança via Advance.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	waiters []*fakeWaiter
	changed chan struct{}
}

type fakeWaiter struct {
	id       int
	deadline time.Time
	fn       func()
	ch       chan time.Time
	clock    *Fake
}

// NewFake cria um relógio parado em start
func NewFake(start time.Time) *Fake {
	return &Fake{now: start, changed: make(chan struct{})}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Since(t time.Time) time.Duration {
	return f.Now().Sub(t)
}

func (f *Fake) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	f.add(d, nil, ch)
	return ch
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	return f.add(d, fn, nil)
}

func (f *Fake) add(d time.Duration, fn func(), ch chan time.Time) *fakeWaiter {
	f.mu.Lock()
	f.seq++
	w := &fakeWaiter{id: f.seq, deadline: f.now.Add(d), fn: fn, ch: ch, clock: f}
	f.waiters = append(f.waiters, w)
	f.notifyLocked()
	f.mu.Unlock()

	if d <= 0 {
		f.Advance(0)
	}
	return w
}

// Advance move o relógio e dispara, em ordem de prazo, os timers vencidos.
// Callbacks rodam na goroutine de quem chamou Advance.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		sort.SliceStable(f.waiters, func(i, j int) bool {
			return f.waiters[i].deadline.Before(f.waiters[j].deadline)
		})
		if len(f.waiters) == 0 || f.waiters[0].deadline.After(target) {
			f.now = target
			f.notifyLocked()
			f.mu.Unlock()
			return
		}
		w := f.waiters[0]
		f.waiters = f.waiters[1:]
		if w.deadline.After(f.now) {
			f.now = w.deadline
		}
		now := f.now
		f.notifyLocked()
		f.mu.Unlock()

		if w.fn != nil {
			w.fn()
		} else {
			w.ch <- now
		}
	}
}

// Waiters retorna quantos timers estão pendentes
func (f *Fake) Waiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

// BlockUntil bloqueia até existirem exatamente n timers pendentes
func (f *Fake) BlockUntil(n int) {
	for {
		f.mu.Lock()
		if len(f.waiters) == n {
			f.mu.Unlock()
			return
		}
		ch := f.changed
		f.mu.Unlock()
		<-ch
	}
}

func (f *Fake) notifyLocked() {
	close(f.changed)
	f.changed = make(chan struct{})
}

func (w *fakeWaiter) Stop() bool {
	f := w.clock
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, other := range f.waiters {
		if other.id == w.id {
			f.waiters = append(f.waiters[:i], f.waiters[i+1:]...)
			f.notifyLocked()
			return true
		}
	}
	return false
}
