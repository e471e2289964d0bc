package service

import (
	"sync"
	"time"
)

// feed orders a merchant's post-commit side effects. A ticket is taken while
// the account lock is held; the side effects run after the lock is released,
// strictly in ticket order. The last issued ticket doubles as the version of
// the merchant's ledger.
type feed struct {
	mu     sync.Mutex
	cond   *sync.Cond
	issued uint64
	done   uint64
}

func newFeed() *feed {
	// a clock base keeps versions from an earlier process from matching
	base := uint64(time.Now().UnixNano())
	f := &feed{issued: base, done: base}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *feed) take() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued++
	return f.issued
}

func (f *feed) version() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issued
}

// run waits for the previous ticket to finish, then calls fn.
func (f *feed) run(ticket uint64, fn func()) {
	f.mu.Lock()
	for f.done+1 != ticket {
		f.cond.Wait()
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.done = ticket
		f.mu.Unlock()
		f.cond.Broadcast()
	}()
	fn()
}
