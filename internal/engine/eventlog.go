package engine

import (
	"iter"
	"sync"
	"sync/atomic"

	"github.com/google/btree"

	"github.com/efreitasn/shareledger/internal/domain"
)

// eventLess defines replay order: trade date ascending, then insertion
// sequence ascending. The sequence tie-break keeps same-date events in a
// deterministic total order no matter when they arrived.
func eventLess(a, b domain.Recorded) bool {
	aw, bw := a.When(), b.When()
	if aw != bw {
		return aw.Before(bw)
	}
	return a.Seq < b.Seq
}

// companyLog holds one company's events in a B-tree ordered by
// (tradeDate, seq), plus a version counter bumped on every append.
//
// The lock discipline is the engine's whole concurrency story: Append takes
// the write lock only long enough to insert and publish, while a replay
// holds the read lock for its full scan. A backdated append therefore can
// never interleave with a replay and expose half-adjusted lots.
type companyLog struct {
	mu      sync.RWMutex
	events  *btree.BTreeG[domain.Recorded]
	version uint64
}

func newCompanyLog() *companyLog {
	const degree = 32
	return &companyLog{events: btree.NewG[domain.Recorded](degree, eventLess)}
}

// EventLog is the append-only record of transaction events, partitioned by
// company. Events are never mutated or removed once appended; sells and
// splits change only derived state computed at replay time.
type EventLog struct {
	mu      sync.RWMutex
	logs    map[string]*companyLog
	nextSeq atomic.Uint64
}

// NewEventLog creates an empty EventLog.
func NewEventLog() *EventLog {
	return &EventLog{logs: make(map[string]*companyLog)}
}

// getOrCreate returns the log for the given company, creating one if it
// doesn't already exist.
func (l *EventLog) getOrCreate(companyID string) *companyLog {
	l.mu.RLock()
	cl, ok := l.logs[companyID]
	l.mu.RUnlock()
	if ok {
		return cl
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Double-check after acquiring write lock.
	if cl, ok = l.logs[companyID]; ok {
		return cl
	}
	cl = newCompanyLog()
	l.logs[companyID] = cl
	return cl
}

// get returns the company's log without creating one.
func (l *EventLog) get(companyID string) *companyLog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logs[companyID]
}

// Append validates the event's shape, assigns the next insertion sequence
// number, and publishes the event. It returns the recorded envelope and
// whether the insert was backdated, meaning its trade date precedes the
// newest event already recorded. Any snapshot built for a cutoff at or past
// a backdated event's date is stale from this moment.
//
// A shape violation returns *domain.InvalidEventError and leaves the log
// untouched.
func (l *EventLog) Append(ev domain.Event) (domain.Recorded, bool, error) {
	if err := ev.Validate(); err != nil {
		return domain.Recorded{}, false, err
	}

	cl := l.getOrCreate(ev.Company())
	rec := domain.Recorded{Seq: l.nextSeq.Add(1), Event: ev}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	backdated := false
	if newest, ok := cl.events.Max(); ok && ev.When().Before(newest.When()) {
		backdated = true
	}
	cl.events.ReplaceOrInsert(rec)
	cl.version++
	return rec, backdated, nil
}

// Restore re-inserts an event loaded from the durable archive, keeping its
// original sequence number and advancing the internal counter past it.
// Intended for startup replay of the archive only.
func (l *EventLog) Restore(rec domain.Recorded) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	for {
		cur := l.nextSeq.Load()
		if cur >= rec.Seq || l.nextSeq.CompareAndSwap(cur, rec.Seq) {
			break
		}
	}

	cl := l.getOrCreate(rec.Company())
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.events.ReplaceOrInsert(rec)
	cl.version++
	return nil
}

// EventsUpTo returns a lazy, restartable sequence of the company's events
// with trade dates at or before cutoff, in (tradeDate, seq) order. The
// company's read lock is held for the duration of each iteration, so a
// scan always observes a consistent prefix; concurrent appends block until
// the scan finishes.
func (l *EventLog) EventsUpTo(companyID string, cutoff domain.Date) iter.Seq[domain.Recorded] {
	return func(yield func(domain.Recorded) bool) {
		cl := l.get(companyID)
		if cl == nil {
			return
		}
		cl.mu.RLock()
		defer cl.mu.RUnlock()
		cl.events.Ascend(func(rec domain.Recorded) bool {
			if rec.When().After(cutoff) {
				return false
			}
			return yield(rec)
		})
	}
}

// Events returns a lazy sequence of all the company's events in
// (tradeDate, seq) order, under the same locking as EventsUpTo.
func (l *EventLog) Events(companyID string) iter.Seq[domain.Recorded] {
	return func(yield func(domain.Recorded) bool) {
		cl := l.get(companyID)
		if cl == nil {
			return
		}
		cl.mu.RLock()
		defer cl.mu.RUnlock()
		cl.events.Ascend(yield)
	}
}

// Version returns the company's event-log version. It increments on every
// append, so any snapshot keyed by an older version is invalid.
func (l *EventLog) Version(companyID string) uint64 {
	cl := l.get(companyID)
	if cl == nil {
		return 0
	}
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.version
}

// Len returns the number of events recorded for the company.
func (l *EventLog) Len(companyID string) int {
	cl := l.get(companyID)
	if cl == nil {
		return 0
	}
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.events.Len()
}
