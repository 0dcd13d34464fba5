// ABOUTME: Registry: single source of truth for each module's install state
// ABOUTME: Mutex-guarded records; state changes fan out through an event bus

package module

import (
	"slices"
	"sync"
	"time"

	"github.com/mauromedda/featuremod-go/internal/eventbus"
)

// Record is a point-in-time view of one module's install bookkeeping.
type Record struct {
	Name      Name
	State     State
	Attempts  int // install attempts started in this process
	LastError error
	UpdatedAt time.Time
}

// Change describes one state transition. Err is set when To is Failed.
type Change struct {
	Name Name
	From State
	To   State
	Err  error
}

// Registry tracks the install state of every module the application knows.
// Modules never seen by the registry are NotInstalled.
type Registry struct {
	mu      sync.Mutex
	records map[Name]*Record
	changes *eventbus.Bus[Change]
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[Name]*Record),
		changes: eventbus.New[Change](),
		now:     time.Now,
	}
}

// IsInstalled reports whether name is Installed.
func (r *Registry) IsInstalled(name Name) bool {
	return r.State(name) == Installed
}

// State returns the current state of name.
func (r *Registry) State(name Name) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[name]; ok {
		return rec.State
	}
	return NotInstalled
}

// Record returns a copy of the bookkeeping for name.
func (r *Registry) Record(name Name) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[name]; ok {
		return *rec
	}
	return Record{Name: name, State: NotInstalled}
}

// Snapshot returns copies of all known records sorted by name.
func (r *Registry) Snapshot() []Record {
	r.mu.Lock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b Record) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// SetInstalled marks name Installed. Repeated calls are no-ops.
func (r *Registry) SetInstalled(name Name) {
	r.transition(name, Installed, nil)
}

// SetNotInstalled records that name was uninstalled from disk. Providers
// that already built contents keep them for the rest of the process.
func (r *Registry) SetNotInstalled(name Name) {
	r.transition(name, NotInstalled, nil)
}

// Seed marks modules installed by an earlier process as Installed without
// counting an attempt.
func (r *Registry) Seed(names ...Name) {
	for _, n := range names {
		r.SetInstalled(n)
	}
}

// Subscribe registers fn for every state change and returns an unsubscribe
// function. fn runs on the goroutine that caused the change and must not
// block for long.
func (r *Registry) Subscribe(fn func(Change)) func() {
	return r.changes.Subscribe(fn)
}

func (r *Registry) markInstalling(name Name) {
	r.transition(name, Installing, nil)
}

func (r *Registry) markFailed(name Name, err error) {
	r.transition(name, Failed, err)
}

// transition moves name to state to and publishes the change outside the lock.
func (r *Registry) transition(name Name, to State, err error) {
	r.mu.Lock()
	rec, ok := r.records[name]
	if !ok {
		rec = &Record{Name: name, State: NotInstalled}
		r.records[name] = rec
	}
	from := rec.State
	if from == to && to != Failed {
		r.mu.Unlock()
		return
	}
	rec.State = to
	rec.UpdatedAt = r.now()
	switch to {
	case Installing:
		rec.Attempts++
	case Installed:
		rec.LastError = nil
	case Failed:
		rec.LastError = err
	}
	r.mu.Unlock()

	r.changes.Publish(Change{Name: name, From: from, To: to, Err: err})
}
