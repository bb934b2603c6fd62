// Package viewstate keeps the listing view activations of recent visits in
// memory, so that category changes and detail views act on the collection
// loaded when the page was rendered.
package viewstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pqui/archstudio/internal/site"
)

// ErrNotFound is returned for ids that never existed, expired or were
// evicted.
var ErrNotFound = errors.New("viewstate: view not found")

// View is an activated view model.
type View interface {
	Deactivate()
}

type entry struct {
	page     site.Page
	view     View
	lastUsed time.Time
}

// Registry maps activation ids to views. Views idle for longer than the TTL
// are deactivated by Sweep; when more than max views are held the least
// recently used one is deactivated first.
type Registry struct {
	mu    sync.Mutex
	views map[string]*entry
	ttl   time.Duration
	max   int
	now   func() time.Time
	log   logrus.FieldLogger
}

// New builds an empty Registry.
func New(ttl time.Duration, max int, log logrus.FieldLogger) *Registry {
	return &Registry{
		views: make(map[string]*entry),
		ttl:   ttl,
		max:   max,
		now:   time.Now,
		log:   log,
	}
}

// Add registers an activated view and returns its id.
func (r *Registry) Add(page site.Page, v View) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.views[id] = &entry{page: page, view: v, lastUsed: r.now()}
	var evicted []View
	for r.max > 0 && len(r.views) > r.max {
		evicted = append(evicted, r.evictOldest())
	}
	r.mu.Unlock()

	for _, v := range evicted {
		v.Deactivate()
	}
	if len(evicted) > 0 {
		r.log.WithField("evicted", len(evicted)).Debug("view registry full")
	}
	return id
}

// evictOldest removes the least recently used entry. Callers hold mu.
func (r *Registry) evictOldest() View {
	var oldestID string
	var oldest *entry
	for id, e := range r.views {
		if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
			oldestID, oldest = id, e
		}
	}
	delete(r.views, oldestID)
	return oldest.view
}

// Get returns the view registered under id and marks it used.
func (r *Registry) Get(id string) (site.Page, View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.views[id]
	if !ok {
		return 0, nil, ErrNotFound
	}
	if r.ttl > 0 && r.now().Sub(e.lastUsed) > r.ttl {
		return e.page, nil, ErrNotFound
	}
	e.lastUsed = r.now()
	return e.page, e.view, nil
}

// Lookup is Get with the view asserted to V. A view of another type is
// reported as not found.
func Lookup[V View](r *Registry, id string) (site.Page, V, error) {
	var zero V
	page, v, err := r.Get(id)
	if err != nil {
		return page, zero, err
	}
	typed, ok := v.(V)
	if !ok {
		return page, zero, ErrNotFound
	}
	return page, typed, nil
}

// Remove deactivates and forgets id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()
	if ok {
		e.view.Deactivate()
	}
}

// Len reports how many views are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep deactivates every view idle for longer than the TTL and returns how
// many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	now := r.now()
	var expired []View
	for id, e := range r.views {
		if now.Sub(e.lastUsed) > r.ttl {
			expired = append(expired, e.view)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range expired {
		v.Deactivate()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is cancelled, then deactivates
// everything left.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.WithField("expired", n).Debug("expired idle views")
			}
		}
	}
}

// Close deactivates and drops every view.
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range views {
		e.view.Deactivate()
	}
}
