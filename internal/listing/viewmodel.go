package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/logging"
)

var (
	// ErrActive is returned by Activate when the view is already active.
	// Loads must not overlap; deactivate first to start over.
	ErrActive = errors.New("listing: view already active")
	// ErrInactive is returned by Wait when the view is not active, or was
	// deactivated while waiting.
	ErrInactive = errors.New("listing: view not active")
)

// Load outcomes reported to the observer.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeDiscarded = "discarded"
)

// LoadFailure records why a collection could not be loaded. It is kept for
// diagnostics only; the listing itself degrades to empty.
type LoadFailure struct {
	Collection string
	Err        error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("load %s: %v", e.Collection, e.Err)
}

func (e *LoadFailure) Unwrap() error { return e.Err }

// Loader fetches the full ordered collection.
type Loader[T Record] func(ctx context.Context) ([]T, error)

// FromSource builds a Loader that runs q and decodes the rows into T.
func FromSource[T Record](src datasource.Source, q datasource.Query) Loader[T] {
	return func(ctx context.Context) ([]T, error) {
		rows, err := src.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		return datasource.Decode[T](rows)
	}
}

// Observer is told how every load ended and how long it took.
type Observer func(collection, outcome string, took time.Duration)

// Option configures a ViewModel.
type Option func(*options)

type options struct {
	log     logrus.FieldLogger
	observe Observer
	timeout time.Duration
}

// WithLogger sets where load failures are reported.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithObserver installs a load observer, typically a metrics recorder.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observe = fn }
}

// WithTimeout bounds each load.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Snapshot is a consistent view of the model for one render.
type Snapshot[T Record] struct {
	Loading  bool
	Category string
	Visible  []T
	Region   Region
	Overlay  OverlayState
	Selected T
}

// ViewModel loads a collection once per activation and derives the visible
// subset for the active category.
type ViewModel[T Record] struct {
	name string
	load Loader[T]
	opts options

	mu         sync.Mutex
	generation uint64
	active     bool
	loading    bool
	settled    chan struct{}
	records    []T
	version    uint64
	failure    error
	category   string
	overlay    Overlay[T]
	memo       filterMemo[T]
}

type filterMemo[T Record] struct {
	valid    bool
	version  uint64
	category string
	value    []T
}

// New returns an inactive ViewModel for the named collection.
func New[T Record](name string, load Loader[T], opts ...Option) *ViewModel[T] {
	o := options{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return &ViewModel[T]{
		name:     name,
		load:     load,
		opts:     o,
		category: All,
	}
}

// Name is the collection the model lists.
func (vm *ViewModel[T]) Name() string { return vm.name }

// Activate marks the view loading and starts the fetch in the background.
// It returns immediately; use Wait to block until the load settles.
func (vm *ViewModel[T]) Activate(ctx context.Context) error {
	vm.mu.Lock()
	if vm.active {
		vm.mu.Unlock()
		return ErrActive
	}
	vm.generation++
	gen := vm.generation
	done := make(chan struct{})
	vm.active = true
	vm.loading = true
	vm.settled = done
	vm.failure = nil
	vm.setRecords(nil)
	vm.overlay.Close()
	vm.mu.Unlock()

	go vm.fetch(ctx, gen, done)
	return nil
}

func (vm *ViewModel[T]) fetch(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	if vm.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, vm.opts.timeout)
		defer cancel()
	}

	start := time.Now()
	records, err := vm.load(ctx)
	took := time.Since(start)

	vm.mu.Lock()
	defer vm.mu.Unlock()

	log := vm.opts.log.WithField("collection", vm.name)
	if gen != vm.generation || !vm.active {
		log.Debug("view deactivated before load settled, result discarded")
		vm.report(OutcomeDiscarded, took)
		return
	}
	vm.loading = false
	if err != nil {
		vm.failure = &LoadFailure{Collection: vm.name, Err: err}
		vm.setRecords(nil)
		log.WithError(err).Error("error loading collection")
		vm.report(OutcomeFailure, took)
		return
	}
	vm.setRecords(records)
	log.WithField("records", len(records)).Debug("collection loaded")
	vm.report(OutcomeSuccess, took)
}

func (vm *ViewModel[T]) report(outcome string, took time.Duration) {
	if vm.opts.observe != nil {
		vm.opts.observe(vm.name, outcome, took)
	}
}

// setRecords replaces the collection. Callers hold mu.
func (vm *ViewModel[T]) setRecords(records []T) {
	if records == nil {
		records = []T{}
	}
	vm.records = records
	vm.version++
}

// Deactivate drops the collection and selection. A load still in flight is
// discarded when it settles.
func (vm *ViewModel[T]) Deactivate() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if !vm.active {
		return
	}
	vm.active = false
	vm.generation++
	vm.loading = false
	vm.failure = nil
	vm.setRecords(nil)
	vm.category = All
	vm.overlay.Close()
}

// Wait blocks until the current activation's load settles. A failed load is
// not an error here; see Failure.
func (vm *ViewModel[T]) Wait(ctx context.Context) error {
	vm.mu.Lock()
	if !vm.active {
		vm.mu.Unlock()
		return ErrInactive
	}
	gen, done := vm.generation, vm.settled
	vm.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen != vm.generation || !vm.active {
		return ErrInactive
	}
	return nil
}

// Active reports whether the view is activated.
func (vm *ViewModel[T]) Active() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.active
}

// Loading reports whether the current load is outstanding.
func (vm *ViewModel[T]) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

// Failure returns the last load failure of this activation, if any.
func (vm *ViewModel[T]) Failure() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.failure
}

// Records returns the full collection in query order.
func (vm *ViewModel[T]) Records() []T {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.records
}

// SetCategory changes the active category. It never triggers a load.
func (vm *ViewModel[T]) SetCategory(c string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.category = NormalizeCategory(c)
}

// Category returns the active category.
func (vm *ViewModel[T]) Category() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.category
}

// Visible returns the filtered collection. The result is recomputed only
// when the collection or category changed since the last call; it is shared
// and must not be modified.
func (vm *ViewModel[T]) Visible() []T {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.visible()
}

func (vm *ViewModel[T]) visible() []T {
	m := &vm.memo
	if m.valid && m.version == vm.version && m.category == vm.category {
		return m.value
	}
	m.value = Filter(vm.records, vm.category)
	m.version = vm.version
	m.category = vm.category
	m.valid = true
	return m.value
}

// Select opens the detail view for the record with the given id. It looks
// in the full collection, so a deep link works whatever the category.
func (vm *ViewModel[T]) Select(id string) (T, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, rec := range vm.records {
		if rec.RecordID() == id {
			vm.overlay.Open(rec)
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Open shows rec in the detail view, replacing any open record.
func (vm *ViewModel[T]) Open(rec T) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.overlay.Open(rec)
}

// Close dismisses the detail view.
func (vm *ViewModel[T]) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.overlay.Close()
}

// Selected returns the record in the detail view.
func (vm *ViewModel[T]) Selected() (T, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.overlay.Current()
}

// Snapshot captures everything a render needs under one lock. kind names the
// records in the empty-state message, e.g. "projects".
func (vm *ViewModel[T]) Snapshot(kind string) Snapshot[T] {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	visible := vm.visible()
	selected, _ := vm.overlay.Current()
	return Snapshot[T]{
		Loading:  vm.loading,
		Category: vm.category,
		Visible:  visible,
		Region:   Decide(vm.loading, visible, vm.category, kind),
		Overlay:  vm.overlay.State(),
		Selected: selected,
	}
}
