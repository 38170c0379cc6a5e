package estimate

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"cbundle/index"
)

// DefaultQuiescence is how long measurements of an entry have to settle
// before page count is evaluated.
const DefaultQuiescence = 500 * time.Millisecond

// ErrClosed is returned by Estimator methods after Close.
var ErrClosed = errors.New("estimator is closed")

// Measurer supplies current rendered content height of an entry.
type Measurer interface {
	Measure() (float64, error)
}

// MeasurerFunc adapts ordinary function to Measurer.
type MeasurerFunc func() (float64, error)

func (f MeasurerFunc) Measure() (float64, error) {
	return f()
}

// Sink receives changed page counts, *index.Store satisfies it.
type Sink interface {
	UpdatePageCount(id string, count int) error
}

// ObservationState is the state of a single observed entry.
type ObservationState int

const (
	StateIdle ObservationState = iota
	StatePending
	StateCancelled
)

func (s ObservationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("ObservationState(%d)", int(s))
}

type observation struct {
	id       string
	state    ObservationState
	m        Measurer
	height   float64 // latest pending measurement
	deadline time.Time
	reported int
	gen      uint64
	timer    clockwork.Timer
}

// Option configures Estimator.
type Option func(*Estimator)

// WithClock replaces real clock, tests use clockwork.NewFakeClock().
func WithClock(c clockwork.Clock) Option {
	return func(e *Estimator) { e.clock = c }
}

// WithQuiescence sets debounce window, non positive value disables debouncing.
func WithQuiescence(d time.Duration) Option {
	return func(e *Estimator) { e.quiescence = d }
}

// WithPageGeometry sets page height and non-content margin.
func WithPageGeometry(height, margin float64) Option {
	return func(e *Estimator) { e.pageHeight, e.margin = height, margin }
}

// WithErrorHandler installs function receiving errors which happen
// asynchronously, after debounce window expired.
func WithErrorHandler(f func(id string, err error)) Option {
	return func(e *Estimator) { e.onError = f }
}

// Estimator debounces measurements of observed entries and reports changed
// page counts to its sink. Every entry goes through its own small state
// machine: idle -> pending (on measurement) -> idle (on evaluation), or
// cancelled when observation ends. Entries never share intermediate state.
type Estimator struct {
	log        *zap.Logger
	sink       Sink
	clock      clockwork.Clock
	quiescence time.Duration
	pageHeight float64
	margin     float64
	onError    func(id string, err error)

	mu     sync.Mutex
	obs    map[string]*observation
	closed bool
}

// New creates Estimator reporting to sink.
func New(sink Sink, log *zap.Logger, opts ...Option) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Estimator{
		log:        log.Named("estimate"),
		sink:       sink,
		clock:      clockwork.NewRealClock(),
		quiescence: DefaultQuiescence,
		pageHeight: DefaultPageHeight,
		margin:     DefaultPageMargin,
		obs:        make(map[string]*observation),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Observe starts observation of entry which currently has count pages. When
// measurer is supplied initial measurement is taken and evaluated
// immediately, without debouncing. Observing already observed entry replaces
// its measurer and cancels anything pending.
func (e *Estimator) Observe(id string, count int, m Measurer) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if old, ok := e.obs[id]; ok {
		e.cancel(old)
	}
	o := &observation{id: id, state: StateIdle, m: m, reported: count}
	e.obs[id] = o
	gen := o.gen
	e.mu.Unlock()

	e.log.Debug("Observing entry", zap.String("id", id), zap.Int("pages", count))
	if m == nil {
		return nil
	}

	h, err := m.Measure()
	if err != nil {
		return &index.MeasurementError{ID: id, Reason: err.Error()}
	}
	pages, err := e.pages(id, h)
	if err != nil {
		return err
	}
	e.report(o, gen, pages)
	return nil
}

// Measure accepts new height of observed entry. Malformed values are
// rejected immediately and do not disturb pending evaluation. Otherwise
// the value replaces whatever is pending and debounce window starts over.
func (e *Estimator) Measure(id string, height float64) error {
	if _, err := e.pages(id, height); err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	o, ok := e.obs[id]
	if !ok {
		e.mu.Unlock()
		return &index.NotFoundError{Kind: "observed entry", ID: id}
	}
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.gen++
	o.height = height
	o.state = StatePending
	o.deadline = e.clock.Now().Add(e.quiescence)
	gen := o.gen
	if e.quiescence > 0 {
		o.timer = e.clock.AfterFunc(e.quiescence, func() { e.fire(o, gen) })
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	e.fire(o, gen)
	return nil
}

// Remeasure pulls current height from entry measurer and processes it as
// Measure does.
func (e *Estimator) Remeasure(id string) error {
	e.mu.Lock()
	o, ok := e.obs[id]
	e.mu.Unlock()
	if !ok {
		return &index.NotFoundError{Kind: "observed entry", ID: id}
	}
	if o.m == nil {
		return fmt.Errorf("entry %q has no measurer", id)
	}
	h, err := o.m.Measure()
	if err != nil {
		return &index.MeasurementError{ID: id, Reason: err.Error()}
	}
	return e.Measure(id, h)
}

// Unobserve ends observation of entry, pending evaluation is dropped.
func (e *Estimator) Unobserve(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if o, ok := e.obs[id]; ok {
		e.cancel(o)
		delete(e.obs, id)
		e.log.Debug("Entry is no longer observed", zap.String("id", id))
	}
}

// Close ends all observations. It is safe to call more than once.
func (e *Estimator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, o := range e.obs {
		e.cancel(o)
		delete(e.obs, id)
	}
	e.closed = true
}

// State returns observation state of entry, entries which are not observed
// are reported as cancelled.
func (e *Estimator) State(id string) ObservationState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if o, ok := e.obs[id]; ok {
		return o.state
	}
	return StateCancelled
}

// Pending returns latest measurement waiting for evaluation and its deadline.
func (e *Estimator) Pending(id string) (float64, time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.obs[id]
	if !ok || o.state != StatePending {
		return 0, time.Time{}, false
	}
	return o.height, o.deadline, true
}

// cancel must be called with e.mu held.
func (e *Estimator) cancel(o *observation) {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.gen++
	o.state = StateCancelled
}

func (e *Estimator) pages(id string, h float64) (int, error) {
	n, err := EstimatePageCount(h, e.pageHeight, e.margin)
	if err != nil {
		var merr *index.MeasurementError
		if errors.As(err, &merr) {
			merr.ID = id
		}
		return 0, err
	}
	return n, nil
}

func (e *Estimator) fire(o *observation, gen uint64) {
	e.mu.Lock()
	if o.gen != gen || o.state != StatePending {
		e.mu.Unlock()
		return
	}
	o.timer = nil
	o.state = StateIdle
	h := o.height
	e.mu.Unlock()

	pages, err := e.pages(o.id, h)
	if err != nil {
		e.fail(o.id, err)
		return
	}
	e.report(o, gen, pages)
}

// report delivers pages to the sink unless it is what was reported last or
// observation moved on since gen.
func (e *Estimator) report(o *observation, gen uint64, pages int) {
	e.mu.Lock()
	if o.gen != gen || o.state == StateCancelled || o.reported == pages {
		e.mu.Unlock()
		return
	}
	prev := o.reported
	o.reported = pages
	e.mu.Unlock()

	e.log.Debug("Page count changed", zap.String("id", o.id), zap.Int("from", prev), zap.Int("to", pages))
	if err := e.sink.UpdatePageCount(o.id, pages); err != nil {
		// sink did not accept value, let next evaluation try again
		e.mu.Lock()
		if o.reported == pages {
			o.reported = prev
		}
		e.mu.Unlock()
		e.fail(o.id, fmt.Errorf("unable to update page count: %w", err))
	}
}

func (e *Estimator) fail(id string, err error) {
	e.log.Warn("Page count evaluation failed", zap.String("id", id), zap.Error(err))
	if e.onError != nil {
		e.onError(id, err)
	}
}
