package window

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultFrame is a single frame at 60Hz.
const DefaultFrame = 16 * time.Millisecond

// Option configures Controller.
type Option func(*Controller)

func WithClock(c clockwork.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithFrame sets throttling interval, non positive value makes every signal
// recompute synchronously.
func WithFrame(d time.Duration) Option {
	return func(ctl *Controller) { ctl.frame = d }
}

func WithOverscan(n int) Option {
	return func(ctl *Controller) { ctl.overscan = max(n, 0) }
}

func WithViewport(height float64) Option {
	return func(ctl *Controller) { ctl.viewport = height }
}

// WithLayout switches controller to measured item heights. Controller takes
// ownership of the layout.
func WithLayout(l *Layout) Option {
	return func(ctl *Controller) { ctl.layout = l }
}

// WithOnChange installs callback invoked with every recomputed window which
// differs from the previous one.
func WithOnChange(f func(Window)) Option {
	return func(ctl *Controller) { ctl.onChange = f }
}

// WithLogger sets logger, by default nothing is logged.
func WithLogger(log *zap.Logger) Option {
	return func(ctl *Controller) {
		if log != nil {
			ctl.log = log.Named("window")
		}
	}
}

// Controller turns scroll and resize signals into windows. Signals only
// record new input, recomputation happens at most once per frame no matter
// how many signals arrived in between.
type Controller struct {
	log      *zap.Logger
	clock    clockwork.Clock
	frame    time.Duration
	onChange func(Window)

	mu         sync.Mutex
	total      int
	itemHeight float64
	scroll     float64
	viewport   float64
	overscan   int
	layout     *Layout
	win        Window
	timer      clockwork.Timer
	gen        uint64
	recomputes int
	closed     bool
}

// NewController creates controller for total items of itemHeight each (an
// estimate when layout is used). Initial window is computed immediately.
func NewController(total int, itemHeight float64, opts ...Option) *Controller {
	ctl := &Controller{
		log:        zap.NewNop(),
		clock:      clockwork.NewRealClock(),
		frame:      DefaultFrame,
		total:      max(total, 0),
		itemHeight: itemHeight,
	}
	for _, opt := range opts {
		opt(ctl)
	}
	if ctl.layout != nil {
		ctl.layout.Resize(ctl.total)
		ctl.layout.SetEstimate(itemHeight)
	}
	ctl.win = ctl.compute()
	return ctl
}

// Scroll records new scroll offset.
func (ctl *Controller) Scroll(offset float64) {
	ctl.signal(func() { ctl.scroll = offset })
}

// Resize records new viewport height.
func (ctl *Controller) Resize(viewport float64) {
	ctl.signal(func() { ctl.viewport = viewport })
}

// SetTotal records new number of items, for example after entry was added.
func (ctl *Controller) SetTotal(total int) {
	ctl.signal(func() {
		ctl.total = max(total, 0)
		if ctl.layout != nil {
			ctl.layout.Resize(ctl.total)
		}
	})
}

// SetItemHeight records new estimated item height.
func (ctl *Controller) SetItemHeight(h float64) {
	ctl.signal(func() {
		ctl.itemHeight = h
		if ctl.layout != nil {
			ctl.layout.SetEstimate(h)
		}
	})
}

// SetItemSize records measured height of item i switching controller to
// measured layout if necessary.
func (ctl *Controller) SetItemSize(i int, h float64) {
	ctl.signal(func() {
		if ctl.layout == nil {
			ctl.layout = NewLayout(ctl.total, ctl.itemHeight)
		}
		ctl.layout.Set(i, h)
	})
}

// Window returns the latest computed window.
func (ctl *Controller) Window() Window {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.win
}

// Recomputes returns how many times window was recomputed after creation.
func (ctl *Controller) Recomputes() int {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.recomputes
}

// Flush recomputes window now if there are unprocessed signals.
func (ctl *Controller) Flush() Window {
	ctl.mu.Lock()
	if ctl.timer == nil || ctl.closed {
		defer ctl.mu.Unlock()
		return ctl.win
	}
	ctl.timer.Stop()
	ctl.recompute()
	return ctl.Window()
}

// Close cancels pending recomputation, signals received afterwards are
// ignored.
func (ctl *Controller) Close() {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.timer != nil {
		ctl.timer.Stop()
		ctl.timer = nil
	}
	ctl.closed = true
}

func (ctl *Controller) signal(apply func()) {
	ctl.mu.Lock()
	if ctl.closed {
		ctl.mu.Unlock()
		return
	}
	apply()
	if ctl.frame <= 0 {
		ctl.recompute()
		return
	}
	if ctl.timer == nil {
		ctl.gen++
		gen := ctl.gen
		ctl.timer = ctl.clock.AfterFunc(ctl.frame, func() { ctl.onFrame(gen) })
	}
	ctl.mu.Unlock()
}

func (ctl *Controller) onFrame(gen uint64) {
	ctl.mu.Lock()
	if ctl.closed || ctl.timer == nil || ctl.gen != gen {
		ctl.mu.Unlock()
		return
	}
	ctl.recompute()
}

// recompute must be called with ctl.mu held, it releases the lock before
// notifying.
func (ctl *Controller) recompute() {
	ctl.timer = nil
	w := ctl.compute()
	changed := w != ctl.win
	ctl.win = w
	ctl.recomputes++
	onChange := ctl.onChange
	ctl.mu.Unlock()

	if changed {
		ctl.log.Debug("Window changed", zap.Int("start", w.StartIndex), zap.Int("end", w.EndIndex))
		if onChange != nil {
			onChange(w)
		}
	}
}

// compute must be called with ctl.mu held.
func (ctl *Controller) compute() Window {
	if ctl.layout != nil {
		return ComputeLayout(ctl.layout, ctl.scroll, ctl.viewport, ctl.overscan)
	}
	return Compute(ctl.total, ctl.itemHeight, ctl.scroll, ctl.viewport, ctl.overscan)
}
