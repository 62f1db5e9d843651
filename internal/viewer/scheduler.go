package viewer

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"geoview/internal/logging"
	"geoview/internal/profiling"
)

// State is an extension's lifecycle position.
type State int

const (
	Unregistered State = iota
	Initialized
	Active
	Disposed
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Initialized:
		return "initialized"
	case Active:
		return "active"
	case Disposed:
		return "disposed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// ErrAlreadyRegistered is returned when adding an extension twice.
var ErrAlreadyRegistered = errors.New("viewer: extension already registered")

type entry struct {
	ext   Extension
	state State
}

// Scheduler dispatches frame hooks. Every OnUpdate of a tick completes
// before any OnRender starts, and every OnRender before any OnLateUpdate.
// No order among extensions within one phase is promised.
type Scheduler struct {
	ctx      *Context
	entries  []*entry
	disposed map[Extension]bool
	panics   int
}

// NewScheduler returns a scheduler bound to ctx.
func NewScheduler(ctx *Context) *Scheduler {
	return &Scheduler{ctx: ctx, disposed: make(map[Extension]bool)}
}

// Context returns the shared context.
func (s *Scheduler) Context() *Context { return s.ctx }

// Add initialises ext and registers it. It joins the frame hooks from the
// next tick. If Init fails the extension is not registered.
func (s *Scheduler) Add(ext Extension) error {
	if s.find(ext) != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, ext.Name())
	}
	if in, ok := ext.(Initializer); ok {
		var err error
		if !s.call(ext, "init", func() { err = in.Init(s.ctx) }) {
			err = errors.New("init panicked")
		}
		if err != nil {
			return fmt.Errorf("init %s: %w", ext.Name(), err)
		}
	}
	delete(s.disposed, ext)
	s.entries = append(s.entries, &entry{ext: ext, state: Initialized})
	logging.Logger().Info("extension initialized", "extension", ext.Name())
	return nil
}

// Remove disposes ext and drops it from the hooks.
func (s *Scheduler) Remove(ext Extension) {
	e := s.find(ext)
	if e == nil {
		return
	}
	s.dispose(e)
	s.entries = slices.DeleteFunc(s.entries, func(o *entry) bool { return o == e })
}

// State reports the lifecycle state of ext.
func (s *Scheduler) State(ext Extension) State {
	if e := s.find(ext); e != nil {
		return e.state
	}
	if s.disposed[ext] {
		return Disposed
	}
	return Unregistered
}

// Extensions lists registered extensions in registration order.
func (s *Scheduler) Extensions() []Extension {
	out := make([]Extension, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.ext
	}
	return out
}

// Panics returns how many hook panics were recovered.
func (s *Scheduler) Panics() int { return s.panics }

// Tick runs one frame: update, render, late update.
func (s *Scheduler) Tick(dt float64) {
	s.ctx.Frame++
	s.ctx.DT = dt

	active := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.state == Initialized {
			e.state = Active
		}
		if e.state == Active {
			active = append(active, e)
		}
	}

	func() {
		defer profiling.Track("viewer.onUpdate")()
		for _, e := range active {
			if h, ok := e.ext.(Updater); ok && e.state == Active {
				s.call(e.ext, "onUpdate", func() { h.OnUpdate(s.ctx) })
			}
		}
	}()
	func() {
		defer profiling.Track("viewer.onRender")()
		for _, e := range active {
			if h, ok := e.ext.(RenderHook); ok && e.state == Active {
				s.call(e.ext, "onRender", func() { h.OnRender(s.ctx) })
			}
		}
	}()
	func() {
		defer profiling.Track("viewer.onLateUpdate")()
		for _, e := range active {
			if h, ok := e.ext.(LateUpdater); ok && e.state == Active {
				s.call(e.ext, "onLateUpdate", func() { h.OnLateUpdate(s.ctx) })
			}
		}
	}()
}

// Dispose disposes every extension in reverse registration order.
func (s *Scheduler) Dispose() {
	for i := len(s.entries) - 1; i >= 0; i-- {
		s.dispose(s.entries[i])
	}
	s.entries = nil
}

func (s *Scheduler) dispose(e *entry) {
	if d, ok := e.ext.(Disposer); ok {
		s.call(e.ext, "dispose", d.Dispose)
	}
	e.state = Disposed
	s.disposed[e.ext] = true
	logging.Logger().Info("extension disposed", "extension", e.ext.Name())
}

func (s *Scheduler) find(ext Extension) *entry {
	for _, e := range s.entries {
		if e.ext == ext {
			return e
		}
	}
	return nil
}

// call runs one hook. A panic is recovered and logged so that the phase
// barrier holds for every other extension.
func (s *Scheduler) call(ext Extension, hook string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			s.panics++
			logging.Logger().Warn("extension hook panicked", "extension", ext.Name(), "hook", hook, "frame", s.ctx.Frame, "panic", r)
		}
	}()
	fn()
	return true
}
