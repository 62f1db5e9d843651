// Package filtering keeps direct filters: presentation overlays applied over
// sets of render views without touching batch membership.
package filtering

import (
	"slices"
	"strconv"
	"sync"

	"geoview/internal/logging"
	"geoview/internal/renderview"
)

// FilterType selects how an overlay changes its members.
type FilterType int

const (
	// Select highlights members.
	Select FilterType = iota
	// Isolate ghosts every view that is not a member.
	Isolate
	// Hide removes members from drawing.
	Hide
	// Ghost draws members translucent.
	Ghost
)

func (f FilterType) String() string {
	switch f {
	case Select:
		return "SELECT"
	case Isolate:
		return "ISOLATE"
	case Hide:
		return "HIDE"
	case Ghost:
		return "GHOST"
	default:
		return "FilterType(" + strconv.Itoa(int(f)) + ")"
	}
}

// Options configures ApplyDirectFilter.
type Options struct {
	FilterType FilterType
}

// Presentation is how a render view is drawn once all filters resolve.
type Presentation int

const (
	Base Presentation = iota
	Selected
	Ghosted
	Hidden
)

func (p Presentation) String() string {
	switch p {
	case Selected:
		return "selected"
	case Ghosted:
		return "ghosted"
	case Hidden:
		return "hidden"
	default:
		return "base"
	}
}

// Filter is a snapshot of an active direct filter.
type Filter struct {
	ID      string
	Type    FilterType
	Members []*renderview.RenderView
}

type entry struct {
	filter Filter
	set    map[*renderview.RenderView]struct{}
}

// Manager owns the active filters and the per-role state table. All
// mutations are serialised by one mutex.
type Manager struct {
	mu      sync.Mutex
	next    uint64
	filters map[string]*entry
	order   []string
	states  map[string]string
	version uint64
}

// NewManager returns a manager with no filters.
func NewManager() *Manager {
	return &Manager{
		filters: make(map[string]*entry),
		states:  make(map[string]string),
	}
}

// Apply creates a filter over rvs and returns its id. An empty set creates
// nothing and returns "".
func (m *Manager) Apply(rvs []*renderview.RenderView, opts Options) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyLocked(rvs, opts)
}

func (m *Manager) applyLocked(rvs []*renderview.RenderView, opts Options) string {
	if len(rvs) == 0 {
		return ""
	}
	m.next++
	id := "filter-" + strconv.FormatUint(m.next, 10)
	e := &entry{
		filter: Filter{ID: id, Type: opts.FilterType},
		set:    make(map[*renderview.RenderView]struct{}, len(rvs)),
	}
	for _, rv := range rvs {
		if rv == nil {
			continue
		}
		if _, dup := e.set[rv]; dup {
			continue
		}
		e.set[rv] = struct{}{}
		e.filter.Members = append(e.filter.Members, rv)
	}
	m.filters[id] = e
	m.order = append(m.order, id)
	m.version++
	logging.Logger().Debug("filter applied", "id", id, "type", opts.FilterType, "members", len(e.filter.Members))
	return id
}

// Remove drops the filter with the given id. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

func (m *Manager) removeLocked(id string) {
	if _, ok := m.filters[id]; !ok {
		return
	}
	delete(m.filters, id)
	m.order = slices.DeleteFunc(m.order, func(o string) bool { return o == id })
	for key, fid := range m.states {
		if fid == id {
			delete(m.states, key)
		}
	}
	m.version++
	logging.Logger().Debug("filter removed", "id", id)
}

// SetState applies a filter for a role key, superseding the role's
// previous filter. An empty set just clears the role.
func (m *Manager) SetState(key string, rvs []*renderview.RenderView, opts Options) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.states[key]; ok {
		m.removeLocked(prev)
	}
	id := m.applyLocked(rvs, opts)
	if id != "" {
		m.states[key] = id
	}
	return id
}

// ClearState removes the role's filter, if any.
func (m *Manager) ClearState(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.states[key]; ok {
		m.removeLocked(prev)
	}
}

// StateID returns the active filter id of a role.
func (m *Manager) StateID(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.states[key]
	return id, ok
}

// Filter returns a snapshot of the filter with the given id.
func (m *Manager) Filter(id string) (Filter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.filters[id]
	if !ok {
		return Filter{}, false
	}
	f := e.filter
	f.Members = slices.Clone(f.Members)
	return f, true
}

// Active returns snapshots of every filter in application order.
func (m *Manager) Active() []Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Filter, 0, len(m.order))
	for _, id := range m.order {
		f := m.filters[id].filter
		f.Members = slices.Clone(f.Members)
		out = append(out, f)
	}
	return out
}

// Members returns every view covered by an active filter of type ft.
func (m *Manager) Members(ft FilterType) []*renderview.RenderView {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*renderview.RenderView
	seen := make(map[*renderview.RenderView]struct{})
	for _, id := range m.order {
		e := m.filters[id]
		if e.filter.Type != ft {
			continue
		}
		for _, rv := range e.filter.Members {
			if _, ok := seen[rv]; ok {
				continue
			}
			seen[rv] = struct{}{}
			out = append(out, rv)
		}
	}
	return out
}

// Version increases whenever the filter set changes.
func (m *Manager) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Resolver answers Presentation queries against one consistent view of
// the filter set.
type Resolver struct {
	hide, sel, ghost, isolate map[*renderview.RenderView]struct{}
	isolating                 bool
}

// Resolver snapshots the current filters.
func (m *Manager) Resolver() *Resolver {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &Resolver{
		hide:    make(map[*renderview.RenderView]struct{}),
		sel:     make(map[*renderview.RenderView]struct{}),
		ghost:   make(map[*renderview.RenderView]struct{}),
		isolate: make(map[*renderview.RenderView]struct{}),
	}
	for _, e := range m.filters {
		var dst map[*renderview.RenderView]struct{}
		switch e.filter.Type {
		case Hide:
			dst = r.hide
		case Select:
			dst = r.sel
		case Ghost:
			dst = r.ghost
		case Isolate:
			dst = r.isolate
			r.isolating = true
		default:
			continue
		}
		for rv := range e.set {
			dst[rv] = struct{}{}
		}
	}
	return r
}

// Resolve returns the presentation of rv. Hidden wins over selected,
// selected over ghosted.
func (r *Resolver) Resolve(rv *renderview.RenderView) Presentation {
	if _, ok := r.hide[rv]; ok {
		return Hidden
	}
	if _, ok := r.sel[rv]; ok {
		return Selected
	}
	if _, ok := r.ghost[rv]; ok {
		return Ghosted
	}
	if r.isolating {
		if _, ok := r.isolate[rv]; !ok {
			return Ghosted
		}
	}
	return Base
}

// Resolve is a one-off Presentation query.
func (m *Manager) Resolve(rv *renderview.RenderView) Presentation {
	return m.Resolver().Resolve(rv)
}
