package viewer

import (
	"errors"
	"testing"

	"geoview/internal/camera"
	"geoview/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name    string
	log     *[]string
	initErr error
	panicOn string
	inits   int
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) hook(phase string) {
	*r.log = append(*r.log, phase+":"+r.name)
	if r.panicOn == phase {
		panic("boom")
	}
}

func (r *recorder) Init(*Context) error {
	r.inits++
	r.hook("init")
	return r.initErr
}
func (r *recorder) OnUpdate(*Context)     { r.hook("update") }
func (r *recorder) OnRender(*Context)     { r.hook("render") }
func (r *recorder) OnLateUpdate(*Context) { r.hook("late") }
func (r *recorder) Dispose()              { r.hook("dispose") }

// updateOnly implements a single hook.
type updateOnly struct{ n int }

func (u *updateOnly) Name() string          { return "update-only" }
func (u *updateOnly) OnUpdate(ctx *Context) { u.n++ }

func newScheduler() *Scheduler {
	return NewScheduler(NewContext(camera.New(800, 600), render.DefaultOptions()))
}

func TestLifecycleStates(t *testing.T) {
	s := newScheduler()
	var log []string
	a := &recorder{name: "a", log: &log}

	assert.Equal(t, Unregistered, s.State(a))
	require.NoError(t, s.Add(a))
	assert.Equal(t, Initialized, s.State(a))
	assert.Equal(t, []string{"init:a"}, log)

	s.Tick(0.016)
	assert.Equal(t, Active, s.State(a))
	assert.Equal(t, uint64(1), s.Context().Frame)
	assert.InDelta(t, 0.016, s.Context().DT, 1e-12)

	s.Remove(a)
	assert.Equal(t, Disposed, s.State(a))
	assert.Empty(t, s.Extensions())

	s.Tick(0.016)
	assert.Equal(t, 1, a.inits)
	assert.Equal(t, []string{"init:a", "update:a", "render:a", "late:a", "dispose:a"}, log)
}

func TestPhaseBarrier(t *testing.T) {
	s := newScheduler()
	var log []string
	require.NoError(t, s.Add(&recorder{name: "a", log: &log}))
	require.NoError(t, s.Add(&recorder{name: "b", log: &log}))
	require.NoError(t, s.Add(&recorder{name: "c", log: &log}))
	log = nil

	s.Tick(0)
	require.Len(t, log, 9)
	phaseOf := func(entry string) string {
		for i := range entry {
			if entry[i] == ':' {
				return entry[:i]
			}
		}
		return entry
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, "update", phaseOf(log[i]))
		assert.Equal(t, "render", phaseOf(log[3+i]))
		assert.Equal(t, "late", phaseOf(log[6+i]))
	}
}

func TestPanickingHookDoesNotBreakBarrier(t *testing.T) {
	s := newScheduler()
	var log []string
	require.NoError(t, s.Add(&recorder{name: "bad", log: &log, panicOn: "update"}))
	require.NoError(t, s.Add(&recorder{name: "good", log: &log}))
	log = nil

	assert.NotPanics(t, func() { s.Tick(0) })
	assert.Equal(t, []string{
		"update:bad", "update:good",
		"render:bad", "render:good",
		"late:bad", "late:good",
	}, log)
	assert.Equal(t, 1, s.Panics())
}

func TestAddFailsOnInitError(t *testing.T) {
	s := newScheduler()
	var log []string
	boom := errors.New("boom")
	a := &recorder{name: "a", log: &log, initErr: boom}

	err := s.Add(a)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Unregistered, s.State(a))

	p := &recorder{name: "p", log: &log, panicOn: "init"}
	assert.Error(t, s.Add(p))
	assert.Equal(t, Unregistered, s.State(p))
}

func TestAddTwice(t *testing.T) {
	s := newScheduler()
	u := &updateOnly{}
	require.NoError(t, s.Add(u))
	assert.ErrorIs(t, s.Add(u), ErrAlreadyRegistered)

	s.Tick(0)
	s.Tick(0)
	assert.Equal(t, 2, u.n)
}

func TestDisposeReverseOrder(t *testing.T) {
	s := newScheduler()
	var log []string
	require.NoError(t, s.Add(&recorder{name: "a", log: &log}))
	require.NoError(t, s.Add(&recorder{name: "b", log: &log}))
	log = nil

	s.Dispose()
	assert.Equal(t, []string{"dispose:b", "dispose:a"}, log)
	assert.Empty(t, s.Extensions())
}

func TestEventsSubscribeEmit(t *testing.T) {
	ev := NewEvents()
	var got []any
	off := ev.On(EventLoadComplete, func(p any) { got = append(got, p) })
	ev.On(EventLoadComplete, func(any) { panic("handler") })
	assert.Equal(t, 2, ev.Len(EventLoadComplete))

	assert.NotPanics(t, func() { ev.Emit(EventLoadComplete, 3) })
	off()
	ev.Emit(EventLoadComplete, 4)
	assert.Equal(t, []any{3}, got)
	assert.Equal(t, 1, ev.Len(EventLoadComplete))
}
