package camerasync

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"geoview/internal/camera"
	"geoview/internal/render"
	"geoview/internal/viewer"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newViewer(t *testing.T, url string) (*viewer.Scheduler, *Extension) {
	t.Helper()
	s := viewer.NewScheduler(viewer.NewContext(camera.New(800, 600), render.DefaultOptions()))
	ext := New(url)
	require.NoError(t, s.Add(ext))
	t.Cleanup(s.Dispose)
	return s, ext
}

func TestPoseRelayedBetweenPeers(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a, _ := newViewer(t, wsURL(srv))
	b, _ := newViewer(t, wsURL(srv))
	require.Eventually(t, func() bool { return hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	var changed int
	b.Context().Events.On(viewer.EventCameraChanged, func(any) { changed++ })

	pos := mgl64.Vec3{100, 50, 100}
	target := mgl64.Vec3{10, 0, 10}
	a.Context().Camera.SetPose(pos, target)
	a.Tick(0.016)

	camB := b.Context().Camera
	require.Eventually(t, func() bool {
		b.Tick(0.016)
		return camB.Target == target
	}, 2*time.Second, 10*time.Millisecond)

	got := camB.Position()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, pos[i], got[i], 1e-6)
	}
	assert.Equal(t, 1, changed)
}

func TestAppliedPoseIsNotEchoed(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a, _ := newViewer(t, wsURL(srv))
	b, _ := newViewer(t, wsURL(srv))
	require.Eventually(t, func() bool { return hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	a.Context().Camera.SetPose(mgl64.Vec3{0, 0, 20}, mgl64.Vec3{})
	a.Tick(0)
	require.Eventually(t, func() bool {
		b.Tick(0)
		return b.Context().Camera.Distance == 20
	}, 2*time.Second, 10*time.Millisecond)

	seen := a.Context().Camera.Version()
	b.Tick(0)
	time.Sleep(50 * time.Millisecond)
	a.Tick(0)
	assert.Equal(t, seen, a.Context().Camera.Version(), "b must not send the pose back")
}

func TestInitFailsWithoutServer(t *testing.T) {
	s := viewer.NewScheduler(viewer.NewContext(camera.New(800, 600), render.DefaultOptions()))
	ext := New("ws://127.0.0.1:1/none")
	assert.Error(t, s.Add(ext))
	assert.Equal(t, viewer.Unregistered, s.State(ext))
}

func TestDisposeClosesConnection(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	s := viewer.NewScheduler(viewer.NewContext(camera.New(800, 600), render.DefaultOptions()))
	ext := New(wsURL(srv))
	require.NoError(t, s.Add(ext))
	assert.True(t, ext.Connected())

	s.Dispose()
	assert.False(t, ext.Connected())
	require.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
