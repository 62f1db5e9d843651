// Package camerasync shares the camera pose between viewers over a
// websocket.
package camerasync

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"geoview/internal/logging"
	"geoview/internal/viewer"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
)

// Pose is the wire message.
type Pose struct {
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
}

// Extension sends the local pose when it changes and applies poses from
// peers. Remote poses are read on a background goroutine and applied in
// OnUpdate.
type Extension struct {
	url    string
	dialer websocket.Dialer

	conn      *websocket.Conn
	writeMu   sync.Mutex
	incoming  chan Pose
	done      chan struct{}
	connected atomic.Bool

	seen uint64
}

func New(url string) *Extension {
	return &Extension{
		url:      url,
		dialer:   websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		incoming: make(chan Pose, 16),
		done:     make(chan struct{}),
	}
}

func (e *Extension) Name() string { return "camera-sync" }

func (e *Extension) Init(ctx *viewer.Context) error {
	conn, _, err := e.dialer.Dial(e.url, nil)
	if err != nil {
		return fmt.Errorf("camera sync dial %s: %w", e.url, err)
	}
	e.conn = conn
	e.connected.Store(true)
	e.seen = ctx.Camera.Version()
	go e.readLoop()
	logging.Logger().Info("camera sync connected", "url", e.url)
	return nil
}

// Connected reports whether the socket is still up.
func (e *Extension) Connected() bool { return e.connected.Load() }

func (e *Extension) readLoop() {
	defer close(e.done)
	defer e.connected.Store(false)
	for {
		var p Pose
		if err := e.conn.ReadJSON(&p); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logging.Logger().Warn("camera sync connection lost", "err", err)
			}
			return
		}
		select {
		case e.incoming <- p:
		default:
			// Drop the oldest pose; only the latest matters.
			select {
			case <-e.incoming:
			default:
			}
			e.incoming <- p
		}
	}
}

func (e *Extension) OnUpdate(ctx *viewer.Context) {
	var latest *Pose
drain:
	for {
		select {
		case p := <-e.incoming:
			latest = &p
		default:
			break drain
		}
	}
	if latest != nil {
		ctx.Camera.SetPose(mgl64.Vec3(latest.Position), mgl64.Vec3(latest.Target))
		e.seen = ctx.Camera.Version()
		ctx.Renderer.RequestRender()
		if ctx.Events != nil {
			ctx.Events.Emit(viewer.EventCameraChanged, nil)
		}
		return
	}

	if v := ctx.Camera.Version(); v != e.seen && e.Connected() {
		e.seen = v
		e.send(Pose{
			Position: ctx.Camera.Position(),
			Target:   ctx.Camera.Target,
		})
	}
}

func (e *Extension) send(p Pose) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.conn.WriteJSON(p); err != nil {
		logging.Logger().Warn("camera sync send failed", "err", err)
	}
}

func (e *Extension) Dispose() {
	if e.conn == nil {
		return
	}
	e.writeMu.Lock()
	_ = e.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	e.writeMu.Unlock()
	e.conn.Close()
	<-e.done
	e.conn = nil
}
