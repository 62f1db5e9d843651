package converter

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"geoview/internal/rte"
	"geoview/internal/scene"
	"geoview/internal/worldtree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshObject(id string, offset float64) *scene.Object {
	return &scene.Object{ID: id, SpeckleType: "Objects.Geometry.Mesh", Raw: map[string]any{
		"vertices": []any{offset, 0.0, 0.0, offset + 1, 0.0, 0.0, offset, 1.0, 0.0},
		"faces":    []any{3.0, 0.0, 1.0, 2.0},
	}}
}

func TestConvertFillsRTESplit(t *testing.T) {
	rv, err := Convert(meshObject("m", 6378137.25))
	require.NoError(t, err)
	g := rv.Geometry()
	require.Len(t, g.PositionsHigh, 9)
	require.Len(t, g.PositionsLow, 9)
	assert.InDelta(t, 6378137.25, rte.Recompose(g.PositionsHigh[0], g.PositionsLow[0]), 1e-6)
}

func TestConvertUnsupported(t *testing.T) {
	_, err := Convert(&scene.Object{ID: "c", SpeckleType: "Collection"})
	assert.True(t, errors.Is(err, scene.ErrUnsupportedType))
}

func TestWorkerPoolConvertsAll(t *testing.T) {
	pool := NewWorkerPool(4, 8)
	defer pool.Shutdown()

	const n = 32
	results := make(chan Result, n)
	go func() {
		for i := 0; i < n; i++ {
			obj := meshObject(fmt.Sprintf("m%d", i), float64(i))
			job := Job{Object: obj, Node: worldtree.NewNode(obj.ID, obj.Raw), Results: results}
			assert.True(t, pool.SubmitJobBlocking(context.Background(), job))
		}
	}()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		select {
		case res := <-results:
			require.NoError(t, res.Err)
			assert.Equal(t, res.Node.ID, res.RenderView.ID())
			seen[res.Node.ID] = true
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for conversions")
		}
	}
	assert.Len(t, seen, n)
	converted, failed := pool.Stats()
	assert.Equal(t, int64(n), converted)
	assert.Zero(t, failed)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	pool.Shutdown()
	assert.False(t, pool.SubmitJob(Job{Object: meshObject("m", 0)}))
	assert.False(t, pool.SubmitJobBlocking(context.Background(), Job{}))
}
