// Package profiling is a lightweight per-frame CPU timer for the frame
// phases and background stages of the viewer.
package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu        sync.Mutex
	current   = make(map[string]time.Duration)
	lastFrame = make(map[string]time.Duration)
)

// Track returns a stop function that adds the elapsed time to name.
// Usage: defer profiling.Track("viewer.onRender")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		current[name] += d
		mu.Unlock()
	}
}

// ResetFrame closes the running frame: its totals become LastFrame and a
// new empty frame starts. Call once per tick before the first phase.
func ResetFrame() {
	mu.Lock()
	lastFrame, current = current, lastFrame
	for k := range current {
		delete(current, k)
	}
	mu.Unlock()
}

// Snapshot copies the running frame's totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	return copyTotals(current)
}

// LastFrame copies the totals of the previous completed frame.
func LastFrame() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	return copyTotals(lastFrame)
}

func copyTotals(src map[string]time.Duration) map[string]time.Duration {
	out := make(map[string]time.Duration, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// SumWithPrefix totals every running entry whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for k, v := range current {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

// TopN formats the n slowest entries of the previous frame, e.g.
// "viewer.onRender:4.2ms, loader.drain:0.3ms".
func TopN(n int) string {
	totals := LastFrame()
	names := make([]string, 0, len(totals))
	for k := range totals {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] == totals[names[j]] {
			return names[i] < names[j]
		}
		return totals[names[i]] > totals[names[j]]
	})
	if n > len(names) {
		n = len(names)
	}
	parts := make([]string, 0, n)
	for _, name := range names[:n] {
		ms := float64(totals[name].Microseconds()) / 1000
		parts = append(parts, name+":"+strconv.FormatFloat(ms, 'f', 1, 64)+"ms")
	}
	return strings.Join(parts, ", ")
}
