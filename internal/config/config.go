package config

import "sync"

// RuntimeSettings holds values that can change while the viewer runs.
type RuntimeSettings struct {
	mu        sync.RWMutex
	fpsLimit  int
	wireframe bool
}

var globalRuntimeSettings = &RuntimeSettings{
	fpsLimit: 60,
}

// GetFPSLimit returns the frame cap; zero means uncapped.
func GetFPSLimit() int {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.fpsLimit
}

// SetFPSLimit sets the frame cap
func SetFPSLimit(limit int) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.fpsLimit = clampFPS(limit)
}

// GetWireframe returns whether batches are drawn as wireframe
func GetWireframe() bool {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.wireframe
}

// SetWireframe sets the wireframe toggle
func SetWireframe(enabled bool) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.wireframe = enabled
}

// ToggleWireframe flips the wireframe toggle and returns the new value
func ToggleWireframe() bool {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.wireframe = !globalRuntimeSettings.wireframe
	return globalRuntimeSettings.wireframe
}

// Apply copies the runtime values of c into the global settings.
func Apply(c *Config) {
	SetFPSLimit(c.Render.FPSLimit)
	SetWireframe(c.Render.Wireframe)
}

func clampFPS(limit int) int {
	// Clamp to reasonable values
	if limit < 0 {
		return 0
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
