package versions

import (
	"sort"
	"sync"
)

// Callback initializes the client implementation shipped with one SDK version.
type Callback func()

// Registry collects the SDK versions bundled by every project on a site so
// that only the newest one is initialized.
type Registry struct {
	versions map[string]Callback
	mu       sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		versions: map[string]Callback{},
	}
}

// Register adds a version. Registering a version twice is a no-op that keeps
// the first callback and returns false.
func (r *Registry) Register(version string, callback Callback) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.versions[version]; ok {
		return false
	}
	r.versions[version] = callback
	return true
}

// Versions returns a copy of the registered versions.
func (r *Registry) Versions() map[string]Callback {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Callback, len(r.versions))
	for k, v := range r.versions {
		out[k] = v
	}
	return out
}

// Latest returns the highest registered version.
func (r *Registry) Latest() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.latestLocked()
}

func (r *Registry) latestLocked() (string, bool) {
	if len(r.versions) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(r.versions))
	for k := range r.versions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return Less(keys[i], keys[j])
	})
	return keys[len(keys)-1], true
}

// LatestCallback returns the callback of the highest version, or a no-op when nothing is registered.
func (r *Registry) LatestCallback() Callback {
	r.mu.Lock()
	defer r.mu.Unlock()

	latest, ok := r.latestLocked()
	if !ok || r.versions[latest] == nil {
		return func() {}
	}
	return r.versions[latest]
}

// InitializeLatest runs the callback of the highest registered version.
func (r *Registry) InitializeLatest() {
	r.LatestCallback()()
}
