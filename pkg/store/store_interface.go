package store

import "context"

var (
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*SecretBackend)(nil)
)

// Backend persists named option groups. Load on a group that was never saved
// returns an empty map. Values persist until overwritten; there is no expiry.
type Backend interface {
	Load(ctx context.Context, name string) (map[string]string, error)
	Save(ctx context.Context, name string, values map[string]string) error
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
