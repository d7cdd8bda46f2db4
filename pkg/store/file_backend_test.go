package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested")
	b := NewFileBackend(dir)

	values, err := b.Load(ctx, "group")
	require.NoError(t, err)
	require.Empty(t, values)

	require.NoError(t, b.Save(ctx, "group", map[string]string{OptionLicenseKey: "key: with colon"}))

	values, err = b.Load(ctx, "group")
	require.NoError(t, err)
	require.Equal(t, map[string]string{OptionLicenseKey: "key: with colon"}, values)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "group.yaml", entries[0].Name())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("- not\n- a map"), 0600))
	_, err = b.Load(ctx, "broken")
	require.Error(t, err)
}
