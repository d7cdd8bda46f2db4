package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/surecart/licensing-sdk/pkg/project"
)

func TestParseLicensingConfig(t *testing.T) {
	data := []byte(`
name: Example Plugin
file: /var/www/wp-content/plugins/example-plugin/example-plugin.php
version: 1.2.0
siteURL: https://site.example.com
endpoint: http://localhost:3001
timeout: 10s
assetsURL: https://assets.example.com/example-plugin
validateRelease: false
store:
  backend: file
  path: /tmp/licensing
cache:
  backend: redis
  redisURL: redis://localhost:6379/0
`)

	lc, err := ParseLicensingConfig(data)
	require.NoError(t, err)
	require.NoError(t, lc.Validate())

	require.Equal(t, 10*time.Second, lc.Timeout)
	require.False(t, lc.ReleaseValidation())
	require.Equal(t, DefaultAPIAddress, lc.API.Address)
	require.Equal(t, DefaultUpdateCheckSchedule, lc.UpdateCheckSchedule)

	p := lc.Project()
	require.Equal(t, "example-plugin", p.Slug)
	require.Equal(t, "example-plugin/example-plugin.php", p.Basename)
	require.Equal(t, project.TypePlugin, p.Type)
	require.Equal(t, "https://site.example.com", p.SiteName)
}

func TestLicensingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "defaults are valid",
			yaml: "name: Example\nslug: example\nversion: 1.0.0\n",
		},
		{
			name:    "missing version",
			yaml:    "name: Example\nslug: example\n",
			wantErr: "Example Licensing Configuration Error",
		},
		{
			name:    "file backend without path",
			yaml:    "name: Example\nslug: example\nversion: 1.0.0\nstore:\n  backend: file\n",
			wantErr: "store.path is required",
		},
		{
			name:    "unknown store",
			yaml:    "name: Example\nslug: example\nversion: 1.0.0\nstore:\n  backend: sql\n",
			wantErr: "unknown store backend",
		},
		{
			name:    "redis without url",
			yaml:    "name: Example\nslug: example\nversion: 1.0.0\ncache:\n  backend: redis\n",
			wantErr: "cache.redisURL is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc, err := ParseLicensingConfig([]byte(tt.yaml))
			require.NoError(t, err)

			err = lc.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLicensingConfig_ResolvedEndpoint(t *testing.T) {
	lc := &LicensingConfig{Endpoint: "http://from-config"}
	require.Equal(t, "http://from-config", lc.ResolvedEndpoint())

	t.Setenv(EndpointEnv, "http://from-env")
	require.Equal(t, "http://from-env", lc.ResolvedEndpoint())
}

func TestLoadLicensingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licensing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Example\nslug: example\nversion: 1.0.0\n"), 0644))

	lc, err := LoadLicensingConfig(path)
	require.NoError(t, err)
	require.Equal(t, "example", lc.Slug)
	require.True(t, lc.ReleaseValidation())

	_, err = LoadLicensingConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
