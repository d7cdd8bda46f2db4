package licensing

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surecart/licensing-sdk/pkg/config"
	licensetypes "github.com/surecart/licensing-sdk/pkg/license/types"
	"github.com/surecart/licensing-sdk/pkg/mock"
	"github.com/surecart/licensing-sdk/pkg/project"
	"github.com/surecart/licensing-sdk/pkg/store"
	"github.com/surecart/licensing-sdk/pkg/updater"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
)

func newMockAPI(t *testing.T) (*mock.Server, string) {
	t.Helper()

	server := mock.NewServer()
	server.AddLicense(licensetypes.License{ID: "lic_1", Key: "key-1"}, &licensetypes.CurrentRelease{
		URL:         "https://downloads.example.com/example-plugin.zip",
		UpdatedAt:   1700000000,
		ReleaseJSON: json.RawMessage(`{"slug":"example-plugin","version":"1.3.0"}`),
	})
	server.AddLicense(licensetypes.License{ID: "lic_2", Key: "key-2"}, &licensetypes.CurrentRelease{
		ReleaseJSON: json.RawMessage(`{"slug":"other-plugin","version":"2.0.0"}`),
	})

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return server, ts.URL
}

func TestNew_Validation(t *testing.T) {
	_, err := New(project.Project{Name: "Broken"})
	require.ErrorContains(t, err, "Broken Licensing Configuration Error")

	c, err := New(project.Project{Name: "Example", Slug: "example-plugin", Version: "1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, store.NamespaceFor("example-plugin"), c.Settings().Namespace())
	assert.Equal(t, "example-plugin/example-plugin.php", c.Project().Basename)
}

func TestClient_Lifecycle(t *testing.T) {
	server, endpoint := newMockAPI(t)
	ctx := context.Background()

	c, err := New(project.Project{
		Name:    "Example Plugin",
		Slug:    "example-plugin",
		Version: "1.2.0",
		SiteURL: "https://site.example.com",
	}, WithEndpoint(endpoint))
	require.NoError(t, err)

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Status{}, status)

	a, err := c.License().Activate(ctx, "key-1")
	require.NoError(t, err)

	status, err = c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Status{LicenseKey: "key-1", ActivationID: a.ID, IsValid: true, IsActive: true}, status)

	transient := c.Updater().CheckUpdate(ctx, nil, updater.Context{})
	require.Contains(t, transient.Response, "example-plugin/example-plugin.php")
	assert.Equal(t, "https://downloads.example.com/example-plugin.zip", transient.Response["example-plugin/example-plugin.php"].Package)

	require.NoError(t, c.License().Deactivate(ctx, ""))
	assert.Empty(t, server.Activations())

	state, err := c.Settings().Load(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestClient_ReleaseValidation(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		wantErr  bool
		wantKept int
	}{
		{
			name:     "enabled by default",
			wantErr:  true,
			wantKept: 0,
		},
		{
			name:     "disabled",
			opts:     []Option{WithReleaseValidation(false)},
			wantKept: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, endpoint := newMockAPI(t)
			c, err := New(project.Project{
				Name:    "Example Plugin",
				Slug:    "example-plugin",
				Version: "1.2.0",
			}, append([]Option{WithEndpoint(endpoint)}, tt.opts...)...)
			require.NoError(t, err)

			_, err = c.License().Activate(context.Background(), "key-2")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, server.Activations(), tt.wantKept)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	_, endpoint := newMockAPI(t)
	mr := miniredis.RunT(t)

	lc, err := config.ParseLicensingConfig([]byte(`
name: Example Plugin
slug: example-plugin
version: 1.2.0
siteURL: https://site.example.com
store:
  backend: secret
  namespace: licensing
cache:
  backend: redis
  redisURL: redis://` + mr.Addr() + `
`))
	require.NoError(t, err)
	lc.Endpoint = endpoint

	clientset := fake.NewSimpleClientset()
	c, err := NewFromConfig(lc, func() (kubernetes.Interface, error) { return clientset, nil })
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.License().Activate(ctx, "key-1")
	require.NoError(t, err)

	secret, err := clientset.CoreV1().Secrets("licensing").Get(ctx, store.DefaultSecretName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, secret.Data, store.NamespaceFor("example-plugin"))

	info := c.Updater().GetVersionInfo(ctx, updater.Context{})
	require.NotNil(t, info)
	assert.Len(t, mr.Keys(), 1)
}

func TestNewFromConfig_Invalid(t *testing.T) {
	lc, err := config.ParseLicensingConfig([]byte("name: Example\nslug: example\n"))
	require.NoError(t, err)

	_, err = NewFromConfig(lc, nil)
	require.ErrorContains(t, err, "invalid config")
}
