// Package licensing wires the licensing client of one host project: the
// transport, the license state store, the update cache and the managers.
package licensing

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/surecart/licensing-sdk/pkg/activation"
	"github.com/surecart/licensing-sdk/pkg/cache"
	"github.com/surecart/licensing-sdk/pkg/client"
	"github.com/surecart/licensing-sdk/pkg/license"
	"github.com/surecart/licensing-sdk/pkg/project"
	"github.com/surecart/licensing-sdk/pkg/store"
	"github.com/surecart/licensing-sdk/pkg/updater"
)

type Client struct {
	project    project.Project
	client     *client.Client
	settings   *store.Settings
	license    *license.Manager
	activation *activation.Manager
	updater    *updater.Updater
}

type options struct {
	clientOpts      []client.Option
	backend         store.Backend
	namespace       string
	cache           cache.Cache
	assetsURL       string
	validateRelease bool
	updateTTL       time.Duration
}

type Option func(*options)

func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, client.WithEndpoint(endpoint))
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, client.WithHTTPClient(hc))
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.clientOpts = append(o.clientOpts, client.WithTimeout(timeout))
		}
	}
}

// WithBackend sets where license state is persisted. Defaults to memory.
func WithBackend(backend store.Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// WithNamespace overrides the option group derived from the project slug.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithCache sets the TTL cache used for version info. Defaults to memory.
func WithCache(c cache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

func WithAssetsURL(assetsURL string) Option {
	return func(o *options) {
		o.assetsURL = assetsURL
	}
}

func WithReleaseValidation(enabled bool) Option {
	return func(o *options) {
		o.validateRelease = enabled
	}
}

func WithUpdateTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.updateTTL = ttl
	}
}

// New validates p and builds its licensing client.
func New(p project.Project, opts ...Option) (*Client, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	o := options{validateRelease: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		o.backend = store.NewMemoryBackend()
	}
	if o.cache == nil {
		o.cache = cache.NewMemoryCache()
	}

	c := client.New(o.clientOpts...)
	settings := store.NewSettings(o.backend, p.Slug, store.WithNamespace(o.namespace))
	activations := activation.NewManager(c, p, settings)
	licenses := license.NewManager(c, activations, settings, p, license.WithReleaseValidation(o.validateRelease))

	updaterOpts := []updater.Option{
		updater.WithProber(c),
		updater.WithTTL(o.updateTTL),
	}
	if o.assetsURL != "" {
		updaterOpts = append(updaterOpts, updater.WithAssetsURL(o.assetsURL))
	}

	return &Client{
		project:    p,
		client:     c,
		settings:   settings,
		license:    licenses,
		activation: activations,
		updater:    updater.New(p, licenses, o.cache, updaterOpts...),
	}, nil
}

func (c *Client) Project() project.Project {
	return c.project
}

func (c *Client) Transport() *client.Client {
	return c.client
}

func (c *Client) Settings() *store.Settings {
	return c.settings
}

func (c *Client) License() *license.Manager {
	return c.license
}

func (c *Client) Activation() *activation.Manager {
	return c.activation
}

func (c *Client) Updater() *updater.Updater {
	return c.updater
}

// Status is a snapshot of the local and remote license state.
type Status struct {
	LicenseKey   string `json:"license_key"`
	ActivationID string `json:"activation_id"`
	IsValid      bool   `json:"is_valid"`
	IsActive     bool   `json:"is_active"`
}

func (c *Client) Status(ctx context.Context) (*Status, error) {
	state, err := c.settings.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load license state")
	}

	valid, err := c.license.IsValid(ctx, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to check license")
	}

	active, err := c.license.IsActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check activation")
	}

	return &Status{
		LicenseKey:   state.LicenseKey,
		ActivationID: state.ActivationID,
		IsValid:      valid,
		IsActive:     active,
	}, nil
}
