package activation

import (
	"context"
	"net/http"
	"net/url"

	"github.com/surecart/licensing-sdk/pkg/activation/types"
	"github.com/surecart/licensing-sdk/pkg/apierror"
	"github.com/surecart/licensing-sdk/pkg/client"
	"github.com/surecart/licensing-sdk/pkg/project"
	"github.com/surecart/licensing-sdk/pkg/store"
)

const Endpoint = "v1/public/activations"

// Transport is the part of the licensing client the managers need.
type Transport interface {
	DoInto(ctx context.Context, r client.Request, dest interface{}) error
}

// Manager creates, reads, updates and deletes the activation of this site.
type Manager struct {
	transport Transport
	project   project.Project
	settings  *store.Settings
}

func NewManager(transport Transport, p project.Project, settings *store.Settings) *Manager {
	return &Manager{
		transport: transport,
		project:   p,
		settings:  settings,
	}
}

func (m *Manager) payload(licenseID string) types.Payload {
	return types.Payload{
		Fingerprint: m.project.SiteURL,
		Name:        m.project.SiteName,
		License:     licenseID,
	}
}

func route(id string) string {
	return Endpoint + "/" + url.PathEscape(id)
}

// Create activates licenseID for this site.
func (m *Manager) Create(ctx context.Context, licenseID string) (*types.Activation, error) {
	if licenseID == "" {
		return nil, apierror.New(apierror.KindMissingKey, "")
	}

	var activation types.Activation
	err := m.transport.DoInto(ctx, client.Request{
		Method: http.MethodPost,
		Route:  Endpoint,
		Body:   types.CreateRequest{Activation: m.payload(licenseID)},
	}, &activation)
	if err != nil {
		return nil, err
	}

	if activation.ID == "" {
		return nil, apierror.New(apierror.KindCouldNotActivate, "")
	}
	return &activation, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*types.Activation, error) {
	if id == "" {
		return nil, apierror.New(apierror.KindActivationIDMissing, "")
	}

	var activation types.Activation
	err := m.transport.DoInto(ctx, client.Request{
		Method: http.MethodGet,
		Route:  route(id),
	}, &activation)
	if err != nil {
		return nil, err
	}
	return &activation, nil
}

// Update refreshes the fingerprint and name of an activation, using the stored license id.
func (m *Manager) Update(ctx context.Context, id string) (*types.Activation, error) {
	if id == "" {
		return nil, apierror.New(apierror.KindActivationIDMissing, "")
	}

	licenseID, err := m.settings.LicenseID(ctx)
	if err != nil {
		return nil, err
	}
	if licenseID == "" {
		return nil, apierror.New(apierror.KindMissingKey, "")
	}

	var activation types.Activation
	err = m.transport.DoInto(ctx, client.Request{
		Method: http.MethodPatch,
		Route:  route(id),
		Body:   m.payload(licenseID),
	}, &activation)
	if err != nil {
		return nil, err
	}
	return &activation, nil
}

// Delete removes an activation. An empty response body yields an activation carrying only its id.
func (m *Manager) Delete(ctx context.Context, id string) (*types.Activation, error) {
	if id == "" {
		return nil, apierror.New(apierror.KindActivationIDMissing, "")
	}

	var activation types.Activation
	err := m.transport.DoInto(ctx, client.Request{
		Method: http.MethodDelete,
		Route:  route(id),
	}, &activation)
	if err != nil {
		return nil, err
	}
	if activation.ID == "" {
		activation.ID = id
	}
	return &activation, nil
}
