package license

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	activationtypes "github.com/surecart/licensing-sdk/pkg/activation/types"
	"github.com/surecart/licensing-sdk/pkg/apierror"
	"github.com/surecart/licensing-sdk/pkg/client"
	"github.com/surecart/licensing-sdk/pkg/license/types"
	"github.com/surecart/licensing-sdk/pkg/logger"
	"github.com/surecart/licensing-sdk/pkg/project"
	"github.com/surecart/licensing-sdk/pkg/store"
)

const (
	Endpoint = "v1/public/licenses"

	DefaultExposeFor = 15 * time.Minute
)

type Transport interface {
	DoInto(ctx context.Context, r client.Request, dest interface{}) error
}

// ActivationService is implemented by activation.Manager.
type ActivationService interface {
	Create(ctx context.Context, licenseID string) (*activationtypes.Activation, error)
	Get(ctx context.Context, id string) (*activationtypes.Activation, error)
	Delete(ctx context.Context, id string) (*activationtypes.Activation, error)
}

// Manager validates license keys and drives the activation lifecycle of one project.
type Manager struct {
	transport   Transport
	activations ActivationService
	settings    *store.Settings
	project     project.Project

	validateRelease bool

	mu       sync.Mutex
	validKey string
	validity *bool
}

type Option func(*Manager)

// WithReleaseValidation controls whether Activate checks that the current
// release of the license belongs to this project, rolling the activation back
// otherwise. It is on by default.
func WithReleaseValidation(enabled bool) Option {
	return func(m *Manager) {
		m.validateRelease = enabled
	}
}

func NewManager(transport Transport, activations ActivationService, settings *store.Settings, p project.Project, opts ...Option) *Manager {
	m := &Manager{
		transport:   transport,
		activations: activations,
		settings:    settings,
		project:     p,

		validateRelease: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Retrieve fetches the license record for key.
func (m *Manager) Retrieve(ctx context.Context, key string) (*types.License, error) {
	if key == "" {
		return nil, apierror.New(apierror.KindMissingKey, "")
	}

	var license types.License
	err := m.transport.DoInto(ctx, client.Request{
		Method: http.MethodGet,
		Route:  Endpoint + "/" + url.PathEscape(key),
	}, &license)
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// Validate retrieves the license for key and checks that it can be activated.
func (m *Manager) Validate(ctx context.Context, key string) (*types.License, error) {
	license, err := m.Retrieve(ctx, key)
	if err != nil {
		if apierror.IsNotFound(err) {
			return nil, apierror.New(apierror.KindInvalidLicense, "")
		}
		return nil, err
	}
	if license.ID == "" {
		return nil, apierror.New(apierror.KindInvalidLicense, "")
	}
	if license.IsRevoked() {
		return nil, apierror.New(apierror.KindRevoked, "")
	}
	return license, nil
}

// Activate validates key, creates an activation for this site and persists
// the license key, license id and activation id together. Nothing is written
// locally unless every step succeeds.
func (m *Manager) Activate(ctx context.Context, key string) (*activationtypes.Activation, error) {
	if key == "" {
		return nil, apierror.New(apierror.KindMissingKey, "")
	}

	prior, err := m.settings.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load license state")
	}

	license, err := m.Validate(ctx, key)
	if err != nil {
		if prior.ActivationID != "" && (prior.LicenseKey != key || isUnusable(err)) {
			m.discard(ctx, prior.ActivationID)
		}
		if isUnusable(err) {
			m.setValidity(key, false)
		}
		return nil, err
	}

	if prior.ActivationID != "" {
		if prior.LicenseKey == key {
			existing, err := m.activations.Get(ctx, prior.ActivationID)
			if err == nil && existing.ID != "" {
				logger.Debugf("license %s is already activated as %s", MaskKey(key), existing.ID)
				m.setValidity(key, true)
				return existing, nil
			}
			if err != nil && !apierror.IsNotFound(err) {
				return nil, err
			}
		}
		m.discard(ctx, prior.ActivationID)
	}

	activation, err := m.activations.Create(ctx, license.ID)
	if err != nil {
		if apierror.IsKind(err, apierror.KindCouldNotActivate) {
			return nil, apierror.New(apierror.KindActivationFailed, "")
		}
		return nil, err
	}
	if activation == nil || activation.ID == "" {
		return nil, apierror.New(apierror.KindActivationFailed, "")
	}

	if m.validateRelease {
		if err := m.checkReleaseFor(ctx, key, activation.ID); err != nil {
			m.rollback(ctx, activation.ID)
			return nil, err
		}
	}

	err = m.settings.SaveState(ctx, store.State{
		LicenseKey:   key,
		LicenseID:    license.ID,
		ActivationID: activation.ID,
	})
	if err != nil {
		m.rollback(ctx, activation.ID)
		return nil, errors.Wrap(err, "failed to save license state")
	}

	m.setValidity(key, true)
	logger.Infof("activated license %s for %s", MaskKey(key), m.project.Slug)

	return activation, nil
}

func (m *Manager) checkReleaseFor(ctx context.Context, key string, activationID string) error {
	release, err := m.fetchCurrentRelease(ctx, key, activationID, DefaultExposeFor)
	if err != nil {
		// not every product has a release yet
		logger.Debugf("skipping release validation: %v", err)
		return nil
	}
	return m.ValidateRelease(release)
}

// discard best-effort deletes a previous activation and clears local state.
func (m *Manager) discard(ctx context.Context, activationID string) {
	if _, err := m.activations.Delete(ctx, activationID); err != nil && !apierror.IsNotFound(err) {
		logger.Errorf("failed to delete previous activation %s: %v", activationID, err)
	}
	if err := m.settings.ClearOptions(ctx); err != nil {
		logger.Error(errors.Wrap(err, "failed to clear previous license state"))
	}
	m.resetValidity()
}

// rollback deletes an activation created during a failed Activate.
func (m *Manager) rollback(ctx context.Context, activationID string) {
	if _, err := m.activations.Delete(ctx, activationID); err != nil && !apierror.IsNotFound(err) {
		logger.Errorf("failed to roll back activation %s: %v", activationID, err)
	}
}

// Deactivate deletes the activation with id, or the stored activation when id
// is empty, then clears all local state. An activation that is already gone
// counts as deactivated. Any other failure leaves local state untouched.
func (m *Manager) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		stored, err := m.settings.ActivationID(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to get activation id")
		}
		id = stored
	}
	if id == "" {
		return apierror.New(apierror.KindActivationIDMissing, "")
	}

	if _, err := m.activations.Delete(ctx, id); err != nil {
		if !apierror.IsNotFound(err) {
			return err
		}
		logger.Debugf("activation %s was already removed", id)
	}

	if err := m.settings.ClearOptions(ctx); err != nil {
		return errors.Wrap(err, "failed to clear license state")
	}
	m.resetValidity()

	logger.Infof("deactivated %s", m.project.Slug)
	return nil
}

// GetCurrentRelease returns the latest release available to the stored
// activation, with a download url valid for exposeFor.
func (m *Manager) GetCurrentRelease(ctx context.Context, exposeFor time.Duration) (*types.CurrentRelease, error) {
	state, err := m.settings.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load license state")
	}
	if state.LicenseKey == "" {
		return nil, apierror.New(apierror.KindLicenseKeyMissing, "")
	}
	if state.ActivationID == "" {
		return nil, apierror.New(apierror.KindActivationIDMissing, "")
	}
	if exposeFor <= 0 {
		exposeFor = DefaultExposeFor
	}
	return m.fetchCurrentRelease(ctx, state.LicenseKey, state.ActivationID, exposeFor)
}

func (m *Manager) fetchCurrentRelease(ctx context.Context, key string, activationID string, exposeFor time.Duration) (*types.CurrentRelease, error) {
	query := url.Values{}
	query.Set("activation_id", activationID)
	query.Set("expose_for", strconv.FormatInt(int64(exposeFor/time.Second), 10))

	var release types.CurrentRelease
	err := m.transport.DoInto(ctx, client.Request{
		Method: http.MethodGet,
		Route:  Endpoint + "/" + url.PathEscape(key) + "/expose_current_release",
		Query:  query,
	}, &release)
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// ValidateRelease checks that release was published for this project.
func (m *Manager) ValidateRelease(release *types.CurrentRelease) error {
	if release == nil {
		return apierror.New(apierror.KindReleaseMismatch, "")
	}
	identity, err := release.Manifest()
	if err != nil {
		return apierror.New(apierror.KindReleaseMismatch, "")
	}
	if identity.Slug.String() != m.project.Slug {
		logger.Debugf("release slug %q does not match %q", identity.Slug, m.project.Slug)
		return apierror.New(apierror.KindReleaseMismatch, "")
	}
	return nil
}

// IsValid reports whether key, or the stored key when empty, is a usable
// license. The answer for the last key checked is memoized for the lifetime
// of the manager; asking about a different key checks remotely again.
func (m *Manager) IsValid(ctx context.Context, key string) (bool, error) {
	if key == "" {
		stored, err := m.settings.LicenseKey(ctx)
		if err != nil {
			return false, errors.Wrap(err, "failed to get license key")
		}
		key = stored
	}
	if key == "" {
		return false, nil
	}

	m.mu.Lock()
	if m.validity != nil && m.validKey == key {
		v := *m.validity
		m.mu.Unlock()
		return v, nil
	}
	m.mu.Unlock()

	_, err := m.Validate(ctx, key)
	if err != nil {
		if isUnusable(err) {
			m.setValidity(key, false)
			return false, nil
		}
		return false, err
	}

	m.setValidity(key, true)
	return true, nil
}

// IsActive performs a live lookup of the stored activation.
func (m *Manager) IsActive(ctx context.Context) (bool, error) {
	id, err := m.settings.ActivationID(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get activation id")
	}
	if id == "" {
		return false, nil
	}

	activation, err := m.activations.Get(ctx, id)
	if err != nil {
		if apierror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return activation != nil && activation.ID != "", nil
}

// GetActivation returns the stored activation. When the licensing server no
// longer knows it, local state is cleared and a deactivated error is returned.
func (m *Manager) GetActivation(ctx context.Context) (*activationtypes.Activation, error) {
	id, err := m.settings.ActivationID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get activation id")
	}
	if id == "" {
		return nil, apierror.New(apierror.KindActivationIDMissing, "")
	}

	activation, err := m.activations.Get(ctx, id)
	if err != nil {
		if !apierror.IsNotFound(err) {
			return nil, err
		}
		if err := m.settings.ClearOptions(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to clear license state")
		}
		m.resetValidity()
		return nil, apierror.New(apierror.KindDeactivated, "")
	}
	return activation, nil
}

func (m *Manager) setValidity(key string, v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validKey = key
	m.validity = &v
}

func (m *Manager) resetValidity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validKey = ""
	m.validity = nil
}

// isUnusable reports whether err means the license itself can not be activated.
func isUnusable(err error) bool {
	switch apierror.KindOf(err) {
	case apierror.KindInvalidLicense, apierror.KindRevoked:
		return true
	}
	return false
}

// MaskKey hides all but the last four characters of a license key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
