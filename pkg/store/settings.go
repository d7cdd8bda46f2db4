package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"github.com/pkg/errors"
)

const (
	OptionLicenseKey   = "sc_license_key"
	OptionLicenseID    = "sc_license_id"
	OptionActivationID = "sc_activation_id"

	optionPrefix = "sc_"
)

// State is the locally persisted activation record of one project.
type State struct {
	LicenseKey   string
	LicenseID    string
	ActivationID string
}

func (s State) IsEmpty() bool {
	return s.LicenseKey == "" && s.LicenseID == "" && s.ActivationID == ""
}

// ProjectHash derives the per project namespace fragment from its slug.
func ProjectHash(slug string) string {
	sum := md5.Sum([]byte(slug))
	return hex.EncodeToString(sum[:])
}

// NamespaceFor returns the option group name used for a project slug.
func NamespaceFor(slug string) string {
	return "surecart_" + ProjectHash(slug) + "_license_options"
}

// Settings is the license state store of a single project. Every write is a
// read-modify-write of the whole option group; concurrent writers are not
// arbitrated here and race at the backend.
type Settings struct {
	backend   Backend
	namespace string
}

type SettingsOption func(*Settings)

// WithNamespace replaces the namespace generated from the project slug.
func WithNamespace(namespace string) SettingsOption {
	return func(s *Settings) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

func NewSettings(backend Backend, slug string, opts ...SettingsOption) *Settings {
	s := &Settings{
		backend:   backend,
		namespace: NamespaceFor(slug),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Settings) Namespace() string {
	return s.namespace
}

// GetOptions returns every stored option keyed by its full name (e.g. "sc_license_key").
func (s *Settings) GetOptions(ctx context.Context) (map[string]string, error) {
	values, err := s.backend.Load(ctx, s.namespace)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load options")
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// GetOption returns the value stored under name and whether it was present.
func (s *Settings) GetOption(ctx context.Context, name string) (string, bool, error) {
	values, err := s.GetOptions(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := values[name]
	return v, ok, nil
}

func (s *Settings) SetOption(ctx context.Context, name string, value string) error {
	values, err := s.GetOptions(ctx)
	if err != nil {
		return err
	}
	values[name] = value
	if err := s.backend.Save(ctx, s.namespace, values); err != nil {
		return errors.Wrapf(err, "failed to save option %s", name)
	}
	return nil
}

// ClearOptions removes every option of the project.
func (s *Settings) ClearOptions(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.namespace, map[string]string{}); err != nil {
		return errors.Wrap(err, "failed to clear options")
	}
	return nil
}

// GetExtra reads an arbitrary extension field, stored with the same prefix as the typed fields.
func (s *Settings) GetExtra(ctx context.Context, name string) (string, bool, error) {
	return s.GetOption(ctx, optionPrefix+name)
}

func (s *Settings) SetExtra(ctx context.Context, name string, value string) error {
	return s.SetOption(ctx, optionPrefix+name, value)
}

func (s *Settings) Load(ctx context.Context) (State, error) {
	values, err := s.GetOptions(ctx)
	if err != nil {
		return State{}, err
	}
	return State{
		LicenseKey:   values[OptionLicenseKey],
		LicenseID:    values[OptionLicenseID],
		ActivationID: values[OptionActivationID],
	}, nil
}

// SaveState writes all three activation fields in a single backend write.
func (s *Settings) SaveState(ctx context.Context, state State) error {
	values, err := s.GetOptions(ctx)
	if err != nil {
		return err
	}
	values[OptionLicenseKey] = state.LicenseKey
	values[OptionLicenseID] = state.LicenseID
	values[OptionActivationID] = state.ActivationID

	if err := s.backend.Save(ctx, s.namespace, values); err != nil {
		return errors.Wrap(err, "failed to save license state")
	}
	return nil
}

func (s *Settings) LicenseKey(ctx context.Context) (string, error) {
	v, _, err := s.GetOption(ctx, OptionLicenseKey)
	return v, err
}

func (s *Settings) LicenseID(ctx context.Context) (string, error) {
	v, _, err := s.GetOption(ctx, OptionLicenseID)
	return v, err
}

func (s *Settings) ActivationID(ctx context.Context) (string, error) {
	v, _, err := s.GetOption(ctx, OptionActivationID)
	return v, err
}

func (s *Settings) SetLicenseKey(ctx context.Context, key string) error {
	return s.SetOption(ctx, OptionLicenseKey, key)
}

func (s *Settings) SetLicenseID(ctx context.Context, id string) error {
	return s.SetOption(ctx, OptionLicenseID, id)
}

func (s *Settings) SetActivationID(ctx context.Context, id string) error {
	return s.SetOption(ctx, OptionActivationID, id)
}
