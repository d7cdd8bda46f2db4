package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/surecart/licensing-sdk/pkg/project"
	"gopkg.in/yaml.v2"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendFile   = "file"
	StoreBackendSecret = "secret"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	DefaultAPIAddress          = ":3000"
	DefaultUpdateCheckSchedule = "@every 12h"

	EndpointEnv = "SURECART_LICENSING_ENDPOINT"
)

type LicensingConfig struct {
	Name       string       `yaml:"name"`
	File       string       `yaml:"file"`
	Basename   string       `yaml:"basename"`
	Slug       string       `yaml:"slug"`
	Type       project.Type `yaml:"type"`
	Version    string       `yaml:"version"`
	TextDomain string       `yaml:"textdomain"`
	SiteURL    string       `yaml:"siteURL"`
	SiteName   string       `yaml:"siteName"`

	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	AssetsURL string        `yaml:"assetsURL"`
	// ValidateRelease rolls back activations whose current release belongs to
	// another product. Unset means enabled.
	ValidateRelease *bool `yaml:"validateRelease"`

	Store               StoreConfig `yaml:"store"`
	Cache               CacheConfig `yaml:"cache"`
	API                 APIConfig   `yaml:"api"`
	UpdateCheckSchedule string      `yaml:"updateCheckSchedule"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	// Namespace is the Kubernetes namespace of the secret backend, and the option group name for the others.
	Namespace  string `yaml:"namespace"`
	SecretName string `yaml:"secretName"`
}

type CacheConfig struct {
	Backend  string `yaml:"backend"`
	RedisURL string `yaml:"redisURL"`
}

type APIConfig struct {
	Address string `yaml:"address"`
	// Token is required in the authorization header of /api routes when set.
	Token string `yaml:"token"`
}

func ParseLicensingConfig(data []byte) (*LicensingConfig, error) {
	var lc LicensingConfig
	if err := yaml.Unmarshal(data, &lc); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config file")
	}
	lc.setDefaults()
	return &lc, nil
}

func LoadLicensingConfig(path string) (*LicensingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return ParseLicensingConfig(data)
}

func (c *LicensingConfig) setDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = StoreBackendMemory
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendMemory
	}
	if c.API.Address == "" {
		c.API.Address = DefaultAPIAddress
	}
	if c.UpdateCheckSchedule == "" {
		c.UpdateCheckSchedule = DefaultUpdateCheckSchedule
	}
}

func (c *LicensingConfig) ReleaseValidation() bool {
	return c.ValidateRelease == nil || *c.ValidateRelease
}

// Project returns the normalized host project described by the config.
func (c *LicensingConfig) Project() project.Project {
	p := project.Project{
		Name:       c.Name,
		File:       c.File,
		Basename:   c.Basename,
		Slug:       c.Slug,
		Version:    c.Version,
		Type:       c.Type,
		TextDomain: c.TextDomain,
		SiteURL:    c.SiteURL,
		SiteName:   c.SiteName,
	}
	if p.Basename == "" && p.Slug == "" && p.File != "" {
		p.Basename = project.FromFile(c.Name, c.File, "", "").Basename
	}
	p.Normalize()
	return p
}

// ResolvedEndpoint applies the endpoint override order: environment, config file, default.
func (c *LicensingConfig) ResolvedEndpoint() string {
	if v := os.Getenv(EndpointEnv); v != "" {
		return v
	}
	return c.Endpoint
}

func (c *LicensingConfig) Validate() error {
	if err := c.Project().Validate(); err != nil {
		return err
	}

	switch c.Store.Backend {
	case StoreBackendMemory, StoreBackendSecret:
	case StoreBackendFile:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the file backend")
		}
	default:
		return errors.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redisURL is required for the redis backend")
		}
	default:
		return errors.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	return nil
}
