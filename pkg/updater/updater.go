// Package updater turns the current release of an activated license into
// update information for the host, caching the result for a few hours.
package updater

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/surecart/licensing-sdk/pkg/cache"
	licensetypes "github.com/surecart/licensing-sdk/pkg/license/types"
	"github.com/surecart/licensing-sdk/pkg/logger"
	"github.com/surecart/licensing-sdk/pkg/metrics"
	"github.com/surecart/licensing-sdk/pkg/project"
	"github.com/surecart/licensing-sdk/pkg/store"
	"github.com/surecart/licensing-sdk/pkg/updater/types"
	"github.com/surecart/licensing-sdk/pkg/versions"
)

const (
	DefaultTTL = 3 * time.Hour

	// ForceRefreshPage is the host's update management page, which always bypasses the cache.
	ForceRefreshPage = "update-core.php"

	PluginInformationAction = "plugin_information"

	lastUpdatedLayout = "January 2, 2006"
)

// ReleaseSource is implemented by license.Manager.
type ReleaseSource interface {
	GetCurrentRelease(ctx context.Context, exposeFor time.Duration) (*licensetypes.CurrentRelease, error)
}

// Prober reports whether an asset url exists. client.Client implements it.
type Prober interface {
	Exists(ctx context.Context, rawURL string) bool
}

// Context describes the host page an update check runs on.
type Context struct {
	Page      string
	Multisite bool
}

func (c Context) forceRefresh() bool {
	return c.Page == ForceRefreshPage
}

type Updater struct {
	project   project.Project
	source    ReleaseSource
	cache     cache.Cache
	prober    Prober
	assetsURL string
	ttl       time.Duration
	now       func() time.Time
}

type Option func(*Updater)

// WithAssetsURL sets the base url probed for banners and icons when the manifest has none.
func WithAssetsURL(assetsURL string) Option {
	return func(u *Updater) {
		u.assetsURL = assetsURL
	}
}

func WithProber(p Prober) Option {
	return func(u *Updater) {
		u.prober = p
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(u *Updater) {
		if ttl > 0 {
			u.ttl = ttl
		}
	}
}

func New(p project.Project, source ReleaseSource, c cache.Cache, opts ...Option) *Updater {
	u := &Updater{
		project: p,
		source:  source,
		cache:   c,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.cache == nil {
		u.cache = cache.NewMemoryCache()
	}
	return u
}

// CacheKey is the cache entry of this project's version info.
func (u *Updater) CacheKey() string {
	return "surecart_" + store.ProjectHash(u.project.Slug) + "_version_info"
}

// GetVersionInfo returns the latest release information, or nil when none is
// available. Failures are logged and reported as no information.
func (u *Updater) GetVersionInfo(ctx context.Context, hc Context) *types.VersionInfo {
	if !hc.forceRefresh() {
		if info := u.cached(ctx); info != nil {
			metrics.ObserveUpdateCheck("cached")
			return info
		}
	}

	info, err := u.fetch(ctx)
	if err != nil {
		logger.Debugf("failed to get version info for %s: %v", u.project.Slug, err)
		metrics.ObserveUpdateCheck("error")
		return nil
	}
	if info == nil {
		metrics.ObserveUpdateCheck("unavailable")
		return nil
	}

	u.store(ctx, info)
	metrics.ObserveUpdateCheck("fetched")
	return info
}

// ClearCache drops the cached version info.
func (u *Updater) ClearCache(ctx context.Context) error {
	if err := u.cache.Delete(ctx, u.CacheKey()); err != nil {
		return errors.Wrap(err, "failed to delete version info")
	}
	return nil
}

func (u *Updater) cached(ctx context.Context) *types.VersionInfo {
	data, ok, err := u.cache.Get(ctx, u.CacheKey())
	if err != nil {
		logger.Debugf("failed to read cached version info: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	var info types.VersionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		logger.Debugf("failed to decode cached version info: %v", err)
		return nil
	}
	if info.IsEmpty() {
		return nil
	}
	return &info
}

func (u *Updater) store(ctx context.Context, info *types.VersionInfo) {
	data, err := json.Marshal(info)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to encode version info"))
		return
	}
	if err := u.cache.Set(ctx, u.CacheKey(), data, u.ttl); err != nil {
		logger.Error(errors.Wrap(err, "failed to cache version info"))
	}
}

func (u *Updater) fetch(ctx context.Context) (*types.VersionInfo, error) {
	release, err := u.source.GetCurrentRelease(ctx, u.ttl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current release")
	}
	if release == nil || len(release.ReleaseJSON) == 0 {
		return nil, nil
	}
	return u.transform(ctx, release)
}

// manifest is the vendor's release_json. Scalar fields tolerate numbers,
// and the collections are normalized separately.
type manifest struct {
	Slug        licensetypes.LooseString `json:"slug"`
	Name        licensetypes.LooseString `json:"name"`
	Version     licensetypes.LooseString `json:"version"`
	LastUpdated licensetypes.LooseString `json:"last_updated"`
	Package     licensetypes.LooseString `json:"package"`
	PackageURL  licensetypes.LooseString `json:"package_url"`
	Homepage    licensetypes.LooseString `json:"homepage"`
	Author      licensetypes.LooseString `json:"author"`
	Requires    licensetypes.LooseString `json:"requires"`
	Tested      licensetypes.LooseString `json:"tested"`
	RequiresPHP licensetypes.LooseString `json:"requires_php"`
	Sections    json.RawMessage          `json:"sections"`
	Banners     json.RawMessage          `json:"banners"`
	Icons       json.RawMessage          `json:"icons"`
}

func (u *Updater) transform(ctx context.Context, release *licensetypes.CurrentRelease) (*types.VersionInfo, error) {
	var m manifest
	if err := json.Unmarshal(release.ReleaseJSON, &m); err != nil {
		return nil, errors.Wrap(err, "failed to decode release manifest")
	}
	if m.Slug == "" {
		return nil, nil
	}

	info := types.VersionInfo{
		Slug:        m.Slug.String(),
		Name:        m.Name.String(),
		Version:     m.Version.String(),
		NewVersion:  m.Version.String(),
		LastUpdated: m.LastUpdated.String(),
		Package:     m.Package.String(),
		Homepage:    m.Homepage.String(),
		Author:      m.Author.String(),
		Requires:    m.Requires.String(),
		Tested:      m.Tested.String(),
		RequiresPHP: m.RequiresPHP.String(),
		Sections:    normalizeSections(m.Sections),
	}

	if info.LastUpdated == "" {
		updated := u.now()
		if release.UpdatedAt > 0 {
			updated = time.Unix(release.UpdatedAt, 0)
		}
		info.LastUpdated = updated.UTC().Format(lastUpdatedLayout)
	}

	if info.Package == "" {
		info.Package = m.PackageURL.String()
	}
	if info.Package == "" {
		info.Package = release.URL
	}

	info.Banners = normalizeAssets(m.Banners, bannerRules)
	info.Icons = normalizeAssets(m.Icons, iconRules)

	if u.assetsURL != "" && u.prober != nil {
		if len(info.Banners) == 0 {
			info.Banners = u.probeAssets(ctx, u.assetsURL, bannerProbes)
		}
		if len(info.Icons) == 0 {
			info.Icons = u.probeAssets(ctx, u.assetsURL, iconProbes)
		}
	}

	return &info, nil
}

// UpdateAvailable reports whether info carries a version newer than installed.
func UpdateAvailable(installed string, info *types.VersionInfo) bool {
	if info == nil || info.NewVersion == "" {
		return false
	}
	return versions.Less(installed, info.NewVersion)
}

// CheckUpdate records this project in the host's update transient, under
// response when a newer version exists and under no_update otherwise.
func (u *Updater) CheckUpdate(ctx context.Context, t *types.UpdateTransient, hc Context) *types.UpdateTransient {
	if t == nil {
		t = &types.UpdateTransient{}
	}

	listPage := "plugins.php"
	if u.project.IsTheme() {
		listPage = "themes.php"
	}
	if hc.Page == listPage && hc.Multisite {
		return t
	}

	key := u.project.UpdateKey()
	if t.Response[key] != nil {
		return t
	}

	info := u.GetVersionInfo(ctx, hc)
	if info == nil || info.NewVersion == "" {
		return t
	}

	entry := *info
	if !u.project.IsTheme() {
		entry.Sections = nil
	}

	if UpdateAvailable(u.project.Version, info) {
		if t.Response == nil {
			t.Response = map[string]*types.VersionInfo{}
		}
		t.Response[key] = &entry
	} else {
		if t.NoUpdate == nil {
			t.NoUpdate = map[string]*types.VersionInfo{}
		}
		t.NoUpdate[key] = &entry
	}

	if t.Checked == nil {
		t.Checked = map[string]string{}
	}
	t.Checked[key] = u.project.Version
	t.LastChecked = u.now().Unix()

	return t
}

// PluginInformation answers the host's details view for this plugin. It
// returns false when the request is for another action or another plugin.
func (u *Updater) PluginInformation(ctx context.Context, action string, slug string, hc Context) (*types.VersionInfo, bool) {
	if action != PluginInformationAction {
		return nil, false
	}
	if slug == "" || slug != u.project.Slug {
		return nil, false
	}
	return u.GetVersionInfo(ctx, hc), true
}
