package heartbeat

import (
	"context"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
	cron "github.com/robfig/cron/v3"
	activationtypes "github.com/surecart/licensing-sdk/pkg/activation/types"
	"github.com/surecart/licensing-sdk/pkg/apierror"
	"github.com/surecart/licensing-sdk/pkg/logger"
	"github.com/surecart/licensing-sdk/pkg/updater"
	updatertypes "github.com/surecart/licensing-sdk/pkg/updater/types"
)

const (
	DefaultSchedule = "@every 12h"

	runTimeout = 2 * time.Minute
)

//go:generate mockgen -source=heartbeat.go -destination=mock/mock.go -package=mock

// LicenseChecker is implemented by license.Manager.
type LicenseChecker interface {
	GetActivation(ctx context.Context) (*activationtypes.Activation, error)
}

// ActivationRefresher is implemented by activation.Manager.
type ActivationRefresher interface {
	Update(ctx context.Context, id string) (*activationtypes.Activation, error)
}

// VersionChecker is implemented by updater.Updater.
type VersionChecker interface {
	GetVersionInfo(ctx context.Context, hc updater.Context) *updatertypes.VersionInfo
}

type Site struct {
	URL  string
	Name string
}

// Result describes a single heartbeat run.
type Result struct {
	Activated   bool
	Deactivated bool
	NewVersion  string
	// ReleaseChanged is set when the version info differs from the previous run.
	ReleaseChanged bool
}

// Heartbeat periodically verifies the activation of this site and refreshes
// the cached version info.
type Heartbeat struct {
	licenses    LicenseChecker
	activations ActivationRefresher
	versions    VersionChecker
	site        Site

	job         *cron.Cron
	mtx         sync.Mutex
	releaseHash uint64
}

func New(licenses LicenseChecker, activations ActivationRefresher, versions VersionChecker, site Site) *Heartbeat {
	return &Heartbeat{
		licenses:    licenses,
		activations: activations,
		versions:    versions,
		site:        site,
	}
}

// Start will configure and start the heartbeat cron job:
// if a cron job was NOT found: add a new cron job
// if a cron job was found, replace its entries with the given schedule
func (h *Heartbeat) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.job != nil {
		for _, entry := range h.job.Entries() {
			h.job.Remove(entry.ID)
		}
	} else {
		h.job = cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
		))
	}

	_, err := h.job.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		h.Run(ctx)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to add heartbeat with schedule %q", schedule)
	}

	logger.Debugf("starting heartbeat with schedule %s", schedule)
	h.job.Start()

	return nil
}

// Stop will stop a running cron job (if exists)
func (h *Heartbeat) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.job != nil {
		<-h.job.Stop().Done()
	} else {
		logger.Debugf("cron job not found")
	}
}

func (h *Heartbeat) Run(ctx context.Context) Result {
	result := Result{}

	activation, err := h.licenses.GetActivation(ctx)
	switch {
	case err == nil:
		result.Activated = true
		h.refreshActivation(ctx, activation)
	case apierror.IsKind(err, apierror.KindDeactivated):
		logger.Warnf("activation was removed by the licensing server, local license state cleared")
		result.Deactivated = true
	case apierror.IsKind(err, apierror.KindActivationIDMissing):
		logger.Debugf("no activation stored, skipping activation check")
	default:
		logger.Error(errors.Wrap(err, "failed to check activation"))
	}

	if !result.Activated {
		return result
	}

	info := h.versions.GetVersionInfo(ctx, updater.Context{Page: updater.ForceRefreshPage})
	if info == nil {
		return result
	}
	result.NewVersion = info.NewVersion

	hash, err := hashstructure.Hash(info, nil)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to hash version info"))
		return result
	}

	h.mtx.Lock()
	if hash != h.releaseHash {
		result.ReleaseChanged = true
		h.releaseHash = hash
	}
	h.mtx.Unlock()

	if result.ReleaseChanged {
		logger.Infof("release information updated, latest version is %s", info.NewVersion)
	}

	return result
}

// refreshActivation updates the fingerprint and name of the activation when the site moved.
func (h *Heartbeat) refreshActivation(ctx context.Context, activation *activationtypes.Activation) {
	if activation == nil || h.activations == nil || h.site.URL == "" {
		return
	}
	if activation.Fingerprint == h.site.URL && activation.Name == h.site.Name {
		return
	}

	logger.Infof("site changed from %s to %s, updating activation", activation.Fingerprint, h.site.URL)
	if _, err := h.activations.Update(ctx, activation.ID); err != nil {
		logger.Error(errors.Wrap(err, "failed to update activation"))
	}
}
