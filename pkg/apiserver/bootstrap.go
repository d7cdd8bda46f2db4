package apiserver

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/surecart/licensing-sdk/pkg/heartbeat"
	"github.com/surecart/licensing-sdk/pkg/licensing"
	"github.com/surecart/licensing-sdk/pkg/logger"
)

type bootstrapResult struct {
	client    *licensing.Client
	heartbeat *heartbeat.Heartbeat
}

func bootstrap(params APIServerParams) (*bootstrapResult, error) {
	if err := params.Config.Validate(); err != nil {
		return nil, backoff.Permanent(errors.Wrap(err, "invalid config"))
	}

	client, err := licensing.NewFromConfig(params.Config, params.Clientset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create licensing client")
	}

	// fails when the store backend is unreachable
	state, err := client.Settings().Load(params.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load license state")
	}

	p := client.Project()
	if state.ActivationID != "" {
		logger.Infof("%s %s is activated (%s)", p.Name, p.Version, state.ActivationID)
	} else {
		logger.Infof("%s %s is not activated", p.Name, p.Version)
	}

	result := &bootstrapResult{
		client: client,
	}

	if !params.DisableHeartbeat {
		hb := heartbeat.New(client.License(), client.Activation(), client.Updater(), heartbeat.Site{
			URL:  p.SiteURL,
			Name: p.SiteName,
		})
		if err := hb.Start(params.Config.UpdateCheckSchedule); err != nil {
			return nil, backoff.Permanent(errors.Wrap(err, "failed to start heartbeat"))
		}
		result.heartbeat = hb
	}

	return result, nil
}

func bootstrapWithRetry(ctx context.Context, params APIServerParams, b backoff.BackOff) (*bootstrapResult, error) {
	var result *bootstrapResult
	bootstrapFn := func() error {
		r, err := bootstrap(params)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	err := backoff.RetryNotify(bootstrapFn, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		logger.Warnf("failed to bootstrap, retrying in %s: %v", d, err)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
