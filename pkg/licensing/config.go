package licensing

import (
	"github.com/pkg/errors"
	"github.com/surecart/licensing-sdk/pkg/cache"
	"github.com/surecart/licensing-sdk/pkg/config"
	"github.com/surecart/licensing-sdk/pkg/k8sutil"
	"github.com/surecart/licensing-sdk/pkg/store"
	"k8s.io/client-go/kubernetes"
)

// ClientsetFunc returns the clientset used by the secret store backend.
type ClientsetFunc func() (kubernetes.Interface, error)

func defaultClientset() (kubernetes.Interface, error) {
	return k8sutil.GetClientset()
}

// NewFromConfig builds a client from a parsed config file.
func NewFromConfig(lc *config.LicensingConfig, getClientset ClientsetFunc, extra ...Option) (*Client, error) {
	if err := lc.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if getClientset == nil {
		getClientset = defaultClientset
	}

	backend, err := storeBackend(lc.Store, getClientset)
	if err != nil {
		return nil, err
	}

	c, err := cacheBackend(lc.Cache)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithEndpoint(lc.ResolvedEndpoint()),
		WithTimeout(lc.Timeout),
		WithBackend(backend),
		WithCache(c),
		WithAssetsURL(lc.AssetsURL),
		WithReleaseValidation(lc.ReleaseValidation()),
	}
	if lc.Store.Backend != config.StoreBackendSecret {
		opts = append(opts, WithNamespace(lc.Store.Namespace))
	}

	return New(lc.Project(), append(opts, extra...)...)
}

func storeBackend(sc config.StoreConfig, getClientset ClientsetFunc) (store.Backend, error) {
	switch sc.Backend {
	case config.StoreBackendFile:
		return store.NewFileBackend(sc.Path), nil
	case config.StoreBackendSecret:
		clientset, err := getClientset()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get clientset")
		}
		return store.NewSecretBackend(clientset, k8sutil.Namespace(sc.Namespace), sc.SecretName), nil
	default:
		return store.NewMemoryBackend(), nil
	}
}

func cacheBackend(cc config.CacheConfig) (cache.Cache, error) {
	if cc.Backend != config.CacheBackendRedis {
		return cache.NewMemoryCache(), nil
	}
	rdb, err := cache.Connect(cc.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}
	return cache.NewRedisCache(rdb), nil
}
