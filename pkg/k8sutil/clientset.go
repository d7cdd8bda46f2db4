package k8sutil

import (
	"os"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
)

const (
	DEFAULT_K8S_CLIENT_QPS   = 20
	DEFAULT_K8S_CLIENT_BURST = 40

	podNamespaceEnv = "POD_NAMESPACE"
)

var KubernetesConfigFlags *genericclioptions.ConfigFlags

func init() {
	KubernetesConfigFlags = genericclioptions.NewConfigFlags(false)
}

// AddFlags registers the kubeconfig flags used by the secret store backend.
func AddFlags(flags *flag.FlagSet) {
	KubernetesConfigFlags.AddFlags(flags)
}

func GetClientset() (*kubernetes.Clientset, error) {
	cfg, err := GetClusterConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cluster config")
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kubernetes clientset")
	}

	return clientset, nil
}

func GetClusterConfig() (*rest.Config, error) {
	var cfg *rest.Config
	var err error

	if KubernetesConfigFlags != nil {
		cfg, err = KubernetesConfigFlags.ToRESTConfig()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert kube flags to rest config")
		}
	} else {
		cfg, err = config.GetConfig()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get config")
		}
	}

	cfg.QPS = DEFAULT_K8S_CLIENT_QPS
	cfg.Burst = DEFAULT_K8S_CLIENT_BURST

	return cfg, nil
}

// Namespace resolves the namespace holding the license secret: an explicit
// value, then POD_NAMESPACE, then the kubeconfig context, then "default".
func Namespace(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if ns := os.Getenv(podNamespaceEnv); ns != "" {
		return ns
	}
	if KubernetesConfigFlags != nil {
		if ns, _, err := KubernetesConfigFlags.ToRawKubeConfigLoader().Namespace(); err == nil && ns != "" {
			return ns
		}
	}
	return "default"
}
