package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	kuberneteserrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const DefaultSecretName = "surecart-licensing"

// SecretBackend stores every option group as one JSON encoded data key of a Kubernetes Secret.
type SecretBackend struct {
	clientset  kubernetes.Interface
	namespace  string
	secretName string
	mu         sync.Mutex
}

func NewSecretBackend(clientset kubernetes.Interface, namespace string, secretName string) *SecretBackend {
	if secretName == "" {
		secretName = DefaultSecretName
	}
	return &SecretBackend{
		clientset:  clientset,
		namespace:  namespace,
		secretName: secretName,
	}
}

func (b *SecretBackend) Load(ctx context.Context, name string) (map[string]string, error) {
	secret, err := b.clientset.CoreV1().Secrets(b.namespace).Get(ctx, b.secretName, metav1.GetOptions{})
	if kuberneteserrors.IsNotFound(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get licensing secret")
	}

	data := secret.Data[name]
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal options %s", name)
	}
	return values, nil
}

func (b *SecretBackend) Save(ctx context.Context, name string, values map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoded, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "failed to marshal options")
	}

	existing, err := b.clientset.CoreV1().Secrets(b.namespace).Get(ctx, b.secretName, metav1.GetOptions{})
	if err != nil && !kuberneteserrors.IsNotFound(err) {
		return errors.Wrap(err, "failed to get licensing secret")
	}

	if kuberneteserrors.IsNotFound(err) {
		secret := &corev1.Secret{
			TypeMeta: metav1.TypeMeta{
				APIVersion: "v1",
				Kind:       "Secret",
			},
			ObjectMeta: metav1.ObjectMeta{
				Name:      b.secretName,
				Namespace: b.namespace,
			},
			Data: map[string][]byte{
				name: encoded,
			},
		}

		if _, err := b.clientset.CoreV1().Secrets(b.namespace).Create(ctx, secret, metav1.CreateOptions{}); err != nil {
			return errors.Wrap(err, "failed to create licensing secret")
		}
		return nil
	}

	if existing.Data == nil {
		existing.Data = map[string][]byte{}
	}
	existing.Data[name] = encoded

	if _, err := b.clientset.CoreV1().Secrets(b.namespace).Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return errors.Wrap(err, "failed to update licensing secret")
	}
	return nil
}
