package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/retry"

	"omnibus/pkg/logging"
)

// NewClientset is a package-level variable for creating the clientset behind a
// KubeStore. Exported to allow overriding in tests.
//
// Without kubeContext the pod's service account is used when running in a cluster,
// the default kubeconfig otherwise. A kubeContext always selects that kubeconfig context.
var NewClientset = func(kubeContext string) (kubernetes.Interface, error) {
	if kubeContext == "" {
		if cfg, err := rest.InClusterConfig(); err == nil {
			return kubernetes.NewForConfig(cfg)
		}
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get REST config for context %q: %w", kubeContext, err)
	}
	restConfig.Timeout = 15 * time.Second

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset for context %q: %w", kubeContext, err)
	}
	return clientset, nil
}

// KubeStore keeps every generated secret as one key of a single Kubernetes Secret.
// It serves pods that have no persistent volume for the params directory.
type KubeStore struct {
	client     kubernetes.Interface
	namespace  string
	secretName string
	generate   Generator
}

// NewKubeStore creates a store backed by the Secret namespace/secretName.
// A nil generator uses GenerateToken.
func NewKubeStore(client kubernetes.Interface, namespace, secretName string, generate Generator) *KubeStore {
	if generate == nil {
		generate = GenerateToken
	}
	return &KubeStore{
		client:     client,
		namespace:  namespace,
		secretName: secretName,
		generate:   generate,
	}
}

// Obtain returns the value stored under name, generating and storing it on first use.
// Concurrent writers are resolved by re-reading on conflict, so the first stored
// value wins.
func (s *KubeStore) Obtain(ctx context.Context, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	var value string
	retriable := func(err error) bool {
		return apierrors.IsConflict(err) || apierrors.IsAlreadyExists(err)
	}
	err := retry.OnError(retry.DefaultRetry, retriable, func() error {
		secrets := s.client.CoreV1().Secrets(s.namespace)

		secret, err := secrets.Get(ctx, s.secretName, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			generated, genErr := s.generate()
			if genErr != nil {
				return fmt.Errorf("failed to generate secret %s: %w", name, genErr)
			}
			value = strings.TrimSpace(generated)
			_, err = secrets.Create(ctx, &corev1.Secret{
				ObjectMeta: metav1.ObjectMeta{
					Name:      s.secretName,
					Namespace: s.namespace,
					Labels:    map[string]string{"app.kubernetes.io/managed-by": "omnibus"},
				},
				Type: corev1.SecretTypeOpaque,
				Data: map[string][]byte{name: []byte(value)},
			}, metav1.CreateOptions{})
			if err == nil {
				logging.Info("Secrets", "Created secret %s/%s with new value for %s", s.namespace, s.secretName, name)
			}
			return err
		}
		if err != nil {
			return err
		}

		if existing, ok := secret.Data[name]; ok {
			value = strings.TrimSpace(string(existing))
			return nil
		}

		generated, err := s.generate()
		if err != nil {
			return fmt.Errorf("failed to generate secret %s: %w", name, err)
		}
		value = strings.TrimSpace(generated)
		if secret.Data == nil {
			secret.Data = map[string][]byte{}
		}
		secret.Data[name] = []byte(value)
		if _, err := secrets.Update(ctx, secret, metav1.UpdateOptions{}); err != nil {
			return err
		}
		logging.Info("Secrets", "Stored new value for %s in secret %s/%s", name, s.namespace, s.secretName)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to obtain secret %s from %s/%s: %w", name, s.namespace, s.secretName, err)
	}
	return value, nil
}
