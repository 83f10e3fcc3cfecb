package config

import (
	"context"
	"os"
)

const serviceAccountDir = "/var/run/secrets/kubernetes.io/serviceaccount"

// K8sProvider resolves secrets when running inside a Kubernetes pod.
// Kubernetes mounts secrets as files, so reads go through a FileProvider;
// what this type adds is pod detection and namespace discovery.
type K8sProvider struct {
	fileProvider *FileProvider
	namespace    string
}

// NewK8sProvider creates a Kubernetes secret provider. With an empty
// secretsPath it assumes the conventional /var/secrets mount, and with an
// empty namespace it reads the pod's own namespace from the service
// account mount, falling back to "default".
func NewK8sProvider(secretsPath, namespace string) *K8sProvider {
	if secretsPath == "" {
		secretsPath = "/var/secrets"
	}
	if namespace == "" {
		if ns, err := os.ReadFile(serviceAccountDir + "/namespace"); err == nil {
			namespace = string(ns)
		} else {
			namespace = "default"
		}
	}

	return &K8sProvider{
		fileProvider: NewFileProvider(secretsPath),
		namespace:    namespace,
	}
}

// GetSecret reads the mounted secret file for key.
func (k *K8sProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return k.fileProvider.GetSecret(ctx, key)
}

// Name implements SecretProvider.
func (k *K8sProvider) Name() string {
	return "kubernetes"
}

// IsAvailable reports whether this process is a pod with a secrets mount.
// The service account token is the in-cluster signal.
func (k *K8sProvider) IsAvailable(ctx context.Context) bool {
	if _, err := os.Stat(serviceAccountDir + "/token"); err != nil {
		return false
	}
	return k.fileProvider.IsAvailable(ctx)
}

// GetNamespace returns the namespace the provider resolved at startup.
func (k *K8sProvider) GetNamespace() string {
	return k.namespace
}
