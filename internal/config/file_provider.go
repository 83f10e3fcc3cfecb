package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider reads secrets from files in a directory, one secret per
// file, the way Kubernetes mounts them. JWT_SECRET maps to the file
// jwt-secret under the configured path.
type FileProvider struct {
	secretsPath string
}

// NewFileProvider creates a file-backed provider rooted at secretsPath.
func NewFileProvider(secretsPath string) *FileProvider {
	return &FileProvider{secretsPath: secretsPath}
}

// GetSecret reads the file for key. A missing file is not an error, it
// returns empty so the chain can fall through to the next source.
func (f *FileProvider) GetSecret(ctx context.Context, key string) (string, error) {
	if f.secretsPath == "" {
		return "", fmt.Errorf("secrets path not configured")
	}

	name := strings.ToLower(strings.ReplaceAll(key, "_", "-"))
	path := filepath.Join(f.secretsPath, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read secret file %s: %w", path, err)
	}

	// Mounted secret files often end in a newline.
	return strings.TrimSpace(string(data)), nil
}

// Name implements SecretProvider.
func (f *FileProvider) Name() string {
	return "file"
}

// IsAvailable reports whether the secrets directory exists.
func (f *FileProvider) IsAvailable(ctx context.Context) bool {
	if f.secretsPath == "" {
		return false
	}
	info, err := os.Stat(f.secretsPath)
	return err == nil && info.IsDir()
}
