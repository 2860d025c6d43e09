// Package filestore keeps the bearer token in a private file so it survives restarts.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/studytrack/studytrack-client/internal/ports"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// CredentialStore persists the token as the single line of a file.
type CredentialStore struct {
	path string
	mu   sync.Mutex
}

// NewCredentialStore returns a store backed by path. The file is created on first Set.
func NewCredentialStore(path string) (*CredentialStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credential file path is required")
	}
	return &CredentialStore{path: filepath.Clean(path)}, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/studytrack/credential (or the OS equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "studytrack", "credential"), nil
}

// Path returns the file backing the store.
func (s *CredentialStore) Path() string { return s.path }

func (s *CredentialStore) Get(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ports.ErrNoCredential
		}
		return "", fmt.Errorf("read credential file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ports.ErrNoCredential
	}
	return token, nil
}

// Set writes the token atomically: a temp file in the same directory is renamed over the old one.
func (s *CredentialStore) Set(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("credential cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return errors.Join(cause, fmt.Errorf("remove temp credential file: %w", rmErr))
		}
		return cause
	}

	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return cleanup(fmt.Errorf("chmod credential file: %w", err))
	}
	if _, err := tmp.WriteString(token + "\n"); err != nil {
		_ = tmp.Close()
		return cleanup(fmt.Errorf("write credential file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return cleanup(fmt.Errorf("close credential file: %w", err))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return cleanup(fmt.Errorf("replace credential file: %w", err))
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
