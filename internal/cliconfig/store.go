// Package cliconfig persists admin credentials of the cpd CLI between invocations.
package cliconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

var ErrCredentialNotFound = errors.New("credential not found")

// Credential is an admin token saved for a server.
type Credential struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// CLIConfig is the state the CLI persists between invocations.
type CLIConfig struct {
	// Credentials maps a server host (host:port) to its admin credential.
	Credentials map[string]*Credential `json:"credentials"`
}

// Store reads and writes the CLI state at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the store at ~/.cpd/credentials.json.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	return NewStore(filepath.Join(home, ".cpd", "credentials.json")), nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored state. A missing file yields an empty state.
func (s *Store) Load() (*CLIConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &CLIConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading '%s': %w", s.path, err)
	}
	var cfg CLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding '%s': %w", s.path, err)
	}
	return &cfg, nil
}

// Save replaces the stored state. The file is written next to the target and renamed,
// so an interrupted save never leaves a truncated file.
func (s *Store) Save(cfg *CLIConfig) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating directory '%s': %w", dir, err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing '%s': %w", s.path, err)
	}
	return nil
}

// serverKey normalizes a server address so http://host:8080/ and http://host:8080 match.
func serverKey(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parsing server URL '%s': %w", server, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL '%s' has no host, expected e.g. http://localhost:8080", server)
	}
	return u.Host, nil
}

func (c *CLIConfig) GetCredential(server string) (*Credential, error) {
	key, err := serverKey(server)
	if err != nil {
		return nil, err
	}
	cred, ok := c.Credentials[key]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	return cred, nil
}

func (c *CLIConfig) SetCredential(server, token string) error {
	key, err := serverKey(server)
	if err != nil {
		return err
	}
	if c.Credentials == nil {
		c.Credentials = make(map[string]*Credential)
	}
	c.Credentials[key] = &Credential{Token: token, SavedAt: time.Now().UTC()}
	return nil
}

// RemoveCredential deletes the credential of server. It reports whether one existed.
func (c *CLIConfig) RemoveCredential(server string) (bool, error) {
	key, err := serverKey(server)
	if err != nil {
		return false, err
	}
	if _, ok := c.Credentials[key]; !ok {
		return false, nil
	}
	delete(c.Credentials, key)
	return true, nil
}
