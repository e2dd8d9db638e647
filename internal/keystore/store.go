package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Store is a directory of keyfiles, one JSON file per keyset.
type Store struct {
	dir string
}

// DefaultDir returns the default keystore directory, creating it if needed.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".kelliot", "keysets")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create keystore directory: %w", err)
	}
	return dir, nil
}

// NewStore opens the default keystore.
func NewStore() (*Store, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// NewStoreAt opens a keystore rooted at dir, creating it if needed.
func NewStoreAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keystore directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// KeyfilePath returns the path of the keyfile backing a keyset name.
func (s *Store) KeyfilePath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Exists reports whether a keyset with the given name is stored.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.KeyfilePath(name))
	return err == nil
}

// Add encrypts the private keys with the password and stores a new keyset.
// Fails when the name is already taken.
func (s *Store) Add(name, pred string, chains []int, keys []string, password string) (*Keyset, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("keyset %s needs at least one key", name)
	}
	if s.Exists(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrExists)
	}

	encrypted, err := EncryptKeys(keys, password)
	if err != nil {
		return nil, fmt.Errorf("error encrypting keys for %s: %w", name, err)
	}

	addresses := make([]string, 0, len(keys))
	for _, key := range keys {
		pub, err := RestorePublicKey(key)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, pub)
	}

	keyset := &Keyset{
		Name: name,
		record: keysetRecord{
			Chains:   chains,
			Pred:     pred,
			Keystore: encrypted,
			Address:  addresses,
		},
	}
	if err := s.write(keyset); err != nil {
		return nil, err
	}
	return keyset, nil
}

// Get loads a keyset from the keystore. The result is locked.
func (s *Store) Get(name string) (*Keyset, error) {
	data, err := os.ReadFile(s.KeyfilePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read keyfile for %s: %w", name, err)
	}

	keyset := &Keyset{Name: name}
	if err := json.Unmarshal(data, &keyset.record); err != nil {
		return nil, fmt.Errorf("invalid keyfile for %s: %w", name, err)
	}
	return keyset, nil
}

// Delete removes a keyset's keyfile.
func (s *Store) Delete(name string) error {
	if !s.Exists(name) {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return os.Remove(s.KeyfilePath(name))
}

// ListNames returns the names of all stored keysets.
func (s *Store) ListNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list keystore: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}

// FindFilter narrows a keystore search. Zero values match everything; use
// ChainID < 0 for "any chain".
type FindFilter struct {
	Name    string
	ChainID int
	Address []string
}

// Find returns all keysets matching the filter.
func (s *Store) Find(filter FindFilter) ([]*Keyset, error) {
	names, err := s.ListNames()
	if err != nil {
		return nil, err
	}

	var matches []*Keyset
	for _, name := range names {
		keyset, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		if filter.Name != "" && filter.Name != keyset.Name {
			continue
		}
		if filter.ChainID >= 0 && !slices.Contains(keyset.Chains(), filter.ChainID) {
			continue
		}
		if filter.Address != nil && !slices.Equal(filter.Address, keyset.Addresses()) {
			continue
		}
		matches = append(matches, keyset)
	}
	return matches, nil
}

func (s *Store) write(keyset *Keyset) error {
	path := s.KeyfilePath(keyset.Name)
	data, err := json.MarshalIndent(keyset.record, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling keyfile: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keyfile %s: %w", path, err)
	}
	return nil
}
