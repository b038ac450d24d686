package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FileTokenStore persists the credential as a single JSON document on disk.
// A missing file means the user is not authenticated.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a FileTokenStore that reads and writes the given path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath returns the default location of the token file.
func DefaultTokenPath() string {
	return filepath.Join(DataDir(), "tokens.json")
}

// GetTokenRecord loads the credential from disk.
// It returns (nil, nil) when no token file exists.
func (s *FileTokenStore) GetTokenRecord() (*Token, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		log.Error().Err(err).Str("path", s.path).Msg("Failed to read token file")
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(content, &token); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to parse token file")
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// UpsertTokenRecord writes the credential to disk, replacing any previous one.
// The write goes through a temp file and rename so a crash cannot leave a
// half-written credential behind.
func (s *FileTokenStore) UpsertTokenRecord(token *Token) error {
	if token == nil {
		return fmt.Errorf("token must not be nil")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	content, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	log.Info().Msg("Token saved successfully")
	return nil
}

// DeleteTokenRecord removes the persisted credential. Deleting a credential
// that does not exist is not an error.
func (s *FileTokenStore) DeleteTokenRecord() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to delete token file")
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}
