package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// RPCTokenEnv overrides any stored token, for machines without a
	// keyring service (CI, containers).
	RPCTokenEnv = "AGROS_RPC_TOKEN"

	keyringService = "agros"
	keyringUser    = "rpc-token"

	tokenFileName = "rpc.token"
	tokenFileMode = 0600
)

var (
	keyringSet = keyring.Set
	keyringGet = keyring.Get
	keyringDel = keyring.Delete
	randRead   = rand.Read
)

// TokenStore resolves the bearer token RPC clients must present.
// Resolution order: environment, OS keyring, token file under the
// config directory. When nothing is stored yet, a token is generated
// and persisted on first use.
type TokenStore struct {
	configDir string
}

func NewTokenStore(configDir string) *TokenStore {
	return &TokenStore{configDir: configDir}
}

// Token returns the RPC bearer token, minting one on first use.
func (s *TokenStore) Token() (string, error) {
	if tok := os.Getenv(RPCTokenEnv); tok != "" {
		return tok, nil
	}
	if tok, err := keyringGet(keyringService, keyringUser); err == nil && tok != "" {
		return tok, nil
	}
	if tok, err := s.readFile(); err == nil && tok != "" {
		return tok, nil
	}
	return s.generate()
}

// Reset deletes the stored token so the next Token call mints a new
// one. Missing entries are not an error.
func (s *TokenStore) Reset() error {
	if err := keyringDel(keyringService, keyringUser); err != nil && err != keyring.ErrNotFound {
		return err
	}
	if err := os.Remove(s.tokenPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// generate creates a fresh token and stores it in the keyring, falling
// back to a 0600 file when no keyring service is available.
func (s *TokenStore) generate() (string, error) {
	raw := make([]byte, 32)
	if _, err := randRead(raw); err != nil {
		return "", fmt.Errorf("generate rpc token: %w", err)
	}
	tok := hex.EncodeToString(raw)
	if err := keyringSet(keyringService, keyringUser, tok); err == nil {
		return tok, nil
	}
	if err := s.writeFile(tok); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *TokenStore) tokenPath() string {
	return filepath.Join(s.configDir, tokenFileName)
}

func (s *TokenStore) readFile() (string, error) {
	data, err := os.ReadFile(s.tokenPath())
	if err != nil {
		return "", err
	}
	tok := strings.TrimSpace(string(data))
	if _, err := hex.DecodeString(tok); err != nil {
		return "", fmt.Errorf("invalid token format: %w", err)
	}
	return tok, nil
}

func (s *TokenStore) writeFile(tok string) error {
	if err := os.MkdirAll(s.configDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	// Write atomically: temp file then rename, so an interrupted
	// daemon never leaves a half-written token behind.
	tmp, err := os.CreateTemp(s.configDir, ".rpc.token.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(tok); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, tokenFileMode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.tokenPath()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename token file: %w", err)
	}
	return nil
}
