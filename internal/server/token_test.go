package server

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func stubKeyring(t *testing.T) map[string]string {
	t.Helper()
	store := map[string]string{}
	origSet, origGet, origDel := keyringSet, keyringGet, keyringDel
	t.Cleanup(func() {
		keyringSet, keyringGet, keyringDel = origSet, origGet, origDel
	})
	keyringSet = func(service, user, value string) error {
		store[service+"/"+user] = value
		return nil
	}
	keyringGet = func(service, user string) (string, error) {
		v, ok := store[service+"/"+user]
		if !ok {
			return "", errors.New("not found")
		}
		return v, nil
	}
	keyringDel = func(service, user string) error {
		delete(store, service+"/"+user)
		return nil
	}
	return store
}

func TestTokenEnvOverride(t *testing.T) {
	stubKeyring(t)
	t.Setenv(RPCTokenEnv, "from-env")

	s := NewTokenStore(t.TempDir())
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "from-env" {
		t.Errorf("Token = %q, want from-env", tok)
	}
}

func TestTokenGeneratedOnceAndStable(t *testing.T) {
	store := stubKeyring(t)
	t.Setenv(RPCTokenEnv, "")

	s := NewTokenStore(t.TempDir())
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if _, err := hex.DecodeString(tok); err != nil || len(tok) != 64 {
		t.Fatalf("Token = %q, want 64 hex chars", tok)
	}
	if store["agros/rpc-token"] != tok {
		t.Errorf("token not persisted to keyring")
	}

	again, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if again != tok {
		t.Errorf("second Token = %q, want %q", again, tok)
	}
}

func TestTokenFileFallback(t *testing.T) {
	stubKeyring(t)
	t.Setenv(RPCTokenEnv, "")

	// A broken keyring pushes the store onto the file fallback.
	keyringSet = func(service, user, value string) error {
		return errors.New("no keyring service")
	}

	dir := t.TempDir()
	s := NewTokenStore(dir)
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, tokenFileName))
	if err != nil {
		t.Fatalf("token file: %v", err)
	}
	if string(data) != tok {
		t.Errorf("file holds %q, want %q", data, tok)
	}

	info, err := os.Stat(filepath.Join(dir, tokenFileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != tokenFileMode {
		t.Errorf("token file mode = %o, want %o", perm, tokenFileMode)
	}

	again, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if again != tok {
		t.Errorf("second Token = %q, want %q", again, tok)
	}
}

func TestTokenReset(t *testing.T) {
	stubKeyring(t)
	t.Setenv(RPCTokenEnv, "")

	s := NewTokenStore(t.TempDir())
	first, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	second, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if first == second {
		t.Errorf("Reset did not rotate the token")
	}
}

func TestTokenRejectsCorruptFile(t *testing.T) {
	stubKeyring(t)
	t.Setenv(RPCTokenEnv, "")
	keyringSet = func(service, user, value string) error {
		return errors.New("no keyring service")
	}
	keyringGet = func(service, user string) (string, error) {
		return "", errors.New("no keyring service")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, tokenFileName), []byte("not hex!"), 0600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s := NewTokenStore(dir)
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok == "not hex!" {
		t.Error("corrupt token was accepted")
	}
}
