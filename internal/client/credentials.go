package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"storechat/internal/config"
	"storechat/internal/types"
)

type CredentialSource interface {
	Credential() (types.Credential, error)
}

// StaticCredential is used by tests and by STORECHAT_TOKEN.
type StaticCredential types.Credential

func (s StaticCredential) Credential() (types.Credential, error) {
	return types.Credential(s), nil
}

// TokenFile stores the credential on disk. The file holds either a JSON
// credential or a bare token written by hand.
type TokenFile struct {
	Path string
}

func DefaultTokenFile() (*TokenFile, error) {
	path, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	return &TokenFile{Path: path}, nil
}

func (f *TokenFile) Credential() (types.Credential, error) {
	if f == nil || strings.TrimSpace(f.Path) == "" {
		return types.Credential{}, nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.Credential{}, nil
		}
		return types.Credential{}, err
	}
	return parseCredential(data), nil
}

func (f *TokenFile) Save(cred types.Credential) error {
	if f == nil || strings.TrimSpace(f.Path) == "" {
		return errors.New("token path is required")
	}
	if !cred.Valid() {
		return errors.New("token is required")
	}
	cred.Token = strings.TrimSpace(cred.Token)
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, append(data, '\n'), 0o600)
}

func (f *TokenFile) Clear() error {
	if f == nil || strings.TrimSpace(f.Path) == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// EnvCredential prefers STORECHAT_TOKEN and falls back to the wrapped source.
type EnvCredential struct {
	Lookup   func(string) (string, bool)
	Fallback CredentialSource
}

func (e EnvCredential) Credential() (types.Credential, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if raw, ok := lookup(config.EnvToken); ok && strings.TrimSpace(raw) != "" {
		return parseCredential([]byte(raw)), nil
	}
	if e.Fallback == nil {
		return types.Credential{}, nil
	}
	return e.Fallback.Credential()
}

func parseCredential(data []byte) types.Credential {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return types.Credential{}
	}
	if strings.HasPrefix(trimmed, "{") {
		var cred types.Credential
		if err := json.Unmarshal([]byte(trimmed), &cred); err == nil {
			cred.Token = strings.TrimSpace(cred.Token)
			cred.Role = types.Role(strings.ToLower(strings.TrimSpace(string(cred.Role))))
			return cred
		}
	}
	return types.Credential{Token: trimmed}
}
