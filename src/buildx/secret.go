package buildx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// gitAuthTokenID is the secret ID buildx uses for same-repo git contexts.
const gitAuthTokenID = "GIT_AUTH_TOKEN"

// parseSecretKV splits a "KEY=VALUE" secret spec on the first "=".
// The value may itself contain "=" (tokens, PEM blocks).
func parseSecretKV(spec string) (key, value string, err error) {
	idx := strings.Index(spec, "=")
	if idx <= 0 {
		return "", "", fmt.Errorf("invalid secret %q: expected KEY=VALUE", redactSecret(spec))
	}
	return spec[:idx], spec[idx+1:], nil
}

// ResolveSecretString materializes an "ID=VALUE" secret: the value is
// written under the run-state directory and the returned flag value points
// buildx at it.
func ResolveSecretString(spec string) (string, error) {
	id, value, err := parseSecretKV(spec)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("secret %s: empty value", id)
	}

	dir := filepath.Join(StateDir(), "secrets")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("secret %s: %w", id, err)
	}
	path := filepath.Join(dir, id)
	if err := os.WriteFile(path, []byte(value), 0o600); err != nil {
		return "", fmt.Errorf("secret %s: %w", id, err)
	}

	return fmt.Sprintf("id=%s,src=%s", id, path), nil
}

// ResolveSecretEnv resolves an "ID=ENVNAME" secret that buildx reads from
// the environment. The named variable must be set in this process.
func ResolveSecretEnv(spec string) (string, error) {
	id, envName, err := parseSecretKV(spec)
	if err != nil {
		return "", err
	}
	if envName == "" {
		return "", fmt.Errorf("secret %s: empty environment variable name", id)
	}
	if _, ok := os.LookupEnv(envName); !ok {
		return "", fmt.Errorf("secret %s: environment variable %s not set", id, envName)
	}
	return fmt.Sprintf("id=%s,env=%s", id, envName), nil
}

// ResolveSecretFile resolves an "ID=PATH" secret backed by a local file.
func ResolveSecretFile(spec string) (string, error) {
	id, path, err := parseSecretKV(spec)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("secret %s: empty file path", id)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("secret %s: %w", id, err)
	}
	return fmt.Sprintf("id=%s,src=%s", id, path), nil
}

// HasGitAuthTokenSecret reports whether any plain secret already carries a
// git auth token, in which case no GIT_AUTH_TOKEN secret is synthesized.
func HasGitAuthTokenSecret(secrets []string) bool {
	for _, s := range secrets {
		if strings.HasPrefix(s, gitAuthTokenID+"=") {
			return true
		}
	}
	return false
}

// redactSecret keeps only the key part of a malformed spec out of error text.
func redactSecret(spec string) string {
	if idx := strings.Index(spec, "="); idx > 0 {
		return spec[:idx] + "=***"
	}
	return "***"
}
