// Package secrets resolves credentials such as the Mongo connection string and
// the Gemini API key.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when no source yields a value.
var ErrNotConfigured = errors.New("secret is not configured")

// Source lists the places a secret may come from. Precedence is File, then
// Env, then Value.
type Source struct {
	Name  string
	Value string
	File  string
	// Env names an environment variable holding the secret.
	Env string
}

// Load returns the trimmed secret from the first configured place.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	return "", fmt.Errorf("%s: %w", name, ErrNotConfigured)
}
