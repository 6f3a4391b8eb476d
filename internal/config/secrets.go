package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrMissingCredential is matched by a ConfigurationError raised for an absent API key.
var ErrMissingCredential = errors.New("missing API credential")

// ConfigurationError is fatal to the session: it carries a message the
// operator can act on.
type ConfigurationError struct {
	Setting     string
	Remediation string
	Err         error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ResolveAPIKey returns the credential for the configured advisory provider.
// Bedrock authenticates through the AWS credential chain and needs no key.
func ResolveAPIKey(adv AdvisoryConfig, variant VariantConfig) (string, error) {
	if adv.Provider == ProviderBedrock {
		return "", nil
	}

	if variant.UseSecretStore {
		key, err := readSecret(adv.SecretsFile, adv.SecretKey)
		if err != nil {
			return "", &ConfigurationError{
				Setting:     adv.SecretKey,
				Remediation: fmt.Sprintf("add %s to %s, e.g. %s = \"sk-...\"", adv.SecretKey, adv.SecretsFile, adv.SecretKey),
				Err:         err,
			}
		}
		return key, nil
	}

	key := strings.TrimSpace(os.Getenv(adv.APIKeyEnv))
	if key == "" {
		return "", &ConfigurationError{
			Setting:     adv.APIKeyEnv,
			Remediation: fmt.Sprintf("export %s=<your key> (or put it in .env), or disable advice with ADVISORY_ENABLED=false", adv.APIKeyEnv),
			Err:         ErrMissingCredential,
		}
	}
	return key, nil
}

// readSecret looks up key in a TOML secrets file. Dotted keys address tables,
// so "openai.api_key" reads [openai] api_key.
func readSecret(path, key string) (string, error) {
	var secrets map[string]interface{}
	if _, err := toml.DecodeFile(path, &secrets); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("secrets file %s not found: %w", path, ErrMissingCredential)
		}
		return "", fmt.Errorf("parse secrets file %s: %w", path, err)
	}

	var node interface{} = secrets
	for _, part := range strings.Split(key, ".") {
		table, ok := node.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("%s in %s: %w", key, path, ErrMissingCredential)
		}
		node = table[part]
	}

	value, ok := node.(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s in %s: %w", key, path, ErrMissingCredential)
	}
	return strings.TrimSpace(value), nil
}
