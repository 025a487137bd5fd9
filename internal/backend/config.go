package backend

import (
	"fmt"

	"raseed/internal/config"
	"raseed/internal/passes/wallet"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.PassBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.PassBackend)
	}

	return Config{
		Type:     backendType,
		SeedFile: appConfig.PassSeedFile,
		IssuerID: appConfig.WalletIssuerID,
		Credentials: wallet.Credentials{
			JSON: appConfig.GoogleServiceAccountJSON,
			File: appConfig.GoogleServiceAccountFile,
		},
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	if c.Type == WalletBackend {
		if c.IssuerID == "" {
			return fmt.Errorf("issuer id is required for wallet backend")
		}
		if c.Credentials.JSON == "" && c.Credentials.File == "" {
			return fmt.Errorf("service account JSON or file is required for wallet backend")
		}
	}
	return nil
}

// GetBackendTypeStrings returns all valid backend type strings.
func GetBackendTypeStrings() []string {
	return []string{MemoryBackend.String(), WalletBackend.String()}
}
