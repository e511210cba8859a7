package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

// KeyVaultClient reads secrets from Azure Key Vault with an optional TTL cache.
type KeyVaultClient struct {
	client       *azsecrets.Client
	logger       *zap.Logger
	cacheTTL     time.Duration
	cacheEnabled bool

	mu    sync.Mutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// KeyVaultConfig holds configuration for the Key Vault client
type KeyVaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewKeyVaultClient authenticates with DefaultAzureCredential (environment,
// managed identity or Azure CLI) and binds to https://<name>.vault.azure.net/.
func NewKeyVaultClient(cfg *KeyVaultConfig, logger *zap.Logger) (*KeyVaultClient, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	logger.Info("Azure Key Vault client initialized",
		zap.String("vault_url", vaultURL),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
	)

	return &KeyVaultClient{
		client:       client,
		logger:       logger,
		cache:        make(map[string]cachedSecret),
		cacheTTL:     cacheTTL,
		cacheEnabled: cfg.CacheEnabled,
	}, nil
}

// GetSecret retrieves the latest version of a secret
func (k *KeyVaultClient) GetSecret(ctx context.Context, secretName string) (string, error) {
	if value, ok := k.cached(secretName); ok {
		return value, nil
	}

	resp, err := k.client.GetSecret(ctx, secretName, "", nil)
	if err != nil {
		k.logger.Error("Failed to get secret from Key Vault",
			zap.String("secret_name", secretName),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get secret '%s': %w", secretName, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", secretName)
	}

	if k.cacheEnabled {
		k.mu.Lock()
		k.cache[secretName] = cachedSecret{value: *resp.Value, expiresAt: time.Now().Add(k.cacheTTL)}
		k.mu.Unlock()
	}
	return *resp.Value, nil
}

func (k *KeyVaultClient) cached(secretName string) (string, bool) {
	if !k.cacheEnabled {
		return "", false
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, ok := k.cache[secretName]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(k.cache, secretName)
		return "", false
	}
	return entry.value, true
}

// ClearCache drops all cached secrets
func (k *KeyVaultClient) ClearCache() {
	k.mu.Lock()
	k.cache = make(map[string]cachedSecret)
	k.mu.Unlock()
}
