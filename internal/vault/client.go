package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/vault/api"

	"mytrader-platform/config"
)

// PlatformSecrets holds the deployment secrets kept in Vault instead of
// environment variables or config files.
type PlatformSecrets struct {
	JWTSecret  string `json:"jwt_secret"`
	DBPassword string `json:"db_password"`
}

// Client wraps the HashiCorp Vault client
type Client struct {
	client *api.Client
	config config.VaultConfig
	mu     sync.RWMutex
	cached *PlatformSecrets
}

// NewClient creates a new Vault client
func NewClient(cfg config.VaultConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{config: cfg}, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSEnabled && cfg.CACert != "" {
		tlsConfig := &api.TLSConfig{
			CACert: cfg.CACert,
		}
		if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(cfg.Token)

	return &Client{
		client: client,
		config: cfg,
	}, nil
}

// IsEnabled returns whether Vault is enabled
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// GetPlatformSecrets reads the platform secrets from Vault. The result is
// cached for the life of the process; call InvalidateCache after rotation.
func (c *Client) GetPlatformSecrets(ctx context.Context) (*PlatformSecrets, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("vault is disabled")
	}

	c.mu.RLock()
	if c.cached != nil {
		cached := *c.cached
		c.mu.RUnlock()
		return &cached, nil
	}
	c.mu.RUnlock()

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)

	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform secrets from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("platform secrets not found")
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid secret format")
	}

	secrets := &PlatformSecrets{
		JWTSecret:  getString(data, "jwt_secret"),
		DBPassword: getString(data, "db_password"),
	}

	c.mu.Lock()
	c.cached = secrets
	c.mu.Unlock()

	return secrets, nil
}

// StorePlatformSecrets writes the platform secrets to Vault, for bootstrap
// tooling.
func (c *Client) StorePlatformSecrets(ctx context.Context, secrets PlatformSecrets) error {
	if !c.config.Enabled {
		return fmt.Errorf("vault is disabled")
	}

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)

	secretData := map[string]interface{}{
		"data": map[string]interface{}{
			"jwt_secret":  secrets.JWTSecret,
			"db_password": secrets.DBPassword,
		},
	}

	if _, err := c.client.Logical().WriteWithContext(ctx, path, secretData); err != nil {
		return fmt.Errorf("failed to store platform secrets in vault: %w", err)
	}

	c.mu.Lock()
	c.cached = &secrets
	c.mu.Unlock()

	return nil
}

// InvalidateCache drops the cached secrets so the next read hits Vault.
func (c *Client) InvalidateCache() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

// Health checks the Vault connection
func (c *Client) Health(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	health, err := c.client.Sys().Health()
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}

	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}

	return nil
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
