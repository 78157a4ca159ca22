package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"frame/internal/api"
	"frame/internal/apikey"
	"frame/internal/bootstrap"
	"frame/internal/config"
	"frame/internal/localstore"
	"frame/internal/logging"
	"frame/internal/services/backend"
)

type commandContext struct {
	configFlag *string
	apiFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, apiFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiFlag:    apiFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// apiClient returns a client for the daemon, preferring --api over the
// configured bind address.
func (c *commandContext) apiClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	bind := cfg.Paths.APIBind
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		bind = *c.apiFlag
	}
	client, err := api.NewClient(bind, cfg.Paths.APIToken)
	if err != nil {
		return nil, fmt.Errorf("daemon api address: %w", err)
	}
	if client == nil {
		return nil, api.ErrAPIUnavailable
	}
	return client, nil
}

func (c *commandContext) openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return bootstrap.Open(ctx, cfg, logger)
}

func (c *commandContext) withStore(fn func(*localstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := localstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) backendClient() (*backend.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return backend.New(cfg.Backend.BaseURL, config.Seconds(cfg.Backend.TimeoutSeconds, 10*time.Minute))
}

// withAPIKeys opens the local store and an API key manager bound to the
// configured backend.
func (c *commandContext) withAPIKeys(fn func(*apikey.Manager, *backend.Client) error) error {
	client, err := c.backendClient()
	if err != nil {
		return err
	}
	return c.withStore(func(store *localstore.Store) error {
		return fn(apikey.NewManager(store, client), client)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
