package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"framextract/internal/config"
	"framextract/internal/failures"
	"framextract/internal/logging"
	"framextract/internal/manifest"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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
			c.configErr = failures.Wrap(failures.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = failures.Wrap(failures.ErrConfiguration, "cli", "ensure directories", "", err)
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

// newLogger builds the run logger. Console records go to out so they never
// interleave with narration written to stdout.
func (c *commandContext) newLogger(out io.Writer) (*slog.Logger, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closer, err := logging.NewFromConfig(cfg, out)
	if err != nil {
		return nil, nil, failures.Wrap(failures.ErrConfiguration, "cli", "build logger", "", err)
	}
	return logger, closer, nil
}

// openManifest returns nil when the manifest is disabled.
func (c *commandContext) openManifest() (*manifest.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Manifest.Enabled {
		return nil, nil
	}
	store, err := manifest.Open(cfg.Manifest.Path)
	if err != nil {
		return nil, fmt.Errorf("open run manifest: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
