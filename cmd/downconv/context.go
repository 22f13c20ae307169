package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"downconv/internal/config"
)

type commandContext struct {
	configFlag      *string
	concurrencyFlag *int
	logLevelFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, concurrencyFlag *int, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:      configFlag,
		concurrencyFlag: concurrencyFlag,
		logLevelFlag:    logLevelFlag,
	}
}

// ensureConfig loads the configuration once and applies command-line overrides.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
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

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	changed := false
	if c.concurrencyFlag != nil && *c.concurrencyFlag != 0 {
		cfg.Encoder.Concurrency = *c.concurrencyFlag
		changed = true
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		changed = true
	}
	if !changed {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("command-line override: %w", err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
