package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateFiles(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.Concurrency < 1 {
		return errors.New("encoder.concurrency must be positive")
	}
	switch c.Encoder.AbortPolicy {
	case AbortTerminate, AbortWait:
	default:
		return fmt.Errorf("encoder.abort_policy: unsupported value %q (use %q or %q)", c.Encoder.AbortPolicy, AbortTerminate, AbortWait)
	}
	if c.Encoder.TerminateGraceSeconds < 0 {
		return errors.New("encoder.terminate_grace_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateFiles() error {
	if len(c.Files.LossyExtensions) == 0 {
		return errors.New("files.lossy_extensions must not be empty")
	}
	compiled, err := regexp.Compile(c.Files.KeepPattern)
	if err != nil {
		return fmt.Errorf("files.keep_pattern: %w", err)
	}
	c.keepPattern = compiled
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
