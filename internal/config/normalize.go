package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEncoder(); err != nil {
		return err
	}
	c.normalizeFiles()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoder() error {
	c.Encoder.Binary = strings.TrimSpace(c.Encoder.Binary)
	if c.Encoder.Binary == "" {
		c.Encoder.Binary = defaultEncoderBinary
	}
	if value, ok := os.LookupEnv("DOWNCONV_CONCURRENCY"); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("DOWNCONV_CONCURRENCY: %w", err)
		}
		c.Encoder.Concurrency = parsed
	}
	if c.Encoder.Concurrency == 0 {
		c.Encoder.Concurrency = runtime.NumCPU()
	}
	c.Encoder.AbortPolicy = strings.ToLower(strings.TrimSpace(c.Encoder.AbortPolicy))
	if c.Encoder.AbortPolicy == "" {
		c.Encoder.AbortPolicy = defaultAbortPolicy
	}
	if c.Encoder.TerminateGraceSeconds == 0 {
		c.Encoder.TerminateGraceSeconds = defaultTerminateGraceSeconds
	}
	return nil
}

func (c *Config) normalizeFiles() {
	c.Files.LossyExtensions = normalizeExtensions(c.Files.LossyExtensions)
	c.Files.SceneExtensions = normalizeExtensions(c.Files.SceneExtensions)
	if strings.TrimSpace(c.Files.KeepPattern) == "" {
		c.Files.KeepPattern = defaultKeepPattern
	}
	c.keepPattern = nil
}

// normalizeExtensions lower-cases, dot-prefixes, and de-duplicates extensions.
func normalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, exists := seen[ext]; exists {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
