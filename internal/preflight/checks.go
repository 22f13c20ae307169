package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"downconv/internal/config"
	"downconv/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadable verifies that a source directory exists and can be walked.
func CheckReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckEncoder reports whether the configured encoder binary resolves and,
// when it does, which version it reports.
func CheckEncoder(ctx context.Context, cfg *config.Config) Result {
	const name = "Encoder"

	status := deps.CheckBinaries(SystemRequirements(cfg))[0]
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	version, err := deps.SoxVersion(ctx, status.Resolved)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (version unknown)", status.Resolved)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (SoX %s)", status.Resolved, strings.TrimSpace(version))}
}

// SystemRequirements lists the binaries a conversion with cfg needs. The
// encoder comes first.
func SystemRequirements(cfg *config.Config) []deps.Requirement {
	return []deps.Requirement{deps.SoxRequirement(cfg.EncoderBinary())}
}
