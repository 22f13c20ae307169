package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

var soxVersionPattern = regexp.MustCompile(`v(\d+\.\d+(?:\.\d+)?)`)

// SoxRequirement describes the encoder binary used for resampling and dithering.
func SoxRequirement(binary string) Requirement {
	return Requirement{
		Name:        "SoX",
		Command:     binary,
		Description: "Required for 24-bit to 16-bit conversion",
	}
}

// SoxVersion runs `<binary> --version` and extracts the version number.
func SoxVersion(ctx context.Context, binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "sox"
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(checkCtx, binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("sox version: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return ParseSoxVersion(string(output)), nil
}

// ParseSoxVersion extracts the version from `sox --version` output, or returns
// the trimmed output when no version number is present.
func ParseSoxVersion(output string) string {
	if match := soxVersionPattern.FindStringSubmatch(output); len(match) == 2 {
		return match[1]
	}
	return strings.TrimSpace(output)
}
