package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external binary a conversion cannot run without.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status is a Requirement after PATH lookup. Resolved holds the absolute
// path when the binary was found.
type Status struct {
	Requirement
	Resolved  string
	Available bool
	Detail    string
}

// CheckBinaries resolves each requirement's command on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		results = append(results, resolve(req))
	}
	return results
}

func resolve(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Resolved = path
	status.Available = true
	return status
}

// Missing filters statuses down to the unavailable ones.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available {
			out = append(out, s)
		}
	}
	return out
}

// Describe renders missing statuses as one line, e.g.
// `SoX: binary "sox" not found (Required for 24-bit to 16-bit conversion)`.
func Describe(statuses []Status) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		part := s.Name + ": " + s.Detail
		if s.Description != "" {
			part += " (" + s.Description + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
