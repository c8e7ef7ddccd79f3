package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrManifestMissing indicates the dependency manifest could not be found.
var ErrManifestMissing = errors.New("manifest not found")

// Requirement is a single entry from a dependency manifest.
type Requirement struct {
	Name       string // Package name
	Constraint string // Version constraint as written, e.g. "==1.2.3" (may be empty)
}

// String renders the requirement as it appeared in the manifest.
func (r Requirement) String() string {
	return r.Name + r.Constraint
}

// CheckManifest verifies the manifest exists and is a regular file.
// Returns ErrManifestMissing (wrapped) when it does not.
func CheckManifest(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrManifestMissing, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat manifest %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrManifestMissing, path)
	}
	return nil
}

// constraint operators in the order longest-first so ">=" wins over ">".
var constraintOps = []string{"===", "==", ">=", "<=", "~=", "!=", ">", "<"}

// ParseManifest reads a pip-style requirements manifest and returns its
// entries. Comments, blank lines, and option lines (-r, --index-url and
// friends) are skipped; inline comments and environment markers are trimmed.
func ParseManifest(path string) ([]Requirement, error) {
	if err := CheckManifest(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var reqs []Requirement
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		// Strip inline comments and environment markers.
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}

		reqs = append(reqs, splitRequirement(line))
	}

	return reqs, nil
}

// splitRequirement separates a requirement line into name and constraint.
func splitRequirement(line string) Requirement {
	for _, op := range constraintOps {
		if idx := strings.Index(line, op); idx > 0 {
			return Requirement{
				Name:       strings.TrimSpace(line[:idx]),
				Constraint: strings.TrimSpace(line[idx:]),
			}
		}
	}
	return Requirement{Name: line}
}
