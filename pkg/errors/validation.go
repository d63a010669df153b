package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// nameRegex matches the identifier style used by the topology and
// building-unit databases: a letter or digit followed by letters, digits,
// underscores, or hyphens.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// validateName applies the shared safety rules for database identifiers.
func validateName(name string, code Code, what string) error {
	if name == "" {
		return New(code, "%s name cannot be empty", what)
	}
	if len(name) > 256 {
		return New(code, "%s name too long (max 256 characters)", what)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(code, "%s name contains invalid control characters", what)
		}
	}
	if !nameRegex.MatchString(name) {
		return New(code, "invalid %s name: %q", what, name)
	}
	return nil
}

// ValidateTopologyName validates a topology name for safety and
// correctness before it is used for lookups or cache keys.
func ValidateTopologyName(name string) error {
	return validateName(name, ErrCodeInvalidTopology, "topology")
}

// ValidateUnitName validates a building-unit name for safety and
// correctness before it is used for lookups or cache keys.
func ValidateUnitName(name string) error {
	return validateName(name, ErrCodeInvalidUnit, "building unit")
}

// ValidateBlueprintFilename validates a blueprint filename.
// It ensures the filename is a simple basename with a .toml extension.
func ValidateBlueprintFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidBlueprint, "blueprint filename cannot be empty")
	}
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidBlueprint, "blueprint filename cannot contain path separators")
	}
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidBlueprint, "blueprint filename cannot be a hidden file")
	}
	if !strings.HasSuffix(filename, ".toml") {
		return New(ErrCodeInvalidBlueprint, "blueprint filename must end in .toml")
	}
	return nil
}

// ValidateRefineBudget validates a refinement iteration budget.
// Zero is allowed and means "use the default".
func ValidateRefineBudget(iterations int) error {
	if iterations < 0 {
		return New(ErrCodeInvalidInput, "refinement budget cannot be negative")
	}
	const maxIterations = 1_000_000
	if iterations > maxIterations {
		return New(ErrCodeInvalidInput, "refinement budget too large (max %d)", maxIterations)
	}
	return nil
}

// ValidateWeight validates a candidate draw weight.
// Zero is allowed and means "use the uniform default".
func ValidateWeight(w float64) error {
	if w < 0 {
		return New(ErrCodeInvalidInput, "candidate weight cannot be negative")
	}
	return nil
}
