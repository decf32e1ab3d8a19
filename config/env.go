package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment. CI is detected from
// CI=true, everything else comes from ENV and defaults to development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch Environment(strings.ToLower(os.Getenv("ENV"))) {
	case Production:
		return Production
	case Test:
		return Test
	default:
		return Development
	}
}

// RequiresAIKey reports whether the AI endpoint must be configured to boot.
func (e Environment) RequiresAIKey() bool {
	return e == Production || e == Development
}

func (e Environment) IsProduction() bool {
	return e == Production
}
