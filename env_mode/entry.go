package env_mode

import (
	"os"
	"strings"
)

const ENV_MODE_KEY = "SQUASH_ENV"

type ENV_MODE string

const (
	DevMode  ENV_MODE = "development"
	ProMode  ENV_MODE = "production"
	TestMode ENV_MODE = "test"
)

func ParseEnv(env string) ENV_MODE {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

// Mode reads the current mode from SQUASH_ENV on every call so tests and
// callers can switch it with SetMode.
func Mode() ENV_MODE {
	return ParseEnv(os.Getenv(ENV_MODE_KEY))
}

// Suffixes returns the config file suffixes tried for mode, most general first.
func (m ENV_MODE) Suffixes() []string {
	switch m {
	case ProMode:
		return []string{"pro", "prod", "production"}
	case TestMode:
		return []string{"test"}
	default:
		return []string{"dev", "development"}
	}
}

func SetMode(mode ENV_MODE) {
	os.Setenv(ENV_MODE_KEY, string(mode))
}
