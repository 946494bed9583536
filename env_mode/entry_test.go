package env_mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	cases := map[string]ENV_MODE{
		"":            DevMode,
		"dev":         DevMode,
		" PROD ":      ProMode,
		"production":  ProMode,
		"testing":     TestMode,
		"staging-ish": DevMode,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseEnv(in), in)
	}
}

func TestModeFollowsEnvironment(t *testing.T) {
	t.Setenv(ENV_MODE_KEY, "test")
	assert.Equal(t, TestMode, Mode())
	assert.Equal(t, []string{"test"}, Mode().Suffixes())

	t.Setenv(ENV_MODE_KEY, "pro")
	assert.Equal(t, ProMode, Mode())
}
