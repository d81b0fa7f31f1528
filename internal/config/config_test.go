package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lscript/internal/provider"
)

func expectedRunConfig() Config {
	return Config{
		Provider: provider.TwoCaptcha,
		Credentials: map[provider.Kind]provider.Credentials{
			provider.TwoCaptcha:     {"token": "2cap-key"},
			provider.DeathByCaptcha: {"user": "bot", "pass": "secret"},
		},
		Timeout:            90 * time.Second,
		BypassBalanceCheck: true,
	}
}

func TestLoad_AllFormatsAgree(t *testing.T) {
	for _, name := range []string{"run.cue", "run.yaml", "run.hcl"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, expectedRunConfig(), cfg)
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(`provider = "Static"`), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestParseCUE_RejectsUnknownField(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "unknown_field.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries")
}

func TestParseCUE_Defaults(t *testing.T) {
	cfg, err := ParseCUE([]byte(`credentials: Static: token: "x"`), "min.cue")
	require.NoError(t, err)

	assert.Equal(t, provider.Static, cfg.Provider)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.False(t, cfg.BypassBalanceCheck)
	assert.Equal(t, "x", cfg.Credentials[provider.Static].Get("token"))
}

func TestParseYAML_RejectsUnknownField(t *testing.T) {
	_, err := ParseYAML([]byte("provider: Static\nretries: 3\n"))
	assert.ErrorContains(t, err, "retries")
}

func TestParseYAML_Empty(t *testing.T) {
	cfg, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseYAML_BadTimeout(t *testing.T) {
	_, err := ParseYAML([]byte("timeout: soon\n"))
	assert.ErrorContains(t, err, "invalid timeout")
}

func TestParseHCL_Invalid(t *testing.T) {
	_, err := ParseHCL([]byte(`provider = `), "bad.hcl")
	assert.Error(t, err)
}

func TestResolve_CanonicalisesKinds(t *testing.T) {
	cfg := Config{
		Provider:    "twocaptcha",
		Credentials: map[provider.Kind]provider.Credentials{"TWOCAPTCHA": {"token": "k"}},
	}

	got, err := cfg.Resolve(provider.DefaultRegistry())
	require.NoError(t, err)
	assert.Equal(t, provider.TwoCaptcha, got.Provider)
	assert.Equal(t, "k", got.CredentialsFor(provider.TwoCaptcha).Get("token"))
	assert.Equal(t, DefaultTimeout, got.Timeout)
}

func TestResolve_UnknownKind(t *testing.T) {
	_, err := Config{Provider: "Nope"}.Resolve(provider.DefaultRegistry())
	assert.True(t, provider.IsConfigurationError(err))
}

func TestResolve_NegativeTimeout(t *testing.T) {
	_, err := Config{Provider: provider.Static, Timeout: -time.Second}.Resolve(provider.DefaultRegistry())
	assert.True(t, provider.IsConfigurationError(err))
}

func TestClone_Detached(t *testing.T) {
	cfg := expectedRunConfig()
	clone := cfg.Clone()
	clone.Credentials[provider.TwoCaptcha]["token"] = "changed"

	assert.Equal(t, "2cap-key", cfg.Credentials[provider.TwoCaptcha].Get("token"))
}
