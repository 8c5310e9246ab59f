package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/querysmith/internal/model"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	require.NoError(t, setDefaults(v, model.DefaultConfig()))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("NCBI_API_KEY", "")

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	def := model.DefaultConfig()
	assert.Equal(t, def.Terminology, cfg.Terminology)
	assert.Equal(t, def.Generation.Backoff, cfg.Generation.Backoff)
	assert.Equal(t, 2, cfg.Generation.PrimaryAttempts)
	assert.Equal(t, model.ModeSensitive, cfg.Query.Mode)
	assert.Equal(t, 3, cfg.Exemplars.K)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("QUERYSMITH_QUERY_MODE", "specific")
	t.Setenv("QUERYSMITH_GENERATION_BACKOFF", "500ms")
	t.Setenv("QUERYSMITH_GENERATION_PRIMARY_PROVIDER", "openai")
	t.Setenv("QUERYSMITH_EXEMPLARS_K", "5")
	t.Setenv("OPENAI_API_KEY", "sk-test-key")

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, model.ModeSpecific, cfg.Query.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Generation.Backoff)
	assert.Equal(t, "openai", cfg.Generation.Primary.Provider)
	assert.Equal(t, "sk-test-key", cfg.Generation.Primary.APIKey)
	assert.Equal(t, 5, cfg.Exemplars.K)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generation:
  primary:
    provider: ollama
    model: llama3.1:8b
  secondary:
    provider: ""
query:
  mode: balanced
`), 0o600))
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Generation.Primary.Provider)
	assert.Equal(t, "llama3.1:8b", cfg.Generation.Primary.Model)
	assert.Equal(t, "http://gpu-box:11434/v1", cfg.Generation.Primary.BaseURL)
	assert.Empty(t, cfg.Generation.Secondary.Provider)
	assert.Equal(t, model.ModeBalanced, cfg.Query.Mode)
	// untouched keys keep their defaults
	assert.Equal(t, 10*time.Second, cfg.Terminology.Timeout)
}

func TestLoadConfig_BadMode(t *testing.T) {
	t.Setenv("QUERYSMITH_QUERY_MODE", "exhaustive")

	_, err := loadConfig(newTestViper(t))
	require.Error(t, err)
}

func TestOllamaURL(t *testing.T) {
	tests := map[string]string{
		"":                          "",
		"http://localhost:11434":    "http://localhost:11434/v1",
		"http://localhost:11434/":   "http://localhost:11434/v1",
		"http://localhost:11434/v1": "http://localhost:11434/v1",
	}
	for in, want := range tests {
		assert.Equal(t, want, ollamaURL(in), "input %q", in)
	}
}

func TestParseMode(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Query.Mode = model.ModeBalanced

	m, err := parseMode("", cfg)
	require.NoError(t, err)
	assert.Equal(t, model.ModeBalanced, m)

	m, err = parseMode("Specific", cfg)
	require.NoError(t, err)
	assert.Equal(t, model.ModeSpecific, m)

	_, err = parseMode("loose", cfg)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Malaria in children?", "malaria-in-children"},
		{"a/b\\c:d", "a_b_c_d"},
		{"  ", "question"},
		{"Quel est l'impact ?", "quel-est-limpact"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}

	long := sanitizeFilename(strings.Repeat("éducation ", 20))
	assert.LessOrEqual(t, len([]rune(long)), 60)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "****", mask("short"))
	assert.Equal(t, "sk-a****wxyz", mask("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestShowConfig_MasksKeys(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Generation.Primary.APIKey = "sk-ant-secret-value-1234"

	var buf bytes.Buffer
	require.NoError(t, showConfig(&buf, cfg))

	out := buf.String()
	assert.NotContains(t, out, "sk-ant-secret-value-1234")
	assert.Contains(t, out, "sk-a****1234")
	assert.Contains(t, out, "esearch.fcgi")
	// the caller's config is untouched
	assert.Equal(t, "sk-ant-secret-value-1234", cfg.Generation.Primary.APIKey)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, writeDefaultConfig(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Generation.Primary.Model, cfg.Generation.Primary.Model)
	assert.Equal(t, 3*time.Second, cfg.Generation.Backoff)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestExamplesCommand(t *testing.T) {
	var buf bytes.Buffer
	examplesCmd.SetOut(&buf)
	t.Cleanup(func() { examplesCmd.SetOut(nil) })

	require.NoError(t, runExamples(examplesCmd, []string{
		"Connaissances des agents de santé sur le paludisme au Bénin",
	}))

	out := buf.String()
	assert.Contains(t, out, "Tags: ")
	assert.Contains(t, out, "M-KAP")
	assert.Contains(t, out, "structure")
	// the null-reformulation exemplar is always shown for structure
	assert.Contains(t, out, "  J ")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "querysmith "+Version+"\n", buf.String())
}
