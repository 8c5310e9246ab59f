package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/querysmith/internal/logging"
	"github.com/ppiankov/querysmith/internal/model"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

const envPrefix = "QUERYSMITH"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "querysmith",
	Short: "querysmith - PubMed Boolean search strategies from research questions",
	Long: `querysmith turns a research question into a PubMed Boolean search strategy.

Two paths lead to the same query compiler:
  analyze  a free-text question is decomposed by a language model
  build    the researcher fills in population, intervention, outcome

Every concept is resolved against the NCBI E-utilities and combined with a
free-text [Title/Abstract] block, so a query can be pasted into PubMed as is.

querysmith writes search strategies. It does not run them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "querysmith %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.querysmith/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// QUERYSMITH_GENERATION_PRIMARY_PROVIDER overrides generation.primary.provider
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".querysmith"), nil
}

// setDefaults registers every key of cfg with v so AutomaticEnv can see keys
// that no config file mentions
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal defaults")
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return errors.Wrap(err, "unmarshal defaults")
	}
	setTree(v, "", tree)

	// omitempty keys never show up in the marshalled tree
	for _, key := range []string{
		"terminology.api_key",
		"terminology.email",
		"generation.primary.api_key",
		"generation.primary.base_url",
		"generation.secondary.api_key",
		"generation.secondary.base_url",
		"http.http_proxy",
		"http.https_proxy",
		"http.no_proxy",
	} {
		v.SetDefault(key, "")
	}
	return nil
}

func setTree(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setTree(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig resolves defaults, config file and environment into a Config
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "decode configuration"),
			"check the config file with 'querysmith config show'")
	}

	mode, err := model.ParsePrecisionMode(string(cfg.Query.Mode))
	if err != nil {
		return nil, err
	}
	cfg.Query.Mode = mode

	applyProviderEnv(&cfg.Generation.Primary)
	applyProviderEnv(&cfg.Generation.Secondary)
	if cfg.Terminology.APIKey == "" {
		cfg.Terminology.APIKey = os.Getenv("NCBI_API_KEY")
	}
	return cfg, nil
}

// applyProviderEnv fills credentials from the provider's conventional
// environment variables when the config leaves them empty
func applyProviderEnv(p *model.ProviderConfig) {
	switch strings.ToLower(p.Provider) {
	case "anthropic", "claude":
		if p.APIKey == "" {
			p.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "openai":
		if p.APIKey == "" {
			p.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "ollama":
		if p.BaseURL == "" {
			p.BaseURL = ollamaURL(os.Getenv("OLLAMA_BASE_URL"))
		}
	}
}

// ollamaURL points a bare Ollama address at its OpenAI-compatible endpoint
func ollamaURL(base string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	if base == "" || strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}

// setup loads the configuration and builds the command logger
func setup() (*model.Config, *zap.SugaredLogger, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Output.Verbose)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create logger")
	}
	return cfg, logger, nil
}

func parseMode(flag string, cfg *model.Config) (model.PrecisionMode, error) {
	if flag == "" {
		return cfg.Query.Mode, nil
	}
	return model.ParsePrecisionMode(flag)
}
