package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gexatlas/gexatlas/internal/query"
)

// configKeys are the settings this tool reads, with the effective default
// shown when nothing is configured.
var configKeys = map[string]struct {
	description string
	defaultFor  func() string
	validate    func(string) error
}{
	"data_dir": {
		description: "directory scanned for dataset .duckdb files",
		defaultFor:  func() string { return dataDir() },
		validate:    func(string) error { return nil },
	},
	"cache_size": {
		description: "query memoization capacity (entries)",
		defaultFor:  func() string { return strconv.Itoa(query.DefaultCacheSize) },
		validate: func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("cache_size must be a positive integer, got %q", v)
			}
			return nil
		},
	},
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gexatlas configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.gexatlas.yaml.",
		Example: `  gexatlas config                          # effective settings and discovered datasets
  gexatlas config set data_dir /data/atlas
  gexatlas config get data_dir`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get the effective value of a configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

// runConfigShow prints every known key with its effective value, then what
// the current data directory actually resolves to.
func runConfigShow() error {
	for _, key := range sortedConfigKeys() {
		spec := configKeys[key]
		value, source := effectiveValue(key)
		fmt.Printf("%s = %s\t(%s; %s)\n", key, value, source, spec.description)
	}

	if settings := viper.AllSettings(); len(settings) > 0 {
		out, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		fmt.Printf("\nConfigured overrides (%s):\n%s", viper.ConfigFileUsed(), out)
	}

	dir := dataDir()
	stems, err := discoverStems(dir)
	if err != nil {
		return err
	}
	if len(stems) == 0 {
		fmt.Printf("\nNo dataset files in %s\n", dir)
		return nil
	}
	fmt.Printf("\nDatasets discoverable in %s: %s\n", dir, strings.Join(stems, ", "))
	return nil
}

func runConfigSet(key, value string) error {
	spec, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown key %q (known keys: %s)", key, strings.Join(sortedConfigKeys(), ", "))
	}
	if err := spec.validate(value); err != nil {
		return err
	}
	viper.Set(key, value)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".gexatlas.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	if _, ok := configKeys[key]; !ok {
		return fmt.Errorf("unknown key %q (known keys: %s)", key, strings.Join(sortedConfigKeys(), ", "))
	}
	value, source := effectiveValue(key)
	fmt.Printf("%s\t(%s)\n", value, source)
	return nil
}

// effectiveValue resolves a key the way the tool itself does: configured
// value if set, built-in default otherwise.
func effectiveValue(key string) (value, source string) {
	if viper.IsSet(key) {
		return viper.GetString(key), "configured"
	}
	return configKeys[key].defaultFor(), "default"
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
