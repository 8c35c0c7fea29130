// Package main provides the gexatlas command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gexatlas/gexatlas/internal/index"
	"github.com/gexatlas/gexatlas/internal/query"
	"github.com/gexatlas/gexatlas/internal/registry"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagDataDir string
	flagVerbose bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "gexatlas",
		Short:   "Index, query, and consolidate gene-expression datasets",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Long: `gexatlas indexes annotated expression matrices, answers gene-expression
queries by gene, donor, and tissue, and consolidates datasets with
partially overlapping gene sets into one sparse matrix.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory holding dataset .duckdb files (default: ~/.gexatlas)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log progress to stderr")

	root.AddCommand(newDatasetsCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newMatrixCmd())
	root.AddCommand(newConsolidateCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig wires viper: flags, then GEXATLAS_* env, then ~/.gexatlas.yaml.
func initConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix("GEXATLAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlag("data_dir", cmd.Flags().Lookup("data-dir")); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".gexatlas")
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}
	return nil
}

// dataDir resolves the dataset directory from flag, env, config, or default.
func dataDir() string {
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".gexatlas")
}

// newLogger returns a development logger when verbose, a Nop otherwise.
func newLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newEngine builds the registry and query engine every subcommand runs on.
func newEngine() (*query.Engine, *registry.Registry, *zap.Logger) {
	logger := newLogger()
	reg := registry.New(dataDir(), index.DefaultConfig())
	reg.SetLogger(logger)
	eng := query.New(reg)
	eng.SetLogger(logger)
	if size := viper.GetInt("cache_size"); size > 0 {
		if err := eng.SetCacheSize(size); err != nil {
			logger.Warn("ignoring cache_size", zap.Error(err))
		}
	}
	return eng, reg, logger
}
