package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/intermix/internal/config"
	"github.com/zjrosen/intermix/internal/log"
)

const localConfigPath = ".intermix/config.yaml"

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "intermix",
	Short: "Run programs on a pseudo-terminal and model their screen",
	Long: `intermix runs a command on a pseudo-terminal, decodes its output into
terminal capabilities and applies them to an in-memory screen model.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return cfgErr
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .intermix/config.yaml, then ~/.config/intermix/config.yaml)")
	rootCmd.PersistentFlags().String("log-file", "", "append diagnostics to this file")
	rootCmd.PersistentFlags().String("log-level", "", "minimum log level: debug, info, warn or error")

	_ = viper.BindPFlag("log.path", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfg, cfgErr = loadConfig(viper.GetViper(), cfgFile)
}

// loadConfig reads the config file into v and decodes it.
// Lookup order without an explicit file:
// 1. .intermix/config.yaml (current directory)
// 2. ~/.config/intermix/config.yaml (user config)
// A missing config file is not an error; defaults and INTERMIX_* apply.
func loadConfig(v *viper.Viper, file string) (config.Config, error) {
	config.SetDefaults(v)
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	switch {
	case file != "":
		v.SetConfigFile(file)
	case fileExists(localConfigPath):
		v.SetConfigFile(localConfigPath)
	default:
		v.AddConfigPath(filepath.Dir(config.DefaultConfigPath()))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}
	return config.Load(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// openLogger builds the diagnostics sink for a command. Without a log path
// diagnostics are dropped.
func openLogger(c config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	if c.Log.Path == "" {
		l := log.New(log.Options{MinLevel: level})
		return l, func() {}, nil
	}
	return log.Open(c.Log.Path, log.Options{MinLevel: level})
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
