package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tauria/tauria-tsgen/constants/lipgloss"
)

// Config represents the structure of the configuration file
type Config struct {
	Version     string `mapstructure:"version"`
	Theme       string `mapstructure:"theme"`
	InputPath   string `mapstructure:"input_path"`
	OutputPath  string `mapstructure:"output_path"`
	MockAPI     bool   `mapstructure:"mock_api"`
	DryRun      bool   `mapstructure:"dry_run"`
	EnableCache bool   `mapstructure:"enable_cache"`
	Workers     int    `mapstructure:"workers"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:     "0.3.0",
	Theme:       "dracula",
	InputPath:   "src-tauri/src",
	OutputPath:  "src/tauria",
	MockAPI:     false,
	DryRun:      false,
	EnableCache: false,
	Workers:     0, // 0 means one worker per CPU
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment
// variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	} else {
		viper.SetConfigName("tsgen-config")
		viper.AddConfigPath(cwd)

		// Support both YAML and JSON formats
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			_ = viper.ReadInConfig() // no config file: defaults apply
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("input_path", DefaultConfig.InputPath)
	viper.SetDefault("output_path", DefaultConfig.OutputPath)
	viper.SetDefault("mock_api", DefaultConfig.MockAPI)
	viper.SetDefault("dry_run", DefaultConfig.DryRun)
	viper.SetDefault("enable_cache", DefaultConfig.EnableCache)
	viper.SetDefault("workers", DefaultConfig.Workers)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("input_path", "INPUT_PATH")
	_ = viper.BindEnv("output_path", "OUTPUT_PATH")
	_ = viper.BindEnv("mock_api", "MOCK_API")
	_ = viper.BindEnv("enable_cache", "ENABLE_CACHE")
	_ = viper.BindEnv("workers", "WORKERS")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("input_path", rootCmd.PersistentFlags().Lookup("input"))
	_ = viper.BindPFlag("output_path", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("mock_api", rootCmd.PersistentFlags().Lookup("mock-api"))
	_ = viper.BindPFlag("dry_run", rootCmd.PersistentFlags().Lookup("dry-run"))
	_ = viper.BindPFlag("enable_cache", rootCmd.PersistentFlags().Lookup("enable-cache"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().StringP("input", "i", DefaultConfig.InputPath, "Path of the Tauri backend source tree to analyze.")
	rootCmd.PersistentFlags().StringP("output", "o", DefaultConfig.OutputPath, "Directory the generated TypeScript artifacts are written to.")
	rootCmd.PersistentFlags().Bool("mock-api", DefaultConfig.MockAPI, "Also generate mock implementations of every command module.")
	rootCmd.PersistentFlags().Bool("dry-run", DefaultConfig.DryRun, "Render everything and print it to the terminal without writing files.")
	rootCmd.PersistentFlags().Bool("enable-cache", DefaultConfig.EnableCache, "Enable the on-disk parse cache for faster repeated runs.")
	rootCmd.PersistentFlags().Int("workers", DefaultConfig.Workers, "Number of parse workers (0 means one per CPU).")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Syntax highlighting theme for the dry-run preview (e.g. 'dracula', 'github').")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}
