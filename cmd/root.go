package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hiregate"

	defaultPort        = 8000
	defaultCacheTTLSec = 300
	defaultMaxPool     = 10
	defaultRecentDays  = 7
)

type Config struct {
	UserAgent      string        `mapstructure:"user-agent"`
	APIKeyFile     string        `mapstructure:"api-key-file"`
	AccountKeyFile string        `mapstructure:"account-key-file"`
	SheetURL       string        `mapstructure:"sheet-url"`
	Cache          *CacheConfig  `mapstructure:"cache"`
	Server         *ServerConfig `mapstructure:"server"`
	Pool           *PoolConfig   `mapstructure:"pool"`
}

type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl-seconds"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeoutSec  int `mapstructure:"read-timeout-seconds"`
	WriteTimeoutSec int `mapstructure:"write-timeout-seconds"`
	ShutdownSec     int `mapstructure:"shutdown-seconds"`
}

// PoolConfig bounds candidate pools before enrichment. When a filtered pool
// exceeds MaxSize, only candidates updated within RecentDays are kept.
type PoolConfig struct {
	MaxSize    int `mapstructure:"max-size"`
	RecentDays int `mapstructure:"recent-days"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hiregate is a fuzzy lookup gateway for the Base Hiring API",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"api-key-file":     "HIREGATE_API_KEY_FILE",
		"account-key-file": "HIREGATE_ACCOUNT_KEY_FILE",
		"sheet-url":        "HIREGATE_SHEET_URL",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hiregate.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// A missing config file is fine, every setting has an env binding or a
	// default. A present but unparseable one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Cache == nil {
		config.Cache = &CacheConfig{}
	}
	if config.Cache.TTLSeconds <= 0 {
		config.Cache.TTLSeconds = defaultCacheTTLSec
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Server.Port <= 0 {
		config.Server.Port = defaultPort
	}
	if config.Pool == nil {
		config.Pool = &PoolConfig{MaxSize: defaultMaxPool, RecentDays: defaultRecentDays}
	}

	return config, nil
}
