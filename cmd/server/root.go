package main

import (
	"fmt"
	"log"

	"parttime-match/internal/config"
	"parttime-match/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const appName = "parttime-match"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          appName,
		Short:        "parttime-match scores part-time job seekers against shop posts and serves the ranked results",
		SilenceUsage: true,
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file; environment variables override it")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		log.Fatalf("binding debug flag: %v", err)
	}
	if err := viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json")); err != nil {
		log.Fatalf("binding json flag: %v", err)
	}
}

func initConfig() {
	// .env is a development convenience; a missing file is fine.
	_ = godotenv.Load()

	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("reading config %s: %v", cfgFile, err)
	}
}

// setup loads configuration and builds the logger every subcommand needs.
func setup() (config.Config, *zap.Logger, error) {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		lg.Error("loading config", zap.Error(err))
		return config.Config{}, nil, err
	}
	return cfg, lg, nil
}
