// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tubeprint CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tubeprint/internal/secrets"
	"github.com/pdiddy/tubeprint/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, the secret value for key
// otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the tubeprint CLI.
var rootCmd = &cobra.Command{
	Use:   "tubeprint",
	Short: "Turn YouTube captions into readable transcripts and PDFs",
	Long: `tubeprint fetches caption tracks from YouTube videos, reflows them into
readable paragraphs, and exports them as plain text, subtitles, or typeset
PDF documents.

Fetched transcripts are cached in a local SQLite database so repeat exports
and full-text search across past videos need no network access.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tubeprint.yaml or ~/.config/tubeprint/config.yaml)")
	rootCmd.PersistentFlags().String("cache-dir", "", "transcript cache directory (default: ~/.cache/tubeprint)")
	rootCmd.PersistentFlags().Duration("cache-max-age", 0, "how long cached transcripts stay fresh (default 720h)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tubeprint")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tubeprint"))
		}
	}

	viper.SetEnvPrefix("TUBEPRINT")
	viper.AutomaticEnv()

	viper.SetDefault("cache.max_age", 30*24*time.Hour)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.workers", 2)
	viper.SetDefault("server.job_ttl", time.Hour)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// cacheConfig resolves the cache location: flag, then config file,
// then ~/.cache/tubeprint.
func cacheConfig(cmd *cobra.Command) types.CacheConfig {
	dir, _ := cmd.Flags().GetString("cache-dir")
	if dir == "" {
		dir = viper.GetString("cache.dir")
	}
	if dir == "" {
		if home, err := os.UserCacheDir(); err == nil {
			dir = filepath.Join(home, "tubeprint")
		}
	}

	maxAge, _ := cmd.Flags().GetDuration("cache-max-age")
	if maxAge == 0 {
		maxAge = viper.GetDuration("cache.max_age")
	}

	return types.CacheConfig{Dir: dir, MaxAge: maxAge}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
