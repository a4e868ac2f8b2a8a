// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newFetchCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addFetchFlags(cmd)
	return cmd
}

func TestFetchConfigAcceptsAutoByDefault(t *testing.T) {
	cmd := newFetchCommand(t)

	cfg := fetchConfig(cmd)
	if cfg.ManualOnly {
		t.Error("ManualOnly = true by default, want auto tracks accepted")
	}

	if err := cmd.Flags().Set("no-auto", "true"); err != nil {
		t.Fatalf("setting flag: %v", err)
	}
	if cfg := fetchConfig(cmd); !cfg.ManualOnly {
		t.Error("--no-auto did not set ManualOnly")
	}
}

func TestFetchConfigReadsViperKeys(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("fetch.languages", []string{"de", "en"})
	viper.Set("fetch.sources", []string{"watchpage"})
	viper.Set("fetch.timeout", "45s")
	viper.Set("fetch.requests_per_second", 0.5)
	viper.Set("fetch.ytdlp_path", "/opt/yt-dlp")
	viper.Set("fetch.user_agent", "tubeprint-test/1.0")
	viper.Set("fetch.manual_only", true)

	cfg := fetchConfig(newFetchCommand(t))

	if len(cfg.Languages) != 2 || cfg.Languages[0] != "de" {
		t.Errorf("Languages = %v", cfg.Languages)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "watchpage" {
		t.Errorf("Sources = %v", cfg.Sources)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.RequestsPerSecond != 0.5 {
		t.Errorf("RequestsPerSecond = %v", cfg.RequestsPerSecond)
	}
	if cfg.YtDlpPath != "/opt/yt-dlp" {
		t.Errorf("YtDlpPath = %q", cfg.YtDlpPath)
	}
	if cfg.UserAgent != "tubeprint-test/1.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if !cfg.ManualOnly {
		t.Error("fetch.manual_only not honored")
	}
}

func TestFetchConfigFlagsWinOverViper(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("fetch.languages", []string{"de"})

	cmd := newFetchCommand(t)
	if err := cmd.Flags().Set("languages", "en"); err != nil {
		t.Fatalf("setting flag: %v", err)
	}

	cfg := fetchConfig(cmd)
	if len(cfg.Languages) != 1 || cfg.Languages[0] != "en" {
		t.Errorf("Languages = %v, want flag value to win", cfg.Languages)
	}
}

func TestFetchConfigSecretFallbacks(t *testing.T) {
	old := loadedSecrets
	t.Cleanup(func() { loadedSecrets = old })
	loadedSecrets = map[string]string{
		"cookie":            "SID=abc",
		"innertube-api-key": "secret-key",
		"proxy-url":         "http://proxy.internal:3128",
	}

	cfg := fetchConfig(newFetchCommand(t))
	if cfg.CookieHeader != "SID=abc" {
		t.Errorf("CookieHeader = %q", cfg.CookieHeader)
	}
	if cfg.InnertubeAPIKey != "secret-key" {
		t.Errorf("InnertubeAPIKey = %q", cfg.InnertubeAPIKey)
	}
	if cfg.ProxyURL != "http://proxy.internal:3128" {
		t.Errorf("ProxyURL = %q", cfg.ProxyURL)
	}

	cmd := newFetchCommand(t)
	if err := cmd.Flags().Set("cookie", "SID=flag"); err != nil {
		t.Fatalf("setting flag: %v", err)
	}
	if cfg := fetchConfig(cmd); cfg.CookieHeader != "SID=flag" {
		t.Errorf("CookieHeader = %q, want flag value to win", cfg.CookieHeader)
	}
}
