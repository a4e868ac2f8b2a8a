// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tubeprint/internal/server"
	"github.com/pdiddy/tubeprint/internal/store"
	"github.com/pdiddy/tubeprint/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP export service",
	Long: `Serve starts an HTTP service exposing the export pipeline as
asynchronous jobs: POST a video URL, poll job status, then download
the finished PDF. Finished jobs expire after a TTL.`,
	RunE: runServe,
}

func init() {
	addFetchFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Int("workers", 0, "concurrent export workers (default 2)")
	serveCmd.Flags().Duration("job-ttl", 0, "how long finished jobs are kept (default 1h)")
	serveCmd.Flags().String("work-dir", "", "directory for per-job output files (default: system temp)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := types.PipelineConfig{
		Fetch: fetchConfig(cmd),
		Format: types.FormatConfig{
			WrapWidth:      viper.GetInt("format.wrap_width"),
			ParagraphGap:   viper.GetDuration("format.paragraph_gap"),
			StripSoundTags: viper.GetBool("format.strip_sound_tags"),
		},
		PDF: types.PDFConfig{
			Page:       types.PageSize(viper.GetString("pdf.page")),
			MarginMM:   viper.GetFloat64("pdf.margin_mm"),
			FontFamily: viper.GetString("pdf.font_family"),
			BodySize:   viper.GetFloat64("pdf.body_size"),
		},
		Cache:  cacheConfig(cmd),
		Server: serverConfig(cmd),
	}

	var cache *store.Store
	if cfg.Cache.Dir != "" {
		s, err := store.Open(cfg.Cache)
		if err != nil {
			log.WithError(err).Warn("cache disabled")
		} else {
			cache = s
			defer cache.Close()
		}
	}

	srv := server.New(cfg.Server, server.PipelineExporter(cfg, cache, log), log)

	// Stop cleanly on SIGINT/SIGTERM so in-flight jobs finish.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-stop
		log.WithField("signal", sig.String()).Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	if err := srv.Listen(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func serverConfig(cmd *cobra.Command) types.ServerConfig {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = viper.GetString("server.addr")
	}
	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = viper.GetInt("server.workers")
	}
	ttl, _ := cmd.Flags().GetDuration("job-ttl")
	if ttl == 0 {
		ttl = viper.GetDuration("server.job_ttl")
	}
	workDir, _ := cmd.Flags().GetString("work-dir")

	return types.ServerConfig{
		Addr:    addr,
		Workers: workers,
		JobTTL:  ttl,
		WorkDir: workDir,
	}
}
