package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/blattlab/blatt/internal/api"
	"github.com/blattlab/blatt/internal/pagexml"
	"github.com/blattlab/blatt/internal/pipeline"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve PAGE_DIR",
	Short: "Run the pipeline and serve the results over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Serve.Addr = serveAddr
		}
		paths, err := pagexml.Files(args[0])
		if err != nil {
			return err
		}
		res, err := pipeline.New(cfg, log).Run(cmd.Context(), paths)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:         cfg.Serve.Addr,
			Handler:      api.NewServer(res, log, cfg.Serve),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			<-cmd.Context().Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		log.Info("serving results", "addr", cfg.Serve.Addr, "run_id", res.RunID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
