package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ai_news_agent/publisher"
	"ai_news_agent/server"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			pipeline, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			gin.SetMode(gin.ReleaseMode)
			srv, err := server.New(pipeline, cfg.Server)
			if err != nil {
				return err
			}

			listen := cfg.Server.Addr
			if addr != "" {
				listen = addr
			}
			if listen == "" {
				listen = ":8080"
			}
			httpSrv := &http.Server{
				Addr:              listen,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", listen).Str("provider", cfg.LLM.Provider).Msg("starting web server")
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "http listen address (overrides server.addr)")
	return cmd
}

func generateCmd() *cobra.Command {
	var (
		topic  string
		format string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one article and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" {
				return errors.New("--topic must not be empty")
			}
			f, err := publisher.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := setup()
			if err != nil {
				return err
			}
			pipeline, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			log.Info().Str("topic", topic).Str("format", string(f)).Msg("generating article")
			art, err := pipeline.Generate(cmd.Context(), strings.TrimSpace(topic))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f == publisher.FormatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(art)
			}
			body, err := publisher.Render(art, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, body)
			return err
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "article topic")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, markdown or html")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
