package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"puma/crawler/internal/config"
	"puma/crawler/internal/container"
	"puma/crawler/internal/domain"
	"puma/crawler/internal/normalizer"
	"puma/crawler/internal/state"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "crawler",
		Short:         "Extracts the PUMA CN product catalog as JSON lines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")

	root.AddCommand(newCrawlCommand(&configPath), newParseCommand(&configPath))
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func newCrawlCommand(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl every category from the seed page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.Crawler.Output = output
			}

			log.Info("Starting PUMA crawler...")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := container.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize container: %w", err)
			}
			defer app.Close()

			if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("crawl exited with error: %w", err)
			}

			log.Infof("Crawl finished, %d records written", app.Sink.Written())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

func newParseCommand(configPath *string) *cobra.Command {
	var (
		productURL string
		category   []string
	)

	cmd := &cobra.Command{
		Use:   "parse <detail-response.json>",
		Short: "Normalize a saved product detail response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			var trail domain.Trail
			if len(category) > 0 {
				trail = domain.Trail{{Segments: category}}
			}

			n := normalizer.New(state.NewMemorySeenSet(), cfg.Site.Brand, cfg.Site.Currency)
			product, err := n.Parse(cmd.Context(), &domain.Response{
				Body: body,
				Request: &domain.Request{
					Callback: domain.CallbackProduct,
					Meta:     domain.Meta{URL: productURL, Trail: trail},
				},
			})
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("no product record in %s", args[0])
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(product)
		},
	}
	cmd.Flags().StringVar(&productURL, "url", "", "product page URL, e.g. https://cn.puma.com/pdp/37512301/37512301001.html")
	cmd.Flags().StringSliceVar(&category, "category", nil, "category path segments")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
