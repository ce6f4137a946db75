package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/relay/internal/alert"
	"github.com/everstacklabs/relay/internal/catalog"
	"github.com/everstacklabs/relay/internal/config"
	"github.com/everstacklabs/relay/internal/engine"
	"github.com/everstacklabs/relay/internal/health"
	"github.com/everstacklabs/relay/internal/httpclient"
	"github.com/everstacklabs/relay/internal/ledger"
	"github.com/everstacklabs/relay/internal/policy"
	"github.com/everstacklabs/relay/internal/provider"
	_ "github.com/everstacklabs/relay/internal/provider/providers/anthropic" // register Anthropic generator
	_ "github.com/everstacklabs/relay/internal/provider/providers/google"    // register Google generator
	_ "github.com/everstacklabs/relay/internal/provider/providers/openai"    // register OpenAI generator
	_ "github.com/everstacklabs/relay/internal/provider/providers/runway"    // register Runway generator
	_ "github.com/everstacklabs/relay/internal/provider/providers/stability" // register Stability generator
	"github.com/everstacklabs/relay/internal/quota"
	"github.com/everstacklabs/relay/internal/ratelimit"
	"github.com/everstacklabs/relay/internal/server"
	"github.com/everstacklabs/relay/internal/store"

	anthropicProvider "github.com/everstacklabs/relay/internal/provider/providers/anthropic"
	googleProvider "github.com/everstacklabs/relay/internal/provider/providers/google"
	openaiProvider "github.com/everstacklabs/relay/internal/provider/providers/openai"
	runwayProvider "github.com/everstacklabs/relay/internal/provider/providers/runway"
	stabilityProvider "github.com/everstacklabs/relay/internal/provider/providers/stability"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Generation request router",
		Long:  "Routes generation requests across providers with quotas, rate limits, and fallback.",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		serveCmd(),
		providersCmd(),
		validateCmd(),
		tokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)

			if cfg.Server.JWTSecret == "" {
				return fmt.Errorf("server.jwt_secret is required (set RELAY_JWT_SECRET)")
			}

			configureGenerators(cfg)

			eng, cleanup, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: server.New(eng, cfg.Server.JWTSecret).Handler(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("server listening", "addr", cfg.Server.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Print the provider catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			descs, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			for _, d := range descs {
				fmt.Printf("%-20s %-8s %-12s cost=%-8.4f quality=%.2f rpm=%d\n",
					d.ID, d.Capability, d.Generator, d.CostPerUnit, d.QualityScore, d.RateLimit)
			}

			fmt.Printf("\nTotal: %d providers\n", len(descs))
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a provider catalog (CI check)",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogPath, _ := cmd.Flags().GetString("catalog-path")
			if catalogPath == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				catalogPath = cfg.CatalogPath
			}

			var descs []catalog.Descriptor
			if catalogPath == "" {
				descs = catalog.Builtin()
			} else {
				var err error
				descs, err = catalog.Load(catalogPath)
				if err != nil {
					return fmt.Errorf("loading catalog: %w", err)
				}
			}

			problems := catalog.Validate(descs)
			for _, p := range problems {
				fmt.Println(p)
			}
			if len(problems) > 0 {
				os.Exit(1)
			}

			fmt.Printf("OK: %d providers\n", len(descs))
			return nil
		},
	}

	cmd.Flags().String("catalog-path", "", "Path to provider catalog (default: from config)")

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed tenant token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Server.JWTSecret == "" {
				return fmt.Errorf("server.jwt_secret is required (set RELAY_JWT_SECRET)")
			}

			tenant, _ := cmd.Flags().GetString("tenant")
			if tenant == "" {
				return fmt.Errorf("--tenant is required")
			}
			tier, _ := cmd.Flags().GetString("tier")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := server.IssueToken(tenant, tier, cfg.Server.JWTSecret, ttl)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().String("tenant", "", "Tenant id (token subject)")
	cmd.Flags().String("tier", "", "Pin the tenant to a plan tier")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func loadCatalog(cfg *config.Config) ([]catalog.Descriptor, error) {
	if cfg.CatalogPath == "" {
		return catalog.Builtin(), nil
	}
	return catalog.Load(cfg.CatalogPath)
}

func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	descs, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	reg, err := catalog.NewRegistry(descs)
	if err != nil {
		return nil, nil, fmt.Errorf("building registry: %w", err)
	}

	cleanup := func() {}
	var db *ledger.DB
	if cfg.LedgerPath != "" {
		db, err = ledger.OpenDB(cfg.LedgerPath)
		if err != nil {
			slog.Warn("ledger db unavailable, continuing without durable records", "error", err)
		} else {
			cleanup = func() {
				if err := db.Close(); err != nil {
					slog.Warn("closing ledger db", "error", err)
				}
			}
		}
	}

	led := ledger.New(store.NewMemory(), db)
	mon := health.NewMonitor(health.DefaultThreshold)

	ceilings := policy.DefaultCeilings()
	if len(cfg.Tiers.Ceilings) > 0 {
		ceilings = cfg.Tiers.Ceilings
	}

	opts := []engine.Option{}
	if cfg.CallTimeout != "" {
		d, err := time.ParseDuration(cfg.CallTimeout)
		if err != nil {
			slog.Warn("invalid call_timeout, using default", "value", cfg.CallTimeout)
		} else {
			opts = append(opts, engine.WithCallTimeout(d))
		}
	}

	eng := engine.New(
		reg,
		ratelimit.NewGovernor(ratelimit.DefaultWindow),
		mon,
		led,
		quota.NewEnforcer(cfg.Plans, led),
		policy.NewSelector(reg, mon, ceilings),
		alert.NewEmitter(cfg.Alerts, led, nil),
		engine.StaticTiers{Assignments: cfg.Tiers.Assignments, Default: cfg.Tiers.Default},
		opts...,
	)
	return eng, cleanup, nil
}

func configureGenerators(cfg *config.Config) {
	client := httpclient.New(
		httpclient.WithRateLimit(10), // 10 RPS default
	)

	if g, err := provider.Get("openai"); err == nil {
		if og, ok := g.(*openaiProvider.OpenAI); ok {
			og.Configure(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, client)
		}
	}

	if g, err := provider.Get("anthropic"); err == nil {
		if ag, ok := g.(*anthropicProvider.Anthropic); ok {
			ag.Configure(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, client)
		}
	}

	if g, err := provider.Get("google"); err == nil {
		if gg, ok := g.(*googleProvider.Google); ok {
			gg.Configure(cfg.Google.APIKey, cfg.Google.BaseURL, client)
		}
	}

	if g, err := provider.Get("stability"); err == nil {
		if sg, ok := g.(*stabilityProvider.Stability); ok {
			sg.Configure(cfg.Stability.APIKey, cfg.Stability.BaseURL, client)
		}
	}

	if g, err := provider.Get("runway"); err == nil {
		if rg, ok := g.(*runwayProvider.Runway); ok {
			rg.Configure(cfg.Runway.APIKey, cfg.Runway.BaseURL, client)
		}
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
