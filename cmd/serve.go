package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/cache"
	"github.com/tranvh/hiregate/internal/catalog"
	"github.com/tranvh/hiregate/internal/docparse"
	"github.com/tranvh/hiregate/internal/enrich"
	"github.com/tranvh/hiregate/internal/filtering"
	"github.com/tranvh/hiregate/internal/logger"
	"github.com/tranvh/hiregate/internal/offerletter"
	"github.com/tranvh/hiregate/internal/resolve"
	"github.com/tranvh/hiregate/internal/secrets"
	"github.com/tranvh/hiregate/internal/server"
	"github.com/tranvh/hiregate/internal/sheets"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hiregate HTTP server",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "listen port, overrides server.port from the config")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

// services is everything the commands need wired together: the upstream
// client, the cached catalog and the resolver built on top of them.
type services struct {
	client   *basehiring.Client
	catalog  *catalog.Catalog
	resolver *resolve.Service
	sheet    *sheets.Client
	enricher *enrich.Enricher
	letters  *offerletter.Finder
	store    *cache.Store
	token    string
}

func newServices(ctx context.Context, lg *zap.Logger, config *Config) (*services, error) {
	token, err := secrets.Load(secrets.Source{
		Name: "base hiring api key",
		File: config.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set HIREGATE_API_KEY_FILE or the 'api-key-file' config key)", err)
	}

	// The account credential only feeds reviewer names; running without it
	// is a supported degradation.
	accountToken := ""
	if config.AccountKeyFile != "" {
		accountToken, err = secrets.Load(secrets.Source{
			Name: "base account api key",
			File: config.AccountKeyFile,
		})
		if err != nil {
			lg.Warn("account credential unavailable, reviewer names will not resolve", zap.Error(err))
			accountToken = ""
		}
	}

	client := basehiring.New(ctx, lg, token)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	store := cache.NewStore(time.Duration(config.Cache.TTLSeconds)*time.Second, lg)
	cat := catalog.New(store, client, lg, token, accountToken)
	resolver := resolve.NewService(cat, client, lg, token)

	sheet := sheets.New(config.SheetURL, lg)
	if !sheet.Configured() {
		lg.Info("sheet integration not configured, test records and feedback disabled")
	}

	downloader := docparse.NewDownloader(client.UserAgent)
	extractor := docparse.NewTextExtractor()

	return &services{
		client:   client,
		catalog:  cat,
		resolver: resolver,
		sheet:    sheet,
		enricher: enrich.New(sheet, downloader, extractor, lg),
		letters:  offerletter.NewFinder(client, token, downloader, extractor, lg),
		store:    store,
		token:    token,
	}, nil
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	lg.Info("starting hiregate", zap.String("version", version))

	pretty, _ := json.MarshalIndent(config, "", "  ")
	lg.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	svc, err := newServices(ctx, lg, config)
	if err != nil {
		lg.Fatal("wiring services", zap.Error(err))
	}

	srv := server.New(
		serverConfig(config),
		lg,
		svc.resolver,
		svc.catalog,
		svc.client,
		svc.enricher,
		svc.letters,
		svc.sheet,
		svc.store,
		svc.token,
	)

	if err := srv.Serve(ctx); err != nil {
		lg.Fatal("http server failed", zap.Error(err))
	}

	lg.Info("exiting")
}

func serverConfig(config *Config) server.Config {
	cfg := server.Config{
		Addr:            fmt.Sprintf(":%d", config.Server.Port),
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Recent: filtering.RecentActivityConfig{
			MaxPool: config.Pool.MaxSize,
			Window:  time.Duration(config.Pool.RecentDays) * 24 * time.Hour,
		},
	}

	if config.Server.ReadTimeoutSec > 0 {
		cfg.ReadTimeout = time.Duration(config.Server.ReadTimeoutSec) * time.Second
	}
	if config.Server.WriteTimeoutSec > 0 {
		cfg.WriteTimeout = time.Duration(config.Server.WriteTimeoutSec) * time.Second
	}
	if config.Server.ShutdownSec > 0 {
		cfg.ShutdownTimeout = time.Duration(config.Server.ShutdownSec) * time.Second
	}

	return cfg
}
