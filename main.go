package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sjsage522/gramrelay/config"
	"sjsage522/gramrelay/helpers"
	"sjsage522/gramrelay/internal/crawler"
	"sjsage522/gramrelay/internal/post"
	"sjsage522/gramrelay/logger"
	"sjsage522/gramrelay/pkg/errors"
	"sjsage522/gramrelay/services/cache"
	"sjsage522/gramrelay/services/ledger"
	"sjsage522/gramrelay/services/publisher"
	"sjsage522/gramrelay/services/worker"
)

// Exit codes
const (
	exitOK          = 0
	exitFatal       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// run performs one relay pass and returns the process exit code
func run(parent context.Context, args []string, stderr io.Writer) int {
	cfg, err := config.Parse(args, stderr)
	if err != nil {
		if stderrors.Is(err, config.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, config.Usage)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) && e.Message == config.Usage {
			fmt.Fprintln(stderr, config.Usage)
		} else {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	log := logger.ForWorker()
	log.Info().
		Str("environment", cfg.Environment).
		Int("sources", len(cfg.Args.Sources)).
		Dur("send_delay", cfg.SendDelay()).
		Msg("Starting relay")

	// Stop between sources on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize services")
		return exitFatal
	}
	defer services.Cleanup()

	l, err := ledger.Load(ctx, services.Store)
	if err != nil {
		logger.ForLedger().Warn().
			Str("error_type", string(errors.TypeOf(err))).
			Err(err).
			Msg("Could not read ledger, treating every post as new")
	}

	schema := crawler.DefaultSchema()
	schema.Marker = cfg.Marker

	fetcher := crawler.NewPageFetcher(services.PageClient, services.Cache, cfg.BlockTime())
	crawlers := crawler.CreateCrawlers(cfg.Args.Sources, schema, cfg.BaseURL, fetcher)

	w := worker.NewWorker(
		crawlers,
		post.NewClassifier(cfg.BaseURL, schema),
		l,
		services.Store,
		services.Publisher,
		worker.Options{
			SendDelay:         cfg.SendDelay(),
			FlushEachDelivery: cfg.FlushEachDelivery,
		},
	)

	summary, err := w.Run(ctx)
	if err != nil {
		logger.LogError("worker", err, "Relay run failed (%s)", errors.TypeOf(err))
		return exitFatal
	}
	if summary.Interrupted {
		return exitInterrupted
	}
	return exitOK
}

// Services holds all the initialized services
type Services struct {
	PageClient *http.Client
	Cache      cache.CacheService
	Store      ledger.Store
	Publisher  publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{PageClient: helpers.NewClient(cfg.HTTPTimeout())}

	if cfg.ProxyURL != "" {
		client, err := helpers.NewProxyClient(cfg.HTTPTimeout(), cfg.ProxyURL)
		if err != nil {
			return nil, errors.NewConfiguration("failed to configure fetch proxy", err)
		}
		services.PageClient = client
		logger.Info("Fetching pages through proxy %s", cfg.ProxyURL)
	}

	// The rate-limit cache is optional
	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcacheService.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unreachable, rate-limit blocking disabled")
		} else {
			services.Cache = memcacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	store, err := ledger.OpenStore(cfg.Args.Ledger)
	if err != nil {
		return nil, errors.NewConfiguration("failed to open ledger store", err)
	}
	services.Store = store
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			return nil, errors.NewLedgerLoad(store.String(), err)
		}
	}
	logger.Info("Using ledger %s", store)

	services.Publisher = publisher.NewWebhookPublisher(cfg.Args.Webhook, cfg.HTTPTimeout())

	return services, nil
}
