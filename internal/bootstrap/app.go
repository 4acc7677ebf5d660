// Package bootstrap wires the storefront core together from configuration.
// Embedders construct an App once and hand its services to whatever shell
// (desktop UI, test harness) drives them.
package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lanternfox/storefront/internal"
	"github.com/lanternfox/storefront/internal/address"
	"github.com/lanternfox/storefront/internal/backend"
	"github.com/lanternfox/storefront/internal/cart"
	"github.com/lanternfox/storefront/internal/catalog"
	"github.com/lanternfox/storefront/internal/checkout"
	"github.com/lanternfox/storefront/internal/kv"
	"github.com/lanternfox/storefront/internal/marketplace"
	"github.com/lanternfox/storefront/internal/profile"
	"github.com/lanternfox/storefront/internal/shipping"
	"github.com/lanternfox/storefront/internal/storage"
	"github.com/lanternfox/storefront/internal/telemetry"
)

// App holds every wired service of the storefront core.
type App struct {
	Config *internal.Config
	Logger *slog.Logger

	Carts        cart.Service
	Estimator    *shipping.Estimator
	Lookup       address.Lookup
	AddressCache *address.Cache
	Catalog      catalog.Service
	Marketplace  marketplace.Service
	Checkout     checkout.Service
	Profiles     profile.Service

	Backend  backend.Client
	AdImages storage.Storage
	Avatars  storage.Storage
	Metrics  *telemetry.BusinessMetrics
}

// New wires the full application. logW receives log output; reg is the
// metrics registry (prometheus.DefaultRegisterer in production, a fresh
// registry in tests).
func New(cfg *internal.Config, logW io.Writer, reg prometheus.Registerer) (*App, error) {
	logger := internal.NewLogger(logW, cfg)

	store, err := kv.NewFileStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	adImages, err := storage.NewStorage(cfg.Storage, cfg.Storage.AdImageBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to configure ad image storage: %w", err)
	}
	avatars, err := storage.NewStorage(cfg.Storage, cfg.Storage.AvatarBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to configure avatar storage: %w", err)
	}

	estimator, err := shipping.NewEstimator(shipping.Formula(cfg.Shipping.Formula))
	if err != nil {
		return nil, fmt.Errorf("failed to configure shipping estimator: %w", err)
	}

	metrics := telemetry.NewBusinessMetrics("", reg)
	client := backend.NewHTTPClient(cfg.Backend.URL, cfg.Backend.APIKey, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)

	carts := cart.NewService(store, metrics, logger)
	cache := address.NewCache(store)
	lookup := address.NewHTTPLookup(cfg.Address.LookupURL, time.Duration(cfg.Address.TimeoutSeconds)*time.Second)

	catalogSvc := catalog.NewService(client, logger)
	marketplaceSvc := marketplace.NewService(client, adImages, carts, logger)
	checkoutSvc := checkout.NewService(client, carts, marketplaceSvc, cache, metrics, logger)
	profileSvc := profile.NewService(client, avatars, logger)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Carts:        carts,
		Estimator:    estimator,
		Lookup:       lookup,
		AddressCache: cache,
		Catalog:      catalogSvc,
		Marketplace:  marketplaceSvc,
		Checkout:     checkoutSvc,
		Profiles:     profileSvc,
		Backend:      client,
		AdImages:     adImages,
		Avatars:      avatars,
		Metrics:      metrics,
	}, nil
}
