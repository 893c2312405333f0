package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/agrilink-hq/agrilink-client/internal/auth"
	"github.com/agrilink-hq/agrilink-client/internal/cart"
	"github.com/agrilink-hq/agrilink-client/internal/catalog"
	"github.com/agrilink-hq/agrilink-client/internal/farm"
	"github.com/agrilink-hq/agrilink-client/internal/guest"
	"github.com/agrilink-hq/agrilink-client/internal/messaging"
	"github.com/agrilink-hq/agrilink-client/internal/orders"
	"github.com/agrilink-hq/agrilink-client/internal/session"
	"github.com/agrilink-hq/agrilink-client/internal/wishlist"
	"github.com/agrilink-hq/agrilink-client/pkg/config"
	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/agrilink-hq/agrilink-client/pkg/metrics"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// App wires the whole client together: local guest state, the session,
// and one REST client per backend service.
type App struct {
	Cfg      *config.Config
	Log      *logger.Logger
	Guest    *guest.Service
	Sessions *session.Manager
	Notifier guest.Notifier

	Auth      *auth.Service
	Cart      *cart.Client
	Wishlist  *wishlist.Client
	Catalog   *catalog.Client
	Orders    *orders.Client
	Messaging *messaging.Client
	Farm      *farm.Client

	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{Cfg: cfg, Log: log, Notifier: NewToastNotifier(os.Stderr)}

	store, err := app.openGuestStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Guest = guest.NewService(store, log)

	// The cart-badge analogue: any write to the guest cart redraws the
	// count, whichever command caused it.
	cancelBadge := app.Guest.OnCartChange(func(updated guest.Cart) {
		fmt.Fprintf(os.Stderr, "[cart] %d item(s), total %s\n", updated.TotalItems, updated.TotalAmount.StringFixed(2))
	})
	app.closers = append(app.closers, func() error { cancelBadge(); return nil })

	app.Sessions, err = session.NewManager(store, log)
	if err != nil {
		return nil, multierr.Append(err, app.Close())
	}

	registry := prometheus.NewRegistry()
	api, err := rest.NewClient(cfg.API.BaseURL,
		rest.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		rest.WithUserAgent(cfg.API.UserAgent),
		rest.WithTokenSource(app.Sessions),
		rest.WithLogger(log),
		rest.WithMetrics(metrics.NewHTTPClientMetrics(registry)),
	)
	if err != nil {
		return nil, multierr.Append(err, app.Close())
	}

	if app.Cart, err = cart.NewClient(api); err != nil {
		return nil, multierr.Append(err, app.Close())
	}
	if app.Wishlist, err = wishlist.NewClient(api); err != nil {
		return nil, multierr.Append(err, app.Close())
	}
	if app.Catalog, err = catalog.NewClient(api); err != nil {
		return nil, multierr.Append(err, app.Close())
	}
	if app.Orders, err = orders.NewClient(api); err != nil {
		return nil, multierr.Append(err, app.Close())
	}
	if app.Messaging, err = messaging.NewClient(api); err != nil {
		return nil, multierr.Append(err, app.Close())
	}
	if app.Farm, err = farm.NewClient(api); err != nil {
		return nil, multierr.Append(err, app.Close())
	}

	migrator, err := guest.NewMigrator(guest.MigratorParams{
		Guest:       app.Guest,
		Cart:        app.Cart,
		Wishlist:    app.Wishlist,
		Notifier:    app.Notifier,
		Log:         log,
		ItemTimeout: cfg.Sync.ItemTimeout,
	})
	if err != nil {
		return nil, multierr.Append(err, app.Close())
	}

	app.Auth, err = auth.NewService(auth.ServiceParams{
		API:      api,
		Sessions: app.Sessions,
		Migrator: migrator,
		Log:      log,
	})
	if err != nil {
		return nil, multierr.Append(err, app.Close())
	}
	return app, nil
}

// Close releases store backends that hold connections.
func (a *App) Close() error {
	var combined error
	for _, closer := range a.closers {
		combined = multierr.Append(combined, closer())
	}
	return combined
}

// Authenticated reports whether a login session exists.
func (a *App) Authenticated() bool {
	return a.Sessions.Authenticated()
}

func (a *App) openGuestStore(ctx context.Context) (guest.Store, error) {
	switch strings.ToLower(strings.TrimSpace(a.Cfg.GuestStore.Backend)) {
	case config.GuestBackendMemory:
		return guest.NewMemoryStore(), nil
	case config.GuestBackendFile:
		dir, err := a.stateDir()
		if err != nil {
			return nil, err
		}
		return guest.NewFileStore(dir)
	case config.GuestBackendSQLite:
		dir, err := a.stateDir()
		if err != nil {
			return nil, err
		}
		store, err := guest.NewSQLiteStore(filepath.Join(dir, "guest.db"), a.Log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case config.GuestBackendRedis:
		store, err := guest.NewRedisStore(ctx, a.Cfg.Redis, a.Log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown guest store backend %q", a.Cfg.GuestStore.Backend)
	}
}

func (a *App) stateDir() (string, error) {
	if a.Cfg.GuestStore.Path != "" {
		return a.Cfg.GuestStore.Path, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve state directory: %w", err)
	}
	return filepath.Join(base, "agrilink"), nil
}
