package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/photovault/internal/client/config"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/gateway/grpcgw"
	"github.com/dmitrijs2005/photovault/internal/gateway/httpgw"
	"github.com/dmitrijs2005/photovault/internal/gateway/localgw"
	"github.com/dmitrijs2005/photovault/internal/gateway/s3gw"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/objects"
	"github.com/dmitrijs2005/photovault/internal/repomanager"
	"github.com/dmitrijs2005/photovault/internal/services"
	"github.com/dmitrijs2005/photovault/internal/store"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	// ModeDisabled is used for gateways that cannot be probed.
	ModeDisabled Mode = "disabled"
)

type App struct {
	config       *config.Config
	store        *store.Store
	gateway      gateway.Gateway
	closeGateway func() error
	users        *services.UserService
	folders      *services.FolderService
	photos       *services.PhotoService
	logger       logging.Logger
	reader       *bufio.Reader
	out          io.Writer

	// folderID is the current folder, nil for the root.
	folderID *string

	mu   sync.RWMutex
	mode Mode
}

// NewApp opens the entity store named by c.StoreDSN and connects the gateway
// selected by c.GatewayKind.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, slog.LevelWarn)

	backend, err := repomanager.Open(ctx, c.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", c.StoreDSN, err)
	}
	s, err := store.Open(ctx, backend, logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	gw, closeFn, err := newGateway(c)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	a := newApp(c, s, gw, logger, os.Stdin, os.Stdout)
	a.closeGateway = closeFn
	return a, nil
}

func newApp(c *config.Config, s *store.Store, gw gateway.Gateway, logger logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		config:  c,
		store:   s,
		gateway: gw,
		users:   services.NewUserService(s, gw, logger),
		folders: services.NewFolderService(s, gw, logger),
		photos:  services.NewPhotoService(s, gw, logger, c.UploadConcurrency),
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
	if _, ok := gw.(gateway.Pinger); !ok {
		a.mode = ModeDisabled
	}
	return a
}

func newGateway(c *config.Config) (gateway.Gateway, func() error, error) {
	switch c.GatewayKind {
	case config.GatewayGRPC:
		gw, err := grpcgw.New(c.Addr(), c.SecretKey, c.RequestTimeout)
		if err != nil {
			return nil, nil, err
		}
		return gw, gw.Close, nil
	case config.GatewayS3:
		return s3gw.New(objects.NewService(c.Objects()), c.RequestTimeout), nil, nil
	case config.GatewayLocal:
		gw, err := localgw.New(c.Addr())
		if err != nil {
			return nil, nil, err
		}
		return gw, nil, nil
	default:
		return httpgw.New(c.Addr(), c.SecretKey, c.RequestTimeout), nil, nil
	}
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "gateway mode changed", "mode", mode)
	}
}

// Run seeds the store, starts the REPL and releases resources when it ends.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if _, err := a.users.Seed(ctx); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	a.Root(ctx)
	return nil
}

func (a *App) close() {
	if a.closeGateway != nil {
		if err := a.closeGateway(); err != nil {
			a.logger.Warn(context.Background(), "close gateway", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn(context.Background(), "close store", "error", err)
	}
}

// checkOnline pings the gateway once and records the result.
func (a *App) checkOnline(ctx context.Context) {
	p, ok := a.gateway.(gateway.Pinger)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the gateway every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if _, ok := a.gateway.(gateway.Pinger); !ok {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
