package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/mediahub/internal/client/client"
	"github.com/dmitrijs2005/mediahub/internal/client/config"
	"github.com/dmitrijs2005/mediahub/internal/client/query"
	"github.com/dmitrijs2005/mediahub/internal/client/services"
	"github.com/dmitrijs2005/mediahub/internal/client/session"
	"github.com/dmitrijs2005/mediahub/internal/client/storage"
	"github.com/dmitrijs2005/mediahub/internal/client/validation"
	"github.com/dmitrijs2005/mediahub/internal/logging"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	client       client.Client
	store        *session.Store
	metrics      *prometheus.Registry
	authService  services.AuthService
	mediaService services.MediaService
	backup       services.ObjectStore
	reader       *bufio.Reader
	out          io.Writer

	mu          sync.Mutex
	search      string
	watchCancel context.CancelFunc

	// known is the size of the watched list, -1 until the first result.
	known int
}

// NewApp wires local storage, the transport, the query cache and the
// services from c. The returned App owns the database and the HTTP client;
// Run closes them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	var persister session.Persister = session.NewSQLitePersister(db)
	if c.StorageSecret != "" {
		persister = session.NewSealedPersister(persister, c.StorageSecret)
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RateLimit, c.RateBurst),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	v, err := validation.New(c.MaxUploadSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	cache := query.NewCache(
		query.WithLogger(logger),
		query.WithMetrics(query.NewMetrics(reg)),
		query.WithRegistry(services.NewRegistry()),
	)
	store := session.NewStore(persister, logger)

	a := &App{
		config:       c,
		logger:       logger,
		db:           db,
		client:       apiClient,
		store:        store,
		metrics:      reg,
		authService:  services.NewAuthService(apiClient, cache, store, v, logger),
		mediaService: services.NewMediaService(apiClient, cache, store, v, logger, c.PageSize),
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
		known:        -1,
	}

	if c.Storage.Enabled() {
		s3, err := storage.NewS3Storage(ctx, c.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
		a.backup = s3
	}

	return a, nil
}

// Run restores the previous session and serves the REPL until the user
// exits, stdin ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.logger.Info(ctx, "mediahub client started", "server", a.config.ServerURL, "database", a.config.DatabasePath)
	a.restore(ctx)

	printlnFn("Welcome to mediahub CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close stops the background list watch and releases the database and the
// transport.
func (a *App) Close() {
	a.stopWatch()
	err := errors.Join(a.client.Close(), a.db.Close())
	if err != nil {
		a.logger.Warn(context.Background(), "close failed", "error", err)
	}
}

func (a *App) restore(ctx context.Context) {
	if sess := a.store.Rehydrate(ctx); sess.Authenticated() {
		a.logger.Info(ctx, "session restored", "user_id", sess.UserID)
		a.startWatch(ctx)
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.Current().Authenticated()
}

func (a *App) status() string {
	sess := a.authService.Current()
	if !sess.Authenticated() {
		return "(signed out)"
	}

	a.mu.Lock()
	n := a.known
	a.mu.Unlock()

	if n < 0 {
		return fmt.Sprintf("(%s)", sess.UserID)
	}
	return fmt.Sprintf("(%s, %d items)", sess.UserID, n)
}
