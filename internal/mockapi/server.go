// Package mockapi is an in-memory stand-in for the media backend. It speaks
// the same REST routes and {statusCode,response,message} bodies, and adds
// per-route call counters and gates so tests can observe and stall requests.
package mockapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/mediahub/internal/logging"
	"github.com/dmitrijs2005/mediahub/internal/mockapi/media"
	"github.com/dmitrijs2005/mediahub/internal/mockapi/users"
)

// Route names, usable with Calls and Hold.
const (
	RouteSignIn      = "auth.signin"
	RouteSignUp      = "auth.signup"
	RouteMediaList   = "media.list"
	RouteMediaGet    = "media.get"
	RouteMediaUpload = "media.upload"
	RouteMediaUpdate = "media.update"
	RouteMediaDelete = "media.delete"
	RouteUploads     = "uploads"
)

const shutdownTimeout = 5 * time.Second

// FastHashParams is a cheap argon2id setting for tests and local runs.
var FastHashParams = &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type Server struct {
	users         *users.Service
	media         media.Repository
	logger        logging.Logger
	maxUploadSize int64

	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan struct{}
}

type Option func(*Server)

func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithMaxUploadSize(n int64) Option {
	return func(s *Server) { s.maxUploadSize = n }
}

// WithHashParams sets the argon2id cost used for new passwords. Tests use it
// to keep sign-ups cheap.
func WithHashParams(p *argon2id.Params) Option {
	return func(s *Server) { s.users.WithHashParams(p) }
}

func NewServer(us *users.Service, mr media.Repository, opts ...Option) *Server {
	s := &Server{
		users:         us,
		media:         mr,
		logger:        logging.Nop(),
		maxUploadSize: 10 << 20,
		calls:         make(map[string]int),
		gates:         make(map[string]chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "mockapi")
	return s
}

// NewInMemory builds a Server over fresh in-memory user and media stores.
func NewInMemory(secretKey string, validity time.Duration, opts ...Option) *Server {
	us := users.NewService(users.NewInMemoryRepository(), secretKey, validity)
	return NewServer(us, media.NewInMemoryRepository(), opts...)
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.track)

	r.HandleFunc("/api/v1/auth/signin", s.signIn).Methods(http.MethodPost).Name(RouteSignIn)
	r.HandleFunc("/api/v1/auth/signup", s.signUp).Methods(http.MethodPost).Name(RouteSignUp)

	api := r.PathPrefix("/api/v1/media").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/user/{userId}", s.listMedia).Methods(http.MethodGet).Name(RouteMediaList)
	api.HandleFunc("/post", s.uploadMedia).Methods(http.MethodPost).Name(RouteMediaUpload)
	api.HandleFunc("/{id}", s.getMedia).Methods(http.MethodGet).Name(RouteMediaGet)
	api.HandleFunc("/{id}", s.updateMedia).Methods(http.MethodPatch).Name(RouteMediaUpdate)
	api.HandleFunc("/{id}", s.deleteMedia).Methods(http.MethodDelete).Name(RouteMediaDelete)

	r.HandleFunc("/uploads/{name}", s.serveFile).Methods(http.MethodGet).Name(RouteUploads)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, nil, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusMethodNotAllowed, nil, "Method not allowed")
	})

	return r
}

// Calls reports how many requests reached the named route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Hold stalls requests to route after they are counted, until the returned
// release func is called or the request is cancelled. Release is idempotent.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})

	s.mu.Lock()
	s.gates[route] = ch
	s.mu.Unlock()

	return sync.OnceFunc(func() {
		s.mu.Lock()
		if s.gates[route] == ch {
			delete(s.gates, route)
		}
		s.mu.Unlock()
		close(ch)
	})
}

// IssueToken mints a token for userID with the given validity. Negative
// values give tokens that are already expired.
func (s *Server) IssueToken(userID string, validity time.Duration) (string, error) {
	return s.users.IssueToken(userID, validity)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
