package services

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediahub/internal/client/client"
	"github.com/dmitrijs2005/mediahub/internal/client/models"
	"github.com/dmitrijs2005/mediahub/internal/client/query"
	"github.com/dmitrijs2005/mediahub/internal/client/session"
	"github.com/dmitrijs2005/mediahub/internal/client/validation"
	"github.com/dmitrijs2005/mediahub/internal/logging"
	"github.com/dmitrijs2005/mediahub/internal/mockapi"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

// memPersister keeps the persisted blob in memory.
type memPersister struct {
	mu      sync.Mutex
	blob    []byte
	saveErr error
}

func (p *memPersister) Load(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blob, nil
}

func (p *memPersister) Save(_ context.Context, blob []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return p.saveErr
	}
	p.blob = blob
	return nil
}

func (p *memPersister) saved() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blob
}

type harness struct {
	srv       *mockapi.Server
	store     *session.Store
	persister *memPersister
	cache     *query.Cache
	auth      AuthService
	media     MediaService
}

func newHarness(t *testing.T, pageSize int) *harness {
	t.Helper()

	srv := mockapi.NewInMemory("test-secret", time.Hour, mockapi.WithHashParams(mockapi.FastHashParams))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	hc, err := client.NewHTTPClient(ts.URL, client.WithTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = hc.Close() })

	v, err := validation.New(validation.DefaultMaxUploadSize)
	require.NoError(t, err)

	logger := logging.Nop()
	p := &memPersister{}
	store := session.NewStore(p, logger)
	cache := query.NewCache(query.WithRegistry(NewRegistry()))
	t.Cleanup(cache.Reset)

	return &harness{
		srv:       srv,
		store:     store,
		persister: p,
		cache:     cache,
		auth:      NewAuthService(hc, cache, store, v, logger),
		media:     NewMediaService(hc, cache, store, v, logger, pageSize),
	}
}

func (h *harness) signUp(t *testing.T, email string) session.Session {
	t.Helper()
	s, err := h.auth.SignUp(context.Background(), models.SignUpForm{
		FullName:        "Test User",
		Email:           email,
		Password:        "password1",
		ConfirmPassword: "password1",
	})
	require.NoError(t, err)
	return s
}

func (h *harness) upload(t *testing.T, name string) *models.MediaItem {
	t.Helper()
	item, err := h.media.Upload(context.Background(), writeFile(t, name, pngBytes), "")
	require.NoError(t, err)
	return item
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func ids(items []models.MediaItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
