package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), Config{})
	require.ErrorIs(t, err, ErrDisabled)
	assert.False(t, Config{Bucket: "  "}.Enabled())
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "users/U1/m1/cat.png", ObjectKey("U1", "m1", "cat.png"))
	assert.Equal(t, "users/U1/m1/passwd", ObjectKey("U1", "m1", "../../etc/passwd"))
}

type fakeS3 struct {
	mu     sync.Mutex
	method string
	path   string
	body   string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.method, f.path, f.body = r.Method, r.URL.Path, string(b)
	f.mu.Unlock()
	w.Header().Set("ETag", `"abc"`)
	w.WriteHeader(http.StatusOK)
}

func TestS3Storage_Save(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewS3Storage(context.Background(), Config{
		Bucket:    "media",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "AKID",
		SecretKey: "SECRET",
		Prefix:    "/backup/",
	})
	require.NoError(t, err)

	key, err := s.Save(context.Background(), ObjectKey("U1", "m1", "cat.png"), strings.NewReader("meow"))
	require.NoError(t, err)
	assert.Equal(t, "backup/users/U1/m1/cat.png", key)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, http.MethodPut, fake.method)
	assert.Equal(t, "/media/backup/users/U1/m1/cat.png", fake.path)
	assert.Contains(t, fake.body, "meow")
}

func TestS3Storage_SaveRejectsEmptyKey(t *testing.T) {
	s, err := NewS3Storage(context.Background(), Config{Bucket: "b", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "", strings.NewReader("x"))
	require.Error(t, err)
}
